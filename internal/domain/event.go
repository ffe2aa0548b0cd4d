// Package domain defines the workload event model and aggregation logic.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMalformedEvent indicates a workload event failed field validation and
	// must never reach the aggregate store.
	ErrMalformedEvent = errors.New("malformed workload event")
	// ErrTrainerNotFound is returned when a trainer has no recorded workload.
	ErrTrainerNotFound = errors.New("trainer workload not found")
)

// ActionType distinguishes training creation from cancellation.
type ActionType string

const (
	ActionAdd    ActionType = "ADD"
	ActionDelete ActionType = "DELETE"
)

// WorkloadEvent is the message emitted by the profile-management side
// whenever a training session is created or cancelled. The correlation id
// travels out of band (message header / HTTP header), never in the body.
type WorkloadEvent struct {
	TrainerUsername  string     `json:"trainerUsername"`
	TrainerFirstName string     `json:"trainerFirstName"`
	TrainerLastName  string     `json:"trainerLastName"`
	IsActive         bool       `json:"isActive"`
	TrainingDate     CivilDate  `json:"trainingDate"`
	TrainingDuration int        `json:"trainingDuration"`
	ActionType       ActionType `json:"actionType"`
}

// Validate checks the invariants every event must satisfy before it may be
// applied. It has no side effects.
func (e WorkloadEvent) Validate() error {
	if strings.TrimSpace(e.TrainerUsername) == "" {
		return fmt.Errorf("%w: trainerUsername is required", ErrMalformedEvent)
	}
	if strings.TrimSpace(e.TrainerFirstName) == "" {
		return fmt.Errorf("%w: trainerFirstName is required", ErrMalformedEvent)
	}
	if strings.TrimSpace(e.TrainerLastName) == "" {
		return fmt.Errorf("%w: trainerLastName is required", ErrMalformedEvent)
	}
	if e.TrainingDate.IsZero() {
		return fmt.Errorf("%w: trainingDate is required", ErrMalformedEvent)
	}
	if e.TrainingDuration <= 0 {
		return fmt.Errorf("%w: trainingDuration must be > 0, got %d", ErrMalformedEvent, e.TrainingDuration)
	}
	switch e.ActionType {
	case ActionAdd, ActionDelete:
	default:
		return fmt.Errorf("%w: unknown actionType %q", ErrMalformedEvent, e.ActionType)
	}
	return nil
}

// CivilDate is a calendar date without a time component, serialized as
// ISO-8601 (2025-01-15) on the wire.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCivilDate builds a CivilDate from its components.
func NewCivilDate(year int, month time.Month, day int) CivilDate {
	return CivilDate{Year: year, Month: month, Day: day}
}

// DateOf extracts the calendar date from a time.Time in its location.
func DateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is unset.
func (d CivilDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String renders the date in ISO-8601 form.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes the date as a JSON string.
func (d CivilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes an ISO-8601 date string.
func (d *CivilDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = CivilDate{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid trainingDate %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}
