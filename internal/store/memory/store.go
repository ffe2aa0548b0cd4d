// Package memory provides an in-memory workload store for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"sync"

	"example.com/workload/internal/domain"
)

type monthKey struct {
	username string
	year     int
	month    int
}

// Store keeps accumulator rows in a mutex-guarded map. Apply is atomic per
// event; the lock covers the whole read-modify-write.
type Store struct {
	mu   sync.Mutex
	rows map[monthKey]*domain.MonthlyWorkload
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{rows: make(map[monthKey]*domain.MonthlyWorkload)}
}

// Apply accumulates the event into the trainer-month row. ADD creates the
// row on first use; DELETE without an existing row is a no-op and DELETE
// never takes the total below zero.
func (s *Store) Apply(_ context.Context, event domain.WorkloadEvent) error {
	key := monthKey{
		username: event.TrainerUsername,
		year:     event.TrainingDate.Year,
		month:    int(event.TrainingDate.Month),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[key]
	switch event.ActionType {
	case domain.ActionAdd:
		if !ok {
			row = &domain.MonthlyWorkload{
				TrainerUsername: key.username,
				Year:            key.year,
				Month:           key.month,
			}
			s.rows[key] = row
		}
		row.TotalDuration += event.TrainingDuration
	case domain.ActionDelete:
		if ok {
			row.TotalDuration -= event.TrainingDuration
			if row.TotalDuration < 0 {
				row.TotalDuration = 0
			}
		}
	}

	// Every event carries the trainer's current profile; refresh it on all
	// of the trainer's rows so the summary snapshot reflects the latest
	// event regardless of which month it targeted.
	for k, r := range s.rows {
		if k.username == event.TrainerUsername {
			r.TrainerFirstName = event.TrainerFirstName
			r.TrainerLastName = event.TrainerLastName
			r.IsActive = event.IsActive
		}
	}
	return nil
}

// MonthlyTotals returns the trainer's rows ascending by year then month.
func (s *Store) MonthlyTotals(_ context.Context, trainerUsername string) ([]domain.MonthlyWorkload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.MonthlyWorkload, 0)
	for key, row := range s.rows {
		if key.username == trainerUsername {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

// TotalsForMonth returns every trainer's row for the given calendar month,
// ascending by trainer username.
func (s *Store) TotalsForMonth(_ context.Context, year, month int) ([]domain.MonthlyWorkload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.MonthlyWorkload, 0)
	for key, row := range s.rows {
		if key.year == year && key.month == month {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TrainerUsername < out[j].TrainerUsername
	})
	return out, nil
}
