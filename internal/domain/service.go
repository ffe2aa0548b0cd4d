package domain

import (
	"context"
	"fmt"
)

// Service orchestrates workload aggregation against the Store.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Apply validates the event and hands it to the store. Validation failures
// are permanent (ErrMalformedEvent); store failures are returned as-is and
// should be treated as retryable by the caller.
func (s *Service) Apply(ctx context.Context, event WorkloadEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if err := s.store.Apply(ctx, event); err != nil {
		return fmt.Errorf("apply workload for trainer %s: %w", event.TrainerUsername, err)
	}
	return nil
}

// Summarize renders the trainer's accumulator rows into the nested
// year-by-month view.
// Returns ErrTrainerNotFound when the trainer has no rows at all.
func (s *Service) Summarize(ctx context.Context, trainerUsername string) (*Summary, error) {
	rows, err := s.store.MonthlyTotals(ctx, trainerUsername)
	if err != nil {
		return nil, fmt.Errorf("load workload for trainer %s: %w", trainerUsername, err)
	}
	if len(rows) == 0 {
		return nil, ErrTrainerNotFound
	}

	// The store refreshes the profile columns on every row of the trainer
	// for each applied event, so any row carries the latest snapshot.
	latest := rows[len(rows)-1]
	summary := &Summary{
		TrainerUsername:  trainerUsername,
		TrainerFirstName: latest.TrainerFirstName,
		TrainerLastName:  latest.TrainerLastName,
		TrainerStatus:    latest.IsActive,
	}

	for _, row := range rows {
		if n := len(summary.Years); n == 0 || summary.Years[n-1].Year != row.Year {
			summary.Years = append(summary.Years, YearSummary{Year: row.Year})
		}
		last := &summary.Years[len(summary.Years)-1]
		last.Months = append(last.Months, MonthSummary{
			Month:         row.Month,
			TotalDuration: row.TotalDuration,
		})
	}
	return summary, nil
}

// MonthlyReport returns every trainer's accumulated minutes for one calendar
// month, ascending by username. Trainers whose total is zero are omitted.
func (s *Service) MonthlyReport(ctx context.Context, year, month int) ([]MonthlyWorkload, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be 1-12, got %d", month)
	}

	rows, err := s.store.TotalsForMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("load workload for %04d-%02d: %w", year, month, err)
	}

	out := make([]MonthlyWorkload, 0, len(rows))
	for _, row := range rows {
		if row.TotalDuration == 0 {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
