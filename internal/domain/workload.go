package domain

import "context"

// MonthlyWorkload is the accumulator row: total training minutes for one
// trainer in one calendar month, plus the latest profile snapshot.
type MonthlyWorkload struct {
	TrainerUsername  string
	TrainerFirstName string
	TrainerLastName  string
	IsActive         bool
	Year             int
	Month            int
	TotalDuration    int
}

// Store owns the accumulator state. Apply must be atomic per
// (trainer, year, month) so concurrent workers never lose updates,
// all-or-nothing per event, and must refresh the profile columns on all of
// the trainer's rows so the latest event always wins the snapshot.
type Store interface {
	Apply(ctx context.Context, event WorkloadEvent) error
	MonthlyTotals(ctx context.Context, trainerUsername string) ([]MonthlyWorkload, error)
	TotalsForMonth(ctx context.Context, year, month int) ([]MonthlyWorkload, error)
}

// Summary is the read-side projection: per-year, per-month totals for one
// trainer, ascending by year then month.
type Summary struct {
	TrainerUsername  string
	TrainerFirstName string
	TrainerLastName  string
	TrainerStatus    bool
	Years            []YearSummary
}

// YearSummary groups the months of a single year.
type YearSummary struct {
	Year   int
	Months []MonthSummary
}

// MonthSummary carries the accumulated duration for one month.
type MonthSummary struct {
	Month         int
	TotalDuration int
}
