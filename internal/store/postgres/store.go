// Package postgres provides the Postgres-backed workload store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workload/internal/domain"
	"example.com/workload/internal/observability"
)

// Store persists accumulator rows in the trainer_workloads table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Apply accumulates one event into its trainer-month row and refreshes the
// profile columns on all of the trainer's rows, so the newest event always
// carries the summary snapshot even when it targets an earlier month. Both
// statements run in one transaction; the duration update itself is a single
// statement, so concurrent workers cannot lose updates.
func (s *Store) Apply(ctx context.Context, event domain.WorkloadEvent) error {
	year := event.TrainingDate.Year
	month := int(event.TrainingDate.Month)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	switch event.ActionType {
	case domain.ActionAdd:
		const upsert = `INSERT INTO trainer_workloads
            (trainer_username, trainer_first_name, trainer_last_name, is_active, year, month, total_duration, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
            ON CONFLICT (trainer_username, year, month)
            DO UPDATE SET total_duration = trainer_workloads.total_duration + EXCLUDED.total_duration,
                          updated_at = NOW()`
		_, err = tx.Exec(ctx, upsert,
			event.TrainerUsername,
			event.TrainerFirstName,
			event.TrainerLastName,
			event.IsActive,
			year,
			month,
			event.TrainingDuration,
		)
	case domain.ActionDelete:
		// No row means nothing to subtract; the total is floored at zero.
		const update = `UPDATE trainer_workloads
               SET total_duration = GREATEST(0, total_duration - $4),
                   updated_at = NOW()
             WHERE trainer_username = $1 AND year = $2 AND month = $3`
		_, err = tx.Exec(ctx, update,
			event.TrainerUsername,
			year,
			month,
			event.TrainingDuration,
		)
	default:
		return fmt.Errorf("unsupported action type %q", event.ActionType)
	}
	if err != nil {
		return err
	}

	const refresh = `UPDATE trainer_workloads
           SET trainer_first_name = $2,
               trainer_last_name = $3,
               is_active = $4
         WHERE trainer_username = $1`
	if _, err := tx.Exec(ctx, refresh,
		event.TrainerUsername,
		event.TrainerFirstName,
		event.TrainerLastName,
		event.IsActive,
	); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	observability.RecordWorkloadApplied(time.Now().UTC())
	return nil
}

// MonthlyTotals returns the trainer's rows ascending by year then month.
func (s *Store) MonthlyTotals(ctx context.Context, trainerUsername string) ([]domain.MonthlyWorkload, error) {
	const query = `SELECT trainer_username, trainer_first_name, trainer_last_name, is_active, year, month, total_duration
        FROM trainer_workloads
       WHERE trainer_username = $1
       ORDER BY year, month`

	rows, err := s.pool.Query(ctx, query, trainerUsername)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkloads(rows)
}

// TotalsForMonth returns every trainer's row for the given calendar month,
// ascending by trainer username.
func (s *Store) TotalsForMonth(ctx context.Context, year, month int) ([]domain.MonthlyWorkload, error) {
	const query = `SELECT trainer_username, trainer_first_name, trainer_last_name, is_active, year, month, total_duration
        FROM trainer_workloads
       WHERE year = $1 AND month = $2
       ORDER BY trainer_username`

	rows, err := s.pool.Query(ctx, query, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkloads(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanWorkloads(rows pgxRows) ([]domain.MonthlyWorkload, error) {
	out := make([]domain.MonthlyWorkload, 0)
	for rows.Next() {
		var row domain.MonthlyWorkload
		if err := rows.Scan(&row.TrainerUsername, &row.TrainerFirstName, &row.TrainerLastName, &row.IsActive, &row.Year, &row.Month, &row.TotalDuration); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
