package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workload/internal/domain"
)

func addEvent(minutes int) domain.WorkloadEvent {
	return domain.WorkloadEvent{
		TrainerUsername:  "john.doe",
		TrainerFirstName: "John",
		TrainerLastName:  "Doe",
		IsActive:         true,
		TrainingDate:     domain.NewCivilDate(2025, time.January, 15),
		TrainingDuration: minutes,
		ActionType:       domain.ActionAdd,
	}
}

func TestConcurrentAddsConverge(t *testing.T) {
	const workers = 32
	const minutes = 10

	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, store.Apply(ctx, addEvent(minutes)))
		}()
	}
	wg.Wait()

	rows, err := store.MonthlyTotals(ctx, "john.doe")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, workers*minutes, rows[0].TotalDuration)
}

func TestDeleteWithoutRowIsNoOp(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	ev := addEvent(45)
	ev.ActionType = domain.ActionDelete
	require.NoError(t, store.Apply(ctx, ev))

	rows, err := store.MonthlyTotals(ctx, "john.doe")
	require.NoError(t, err)
	require.Empty(t, rows, "delete must not create a row")
}

func TestDeleteNeverGoesNegative(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Apply(ctx, addEvent(60)))

	del := addEvent(90)
	del.ActionType = domain.ActionDelete
	require.NoError(t, store.Apply(ctx, del))

	rows, err := store.MonthlyTotals(ctx, "john.doe")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 0, rows[0].TotalDuration)
}

func TestMonthlyTotalsOrderedByYearThenMonth(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	dates := []domain.CivilDate{
		domain.NewCivilDate(2026, time.February, 1),
		domain.NewCivilDate(2025, time.November, 1),
		domain.NewCivilDate(2026, time.January, 1),
		domain.NewCivilDate(2025, time.March, 1),
	}
	for _, date := range dates {
		ev := addEvent(30)
		ev.TrainingDate = date
		require.NoError(t, store.Apply(ctx, ev))
	}

	rows, err := store.MonthlyTotals(ctx, "john.doe")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	type ym struct{ year, month int }
	got := make([]ym, 0, len(rows))
	for _, row := range rows {
		got = append(got, ym{row.Year, row.Month})
	}
	require.Equal(t, []ym{{2025, 3}, {2025, 11}, {2026, 1}, {2026, 2}}, got)
}

func TestProfileRefreshCoversEveryRow(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	feb := addEvent(60)
	feb.TrainingDate = domain.NewCivilDate(2025, time.February, 10)
	require.NoError(t, store.Apply(ctx, feb))

	backdated := addEvent(30)
	backdated.TrainerLastName = "Doe-Smith"
	backdated.IsActive = false
	require.NoError(t, store.Apply(ctx, backdated))

	rows, err := store.MonthlyTotals(ctx, "john.doe")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, "Doe-Smith", row.TrainerLastName)
		require.False(t, row.IsActive)
	}
}

func TestTrainersAreIsolated(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Apply(ctx, addEvent(60)))

	other := addEvent(45)
	other.TrainerUsername = "jane.roe"
	require.NoError(t, store.Apply(ctx, other))

	rows, err := store.MonthlyTotals(ctx, "jane.roe")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 45, rows[0].TotalDuration)
}
