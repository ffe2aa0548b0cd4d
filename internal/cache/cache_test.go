package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/workload/internal/domain"
)

type fakeCache struct {
	entries     map[string]*domain.Summary
	sets        int
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*domain.Summary)}
}

func (f *fakeCache) Get(_ context.Context, username string) (*domain.Summary, bool) {
	summary, ok := f.entries[username]
	return summary, ok
}

func (f *fakeCache) Set(_ context.Context, username string, summary *domain.Summary) error {
	f.sets++
	f.entries[username] = summary
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, username string) error {
	f.invalidated = append(f.invalidated, username)
	delete(f.entries, username)
	return nil
}

type fakeSummarizer struct {
	calls   int
	summary *domain.Summary
	err     error
}

func (f *fakeSummarizer) Summarize(context.Context, string) (*domain.Summary, error) {
	f.calls++
	return f.summary, f.err
}

type fakeApplier struct {
	calls int
	err   error
}

func (f *fakeApplier) Apply(context.Context, domain.WorkloadEvent) error {
	f.calls++
	return f.err
}

func TestCachedSummarizerPopulatesOnMiss(t *testing.T) {
	source := &fakeSummarizer{summary: &domain.Summary{TrainerUsername: "john.doe"}}
	c := newFakeCache()
	s := NewCachedSummarizer(source, c)

	got, err := s.Summarize(context.Background(), "john.doe")
	require.NoError(t, err)
	require.Equal(t, "john.doe", got.TrainerUsername)
	require.Equal(t, 1, source.calls)
	require.Equal(t, 1, c.sets)

	// Second read served from cache.
	_, err = s.Summarize(context.Background(), "john.doe")
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)
}

func TestCachedSummarizerDoesNotCacheNotFound(t *testing.T) {
	source := &fakeSummarizer{err: domain.ErrTrainerNotFound}
	c := newFakeCache()
	s := NewCachedSummarizer(source, c)

	_, err := s.Summarize(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrTrainerNotFound)
	require.Zero(t, c.sets)

	// The next read hits the source again, so a first event becomes
	// visible immediately.
	_, err = s.Summarize(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrTrainerNotFound)
	require.Equal(t, 2, source.calls)
}

func TestInvalidatingApplierDropsStaleSummary(t *testing.T) {
	applier := &fakeApplier{}
	c := newFakeCache()
	c.entries["john.doe"] = &domain.Summary{TrainerUsername: "john.doe"}

	wrapped := NewInvalidatingApplier(applier, c)
	event := domain.WorkloadEvent{TrainerUsername: "john.doe"}

	require.NoError(t, wrapped.Apply(context.Background(), event))
	require.Equal(t, 1, applier.calls)
	require.Equal(t, []string{"john.doe"}, c.invalidated)
}

func TestInvalidatingApplierSkipsInvalidationOnFailure(t *testing.T) {
	applier := &fakeApplier{err: errors.New("store down")}
	c := newFakeCache()

	wrapped := NewInvalidatingApplier(applier, c)
	err := wrapped.Apply(context.Background(), domain.WorkloadEvent{TrainerUsername: "john.doe"})
	require.Error(t, err)
	require.Empty(t, c.invalidated)
}
