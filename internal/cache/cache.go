// Package cache provides a best-effort read cache for trainer summaries.
// The aggregate store stays the source of truth; every applied event
// invalidates the trainer's cached summary.
package cache

import (
	"context"
	"log"

	"example.com/workload/internal/domain"
)

// SummaryCache stores rendered summaries keyed by trainer username.
type SummaryCache interface {
	Get(ctx context.Context, trainerUsername string) (*domain.Summary, bool)
	Set(ctx context.Context, trainerUsername string, summary *domain.Summary) error
	Invalidate(ctx context.Context, trainerUsername string) error
}

// Noop is a no-op cache: every read misses.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) (*domain.Summary, bool) { return nil, false }

// Set performs no action.
func (Noop) Set(context.Context, string, *domain.Summary) error { return nil }

// Invalidate performs no action.
func (Noop) Invalidate(context.Context, string) error { return nil }

type summarizer interface {
	Summarize(ctx context.Context, trainerUsername string) (*domain.Summary, error)
}

// CachedSummarizer serves summaries through the cache. Not-found results are
// never cached, so a trainer's first event becomes visible immediately.
type CachedSummarizer struct {
	next   summarizer
	cache  SummaryCache
	logger *log.Logger
}

// NewCachedSummarizer wraps a summarizer with the cache.
func NewCachedSummarizer(next summarizer, c SummaryCache) *CachedSummarizer {
	return &CachedSummarizer{
		next:   next,
		cache:  c,
		logger: log.New(log.Writer(), "[cache] ", log.LstdFlags),
	}
}

// Summarize returns the cached summary when present, otherwise loads from
// the store and caches the result.
func (s *CachedSummarizer) Summarize(ctx context.Context, trainerUsername string) (*domain.Summary, error) {
	if summary, ok := s.cache.Get(ctx, trainerUsername); ok {
		return summary, nil
	}

	summary, err := s.next.Summarize(ctx, trainerUsername)
	if err != nil {
		return nil, err
	}
	if setErr := s.cache.Set(ctx, trainerUsername, summary); setErr != nil {
		s.logger.Printf("set failed for trainer %s: %v", trainerUsername, setErr)
	}
	return summary, nil
}

type applier interface {
	Apply(ctx context.Context, event domain.WorkloadEvent) error
}

// InvalidatingApplier invalidates the trainer's cached summary after every
// successful apply. Invalidation failures are logged, not propagated: the
// store write already happened and must stay acknowledged.
type InvalidatingApplier struct {
	next   applier
	cache  SummaryCache
	logger *log.Logger
}

// NewInvalidatingApplier wraps an applier with cache invalidation.
func NewInvalidatingApplier(next applier, c SummaryCache) *InvalidatingApplier {
	return &InvalidatingApplier{
		next:   next,
		cache:  c,
		logger: log.New(log.Writer(), "[cache] ", log.LstdFlags),
	}
}

// Apply delegates to the wrapped applier and then drops the stale summary.
func (a *InvalidatingApplier) Apply(ctx context.Context, event domain.WorkloadEvent) error {
	if err := a.next.Apply(ctx, event); err != nil {
		return err
	}
	if err := a.cache.Invalidate(ctx, event.TrainerUsername); err != nil {
		a.logger.Printf("invalidate failed for trainer %s: %v", event.TrainerUsername, err)
	}
	return nil
}
