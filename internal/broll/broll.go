// Package broll finds ranked cutaway candidates for B-roll script segments.
package broll

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mgpai22/cutaway/internal/logging"
	"github.com/mgpai22/cutaway/internal/timeline"
	"golang.org/x/sync/errgroup"
)

// Searcher returns candidates for a query, best ranked first.
type Searcher interface {
	Search(ctx context.Context, query string) ([]timeline.Candidate, error)
}

// RetryPolicy bounds how often a failed search is attempted.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration // wait before the second attempt, doubled after each failure
}

// DefaultRetryPolicy tries each search up to three times.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 500 * time.Millisecond}
}

// StatusError is a search rejected by the provider with a non-200 response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search failed: %s: %s", e.Status, e.Body)
}

// Retryable reports whether the same request may succeed later: rate
// limiting and server errors. Other 4xx responses (bad key, bad query) will
// not.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// SearchWithRetry runs s.Search until it succeeds, the attempts run out or
// ctx is done. A *StatusError that is not retryable ends it at once. It
// returns the last search error when every attempt failed.
func SearchWithRetry(
	ctx context.Context,
	s Searcher,
	query string,
	policy RetryPolicy,
) ([]timeline.Candidate, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	wait := policy.Backoff
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		candidates, err := s.Search(ctx, query)
		if err == nil {
			return candidates, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, fmt.Errorf("search %q rejected: %w", query, err)
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	return nil, fmt.Errorf("search %q failed after %d attempts: %w", query, attempts, lastErr)
}

// options for SearchAll
type Options struct {
	Concurrency int
	Retry       RetryPolicy
	Logger      *logging.Logger
}

// SearchAll looks up candidates for every B-roll segment, at most
// Concurrency searches at a time. The result has one entry per segment;
// narration segments and searches that kept failing get no candidates. Only
// cancellation of ctx is returned as an error.
func SearchAll(
	ctx context.Context,
	s Searcher,
	segments []timeline.ScriptSegment,
	opts Options,
) ([][]timeline.Candidate, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	results := make([][]timeline.Candidate, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, seg := range segments {
		if !seg.IsBRoll || seg.Query == "" {
			continue
		}
		g.Go(func() error {
			log := logger.With("segment", i, "query", seg.Query)
			candidates, err := SearchWithRetry(gctx, s, seg.Query, opts.Retry)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.Warnw("B-roll search failed, continuing without footage", "error", err)
				return nil
			}
			log.Debugw("B-roll candidates found", "count", len(candidates))
			results[i] = candidates
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
