package vectorizer

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Throttled decorates a Vectorizer with request rate limiting and bounded
// concurrency for bulk calls. Embedding backends are usually remote APIs
// with per-second quotas; wrapping them here keeps the repository core
// synchronous while the capability itself fans out.
type Throttled struct {
	inner       Vectorizer
	limiter     *rate.Limiter
	concurrency int
}

// ThrottledOption configures a Throttled vectorizer.
type ThrottledOption func(*Throttled)

// WithRateLimit caps calls to the inner vectorizer at rps requests per
// second with the given burst size.
func WithRateLimit(rps float64, burst int) ThrottledOption {
	return func(t *Throttled) {
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithConcurrency bounds the number of in-flight Vectorize calls during
// BulkVectorize. Default: 4.
func WithConcurrency(n int) ThrottledOption {
	return func(t *Throttled) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// NewThrottled wraps inner with the given limits.
func NewThrottled(inner Vectorizer, opts ...ThrottledOption) *Throttled {
	t := &Throttled{
		inner:       inner,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Vectorize waits for the rate limiter, then delegates.
func (t *Throttled) Vectorize(ctx context.Context, text string) ([]float64, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Vectorize(ctx, text)
}

// BulkVectorize fans out per-text Vectorize calls across a bounded worker
// group. Order and length are preserved: result i always belongs to texts[i].
func (t *Throttled) BulkVectorize(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := t.limiter.Wait(ctx); err != nil {
				return err
			}
			vec, err := t.inner.Vectorize(ctx, text)
			if err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

var _ Vectorizer = (*Throttled)(nil)
