package resolver

import (
	"context"
	"sync"

	"github.com/nao1215/litfeed/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchFunc receives the outcome of one resolution in a batch.
type BatchFunc func(c model.PageCandidate, doc *model.Document, err error)

// ResolveBatch resolves candidates concurrently, at most the configured
// concurrency at a time, and calls fn once per candidate in completion order.
// Calls to fn are serialized, so fn needs no locking of its own.
//
// Individual resolution failures are passed to fn and never abort the batch;
// the returned error is non-nil only when ctx is cancelled.
//
// Design decision: each resolution stays sequential internally because every
// recursion step depends on the previous fetch. Only independent candidates
// run in parallel.
func (r *Resolver) ResolveBatch(ctx context.Context, candidates []model.PageCandidate, fn BatchFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	var mu sync.Mutex
	for _, c := range candidates {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			doc, err := r.Resolve(ctx, c)
			if err != nil {
				r.logger.Debug("candidate rejected",
					"identifier", c.Identifier,
					"language", c.Language,
					"error", err,
				)
			}

			mu.Lock()
			defer mu.Unlock()
			fn(c, doc, err)
			return nil
		})
	}
	return g.Wait()
}
