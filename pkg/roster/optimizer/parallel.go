package optimizer

import (
	"context"

	"github.com/paiban/roster/pkg/roster/constraint"
	"golang.org/x/sync/errgroup"
)

// scoredNeighbour is one candidate move plus the whole-roster evaluation
// it produced.
type scoredNeighbour struct {
	ctx    *constraint.Context
	move   Move
	result *constraint.Result
}

// ParallelEvaluator scores a batch of candidate neighbour contexts
// concurrently, bounded at workers in flight.
type ParallelEvaluator struct {
	workers int
}

// NewParallelEvaluator builds an evaluator capped at workers concurrent
// Manager.Evaluate calls.
func NewParallelEvaluator(workers int) *ParallelEvaluator {
	if workers <= 0 {
		workers = 4
	}
	return &ParallelEvaluator{workers: workers}
}

// Evaluate runs manager.Evaluate over every neighbour in batch,
// returning a result slice in the same order. Entries whose evaluation
// was skipped due to ctx cancellation carry a nil result.
func (p *ParallelEvaluator) Evaluate(ctx context.Context, batch []neighbour, manager *constraint.Manager) []scoredNeighbour {
	out := make([]scoredNeighbour, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, n := range batch {
		i, n := i, n
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			out[i] = scoredNeighbour{ctx: n.ctx, move: n.move, result: manager.Evaluate(n.ctx)}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// pickBest returns the lowest-penalty scored neighbour, or nil if every
// entry was skipped.
func pickBest(scored []scoredNeighbour) *scoredNeighbour {
	var best *scoredNeighbour
	for i := range scored {
		s := &scored[i]
		if s.result == nil {
			continue
		}
		if best == nil || s.result.TotalPenalty < best.result.TotalPenalty {
			best = s
		}
	}
	return best
}
