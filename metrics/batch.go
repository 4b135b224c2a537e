package metrics

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/statebench/multiturn/transcript"
)

// DefaultWorkers bounds batch concurrency when the caller passes a
// non-positive worker count.
const DefaultWorkers = 4

// EvaluateAll summarizes a batch of transcripts concurrently and returns
// the summaries in input order. Transcripts share no state, so the fan-out
// needs no coordination beyond the worker limit. The only error source is
// context cancellation.
func (e *Evaluator) EvaluateAll(ctx context.Context, ts []*transcript.Transcript, workers int) ([]*Summary, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	summaries := make([]*Summary, len(ts))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, t := range ts {
		i, t := i, t
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			summaries[i] = e.Summarize(t)
			slog.Debug("evaluated transcript", "index", i, "turns", len(t.TurnResponses))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// EvaluateAll summarizes a batch with the default tables.
func EvaluateAll(ctx context.Context, ts []*transcript.Transcript, workers int) ([]*Summary, error) {
	return defaultEvaluator.EvaluateAll(ctx, ts, workers)
}
