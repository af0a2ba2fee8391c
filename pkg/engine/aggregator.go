package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/item-service/pkg/item"
	"github.com/Sternrassler/item-service/pkg/workerpool"
)

// Summary counts the outcomes of a collected run.
type Summary struct {
	Total       int
	Succeeded   int
	NotFound    int
	Interrupted int
	Failed      int
}

// Aggregator joins every unit of a run and merges the outcomes.
type Aggregator struct {
	logger zerolog.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(logger zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Collect waits for every unit of run, regardless of how earlier units ended
// and regardless of ctx, then returns the succeeded items in batch order.
//
// It fails with an *AggregationError if any unit finished without an
// observable outcome, and with the context error if ctx was cancelled
// during the run. It never returns items together with an error.
func (a *Aggregator) Collect(ctx context.Context, run *Run) ([]item.Item, Summary, error) {
	for _, h := range run.handles {
		<-h.Done()
	}

	summary := Summary{Total: len(run.Batch)}
	items := make([]item.Item, 0, len(run.Batch))
	var failures []UnitFailure

	for i, h := range run.handles {
		err := h.Wait(context.Background())
		if errors.Is(err, workerpool.ErrPanicked) {
			failures = append(failures, UnitFailure{Index: i, ID: run.Batch[i], Err: err})
			continue
		}

		out := run.outcomes[i]
		switch out.Kind {
		case KindSucceeded:
			summary.Succeeded++
			items = append(items, *out.Item)
		case KindSkipped:
			if out.Reason == SkipInterrupted {
				summary.Interrupted++
			} else {
				summary.NotFound++
			}
		case KindFailed:
			summary.Failed++
		default:
			failures = append(failures, UnitFailure{Index: i, ID: run.Batch[i], Err: ErrOutcomeMissing})
		}
	}

	if len(failures) > 0 {
		aggErr := &AggregationError{RunID: run.ID, Failures: failures}
		a.logger.Error().Err(aggErr).Str("run_id", run.ID).Msg("Batch aggregation failed")
		return nil, summary, aggErr
	}

	if err := ctx.Err(); err != nil {
		return nil, summary, fmt.Errorf("run %s cancelled: %w", run.ID, err)
	}

	return items, summary, nil
}
