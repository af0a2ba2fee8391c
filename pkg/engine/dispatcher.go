package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/item-service/pkg/workerpool"
)

// Submitter is the part of the worker pool the dispatcher needs.
type Submitter interface {
	Submit(ctx context.Context, task workerpool.Task) (*workerpool.Handle, error)
}

// Run is one dispatched batch. handles[i] and outcomes[i] belong to batch[i];
// outcomes[i] is written only by the unit for batch[i].
type Run struct {
	ID       string
	Batch    []int64
	handles  []*workerpool.Handle
	outcomes []Outcome
}

// Dispatcher submits one pool task per ID.
type Dispatcher struct {
	pool      Submitter
	processor *Processor
	logger    zerolog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(pool Submitter, processor *Processor, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		pool:      pool,
		processor: processor,
		logger:    logger,
	}
}

// Dispatch copies batch and submits one unit per ID in a single pass.
// Repeated IDs are dropped, keeping the first occurrence. If the pool
// rejects a submission it returns a *DispatchError immediately; units
// already submitted are left running.
func (d *Dispatcher) Dispatch(ctx context.Context, runID string, batch []int64) (*Run, error) {
	unique := uniqueIDs(batch)
	if dropped := len(batch) - len(unique); dropped > 0 {
		d.logger.Warn().
			Str("run_id", runID).
			Int("duplicates", dropped).
			Msg("Dropped duplicate IDs from batch")
	}

	run := &Run{
		ID:       runID,
		Batch:    unique,
		handles:  make([]*workerpool.Handle, 0, len(unique)),
		outcomes: make([]Outcome, len(unique)),
	}
	ctx = withRunID(ctx, runID)

	for i, id := range run.Batch {
		h, err := d.pool.Submit(ctx, d.unit(run, i, id))
		if err != nil {
			d.logger.Error().
				Err(err).
				Str("run_id", runID).
				Int64("item_id", id).
				Int("submitted", i).
				Int("batch_size", len(run.Batch)).
				Msg("Batch dispatch rejected")
			return nil, &DispatchError{
				RunID:     runID,
				Index:     i,
				ID:        id,
				Submitted: i,
				Err:       err,
			}
		}
		run.handles = append(run.handles, h)
	}

	d.logger.Debug().
		Str("run_id", runID).
		Int("units", len(run.handles)).
		Msg("Batch dispatched")

	return run, nil
}

// unit wraps one Process call. Interruptions are returned to the pool so its
// bookkeeping sees them; every other outcome is data only.
func (d *Dispatcher) unit(run *Run, index int, id int64) workerpool.Task {
	return func(ctx context.Context) error {
		out := d.processor.Process(ctx, id)
		run.outcomes[index] = out
		if out.Interrupted() {
			return out.Err
		}
		return nil
	}
}

// uniqueIDs returns a copy of ids without repeats, in first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
