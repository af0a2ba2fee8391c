package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/item-service/pkg/item"
	"github.com/Sternrassler/item-service/pkg/store"
)

// Config holds engine configuration
type Config struct {
	// Delay is the simulated per-item latency, spent on the worker
	Delay time.Duration
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		Delay: DefaultDelay,
	}
}

// Report describes one completed run.
type Report struct {
	RunID    string
	Items    []item.Item
	Summary  Summary
	Duration time.Duration
}

// Engine runs batch processing over a store using a shared worker pool.
// It keeps no per-run state, so concurrent and repeated runs are independent.
type Engine struct {
	store      store.Store
	dispatcher *Dispatcher
	aggregator *Aggregator
	logger     zerolog.Logger
}

// New creates an engine. The pool is owned by the caller, who must shut it
// down at teardown.
func New(s store.Store, pool Submitter, config Config, logger zerolog.Logger) *Engine {
	processor := NewProcessor(s, config.Delay, logger)
	return &Engine{
		store:      s,
		dispatcher: NewDispatcher(pool, processor, logger),
		aggregator: NewAggregator(logger),
		logger:     logger,
	}
}

// RunBatch processes every item currently in the store and returns the
// processed items in ID order.
func (e *Engine) RunBatch(ctx context.Context) ([]item.Item, error) {
	report, err := e.RunBatchWithSummary(ctx)
	if err != nil {
		return nil, err
	}
	return report.Items, nil
}

// RunBatchWithSummary is RunBatch returning the full run report.
func (e *Engine) RunBatchWithSummary(ctx context.Context) (*Report, error) {
	ids, err := e.store.ListIDs(ctx)
	if err != nil {
		batchRunsTotal.WithLabelValues("snapshot_error").Inc()
		return nil, fmt.Errorf("snapshot item ids: %w", err)
	}
	return e.run(ctx, ids)
}

// RunIDs processes the given IDs and returns the processed items in the
// order of ids.
func (e *Engine) RunIDs(ctx context.Context, ids []int64) ([]item.Item, error) {
	report, err := e.run(ctx, ids)
	if err != nil {
		return nil, err
	}
	return report.Items, nil
}

func (e *Engine) run(ctx context.Context, ids []int64) (*Report, error) {
	start := time.Now()
	runID := ulid.Make().String()
	batchSize.Observe(float64(len(ids)))

	e.logger.Info().
		Str("run_id", runID).
		Int("batch_size", len(ids)).
		Msg("Starting batch run")

	run, err := e.dispatcher.Dispatch(ctx, runID, ids)
	if err != nil {
		batchRunsTotal.WithLabelValues("dispatch_error").Inc()
		return nil, err
	}

	items, summary, err := e.aggregator.Collect(ctx, run)
	duration := time.Since(start)
	batchDuration.Observe(duration.Seconds())

	if err != nil {
		var aggErr *AggregationError
		if errors.As(err, &aggErr) {
			batchRunsTotal.WithLabelValues("aggregation_error").Inc()
		} else {
			batchRunsTotal.WithLabelValues("cancelled").Inc()
			e.logger.Warn().Err(err).Str("run_id", runID).Msg("Batch run cancelled")
		}
		return nil, err
	}
	batchRunsTotal.WithLabelValues("ok").Inc()

	e.logger.Info().
		Str("run_id", runID).
		Int("batch_size", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("not_found", summary.NotFound).
		Int("interrupted", summary.Interrupted).
		Int("failed", summary.Failed).
		Dur("duration", duration).
		Msg("Batch run complete")

	return &Report{
		RunID:    runID,
		Items:    items,
		Summary:  summary,
		Duration: duration,
	}, nil
}

type runIDKey struct{}

func withRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

func runIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
