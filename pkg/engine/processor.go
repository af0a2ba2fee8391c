package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/item-service/pkg/item"
	"github.com/Sternrassler/item-service/pkg/store"
)

// DefaultDelay is the simulated per-item latency.
const DefaultDelay = 100 * time.Millisecond

// Processor turns one item ID into one Outcome.
type Processor struct {
	store  store.Store
	delay  time.Duration
	logger zerolog.Logger
}

// NewProcessor creates a processor. A negative delay is treated as zero.
func NewProcessor(s store.Store, delay time.Duration, logger zerolog.Logger) *Processor {
	if delay < 0 {
		delay = 0
	}
	return &Processor{
		store:  s,
		delay:  delay,
		logger: logger,
	}
}

// Process waits the configured delay, loads the item, marks it processed and
// saves it. It never returns an error: every problem becomes a Skipped or
// Failed outcome. Cancellation of ctx yields an interrupted skip whose Err is
// the context error.
func (p *Processor) Process(ctx context.Context, id int64) Outcome {
	start := time.Now()
	out := p.process(ctx, id)

	itemDuration.WithLabelValues(out.label()).Observe(time.Since(start).Seconds())
	batchOutcomesTotal.WithLabelValues(out.label()).Inc()
	return out
}

func (p *Processor) process(ctx context.Context, id int64) Outcome {
	logger := p.logger.With().
		Str("run_id", runIDFrom(ctx)).
		Int64("item_id", id).
		Logger()

	if err := p.wait(ctx); err != nil {
		logger.Warn().Err(err).Str("stage", "delay").Msg("Item processing interrupted")
		return Skipped(id, SkipInterrupted, err)
	}

	it, err := p.store.FindByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Debug().Msg("Item not found, skipping")
		return Skipped(id, SkipNotFound, nil)
	case cancelled(ctx, err):
		logger.Warn().Err(err).Str("stage", "fetch").Msg("Item processing interrupted")
		return Skipped(id, SkipInterrupted, ctx.Err())
	case err != nil:
		logger.Error().Err(err).Msg("Item fetch failed")
		return Failed(id, fmt.Errorf("fetch item %d: %w", id, err))
	}

	it.Status = item.StatusProcessed

	saved, err := p.store.Save(ctx, it)
	switch {
	case cancelled(ctx, err):
		logger.Warn().Err(err).Str("stage", "save").Msg("Item processing interrupted")
		return Skipped(id, SkipInterrupted, ctx.Err())
	case err != nil:
		logger.Error().Err(err).Msg("Item save failed")
		return Failed(id, fmt.Errorf("save item %d: %w", id, err))
	}

	logger.Debug().Msg("Item processed")
	return Succeeded(saved)
}

// wait blocks for the configured delay or until ctx is done
func (p *Processor) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cancelled reports whether err was caused by ctx ending.
func cancelled(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
