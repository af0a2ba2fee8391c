package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/item-service/pkg/engine"
	"github.com/Sternrassler/item-service/pkg/item"
	"github.com/Sternrassler/item-service/pkg/logging"
	"github.com/Sternrassler/item-service/pkg/store"
	"github.com/Sternrassler/item-service/pkg/workerpool"
)

// processOutput is the JSON document printed by the process command.
type processOutput struct {
	RunID       string      `json:"run_id"`
	Total       int         `json:"total"`
	Succeeded   int         `json:"succeeded"`
	NotFound    int         `json:"not_found"`
	Interrupted int         `json:"interrupted"`
	Failed      int         `json:"failed"`
	DurationMS  int64       `json:"duration_ms"`
	Items       []item.Item `json:"items"`
}

func newProcessCmd(a *app) *cobra.Command {
	var seed int

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run one batch over all stored items and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.process(cmd.Context(), seed)
		},
	}

	cmd.Flags().IntVar(&seed, "seed", 0, "create this many demo items before processing")
	return cmd
}

func (a *app) process(ctx context.Context, seed int) error {
	itemStore, closeStore, err := openStore(ctx, a.cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := seedItems(ctx, itemStore, seed); err != nil {
		return err
	}

	pool := workerpool.New(a.cfg.WorkerPool(), logging.NewLogger("pool"))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := pool.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Msg("Worker pool shutdown incomplete")
		}
	}()

	eng := engine.New(itemStore, pool, a.cfg.BatchEngine(), logging.NewLogger("engine"))

	report, err := eng.RunBatchWithSummary(ctx)
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}

	out := processOutput{
		RunID:       report.RunID,
		Total:       report.Summary.Total,
		Succeeded:   report.Summary.Succeeded,
		NotFound:    report.Summary.NotFound,
		Interrupted: report.Summary.Interrupted,
		Failed:      report.Summary.Failed,
		DurationMS:  report.Duration.Milliseconds(),
		Items:       report.Items,
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func seedItems(ctx context.Context, s store.Store, n int) error {
	for i := 1; i <= n; i++ {
		_, err := s.Save(ctx, item.Item{
			Name:        fmt.Sprintf("Item %d", i),
			Description: "seeded",
			Status:      "PENDING",
			Email:       fmt.Sprintf("item%d@example.com", i),
		})
		if err != nil {
			return fmt.Errorf("seed item %d: %w", i, err)
		}
	}
	return nil
}
