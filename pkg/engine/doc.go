// Package engine runs batch item processing: every stored item is moved to
// status "PROCESSED" in parallel on a worker pool, and the items that made it
// are returned in batch order.
//
// A run has four stages:
//
//   - Snapshot: the IDs are read once from the store; later store changes do
//     not affect the run
//   - Dispatch: one pool task per ID, each owning its own outcome slot
//   - Process: per ID, wait the configured delay, fetch, set status, save
//   - Collect: wait for every task, then keep the succeeded items in order
//
// Per-item problems never fail a run. A missing item is skipped, a failed
// save is logged and dropped, and a cancelled task is skipped. Only a
// rejected submission (DispatchError), a task whose outcome cannot be read
// (AggregationError), or cancellation of the caller's context fail the whole
// run, and then no items are returned.
//
// Example usage:
//
//	pool := workerpool.New(workerpool.DefaultConfig(), logger)
//	defer pool.Shutdown(context.Background())
//
//	eng := engine.New(itemStore, pool, engine.DefaultConfig(), logger)
//	processed, err := eng.RunBatch(ctx)
package engine
