// Package workerpool provides a fixed-size goroutine pool with per-task
// completion handles and an explicit, graceful shutdown.
//
// The pool is an owned resource: create it once at startup and shut it down
// once at teardown. Workers that are never shut down stay parked forever.
//
// Example usage:
//
//	pool := workerpool.New(workerpool.DefaultConfig(), logger)
//	defer pool.Shutdown(context.Background())
//
//	h, err := pool.Submit(ctx, func(ctx context.Context) error {
//		return doWork(ctx)
//	})
//	if err != nil {
//		// errors.Is(err, workerpool.ErrRejected): pool closed or queue full
//	}
//	err = h.Wait(ctx)
//
// The pool:
//   - Starts Config.Workers goroutines (default 10) at construction
//   - Queues submissions without blocking the caller
//   - Rejects submissions after Shutdown, or when a bounded queue is full
//   - Gives every task its own context, cancellable per handle
//   - Converts task panics into PanicError instead of crashing the process
//   - Counts tasks that stopped on context cancellation as interrupted
package workerpool
