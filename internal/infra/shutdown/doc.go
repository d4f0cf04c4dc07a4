// Package shutdown turns termination signals into context cancellation.
//
// The first SIGINT or SIGTERM cancels the run context so open cursors and
// the database are released on the normal return path. A second signal
// exits immediately.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background(), logger.Default())
//	defer stop()
package shutdown
