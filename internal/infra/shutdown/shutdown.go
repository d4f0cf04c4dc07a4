package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
)

// ExitInterrupted is the exit status used when a second signal forces exit.
const ExitInterrupted = 130

// exit is replaced in tests.
var exit = os.Exit

// WithSignals returns a context canceled by the first SIGINT or SIGTERM.
// The returned stop function releases the signal handler.
func WithSignals(parent context.Context, log logger.Logger) (context.Context, context.CancelFunc) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctx, stop := watch(parent, sigCh, log)
	return ctx, func() {
		signal.Stop(sigCh)
		stop()
	}
}

func watch(parent context.Context, sigCh <-chan os.Signal, log logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stopped := make(chan struct{})
	var once sync.Once

	go func() {
		select {
		case sig := <-sigCh:
			log.Warn("signal received, stopping validation", "signal", sig.String())
			cancel()
		case <-stopped:
			return
		}

		select {
		case sig := <-sigCh:
			log.Error("second signal received, exiting", "signal", sig.String())
			exit(ExitInterrupted)
		case <-stopped:
		}
	}()

	return ctx, func() {
		once.Do(func() { close(stopped) })
		cancel()
	}
}
