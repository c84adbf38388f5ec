package shared

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// SetupSignalHandlerWithLogger returns a context that is cancelled on the
// first interrupt, logging the signal. A second interrupt exits immediately.
// Call stop to release the handler.
func SetupSignalHandlerWithLogger(parent context.Context, logger zerolog.Logger) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("Received signal, stopping after the current batch")
			cancel()
		case <-done:
			return
		}
		select {
		case sig := <-sigChan:
			logger.Warn().Str("signal", sig.String()).Msg("Received second signal, exiting")
			os.Exit(130)
		case <-done:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
			cancel()
		})
	}
}
