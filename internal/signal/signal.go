// Package signal ties process lifetime to SIGINT/SIGTERM and lets critical
// sections defer cancellation until they finish.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu sync.Mutex
	// blockDepth tracks nested BlockSignals calls.
	blockDepth int
	// pendingCancel is the cancellation deferred while blocked.
	pendingCancel context.CancelFunc
)

// WithSignalCancel returns a context cancelled on SIGINT or SIGTERM. Call
// the returned cancel to release the watcher when done.
func WithSignalCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigc)
		select {
		case <-sigc:
			mu.Lock()
			if blockDepth > 0 {
				// Deliver once the critical section ends.
				pendingCancel = cancel
				mu.Unlock()
				return
			}
			mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// BlockSignals holds back signal-driven cancellation, e.g. while a cache
// migration is mid-flight. Calls nest; pair each with UnblockSignals.
func BlockSignals() {
	mu.Lock()
	defer mu.Unlock()
	blockDepth++
}

// UnblockSignals re-enables cancellation, delivering any signal that
// arrived while blocked.
func UnblockSignals() {
	mu.Lock()
	defer mu.Unlock()
	if blockDepth > 0 {
		blockDepth--
	}
	if blockDepth == 0 && pendingCancel != nil {
		pendingCancel()
		pendingCancel = nil
	}
}
