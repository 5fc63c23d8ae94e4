package event

import (
	"context"
	"errors"

	"github.com/nao1215/phishguard/internal/model"
)

var (
	// ErrUnsupported is returned when no handler accepts an event.
	ErrUnsupported = errors.New("unsupported event")

	// ErrSkipped is returned when a handler declined to scan, for example
	// because auto-scan is disabled.
	ErrSkipped = errors.New("scan skipped")
)

// Future is the pending verdict of an event handler.
type Future struct {
	done   chan struct{}
	result model.ScanResult
	err    error
}

// Go runs fn in a new goroutine and returns its Future.
func Go(fn func() (model.ScanResult, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.result, f.err = fn()
	}()
	return f
}

// Resolved returns a Future that is already complete.
func Resolved(result model.ScanResult, err error) *Future {
	f := &Future{done: make(chan struct{}), result: result, err: err}
	close(f.done)
	return f
}

// Done is closed when the verdict is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the verdict is available or ctx ends. Cancelling ctx
// stops the wait, not the scan.
func (f *Future) Wait(ctx context.Context) (model.ScanResult, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return model.ScanResult{}, ctx.Err()
	}
}
