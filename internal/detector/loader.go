package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotReady is returned by Loader.Detector while the estimator is not usable.
var ErrNotReady = errors.New("estimator not ready")

// Status is the lifecycle state of an estimator being loaded.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// OpenFunc constructs and warms up a Detector.
type OpenFunc func(ctx context.Context) (Detector, error)

// Loader initializes an estimator in the background and exposes its status.
type Loader struct {
	mu       sync.RWMutex
	status   Status
	err      error
	detector Detector
	done     chan struct{}
}

// NewLoader creates an idle Loader.
func NewLoader() *Loader {
	return &Loader{status: StatusIdle}
}

// Start begins loading. open runs in its own goroutine; if it has not
// returned within timeout the load is marked failed and a late result is
// closed. Calling Start on a loader that is not idle is a no-op.
func (l *Loader) Start(ctx context.Context, open OpenFunc, timeout time.Duration) {
	l.mu.Lock()
	if l.status != StatusIdle {
		l.mu.Unlock()
		return
	}
	l.status = StatusLoading
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	loadCtx, cancel := context.WithTimeout(ctx, timeout)

	type result struct {
		d   Detector
		err error
	}
	results := make(chan result, 1)

	go func() {
		d, err := open(loadCtx)
		results <- result{d, err}
	}()

	go func() {
		defer cancel()
		defer close(done)

		select {
		case r := <-results:
			l.settle(r.d, r.err)
		case <-loadCtx.Done():
			l.settle(nil, fmt.Errorf("load estimator: %w", loadCtx.Err()))
			go func() {
				if r := <-results; r.d != nil {
					r.d.Close()
				}
			}()
		}
	}()
}

// Use installs an already constructed detector and marks the loader ready.
func (l *Loader) Use(d Detector) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detector = d
	l.err = nil
	l.status = StatusReady
}

func (l *Loader) settle(d Detector, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil && d == nil {
		err = errors.New("load estimator: no detector returned")
	}
	if err != nil {
		l.status = StatusFailed
		l.err = err
		return
	}
	l.detector = d
	l.status = StatusReady
}

// Status returns the current status and, when failed, the cause.
func (l *Loader) Status() (Status, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status, l.err
}

// Wait blocks until loading settles or ctx is done.
func (l *Loader) Wait(ctx context.Context) (Status, error) {
	l.mu.RLock()
	done := l.done
	l.mu.RUnlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return StatusLoading, ctx.Err()
		}
	}
	return l.Status()
}

// Detector returns the loaded detector or ErrNotReady.
func (l *Loader) Detector() (Detector, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.status != StatusReady {
		return nil, ErrNotReady
	}
	return l.detector, nil
}

// Close releases the loaded detector, if any.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.detector == nil {
		return nil
	}
	err := l.detector.Close()
	l.detector = nil
	l.status = StatusIdle
	return err
}
