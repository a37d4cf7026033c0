package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/lectrec/internal/domain"
	"github.com/bft-labs/lectrec/internal/ports"
)

// ShutdownTimeout is the default time Shutdown waits for pending work.
const ShutdownTimeout = 30 * time.Second

// State represents the lifecycle state of the file service.
type State int

const (
	StateRunning State = iota
	StateStopping
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Lifecycle tracks the service state and the background operations in
// flight, per recording.
type Lifecycle struct {
	mu      sync.Mutex
	state   State
	wg      sync.WaitGroup
	pending map[*domain.Recording]*pendingOps
	logger  ports.Logger
}

type pendingOps struct {
	n    int
	idle chan struct{}
}

// NewLifecycle creates a lifecycle in the running state.
func NewLifecycle(logger ports.Logger) *Lifecycle {
	return &Lifecycle{
		state:   StateRunning,
		pending: make(map[*domain.Recording]*pendingOps),
		logger:  logger,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// TransitionTo moves forward to newState. States only advance:
// Running, Stopping, Stopped.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state
	if newState <= oldState {
		l.mu.Unlock()
		return domain.ErrServiceStopped
	}
	l.state = newState
	l.mu.Unlock()

	l.logger.Info("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)
	return nil
}

// Begin registers a background operation on rec. rec may be nil for work
// that is not tied to a recording yet. Every successful Begin must be
// paired with End.
func (l *Lifecycle) Begin(rec *domain.Recording) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRunning {
		return domain.ErrServiceStopped
	}
	l.wg.Add(1)
	if rec == nil {
		return nil
	}
	p := l.pending[rec]
	if p == nil {
		p = &pendingOps{idle: make(chan struct{})}
		l.pending[rec] = p
	}
	p.n++
	return nil
}

// End marks an operation started with Begin as finished.
func (l *Lifecycle) End(rec *domain.Recording) {
	l.mu.Lock()
	if p := l.pending[rec]; rec != nil && p != nil {
		p.n--
		if p.n == 0 {
			close(p.idle)
			delete(l.pending, rec)
		}
	}
	l.mu.Unlock()
	l.wg.Done()
}

// Pending returns the number of operations in flight on rec.
func (l *Lifecycle) Pending(rec *domain.Recording) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p := l.pending[rec]; p != nil {
		return p.n
	}
	return 0
}

// WaitIdle blocks until no operation is in flight on rec or ctx is done.
func (l *Lifecycle) WaitIdle(ctx context.Context, rec *domain.Recording) error {
	l.mu.Lock()
	p := l.pending[rec]
	l.mu.Unlock()
	if p == nil {
		return nil
	}

	select {
	case <-p.idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitWithTimeout waits for all operations to finish with a timeout.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, pending operations abandoned",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
