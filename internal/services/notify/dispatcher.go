package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/morpion/internal/metrics"
)

// ErrDispatcherClosed is returned by Close when called twice
var ErrDispatcherClosed = errors.New("dispatcher closed")

// DefaultTimeout bounds a single notification delivery
const DefaultTimeout = 10 * time.Second

// Dispatcher sends signup notifications in the background so that
// registration never waits on, or fails because of, delivery
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher around a notifier
func NewDispatcher(notifier Notifier, logger *slog.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		notifier: notifier,
		logger:   logger,
		timeout:  timeout,
	}
}

// DispatchSignup queues a signup notification and returns immediately.
// Notifications dispatched after Close are dropped.
func (d *Dispatcher) DispatchSignup(email, confirmationToken string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("signup notification dropped, dispatcher closed", "email", email)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.notifier.NotifySignup(ctx, email, confirmationToken)
		metrics.RecordSignupNotification(err)
		if err != nil {
			d.logger.Warn("signup notification failed", "email", email, "error", err)
		}
	}()
}

// Close stops accepting notifications and waits for in-flight deliveries
// until ctx is done
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
