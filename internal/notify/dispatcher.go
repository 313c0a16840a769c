package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Dispatcher defaults.
const (
	DefaultQueueSize   = 256
	DefaultMaxAttempts = 3
)

// ErrClosed is returned by Close when called twice.
var ErrClosed = errors.New("dispatcher closed")

// Dispatcher renders and sends events on a background worker. Publish never
// blocks: when the queue is full the event is dropped and logged.
type Dispatcher struct {
	renderer *Renderer
	sender   Sender

	queue       chan Event
	maxAttempts int
	backoff     func(attempt int) time.Duration
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithQueueSize sets the queue capacity.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Event, n)
		}
	}
}

// WithRetry sets the attempt count and the wait before each retry.
func WithRetry(attempts int, backoff func(attempt int) time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if attempts > 0 {
			d.maxAttempts = attempts
		}
		if backoff != nil {
			d.backoff = backoff
		}
	}
}

// linearBackoff waits 1s before the second attempt, 2s before the third.
func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}

// NewDispatcher starts a dispatcher worker. Call Close to drain and stop it.
func NewDispatcher(renderer *Renderer, sender Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		renderer:    renderer,
		sender:      sender,
		queue:       make(chan Event, DefaultQueueSize),
		maxAttempts: DefaultMaxAttempts,
		backoff:     linearBackoff,
		sendTimeout: 30 * time.Second,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// Publish queues e for delivery.
func (d *Dispatcher) Publish(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("[notify] dropping %s for %s: dispatcher closed", e.Name(), e.To().Email)
		return
	}
	select {
	case d.queue <- e:
	default:
		log.Printf("[notify] dropping %s for %s: queue full", e.Name(), e.To().Email)
	}
}

// Close stops accepting events and waits for queued ones to be delivered, or
// for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Event) {
	msg, err := d.renderer.Render(e)
	if err != nil {
		log.Printf("[notify] failed to render %s: %v", e.Name(), err)
		return
	}
	if msg.To.Email == "" {
		log.Printf("[notify] skipping %s: recipient has no email", e.Name())
		return
	}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(d.backoff(attempt - 1))
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err = d.sender.Send(ctx, msg)
		cancel()
		if err == nil {
			log.Printf("[notify] sent %s to %s", e.Name(), msg.To.Email)
			return
		}
		log.Printf("[notify] attempt %d/%d for %s to %s failed: %v", attempt, d.maxAttempts, e.Name(), msg.To.Email, err)
	}
	log.Printf("[notify] giving up on %s to %s", e.Name(), msg.To.Email)
}
