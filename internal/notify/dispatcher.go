// Package notify delivers order notifications outside the request that produced them.
package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/example/kaskroutek/internal/services"
)

var (
	// ErrQueueFull is returned by Enqueue when the buffer is full.
	ErrQueueFull = errors.New("notification queue is full")
	// ErrClosed is returned by Enqueue after Close.
	ErrClosed = errors.New("notification dispatcher is closed")
)

// Sender delivers one notification.
type Sender interface {
	NotifyOrder(ctx context.Context, n services.OrderNotification) error
}

// Options tunes a Dispatcher. Zero values fall back to defaults.
type Options struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration
	Timeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	return o
}

// Dispatcher queues notifications in memory and delivers them from worker goroutines,
// retrying failed sends with exponential backoff.
type Dispatcher struct {
	sender Sender
	opts   Options
	queue  chan services.OrderNotification

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher constructs a Dispatcher. Call Start before Enqueue.
func NewDispatcher(sender Sender, opts Options) *Dispatcher {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sender: sender,
		opts:   opts,
		queue:  make(chan services.OrderNotification, opts.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Enqueue hands n to the workers without blocking.
func (d *Dispatcher) Enqueue(n services.OrderNotification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting notifications and waits for the queue to drain.
// If ctx expires first, pending retries are abandoned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n services.OrderNotification) {
	backoff := d.opts.Backoff
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(d.ctx, d.opts.Timeout)
		err := d.sender.NotifyOrder(ctx, n)
		cancel()
		if err == nil {
			return
		}

		log.Printf("[Notify] Attempt %d/%d for %s failed: %v", attempt, d.opts.MaxAttempts, n.PhoneNumber, err)
		if attempt == d.opts.MaxAttempts {
			break
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-d.ctx.Done():
			log.Printf("[Notify] Dropping notification for %s: shutting down", n.PhoneNumber)
			return
		}
	}
	log.Printf("[Notify] Giving up on notification for %s", n.PhoneNumber)
}
