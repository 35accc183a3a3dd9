package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/kaskroutek/internal/services"
)

type flakySender struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []services.OrderNotification
}

func (s *flakySender) NotifyOrder(ctx context.Context, n services.OrderNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("telegram down")
	}
	s.sent = append(s.sent, n)
	return nil
}

func TestDispatcherRetriesUntilDelivered(t *testing.T) {
	sender := &flakySender{failures: 2}
	d := NewDispatcher(sender, Options{Workers: 1, MaxAttempts: 3, Backoff: time.Millisecond})
	d.Start()

	if err := d.Enqueue(services.OrderNotification{PhoneNumber: "22123456"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if sender.calls != 3 || len(sender.sent) != 1 {
		t.Fatalf("expected 3 calls and 1 delivery, got %d calls and %d deliveries", sender.calls, len(sender.sent))
	}
}

func TestDispatcherGivesUpAfterMaxAttempts(t *testing.T) {
	sender := &flakySender{failures: 10}
	d := NewDispatcher(sender, Options{Workers: 1, MaxAttempts: 2, Backoff: time.Millisecond})
	d.Start()

	_ = d.Enqueue(services.OrderNotification{PhoneNumber: "22123456"})
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if sender.calls != 2 || len(sender.sent) != 0 {
		t.Fatalf("expected 2 attempts, got %d", sender.calls)
	}
}

func TestDispatcherRejectsWhenFullOrClosed(t *testing.T) {
	d := NewDispatcher(&flakySender{}, Options{QueueSize: 1})

	if err := d.Enqueue(services.OrderNotification{}); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := d.Enqueue(services.OrderNotification{}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	d.Start()
	_ = d.Close(context.Background())
	if err := d.Enqueue(services.OrderNotification{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
