package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/roadsmart/backend/internal/models"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []StatusChanged
	block  chan struct{}
}

func (p *capturePublisher) PublishStatusChanged(_ context.Context, evt StatusChanged) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func TestDispatcherDeliversBeforeStop(t *testing.T) {
	next := &capturePublisher{}
	d := NewDispatcher(next, 2, 10)

	for i := uint(1); i <= 5; i++ {
		if err := d.PublishStatusChanged(context.Background(), StatusChanged{Entity: models.EntityReport, EntityID: i, To: "Pending"}); err != nil {
			t.Fatalf("enqueue %d failed: %v", i, err)
		}
	}
	d.Stop()
	d.Stop()

	if len(next.events) != 5 {
		t.Errorf("expected 5 delivered events, got %d", len(next.events))
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	next := &capturePublisher{block: make(chan struct{})}
	d := NewDispatcher(next, 1, 1)

	// at most one event is held by the blocked worker and one by the queue
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = d.PublishStatusChanged(context.Background(), StatusChanged{Entity: models.EntityReport, To: "Pending"})
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(next.block)
	d.Stop()
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	next := &capturePublisher{}
	d := NewDispatcher(next, 2, 10)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := d.PublishStatusChanged(context.Background(), StatusChanged{Entity: models.EntityReport, To: "Pending"})
				if err != nil && !errors.Is(err, ErrQueueFull) && !errors.Is(err, ErrDispatcherStopped) {
					t.Errorf("unexpected error %v", err)
				}
			}
		}()
	}
	d.Stop()
	wg.Wait()

	if err := d.PublishStatusChanged(context.Background(), StatusChanged{Entity: models.EntityReport, To: "Reviewed"}); !errors.Is(err, ErrDispatcherStopped) {
		t.Errorf("expected ErrDispatcherStopped, got %v", err)
	}
}
