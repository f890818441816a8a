package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roadsmart/backend/internal/logger"
)

var (
	ErrQueueFull         = errors.New("event queue is full")
	ErrDispatcherStopped = errors.New("event dispatcher is stopped")
)

// Dispatcher hands events to a pool of workers so request handlers never wait on the
// broker. Events still queued when Stop is called are delivered before it returns.
type Dispatcher struct {
	next        Publisher
	queue       chan StatusChanged
	workerCount int
	timeout     time.Duration
	wg          sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a dispatcher in front of next and starts its workers.
func NewDispatcher(next Publisher, workerCount, queueSize int) *Dispatcher {
	if workerCount < 1 {
		workerCount = 1
	}

	d := &Dispatcher{
		next:        next,
		queue:       make(chan StatusChanged, queueSize),
		workerCount: workerCount,
		timeout:     5 * time.Second,
	}

	// Start workers
	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	return d
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for evt := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.next.PublishStatusChanged(ctx, evt); err != nil {
			logger.WithError(err, "event_dispatcher").WithField("worker_id", id).
				WithField("routing_key", evt.RoutingKey()).Warn("Failed to deliver status event")
		}
		cancel()
	}

	logger.Debug("Event worker stopping", map[string]interface{}{"workerID": id})
}

// PublishStatusChanged enqueues evt without blocking. It fails with ErrQueueFull when the
// workers have fallen behind and with ErrDispatcherStopped after Stop.
func (d *Dispatcher) PublishStatusChanged(_ context.Context, evt StatusChanged) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop drains the queue and waits for the workers. Later publishes are rejected.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
