package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

var ErrDispatcherStopped = errors.New("event dispatcher is stopped")

// DefaultMaxPending bounds the parked deliveries kept for retry.
const DefaultMaxPending = 1024

// delivery is one batch owed to one publisher.
type delivery struct {
	publisher Publisher
	records   []Record
}

// Dispatcher is a chain.Sink that hands committed events to publishers on
// background workers, so a slow queue or database never holds the ledger
// lock. Failed deliveries are parked and retried per publisher.
type Dispatcher struct {
	chainID        int64
	publishers     []Publisher
	batches        chan []Record
	workerCount    int
	enqueueTimeout time.Duration
	publishTimeout time.Duration
	retryInterval  time.Duration
	log            *logger.StructuredLogger
	wg             sync.WaitGroup

	// stopMu guards stopped and the closing of batches.
	stopMu  sync.RWMutex
	stopped bool

	mu                  sync.Mutex
	consecutiveFailures int
	failureThreshold    int
	maxPending          int
	pending             []delivery
}

// NewDispatcher creates a dispatcher with workerCount workers and room for
// bufferSize queued batches.
func NewDispatcher(chainID int64, workerCount, bufferSize int, publishers ...Publisher) *Dispatcher {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Dispatcher{
		chainID:          chainID,
		publishers:       publishers,
		batches:          make(chan []Record, bufferSize),
		workerCount:      workerCount,
		enqueueTimeout:   5 * time.Second,
		publishTimeout:   30 * time.Second,
		retryInterval:    30 * time.Second,
		log:              logger.NewStructuredLogger(logger.ComponentEvents),
		failureThreshold: 3,
		maxPending:       DefaultMaxPending,
	}
}

// SetMaxPending changes how many failed deliveries are parked before the
// oldest is dropped. Call it before Start.
func (d *Dispatcher) SetMaxPending(n int) {
	if n < 1 {
		n = 1
	}
	d.mu.Lock()
	d.maxPending = n
	d.mu.Unlock()
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	d.log.WithField("worker_count", d.workerCount).Info("Starting event dispatcher")
	for i := 0; i < d.workerCount; i++ {
		workerID := i
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.work(workerID)
		}()
	}
}

func (d *Dispatcher) work(workerID int) {
	ticker := time.NewTicker(d.retryInterval)
	defer ticker.Stop()
	d.log.WithField("worker_id", workerID).Debug("Event worker started")

	for {
		select {
		case batch, ok := <-d.batches:
			if !ok {
				d.log.WithField("worker_id", workerID).Debug("Event worker stopped")
				return
			}
			for _, p := range d.publishers {
				d.deliver(delivery{publisher: p, records: batch})
			}
		case <-ticker.C:
			d.retryPending()
		}
	}
}

// Publish implements chain.Sink. It only blocks when the queue is full.
func (d *Dispatcher) Publish(ctx context.Context, logs []chain.Log) error {
	records, err := NewRecords(d.chainID, logs)
	if err != nil {
		return err
	}

	d.stopMu.RLock()
	defer d.stopMu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.batches <- records:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.enqueueTimeout):
		return errors.New("event queue is full, try again later")
	}
}

func (d *Dispatcher) deliver(job delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), d.publishTimeout)
	defer cancel()

	err := job.publisher.Publish(ctx, job.records)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		d.consecutiveFailures = 0
		return
	}

	d.consecutiveFailures++
	if len(d.pending) >= d.maxPending {
		dropped := d.pending[0]
		d.pending = append(d.pending[:0], d.pending[1:]...)
		d.log.WithFields(map[string]interface{}{
			"dropped_records": len(dropped.records),
			"max_pending":     d.maxPending,
		}).Error("Parked event batches at capacity, dropping oldest", err)
	}
	d.pending = append(d.pending, job)
	l := d.log.WithFields(map[string]interface{}{
		"records":              len(job.records),
		"consecutive_failures": d.consecutiveFailures,
	})
	if d.consecutiveFailures >= d.failureThreshold {
		l.Error("Event publisher keeps failing, parking batch", err)
	} else {
		l.WithField("error", err.Error()).Warn("Failed to publish events, parking batch")
	}
}

func (d *Dispatcher) retryPending() {
	d.mu.Lock()
	jobs := d.pending
	d.pending = nil
	d.mu.Unlock()

	if len(jobs) > 0 {
		d.log.WithField("batches", len(jobs)).Info("Retrying parked event batches")
	}
	for _, job := range jobs {
		d.deliver(job)
	}
}

// Pending returns the number of parked deliveries.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop drains queued batches, retries parked ones once and waits for the
// workers to exit. Publish fails after Stop.
func (d *Dispatcher) Stop() {
	d.log.Info("Stopping event dispatcher")
	d.stopMu.Lock()
	if d.stopped {
		d.stopMu.Unlock()
		return
	}
	d.stopped = true
	close(d.batches)
	d.stopMu.Unlock()

	d.wg.Wait()
	d.retryPending()
	d.log.WithField("pending", d.Pending()).Info("Event dispatcher stopped")
}
