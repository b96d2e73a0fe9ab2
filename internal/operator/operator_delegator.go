package operator

import (
	"context"
	"sync"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
)

const DefaultQueueSize = 1000

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
type OperatorDelegator struct {
	storage    *storage.Storage
	publisher  events.Publisher
	queue      chan *ActionItem
	numWorkers int
	wg         sync.WaitGroup
	stopOnce   sync.Once

	// mu guards sends on queue against Stop closing it.
	mu      sync.RWMutex
	stopped bool
}

func NewOperatorDelegator(s *storage.Storage, publisher events.Publisher, numWorkers, queueSize int) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &OperatorDelegator{
		storage:    s,
		publisher:  publisher,
		queue:      make(chan *ActionItem, queueSize),
		numWorkers: numWorkers,
	}
}

func (d *OperatorDelegator) Start() {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		op := NewOperator(d.storage, d.publisher, d.queue)
		go func() {
			defer d.wg.Done()
			op.Run()
		}()
	}
}

// Stop closes the queue and waits for the workers to finish what was already queued.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// Process queues action and waits for its outcome. A caller cancelled before a worker picks the
// item up gets ctx.Err() and the action never runs. After that the caller waits for the result.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	item := &ActionItem{
		ctx:      ctx,
		action:   action,
		response: make(chan ActionItemResponse, 1),
	}
	if err := d.enqueue(ctx, item); err != nil {
		return err
	}

	select {
	case resp := <-item.response:
		return resp.err
	case <-ctx.Done():
		if item.state.CompareAndSwap(itemQueued, itemAbandoned) {
			return ctx.Err()
		}
		resp := <-item.response
		return resp.err
	}
}

func (d *OperatorDelegator) enqueue(ctx context.Context, item *ActionItem) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return apperr.New(apperr.StoreUnavailable, "operator is stopped")
	}

	select {
	case d.queue <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
