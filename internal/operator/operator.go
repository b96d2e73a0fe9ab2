package operator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
)

const publishTimeout = 5 * time.Second

const (
	itemQueued int32 = iota
	itemStarted
	itemAbandoned
)

// Operator is the worker that processes items from the queue.
type Operator struct {
	storage   *storage.Storage
	publisher events.Publisher
	queue     chan *ActionItem
}

func NewOperator(s *storage.Storage, publisher events.Publisher, queue chan *ActionItem) *Operator {
	return &Operator{
		storage:   s,
		publisher: publisher,
		queue:     queue,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

// processItem runs one action in its own unit. Items whose caller gave up while queued are
// skipped. Once started, the unit ignores caller cancellation and is bounded by the store timeout.
func (o *Operator) processItem(item *ActionItem) {
	if !item.state.CompareAndSwap(itemQueued, itemStarted) {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(item.ctx), o.storage.Timeout())
	defer cancel()

	err := o.perform(ctx, item.action)
	item.response <- ActionItemResponse{err: err}
}

func (o *Operator) perform(ctx context.Context, action actions.IAction) error {
	name := fmt.Sprintf("%T", action)

	writer, err := o.storage.Write(ctx)
	if err != nil {
		return storage.StoreError("begin", err)
	}

	if err = action.Perform(ctx, writer); err != nil {
		if rbErr := writer.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			logrus.WithError(rbErr).WithField("action", name).Error("Operator.perform: rollback failed")
		}
		return storage.StoreError(name, err)
	}

	if err = writer.Commit(ctx); err != nil {
		return storage.StoreError("commit", err)
	}

	o.publish(ctx, name, writer.Appended())
	return nil
}

// publish hands committed entries to the event publisher. Failures are logged only: the unit
// is already durable.
func (o *Operator) publish(ctx context.Context, action string, appended []*entry.Entry) {
	if o.publisher == nil || len(appended) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := o.publisher.Publish(ctx, events.FromEntries(appended)); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":  action,
			"entries": len(appended),
		}).Error("Operator.publish: failed to publish ledger events")
	}
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
	state    atomic.Int32
}

type ActionItemResponse struct {
	err error
}
