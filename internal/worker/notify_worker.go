package worker

import (
	"context"
	"log/slog"
	"time"

	"campuseats/internal/broker"
)

// Outbox is the queue of order events waiting to be delivered.
type Outbox interface {
	PendingEvents(limit int) []broker.Event
	Requeue(events []broker.Event)
}

type Publisher interface {
	Publish(ctx context.Context, e broker.Event) error
}

type NotifyWorker struct {
	outbox    Outbox
	publisher Publisher
	interval  time.Duration
	batchSize int
}

func NewNotifyWorker(outbox Outbox, publisher Publisher, interval time.Duration) *NotifyWorker {
	return &NotifyWorker{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: 20,
	}
}

// Start delivers queued events every interval until ctx is cancelled, then
// makes one last attempt to flush what is left.
func (w *NotifyWorker) Start(ctx context.Context) error {
	slog.Info("starting notify worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.processBatch(flushCtx)
			cancel()
			slog.Info("notify worker stopped")
			return nil
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// processBatch publishes one batch and requeues whatever failed. It returns
// the number of events delivered.
func (w *NotifyWorker) processBatch(ctx context.Context) int {
	events := w.outbox.PendingEvents(w.batchSize)
	if len(events) == 0 {
		return 0
	}

	var failed []broker.Event
	for i, e := range events {
		if err := w.publisher.Publish(ctx, e); err != nil {
			slog.Error("failed to publish order event", "type", e.Type, "order", e.OrderNumber, "error", err)
			if ctx.Err() != nil {
				failed = append(failed, events[i:]...)
				break
			}
			failed = append(failed, e)
			continue
		}
		slog.Debug("order event published", "type", e.Type, "order", e.OrderNumber)
	}

	w.outbox.Requeue(failed)
	return len(events) - len(failed)
}
