package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuseats/internal/broker"
)

type memOutbox struct {
	mu     sync.Mutex
	events []broker.Event
}

func (m *memOutbox) PendingEvents(limit int) []broker.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.events) {
		limit = len(m.events)
	}
	batch := append([]broker.Event(nil), m.events[:limit]...)
	m.events = m.events[limit:]
	return batch
}

func (m *memOutbox) Requeue(events []broker.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(append([]broker.Event(nil), events...), m.events...)
}

func (m *memOutbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []broker.Event
	failFor   map[string]bool
}

func (p *recordingPublisher) Publish(_ context.Context, e broker.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor[e.OrderID] {
		return errors.New("broker down")
	}
	p.published = append(p.published, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func events(ids ...string) []broker.Event {
	out := make([]broker.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, broker.Event{Type: broker.EventOrderPlaced, OrderID: id})
	}
	return out
}

func TestNotifyWorker_ProcessBatch(t *testing.T) {
	outbox := &memOutbox{events: events("a", "b", "c")}
	pub := &recordingPublisher{failFor: map[string]bool{"b": true}}
	w := NewNotifyWorker(outbox, pub, time.Second)

	delivered := w.processBatch(context.Background())
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 2, pub.count())

	require.Equal(t, 1, outbox.len())
	assert.Equal(t, "b", outbox.events[0].OrderID)

	pub.failFor = nil
	assert.Equal(t, 1, w.processBatch(context.Background()))
	assert.Equal(t, 0, outbox.len())
	assert.Equal(t, 0, w.processBatch(context.Background()))
}

func TestNotifyWorker_BatchSize(t *testing.T) {
	outbox := &memOutbox{events: events("1", "2", "3", "4", "5")}
	pub := &recordingPublisher{}
	w := NewNotifyWorker(outbox, pub, time.Second)
	w.batchSize = 2

	assert.Equal(t, 2, w.processBatch(context.Background()))
	assert.Equal(t, 3, outbox.len())
}

func TestNotifyWorker_StartFlushesOnStop(t *testing.T) {
	outbox := &memOutbox{}
	pub := &recordingPublisher{}
	w := NewNotifyWorker(outbox, pub, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	outbox.Requeue(events("x"))
	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	outbox.Requeue(events("y"))
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 2, pub.count())
}
