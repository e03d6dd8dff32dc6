// queue.go buffers accepted envelopes until a flush delivers them.

package beacon

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// DefaultQueueCapacity bounds the outgoing buffer.
const DefaultQueueCapacity = 300

// Queue is an ordered, capacity-bounded buffer of accepted envelopes.
// Overflow drops the oldest entries first. When a Store is configured, every
// mutation persists a snapshot so a reload does not lose undelivered events;
// persistence failures are swallowed (best-effort, logged at debug only).
//
// Entries leave the queue only through RemoveBatch; a failed delivery puts
// them back at the head via PushFront, preserving global FIFO order.
type Queue struct {
	capacity int
	store    Store
	logger   *zap.Logger

	mu    sync.Mutex
	items []*Envelope
}

// NewQueue creates a queue. A nil store disables persistence; a non-positive
// capacity uses the default of 300.
func NewQueue(capacity int, store Store, logger *zap.Logger) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		capacity: capacity,
		store:    store,
		logger:   logger,
	}
}

// Load restores a persisted snapshot from a prior session. A snapshot larger
// than the capacity is truncated oldest-first, consistent with live
// eviction. Corrupt or missing snapshots start empty.
func (q *Queue) Load(ctx context.Context) {
	if q.store == nil {
		return
	}
	raw, ok, err := q.store.Get(ctx, QueueStoreKey)
	if err != nil || !ok {
		if err != nil {
			q.logger.Debug("queue restore failed", zap.Error(err))
		}
		return
	}

	var items []*Envelope
	if err := json.Unmarshal(raw, &items); err != nil {
		q.logger.Debug("queue snapshot corrupt, starting empty", zap.Error(err))
		return
	}
	if len(items) > q.capacity {
		items = items[len(items)-q.capacity:]
	}

	q.mu.Lock()
	q.items = items
	q.mu.Unlock()
}

// Enqueue appends an envelope, evicting the oldest entries when the
// capacity is exceeded, then persists the snapshot.
func (q *Queue) Enqueue(ctx context.Context, e *Envelope) {
	q.mu.Lock()
	q.items = append(q.items, e)
	if over := len(q.items) - q.capacity; over > 0 {
		q.items = q.items[over:]
	}
	q.mu.Unlock()

	q.persist(ctx)
}

// RemoveBatch removes and returns up to n envelopes from the head of the
// queue, then persists the now-shorter snapshot.
func (q *Queue) RemoveBatch(ctx context.Context, n int) []*Envelope {
	q.mu.Lock()
	if n > len(q.items) {
		n = len(q.items)
	}
	batch := q.items[:n]
	q.items = append([]*Envelope(nil), q.items[n:]...)
	q.mu.Unlock()

	if len(batch) > 0 {
		q.persist(ctx)
	}
	return batch
}

// PushFront reinserts a batch at the head, preserving its original order
// ahead of any newer envelopes, then persists the snapshot.
func (q *Queue) PushFront(ctx context.Context, batch []*Envelope) {
	if len(batch) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(append([]*Envelope(nil), batch...), q.items...)
	if over := len(q.items) - q.capacity; over > 0 {
		q.items = q.items[over:]
	}
	q.mu.Unlock()

	q.persist(ctx)
}

// Len returns the number of buffered envelopes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) persist(ctx context.Context) {
	if q.store == nil {
		return
	}

	q.mu.Lock()
	raw, err := json.Marshal(q.items)
	q.mu.Unlock()
	if err != nil {
		q.logger.Debug("queue snapshot encode failed", zap.Error(err))
		return
	}

	if err := q.store.Set(ctx, QueueStoreKey, raw); err != nil {
		q.logger.Debug("queue snapshot persist failed", zap.Error(err))
	}
}
