package beacon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakeStore captures writes for verification and can simulate failures.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return errors.New("store down")
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func envWithMessage(msg string) *Envelope {
	return &Envelope{
		EventID:   msg,
		Source:    SourceWeb,
		EventType: EventLog,
		Level:     LevelInfo,
		Message:   msg,
	}
}

func queueMessages(q *Queue) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.items))
	for i, e := range q.items {
		out[i] = e.Message
	}
	return out
}

func TestQueue_FIFOOrder(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(10, nil, nil)

	for i := 0; i < 4; i++ {
		q.Enqueue(ctx, envWithMessage(fmt.Sprintf("e%d", i)))
	}

	batch := q.RemoveBatch(ctx, 2)
	if batch[0].Message != "e0" || batch[1].Message != "e1" {
		t.Errorf("batch order wrong: %q, %q", batch[0].Message, batch[1].Message)
	}
	if got := queueMessages(q); len(got) != 2 || got[0] != "e2" {
		t.Errorf("remaining queue wrong: %v", got)
	}
}

func TestQueue_OverflowDropsOldest(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(3, nil, nil)

	for i := 0; i < 5; i++ {
		q.Enqueue(ctx, envWithMessage(fmt.Sprintf("e%d", i)))
	}

	got := queueMessages(q)
	want := []string{"e2", "e3", "e4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue = %v, want %v", got, want)
		}
	}
}

func TestQueue_PushFrontPreservesOrder(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(10, nil, nil)

	for i := 0; i < 4; i++ {
		q.Enqueue(ctx, envWithMessage(fmt.Sprintf("e%d", i)))
	}
	batch := q.RemoveBatch(ctx, 2)
	q.Enqueue(ctx, envWithMessage("e4")) // newer envelope arrives mid-flight
	q.PushFront(ctx, batch)              // delivery failed, reinsert at head

	got := queueMessages(q)
	want := []string{"e0", "e1", "e2", "e3", "e4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue = %v, want global FIFO %v", got, want)
		}
	}
}

func TestQueue_PersistsSnapshots(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	q := NewQueue(10, store, nil)

	q.Enqueue(ctx, envWithMessage("e0"))
	q.Enqueue(ctx, envWithMessage("e1"))

	raw, ok, _ := store.Get(ctx, QueueStoreKey)
	if !ok {
		t.Fatal("no snapshot persisted")
	}
	var items []*Envelope
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	if len(items) != 2 || items[0].Message != "e0" {
		t.Errorf("snapshot = %d items, first %q", len(items), items[0].Message)
	}
}

func TestQueue_PersistFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.failSet = true
	q := NewQueue(10, store, nil)

	q.Enqueue(ctx, envWithMessage("e0")) // must not panic or drop
	if q.Len() != 1 {
		t.Error("persist failure should not affect the in-memory queue")
	}
}

func TestQueue_LoadRestoresPriorSession(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	prior := NewQueue(10, store, nil)
	prior.Enqueue(ctx, envWithMessage("old-0"))
	prior.Enqueue(ctx, envWithMessage("old-1"))

	q := NewQueue(10, store, nil)
	q.Load(ctx)
	if got := queueMessages(q); len(got) != 2 || got[0] != "old-0" {
		t.Errorf("restored queue = %v", got)
	}
}

func TestQueue_LoadTruncatesOversizedSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	prior := NewQueue(10, store, nil)
	for i := 0; i < 8; i++ {
		prior.Enqueue(ctx, envWithMessage(fmt.Sprintf("e%d", i)))
	}

	// A smaller capacity on reload keeps the newest entries, consistent
	// with live drop-oldest eviction.
	q := NewQueue(3, store, nil)
	q.Load(ctx)
	got := queueMessages(q)
	want := []string{"e5", "e6", "e7"}
	if len(got) != 3 {
		t.Fatalf("restored %d items, want 3", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("restored = %v, want %v", got, want)
		}
	}
}

func TestQueue_LoadIgnoresCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.data[QueueStoreKey] = []byte("{not json")

	q := NewQueue(10, store, nil)
	q.Load(ctx)
	if q.Len() != 0 {
		t.Error("corrupt snapshot should start empty")
	}
}
