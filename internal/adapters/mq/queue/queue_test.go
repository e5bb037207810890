package queue

import (
	"context"
	"testing"
	"time"

	"github.com/IMperiumX/ranker/internal/domain/policy"
)

func TestInMemoryQueue_EnqueueDequeue(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(10))

	u := Update{RecordID: "rec1", UserID: "alice", GameID: "arcade", Score: 100, Policy: policy.HighestWins}
	if !q.Enqueue(ctx, u) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Len(ctx) != 1 {
		t.Errorf("expected len 1, got %d", q.Len(ctx))
	}

	select {
	case got := <-q.Dequeue(ctx):
		if got.RecordID != "rec1" || got.UserID != "alice" {
			t.Errorf("unexpected update: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dequeue")
	}
}

func TestInMemoryQueue_Backpressure(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(2))

	if !q.Enqueue(ctx, Update{RecordID: "a"}) || !q.Enqueue(ctx, Update{RecordID: "b"}) {
		t.Fatal("expected enqueues within capacity to succeed")
	}
	if q.Enqueue(ctx, Update{RecordID: "c"}) {
		t.Error("expected enqueue beyond capacity to fail")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(2))

	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, Update{RecordID: "a"}) {
		t.Error("expected enqueue after close to fail")
	}
	// Close is idempotent.
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case _, ok := <-q.Dequeue(ctx):
		if ok {
			t.Error("expected closed dequeue channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
