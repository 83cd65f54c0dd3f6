package mcpserver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"boards/internal/service"
	"boards/internal/storage"
)

func TestApprovalQueue_ChannelTimeout(t *testing.T) {
	emitter := &service.MockEmitter{}
	q := NewApprovalQueue(context.Background(), emitter)
	q.timeout = 20 * time.Millisecond

	ok, err := q.Request("delete_element", "Delete note")
	if ok || err == nil {
		t.Fatalf("Request = %v, %v; want timeout", ok, err)
	}
	names := emitter.Names()
	if len(names) != 2 || names[0] != EventApprovalRequired || names[1] != EventApprovalDismissed {
		t.Errorf("events = %v", names)
	}
}

func TestApprovalQueue_ResolveUnknownIsNoop(t *testing.T) {
	q := NewApprovalQueue(context.Background(), &service.MockEmitter{})
	q.Approve("nope")
	q.Reject("nope")
}

func TestApprovalQueue_StoreMode(t *testing.T) {
	docs, err := storage.NewSQLite(filepath.Join(t.TempDir(), "boards.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer docs.Close()

	emitter := &service.MockEmitter{}
	q := NewApprovalQueue(context.Background(), emitter)
	q.SetStore(docs)
	q.poll = 5 * time.Millisecond

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := q.Request("delete_node", "Delete Home and 2 descendants", `{"nodeIds":["home"]}`)
		done <- result{ok, err}
	}()

	ctx := context.Background()
	var pending []PendingAction
	deadline := time.Now().Add(5 * time.Second)
	for len(pending) == 0 && time.Now().Before(deadline) {
		pending, _ = PendingApprovals(ctx, docs)
		time.Sleep(5 * time.Millisecond)
	}
	if len(pending) != 1 || pending[0].Tool != "delete_node" || pending[0].Metadata != `{"nodeIds":["home"]}` {
		t.Fatalf("pending = %+v", pending)
	}
	if err := ResolveApproval(ctx, docs, pending[0].ID, true); err != nil {
		t.Fatalf("ResolveApproval: %v", err)
	}

	r := <-done
	if !r.ok || r.err != nil {
		t.Errorf("Request = %v, %v", r.ok, r.err)
	}
	if len(emitter.Names()) != 0 {
		t.Errorf("store mode emitted %v", emitter.Names())
	}
	if left, _ := PendingApprovals(ctx, docs); len(left) != 0 {
		t.Errorf("approval left behind: %+v", left)
	}
}

func TestResolveApproval_Missing(t *testing.T) {
	docs, err := storage.NewSQLite(filepath.Join(t.TempDir(), "boards.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer docs.Close()
	if err := ResolveApproval(context.Background(), docs, "ghost", false); !storage.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}
