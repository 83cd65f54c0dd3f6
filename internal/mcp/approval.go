package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"boards/internal/storage"
)

// EventEmitter allows the approval queue to notify the frontend.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)

// Approval status values kept in the approvals collection.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// PendingAction represents a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"` // JSON with extra context (e.g. element IDs)
}

type actionResult struct {
	approved bool
}

// ApprovalQueue manages human-in-the-loop approval for destructive MCP tool calls.
// It supports two modes:
//   - In-process: uses channels + frontend events
//   - Store-based (standalone MCP): writes to the approvals collection and
//     polls it until the app resolves the request
type ApprovalQueue struct {
	mu      sync.Mutex
	pending map[string]chan actionResult
	ctx     context.Context
	emitter EventEmitter
	timeout time.Duration
	poll    time.Duration
	docs    storage.DocumentStore
}

// NewApprovalQueue creates an in-process ApprovalQueue.
func NewApprovalQueue(ctx context.Context, emitter EventEmitter) *ApprovalQueue {
	return &ApprovalQueue{
		pending: make(map[string]chan actionResult),
		ctx:     ctx,
		emitter: emitter,
		timeout: 120 * time.Second,
		poll:    500 * time.Millisecond,
	}
}

// SetStore enables store-based approval for standalone MCP.
func (q *ApprovalQueue) SetStore(docs storage.DocumentStore) {
	q.docs = docs
}

// Request sends an approval request and blocks until approved/rejected.
// metadata is optional JSON with extra context (e.g. element IDs for highlighting).
func (q *ApprovalQueue) Request(tool, description string, metadata ...string) (bool, error) {
	action := PendingAction{
		ID:          uuid.New().String(),
		Tool:        tool,
		Description: description,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    "{}",
	}
	if len(metadata) > 0 && metadata[0] != "" {
		action.Metadata = metadata[0]
	}

	if q.docs != nil {
		return q.requestViaStore(action)
	}
	return q.requestViaChannel(action)
}

func (q *ApprovalQueue) requestViaStore(action PendingAction) (bool, error) {
	if err := putAction(q.ctx, q.docs, action); err != nil {
		return false, fmt.Errorf("insert approval: %w", err)
	}
	defer q.docs.Delete(context.Background(), storage.CollApprovals, action.ID)

	deadline := time.Now().Add(q.timeout)
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if time.Now().After(deadline) {
				return false, fmt.Errorf("action timed out after %s: %s", q.timeout, action.Tool)
			}
			got, err := getAction(q.ctx, q.docs, action.ID)
			if err != nil {
				continue
			}
			switch got.Status {
			case StatusApproved:
				return true, nil
			case StatusRejected:
				return false, fmt.Errorf("action rejected by user: %s", action.Tool)
			}
		case <-q.ctx.Done():
			return false, fmt.Errorf("context cancelled")
		}
	}
}

func (q *ApprovalQueue) requestViaChannel(action PendingAction) (bool, error) {
	ch := make(chan actionResult, 1)

	q.mu.Lock()
	q.pending[action.ID] = ch
	q.mu.Unlock()

	q.emitter.Emit(q.ctx, EventApprovalRequired, action)

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()
	select {
	case result := <-ch:
		q.cleanup(action.ID)
		if !result.approved {
			return false, fmt.Errorf("action rejected by user: %s", action.Tool)
		}
		return true, nil
	case <-timer.C:
		q.cleanup(action.ID)
		q.emitter.Emit(q.ctx, EventApprovalDismissed, map[string]string{"id": action.ID})
		return false, fmt.Errorf("action timed out after %s: %s", q.timeout, action.Tool)
	case <-q.ctx.Done():
		q.cleanup(action.ID)
		return false, fmt.Errorf("context cancelled")
	}
}

// Approve marks a pending action as approved (in-process mode).
func (q *ApprovalQueue) Approve(actionID string) {
	q.resolve(actionID, true)
}

// Reject marks a pending action as rejected (in-process mode).
func (q *ApprovalQueue) Reject(actionID string) {
	q.resolve(actionID, false)
}

func (q *ApprovalQueue) resolve(actionID string, approved bool) {
	q.mu.Lock()
	ch, ok := q.pending[actionID]
	q.mu.Unlock()
	if ok {
		select {
		case ch <- actionResult{approved: approved}:
		default:
		}
	}
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

// ── Store side, used by the app to answer a standalone server ──

// PendingApprovals lists unresolved requests, oldest first.
func PendingApprovals(ctx context.Context, docs storage.DocumentStore) ([]PendingAction, error) {
	list, err := docs.List(ctx, storage.CollApprovals)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	var out []PendingAction
	for _, d := range list {
		var a PendingAction
		if json.Unmarshal(d.Data, &a) != nil || a.Status != StatusPending {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// ResolveApproval records the user's answer for a stored request.
func ResolveApproval(ctx context.Context, docs storage.DocumentStore, id string, approved bool) error {
	a, err := getAction(ctx, docs, id)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	a.Status = StatusRejected
	if approved {
		a.Status = StatusApproved
	}
	return putAction(ctx, docs, *a)
}

func putAction(ctx context.Context, docs storage.DocumentStore, a PendingAction) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return docs.Put(ctx, storage.CollApprovals, a.ID, data)
}

func getAction(ctx context.Context, docs storage.DocumentStore, id string) (*PendingAction, error) {
	data, err := docs.Get(ctx, storage.CollApprovals, id)
	if err != nil {
		return nil, err
	}
	var a PendingAction
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
