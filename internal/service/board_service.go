package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"boards/internal/canvas"
	"boards/internal/domain"
	"boards/internal/geom"
)

// ─────────────────────────────────────────────────────────────
// Board Service: sticky-note boards and their elements
// ─────────────────────────────────────────────────────────────

// EventBoardChanged is emitted with {"boardId": id} after every board write.
const EventBoardChanged = "board:changed"

// BoardService manages boards and the elements on them.
type BoardService struct {
	store   domain.BoardStore
	emitter EventEmitter
}

// NewBoardService creates a BoardService.
func NewBoardService(store domain.BoardStore, emitter EventEmitter) *BoardService {
	return &BoardService{store: store, emitter: emitter}
}

// CreateBoard creates an empty board at the identity viewport.
func (s *BoardService) CreateBoard(ctx context.Context, name string) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled board"
	}
	b := &domain.Board{
		ID:       uuid.New().String(),
		Name:     name,
		Elements: []domain.Element{},
		Viewport: geom.Identity,
	}
	if err := s.persist(ctx, b); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	return b, nil
}

func (s *BoardService) GetBoard(id string) (*domain.Board, error) {
	return s.store.GetBoard(id)
}

func (s *BoardService) ListBoards() ([]domain.Board, error) {
	return s.store.ListBoards()
}

func (s *BoardService) RenameBoard(ctx context.Context, id, name string) error {
	return s.mutate(ctx, id, func(b *domain.Board) bool {
		b.Name = strings.TrimSpace(name)
		return true
	})
}

func (s *BoardService) DeleteBoard(ctx context.Context, id string) error {
	if err := s.store.DeleteBoard(id); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	s.emitter.Emit(ctx, EventBoardChanged, map[string]string{"boardId": id})
	return nil
}

// DuplicateBoard copies a board with fresh ids for the board and every
// element. Positions, sizes and the viewport are kept.
func (s *BoardService) DuplicateBoard(ctx context.Context, id string) (*domain.Board, error) {
	src, err := s.store.GetBoard(id)
	if err != nil {
		return nil, fmt.Errorf("duplicate board: %w", err)
	}
	dup := &domain.Board{
		ID:       uuid.New().String(),
		Name:     src.Name + " (copy)",
		Elements: make([]domain.Element, len(src.Elements)),
		Viewport: src.Viewport,
	}
	for i, e := range src.Elements {
		e.ID = uuid.New().String()
		dup.Elements[i] = e
	}
	if err := s.persist(ctx, dup); err != nil {
		return nil, fmt.Errorf("duplicate board: %w", err)
	}
	return dup, nil
}

// ── Element operations ───────────────────────────────────

// AddElement places a new element with its top-left corner at (x, y),
// on top of every other element of its type.
func (s *BoardService) AddElement(ctx context.Context, boardID string, t domain.ElementType, x, y float64, opts domain.AddOptions) (*domain.Element, error) {
	var added domain.Element
	err := s.mutate(ctx, boardID, func(b *domain.Board) bool {
		var ok bool
		added, ok = addElement(b, t, x, y, opts)
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("add element: %w", err)
	}
	if added.ID == "" {
		return nil, fmt.Errorf("add element: invalid type %q or position", t)
	}
	return &added, nil
}

// UpdateElement applies patch to one element. An unknown id is not an error.
func (s *BoardService) UpdateElement(ctx context.Context, boardID, id string, patch domain.ElementPatch) error {
	return s.mutate(ctx, boardID, func(b *domain.Board) bool { return updateElement(b, id, patch) })
}

// MoveElements applies a batch of absolute positions in one write.
func (s *BoardService) MoveElements(ctx context.Context, boardID string, moves []domain.Move) error {
	return s.mutate(ctx, boardID, func(b *domain.Board) bool { return moveElements(b, moves) })
}

func (s *BoardService) DeleteElement(ctx context.Context, boardID, id string) error {
	return s.mutate(ctx, boardID, func(b *domain.Board) bool { return deleteElement(b, id) })
}

func (s *BoardService) DuplicateElement(ctx context.Context, boardID, id string) (*domain.Element, error) {
	var dup domain.Element
	err := s.mutate(ctx, boardID, func(b *domain.Board) bool {
		var ok bool
		dup, ok = duplicateElement(b, id)
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("duplicate element: %w", err)
	}
	if dup.ID == "" {
		return nil, fmt.Errorf("duplicate element: %s not on board %s", id, boardID)
	}
	return &dup, nil
}

// Vote adds delta to a note's vote count, never going below zero.
func (s *BoardService) Vote(ctx context.Context, boardID, id string, delta int) error {
	return s.mutate(ctx, boardID, func(b *domain.Board) bool {
		i := b.Find(id)
		if i < 0 || !b.Elements[i].IsNote() {
			return false
		}
		votes := max(b.Elements[i].Votes+delta, 0)
		b.Elements[i].Votes = votes
		return true
	})
}

func (s *BoardService) SaveViewport(ctx context.Context, boardID string, v geom.Viewport) error {
	if !v.Valid() {
		return nil
	}
	return s.mutate(ctx, boardID, func(b *domain.Board) bool {
		b.Viewport = v
		return true
	})
}

// mutate loads a board, runs fn and saves only when fn reports a change.
func (s *BoardService) mutate(ctx context.Context, boardID string, fn func(*domain.Board) bool) error {
	b, err := s.store.GetBoard(boardID)
	if err != nil {
		return err
	}
	if !fn(b) {
		return nil
	}
	return s.persist(ctx, b)
}

func (s *BoardService) persist(ctx context.Context, b *domain.Board) error {
	if err := s.store.SaveBoard(b); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventBoardChanged, map[string]string{"boardId": b.ID})
	return nil
}

// ── Board mutations shared by the service and sessions ───

func addElement(b *domain.Board, t domain.ElementType, x, y float64, opts domain.AddOptions) (domain.Element, bool) {
	if t != domain.ElementNote && t != domain.ElementGroup {
		return domain.Element{}, false
	}
	if !(geom.Point{X: x, Y: y}).Valid() {
		return domain.Element{}, false
	}
	w, h := domain.DefaultSize(t)
	if opts.Width > 0 {
		w = opts.Width
	}
	if opts.Height > 0 {
		h = opts.Height
	}
	color := opts.Color
	if color == "" {
		color = domain.DefaultNoteColor
		if t == domain.ElementGroup {
			color = domain.DefaultGroupColor
		}
	}
	e := domain.Element{
		ID:      uuid.New().String(),
		Type:    t,
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		Content: opts.Content,
		Label:   opts.Label,
		Color:   color,
		ZIndex:  b.MaxZIndex(t) + 1,
	}
	b.Elements = append(b.Elements, e)
	return e, true
}

func updateElement(b *domain.Board, id string, patch domain.ElementPatch) bool {
	i := b.Find(id)
	if i < 0 {
		return false
	}
	patch.Apply(&b.Elements[i])
	return true
}

func moveElements(b *domain.Board, moves []domain.Move) bool {
	changed := false
	for _, m := range moves {
		i := b.Find(m.ID)
		if i < 0 || !(geom.Point{X: m.X, Y: m.Y}).Valid() {
			continue
		}
		b.Elements[i].X, b.Elements[i].Y = m.X, m.Y
		changed = true
	}
	return changed
}

func deleteElement(b *domain.Board, id string) bool {
	i := b.Find(id)
	if i < 0 {
		return false
	}
	b.Elements = append(b.Elements[:i], b.Elements[i+1:]...)
	return true
}

// duplicateElement copies id in place under a fresh id. The copy is
// brought to the front of its type.
func duplicateElement(b *domain.Board, id string) (domain.Element, bool) {
	i := b.Find(id)
	if i < 0 {
		return domain.Element{}, false
	}
	dup := b.Elements[i]
	dup.ID = uuid.New().String()
	dup.ZIndex = b.MaxZIndex(dup.Type) + 1
	b.Elements = append(b.Elements, dup)
	return dup, true
}

// ─────────────────────────────────────────────────────────────
// BoardSession: canvas.Store for one open board
// ─────────────────────────────────────────────────────────────

// BoardSession caches one board for an interactive canvas and writes every
// change through to the store, except while a gesture holds writes (see
// Track). Store errors are logged, not returned, and ids that are gone are
// silently ignored.
type BoardSession struct {
	svc *BoardService
	ctx context.Context

	mu    sync.Mutex
	board *domain.Board
	held  bool // a gesture is running; writes wait for Flush
	dirty bool // the cache has changes the store has not seen
}

var _ canvas.Store = (*BoardSession)(nil)

// Open loads boardID into a new session.
func (s *BoardService) Open(ctx context.Context, boardID string) (*BoardSession, error) {
	b, err := s.store.GetBoard(boardID)
	if err != nil {
		return nil, fmt.Errorf("open board: %w", err)
	}
	return &BoardSession{svc: s, ctx: ctx, board: b}, nil
}

func (bs *BoardSession) BoardID() string {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.board.ID
}

// Board returns a copy of the cached board.
func (bs *BoardSession) Board() domain.Board {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	b := *bs.board
	b.Elements = append([]domain.Element(nil), bs.board.Elements...)
	return b
}

// Reload replaces the cache with the stored board, picking up writes made
// outside this session. While a gesture holds writes the cache is kept;
// the flush at gesture end then overwrites the stored board.
func (bs *BoardSession) Reload() error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.held || bs.dirty {
		return nil
	}
	b, err := bs.svc.store.GetBoard(bs.board.ID)
	if err != nil {
		return fmt.Errorf("reload board: %w", err)
	}
	bs.board = b
	return nil
}

func (bs *BoardSession) Elements() []domain.Element {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return append([]domain.Element(nil), bs.board.Elements...)
}

func (bs *BoardSession) UpdateElement(id string, patch domain.ElementPatch) {
	bs.apply("update element", func(b *domain.Board) bool { return updateElement(b, id, patch) })
}

func (bs *BoardSession) DeleteElement(id string) {
	bs.apply("delete element", func(b *domain.Board) bool { return deleteElement(b, id) })
}

func (bs *BoardSession) AddElement(t domain.ElementType, x, y float64, opts domain.AddOptions) (domain.Element, bool) {
	var e domain.Element
	var ok bool
	bs.apply("add element", func(b *domain.Board) bool {
		e, ok = addElement(b, t, x, y, opts)
		return ok
	})
	return e, ok
}

func (bs *BoardSession) MoveElements(moves []domain.Move) {
	bs.apply("move elements", func(b *domain.Board) bool { return moveElements(b, moves) })
}

func (bs *BoardSession) DuplicateElement(id string) (domain.Element, bool) {
	var e domain.Element
	var ok bool
	bs.apply("duplicate element", func(b *domain.Board) bool {
		e, ok = duplicateElement(b, id)
		return ok
	})
	return e, ok
}

func (bs *BoardSession) ViewportChanged(v canvas.Viewport) {
	if !v.Valid() {
		return
	}
	bs.apply("save viewport", func(b *domain.Board) bool {
		b.Viewport = v
		return true
	})
}

// Track holds store writes while gesture g is running and flushes them in
// one save once it ends. Callers pass the controller's gesture after every
// event. board:changed is still emitted for each change.
func (bs *BoardSession) Track(g canvas.GestureKind) error {
	if g != canvas.GestureIdle {
		bs.mu.Lock()
		bs.held = true
		bs.mu.Unlock()
		return nil
	}
	return bs.Flush()
}

// Flush ends a hold and saves the board if it changed during it.
func (bs *BoardSession) Flush() error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.held = false
	if !bs.dirty {
		return nil
	}
	if err := bs.svc.store.SaveBoard(bs.board); err != nil {
		return fmt.Errorf("flush board: %w", err)
	}
	bs.dirty = false
	return nil
}

func (bs *BoardSession) apply(op string, fn func(*domain.Board) bool) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if !fn(bs.board) {
		return
	}
	if bs.held {
		bs.dirty = true
		bs.svc.emitter.Emit(bs.ctx, EventBoardChanged, map[string]string{"boardId": bs.board.ID})
		return
	}
	if err := bs.svc.persist(bs.ctx, bs.board); err != nil {
		log.Printf("board session: %s on %s: %v", op, bs.board.ID, err)
	}
}
