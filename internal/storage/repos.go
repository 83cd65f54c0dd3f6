package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"boards/internal/domain"
)

const opTimeout = 10 * time.Second

// repo stores values of one type as JSON documents in one collection.
type repo[T any] struct {
	docs DocumentStore
	coll string
	id   func(*T) string
}

func (r repo[T]) get(id string) (*T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	data, err := r.docs.Get(ctx, r.coll, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", r.coll, id, err)
	}
	return &v, nil
}

func (r repo[T]) save(v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.coll, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.docs.Put(ctx, r.coll, r.id(v), data)
}

func (r repo[T]) delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.docs.Delete(ctx, r.coll, id)
}

func (r repo[T]) list() ([]T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	docs, err := r.docs.List(ctx, r.coll)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", r.coll, d.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// BoardStore implements domain.BoardStore.
type BoardStore struct{ r repo[domain.Board] }

func NewBoardStore(docs DocumentStore) *BoardStore {
	return &BoardStore{r: repo[domain.Board]{docs: docs, coll: CollBoards, id: func(b *domain.Board) string { return b.ID }}}
}

func (s *BoardStore) GetBoard(id string) (*domain.Board, error) { return s.r.get(id) }

func (s *BoardStore) SaveBoard(b *domain.Board) error {
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return s.r.save(b)
}

func (s *BoardStore) DeleteBoard(id string) error { return s.r.delete(id) }

func (s *BoardStore) ListBoards() ([]domain.Board, error) {
	boards, err := s.r.list()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(boards, func(i, j int) bool { return boards[i].UpdatedAt.After(boards[j].UpdatedAt) })
	return boards, nil
}

// HierarchyStore implements domain.HierarchyStore. Site maps and impact
// maps live in separate collections.
type HierarchyStore struct {
	siteMaps   repo[domain.Hierarchy]
	impactMaps repo[domain.Hierarchy]
}

func NewHierarchyStore(docs DocumentStore) *HierarchyStore {
	id := func(h *domain.Hierarchy) string { return h.ID }
	return &HierarchyStore{
		siteMaps:   repo[domain.Hierarchy]{docs: docs, coll: CollSiteMaps, id: id},
		impactMaps: repo[domain.Hierarchy]{docs: docs, coll: CollImpactMaps, id: id},
	}
}

func (s *HierarchyStore) repoFor(kind domain.HierarchyKind) (repo[domain.Hierarchy], error) {
	switch kind {
	case domain.KindSiteMap:
		return s.siteMaps, nil
	case domain.KindImpactMap:
		return s.impactMaps, nil
	}
	return repo[domain.Hierarchy]{}, fmt.Errorf("unknown hierarchy kind %q", kind)
}

func (s *HierarchyStore) GetHierarchy(kind domain.HierarchyKind, id string) (*domain.Hierarchy, error) {
	r, err := s.repoFor(kind)
	if err != nil {
		return nil, err
	}
	return r.get(id)
}

func (s *HierarchyStore) SaveHierarchy(h *domain.Hierarchy) error {
	r, err := s.repoFor(h.Kind)
	if err != nil {
		return err
	}
	now := time.Now()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	return r.save(h)
}

func (s *HierarchyStore) DeleteHierarchy(kind domain.HierarchyKind, id string) error {
	r, err := s.repoFor(kind)
	if err != nil {
		return err
	}
	return r.delete(id)
}

func (s *HierarchyStore) ListHierarchies(kind domain.HierarchyKind) ([]domain.Hierarchy, error) {
	r, err := s.repoFor(kind)
	if err != nil {
		return nil, err
	}
	list, err := r.list()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

// PersonaStore implements domain.PersonaStore.
type PersonaStore struct{ r repo[domain.Persona] }

func NewPersonaStore(docs DocumentStore) *PersonaStore {
	return &PersonaStore{r: repo[domain.Persona]{docs: docs, coll: CollPersonas, id: func(p *domain.Persona) string { return p.ID }}}
}

func (s *PersonaStore) GetPersona(id string) (*domain.Persona, error) { return s.r.get(id) }

func (s *PersonaStore) SavePersona(p *domain.Persona) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return s.r.save(p)
}

func (s *PersonaStore) DeletePersona(id string) error { return s.r.delete(id) }

func (s *PersonaStore) ListPersonas() ([]domain.Persona, error) { return s.r.list() }

// JourneyMapStore implements domain.JourneyMapStore.
type JourneyMapStore struct{ r repo[domain.JourneyMap] }

func NewJourneyMapStore(docs DocumentStore) *JourneyMapStore {
	return &JourneyMapStore{r: repo[domain.JourneyMap]{docs: docs, coll: CollJourneyMaps, id: func(j *domain.JourneyMap) string { return j.ID }}}
}

func (s *JourneyMapStore) GetJourneyMap(id string) (*domain.JourneyMap, error) { return s.r.get(id) }

func (s *JourneyMapStore) SaveJourneyMap(j *domain.JourneyMap) error {
	now := time.Now()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	return s.r.save(j)
}

func (s *JourneyMapStore) DeleteJourneyMap(id string) error { return s.r.delete(id) }

func (s *JourneyMapStore) ListJourneyMaps() ([]domain.JourneyMap, error) { return s.r.list() }
