package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"boards/internal/domain"
)

// Stores bundles the typed stores over one DocumentStore.
type Stores struct {
	Docs        DocumentStore
	Boards      *BoardStore
	Hierarchies *HierarchyStore
	Personas    *PersonaStore
	JourneyMaps *JourneyMapStore
}

// NewStores builds every typed store over docs.
func NewStores(docs DocumentStore) *Stores {
	return &Stores{
		Docs:        docs,
		Boards:      NewBoardStore(docs),
		Hierarchies: NewHierarchyStore(docs),
		Personas:    NewPersonaStore(docs),
		JourneyMaps: NewJourneyMapStore(docs),
	}
}

func (s *Stores) Close() error { return s.Docs.Close() }

// ExportAll reads every collection into one bundle.
func (s *Stores) ExportAll() (*domain.Workspace, error) {
	ws := &domain.Workspace{Version: domain.WorkspaceVersion, ExportedAt: time.Now()}
	var err error
	if ws.Boards, err = s.Boards.ListBoards(); err != nil {
		return nil, fmt.Errorf("export boards: %w", err)
	}
	if ws.SiteMaps, err = s.Hierarchies.ListHierarchies(domain.KindSiteMap); err != nil {
		return nil, fmt.Errorf("export site maps: %w", err)
	}
	if ws.ImpactMaps, err = s.Hierarchies.ListHierarchies(domain.KindImpactMap); err != nil {
		return nil, fmt.Errorf("export impact maps: %w", err)
	}
	if ws.Personas, err = s.Personas.ListPersonas(); err != nil {
		return nil, fmt.Errorf("export personas: %w", err)
	}
	if ws.JourneyMaps, err = s.JourneyMaps.ListJourneyMaps(); err != nil {
		return nil, fmt.Errorf("export journey maps: %w", err)
	}
	return ws, nil
}

// ImportAll writes every document in ws, replacing documents with the
// same id. It returns how many documents were written.
func (s *Stores) ImportAll(ws *domain.Workspace) (int, error) {
	if ws.Version > domain.WorkspaceVersion {
		return 0, fmt.Errorf("import workspace: unsupported version %d", ws.Version)
	}
	n := 0
	for i := range ws.Boards {
		if err := s.Boards.SaveBoard(&ws.Boards[i]); err != nil {
			return n, fmt.Errorf("import board %s: %w", ws.Boards[i].ID, err)
		}
		n++
	}
	for _, list := range [][]domain.Hierarchy{ws.SiteMaps, ws.ImpactMaps} {
		for i := range list {
			if err := s.Hierarchies.SaveHierarchy(&list[i]); err != nil {
				return n, fmt.Errorf("import hierarchy %s: %w", list[i].ID, err)
			}
			n++
		}
	}
	for i := range ws.Personas {
		if err := s.Personas.SavePersona(&ws.Personas[i]); err != nil {
			return n, fmt.Errorf("import persona %s: %w", ws.Personas[i].ID, err)
		}
		n++
	}
	for i := range ws.JourneyMaps {
		if err := s.JourneyMaps.SaveJourneyMap(&ws.JourneyMaps[i]); err != nil {
			return n, fmt.Errorf("import journey map %s: %w", ws.JourneyMaps[i].ID, err)
		}
		n++
	}
	return n, nil
}

// DecodeWorkspace parses a bundle. A bundle without a kind on its
// hierarchies gets the kind of the list it appears in.
func DecodeWorkspace(data []byte) (*domain.Workspace, error) {
	var ws domain.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	for i := range ws.SiteMaps {
		if ws.SiteMaps[i].Kind == "" {
			ws.SiteMaps[i].Kind = domain.KindSiteMap
		}
	}
	for i := range ws.ImpactMaps {
		if ws.ImpactMaps[i].Kind == "" {
			ws.ImpactMaps[i].Kind = domain.KindImpactMap
		}
	}
	return &ws, nil
}

// Settings is a small JSON key-value area for app preferences.
type Settings struct{ docs DocumentStore }

func NewSettings(docs DocumentStore) *Settings { return &Settings{docs: docs} }

// Load decodes key into v. A missing key leaves v untouched and returns nil.
func (s *Settings) Load(key string, v any) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	data, err := s.docs.Get(ctx, CollSettings, key)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Settings) Store(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.docs.Put(ctx, CollSettings, key, data)
}
