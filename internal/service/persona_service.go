package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"boards/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Persona Service: personas and their journey maps
// ─────────────────────────────────────────────────────────────

const (
	EventPersonaChanged    = "persona:changed"
	EventJourneyMapChanged = "journey:changed"
)

// Emotion bounds for a journey stage.
const (
	MinEmotion = -2
	MaxEmotion = 2
)

// PersonaService manages personas and journey maps. Deleting a persona
// unlinks the journey maps that referenced it.
type PersonaService struct {
	personas domain.PersonaStore
	journeys domain.JourneyMapStore
	emitter  EventEmitter
}

// NewPersonaService creates a PersonaService.
func NewPersonaService(personas domain.PersonaStore, journeys domain.JourneyMapStore, emitter EventEmitter) *PersonaService {
	return &PersonaService{personas: personas, journeys: journeys, emitter: emitter}
}

func (s *PersonaService) ListPersonas() ([]domain.Persona, error) { return s.personas.ListPersonas() }

func (s *PersonaService) GetPersona(id string) (*domain.Persona, error) {
	return s.personas.GetPersona(id)
}

// SavePersona creates p when it has no id, otherwise replaces it.
func (s *PersonaService) SavePersona(ctx context.Context, p *domain.Persona) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
		if p.AvatarSeed == "" {
			p.AvatarSeed = p.ID
		}
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Goals = lo.Compact(p.Goals)
	p.Frustrations = lo.Compact(p.Frustrations)
	if err := s.personas.SavePersona(p); err != nil {
		return fmt.Errorf("save persona: %w", err)
	}
	s.emitter.Emit(ctx, EventPersonaChanged, map[string]string{"id": p.ID})
	return nil
}

func (s *PersonaService) DeletePersona(ctx context.Context, id string) error {
	if err := s.personas.DeletePersona(id); err != nil {
		return fmt.Errorf("delete persona: %w", err)
	}
	maps, err := s.journeys.ListJourneyMaps()
	if err != nil {
		return fmt.Errorf("delete persona: %w", err)
	}
	for i := range maps {
		if maps[i].PersonaID != id {
			continue
		}
		maps[i].PersonaID = ""
		if err := s.journeys.SaveJourneyMap(&maps[i]); err != nil {
			return fmt.Errorf("unlink journey map %s: %w", maps[i].ID, err)
		}
	}
	s.emitter.Emit(ctx, EventPersonaChanged, map[string]string{"id": id})
	return nil
}

// ── Journey maps ─────────────────────────────────────────

func (s *PersonaService) ListJourneyMaps() ([]domain.JourneyMap, error) {
	return s.journeys.ListJourneyMaps()
}

func (s *PersonaService) GetJourneyMap(id string) (*domain.JourneyMap, error) {
	return s.journeys.GetJourneyMap(id)
}

// SaveJourneyMap creates or replaces j. Stages without an id get one and
// emotions are clamped to [MinEmotion, MaxEmotion].
func (s *PersonaService) SaveJourneyMap(ctx context.Context, j *domain.JourneyMap) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.PersonaID != "" {
		if _, err := s.personas.GetPersona(j.PersonaID); err != nil {
			return fmt.Errorf("save journey map: persona %s: %w", j.PersonaID, err)
		}
	}
	for i := range j.Stages {
		if j.Stages[i].ID == "" {
			j.Stages[i].ID = uuid.New().String()
		}
		j.Stages[i].Emotion = lo.Clamp(j.Stages[i].Emotion, MinEmotion, MaxEmotion)
	}
	if err := s.journeys.SaveJourneyMap(j); err != nil {
		return fmt.Errorf("save journey map: %w", err)
	}
	s.emitter.Emit(ctx, EventJourneyMapChanged, map[string]string{"id": j.ID})
	return nil
}

func (s *PersonaService) DeleteJourneyMap(ctx context.Context, id string) error {
	if err := s.journeys.DeleteJourneyMap(id); err != nil {
		return fmt.Errorf("delete journey map: %w", err)
	}
	s.emitter.Emit(ctx, EventJourneyMapChanged, map[string]string{"id": id})
	return nil
}

// DuplicateJourneyMap copies a journey map with fresh stage ids.
func (s *PersonaService) DuplicateJourneyMap(ctx context.Context, id string) (*domain.JourneyMap, error) {
	src, err := s.journeys.GetJourneyMap(id)
	if err != nil {
		return nil, fmt.Errorf("duplicate journey map: %w", err)
	}
	dup := &domain.JourneyMap{
		Name:      src.Name + " (copy)",
		PersonaID: src.PersonaID,
		Stages:    make([]domain.JourneyStage, len(src.Stages)),
	}
	for i, st := range src.Stages {
		st.ID = ""
		dup.Stages[i] = st
	}
	if err := s.SaveJourneyMap(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}
