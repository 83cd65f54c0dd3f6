package service_test

import (
	"context"
	"testing"

	"boards/internal/domain"
	"boards/internal/service"
)

func newPersonaService(t *testing.T) (*service.PersonaService, *service.MockEmitter) {
	t.Helper()
	stores := newStores(t)
	emitter := &service.MockEmitter{}
	return service.NewPersonaService(stores.Personas, stores.JourneyMaps, emitter), emitter
}

func TestPersonaService_SavePersona(t *testing.T) {
	svc, emitter := newPersonaService(t)
	p := &domain.Persona{Name: "  Ana  ", Goals: []string{"ship", "", "learn"}}
	if err := svc.SavePersona(context.Background(), p); err != nil {
		t.Fatalf("SavePersona: %v", err)
	}
	if p.ID == "" || p.AvatarSeed != p.ID {
		t.Errorf("persona id/seed = %q/%q", p.ID, p.AvatarSeed)
	}
	got, err := svc.GetPersona(p.ID)
	if err != nil {
		t.Fatalf("GetPersona: %v", err)
	}
	if got.Name != "Ana" || len(got.Goals) != 2 {
		t.Errorf("stored persona = %+v", got)
	}
	if countEvents(emitter, service.EventPersonaChanged) != 1 {
		t.Errorf("events = %v", emitter.Names())
	}
}

func TestPersonaService_JourneyMapStagesAndEmotion(t *testing.T) {
	svc, _ := newPersonaService(t)
	ctx := context.Background()
	j := &domain.JourneyMap{Name: "Onboarding", Stages: []domain.JourneyStage{
		{Name: "Discover", Emotion: 5},
		{Name: "Sign up", Emotion: -9},
		{ID: "keep", Name: "Use", Emotion: 1},
	}}
	if err := svc.SaveJourneyMap(ctx, j); err != nil {
		t.Fatalf("SaveJourneyMap: %v", err)
	}
	got, _ := svc.GetJourneyMap(j.ID)
	want := []int{service.MaxEmotion, service.MinEmotion, 1}
	for i, st := range got.Stages {
		if st.ID == "" {
			t.Errorf("stage %d has no id", i)
		}
		if st.Emotion != want[i] {
			t.Errorf("stage %d emotion = %d, want %d", i, st.Emotion, want[i])
		}
	}
	if got.Stages[2].ID != "keep" {
		t.Errorf("existing stage id replaced: %q", got.Stages[2].ID)
	}
}

func TestPersonaService_JourneyMapNeedsKnownPersona(t *testing.T) {
	svc, _ := newPersonaService(t)
	err := svc.SaveJourneyMap(context.Background(), &domain.JourneyMap{Name: "x", PersonaID: "ghost"})
	if err == nil {
		t.Error("journey map linked to a missing persona")
	}
}

func TestPersonaService_DeleteUnlinksJourneyMaps(t *testing.T) {
	svc, _ := newPersonaService(t)
	ctx := context.Background()
	p := &domain.Persona{Name: "Ana"}
	svc.SavePersona(ctx, p)
	linked := &domain.JourneyMap{Name: "Linked", PersonaID: p.ID}
	other := &domain.JourneyMap{Name: "Other"}
	svc.SaveJourneyMap(ctx, linked)
	svc.SaveJourneyMap(ctx, other)

	if err := svc.DeletePersona(ctx, p.ID); err != nil {
		t.Fatalf("DeletePersona: %v", err)
	}
	got, err := svc.GetJourneyMap(linked.ID)
	if err != nil {
		t.Fatalf("journey map deleted with its persona: %v", err)
	}
	if got.PersonaID != "" {
		t.Errorf("journey map still points at %q", got.PersonaID)
	}
	if _, err := svc.GetPersona(p.ID); err == nil {
		t.Error("persona survived delete")
	}
}

func TestPersonaService_DuplicateJourneyMap(t *testing.T) {
	svc, _ := newPersonaService(t)
	ctx := context.Background()
	j := &domain.JourneyMap{Name: "Onboarding", Stages: []domain.JourneyStage{{Name: "Discover"}}}
	svc.SaveJourneyMap(ctx, j)

	dup, err := svc.DuplicateJourneyMap(ctx, j.ID)
	if err != nil {
		t.Fatalf("DuplicateJourneyMap: %v", err)
	}
	if dup.ID == j.ID || dup.Name != "Onboarding (copy)" {
		t.Errorf("duplicate = %+v", dup)
	}
	if dup.Stages[0].ID == j.Stages[0].ID {
		t.Error("duplicate reused a stage id")
	}
	maps, _ := svc.ListJourneyMaps()
	if len(maps) != 2 {
		t.Errorf("ListJourneyMaps = %d", len(maps))
	}
}
