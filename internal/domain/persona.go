package domain

import "time"

type Persona struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Age          int       `json:"age,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Goals        []string  `json:"goals"`
	Frustrations []string  `json:"frustrations"`
	AvatarSeed   string    `json:"avatarSeed,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// JourneyStage is one column of a journey map. Emotion runs from -2 to 2.
type JourneyStage struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Actions       []string `json:"actions"`
	Thoughts      []string `json:"thoughts"`
	Touchpoints   []string `json:"touchpoints"`
	Opportunities []string `json:"opportunities"`
	Emotion       int      `json:"emotion"`
}

type JourneyMap struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	PersonaID string         `json:"personaId,omitempty"`
	Stages    []JourneyStage `json:"stages"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type PersonaStore interface {
	GetPersona(id string) (*Persona, error)
	SavePersona(p *Persona) error
	DeletePersona(id string) error
	ListPersonas() ([]Persona, error)
}

type JourneyMapStore interface {
	GetJourneyMap(id string) (*JourneyMap, error)
	SaveJourneyMap(j *JourneyMap) error
	DeleteJourneyMap(id string) error
	ListJourneyMaps() ([]JourneyMap, error)
}

// Workspace is the whole-workspace bundle used by import, export and backups.
type Workspace struct {
	Version     int          `json:"version"`
	ExportedAt  time.Time    `json:"exportedAt"`
	Boards      []Board      `json:"boards"`
	SiteMaps    []Hierarchy  `json:"siteMaps"`
	ImpactMaps  []Hierarchy  `json:"impactMaps"`
	Personas    []Persona    `json:"personas"`
	JourneyMaps []JourneyMap `json:"journeyMaps"`
}

const WorkspaceVersion = 1
