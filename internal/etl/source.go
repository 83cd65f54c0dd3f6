package etl

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ── Source ──────────────────────────────────────────────────
// A Source reads rows from a file the user wants to turn into notes.
// Implementations live in etl/sources/, one file per format.

// SourceConfig is an opaque configuration map parsed per source type.
type SourceConfig map[string]any

// SourceSpec describes a source type and the file extensions it reads.
type SourceSpec struct {
	Type       string   `json:"type"`
	Label      string   `json:"label"`
	Extensions []string `json:"extensions"`
}

type Source interface {
	Spec() SourceSpec

	// Discover returns the columns a file offers, so the user can pick
	// which one holds the note text.
	Discover(ctx context.Context, cfg SourceConfig) (*Schema, error)

	// Read streams records into a channel that is closed when the file is
	// exhausted or ctx is cancelled. Errors go to the error channel
	// (buffered size 1).
	Read(ctx context.Context, cfg SourceConfig) (<-chan Record, <-chan error)
}

// ── Source Registry ────────────────────────────────────────
// Compile-time registration via init() in each source file.

var (
	registryMu sync.RWMutex
	registry   = map[string]Source{}
)

// RegisterSource makes s available by type and extension. Sources call
// it from init.
func RegisterSource(s Source) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Spec().Type] = s
}

// GetSource returns the source registered for typ.
func GetSource(typ string) (Source, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %q", typ)
	}
	return s, nil
}

// SourceForFile picks a source by the file's extension.
func SourceForFile(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, s := range registry {
		for _, e := range s.Spec().Extensions {
			if e == ext {
				return s, nil
			}
		}
	}
	return nil, fmt.Errorf("no source reads %q files", ext)
}

// ListSources returns the specs of all registered sources, sorted by type.
func ListSources() []SourceSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	specs := make([]SourceSpec, 0, len(registry))
	for _, s := range registry {
		specs = append(specs, s.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Type < specs[j].Type })
	return specs
}
