package service

import (
	"fmt"

	"boards/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Window Size Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves and restores the main Wails window size between sessions.
// Stored as a single "window" document in the settings collection.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSettingsService persists window size between sessions.
type WindowSettingsService struct {
	settings *storage.Settings
}

// NewWindowSettingsService creates a WindowSettingsService.
func NewWindowSettingsService(settings *storage.Settings) *WindowSettingsService {
	return &WindowSettingsService{settings: settings}
}

const (
	settingWindow       = "window"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
	minWindowWidth      = 800
	minWindowHeight     = 600
)

// LoadWindowSize returns the saved window dimensions, or sensible defaults.
func (s *WindowSettingsService) LoadWindowSize() WindowSize {
	size := WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	if s.settings == nil {
		return size
	}
	s.settings.Load(settingWindow, &size)

	if size.Width < minWindowWidth {
		size.Width = defaultWindowWidth
	}
	if size.Height < minWindowHeight {
		size.Height = defaultWindowHeight
	}
	return size
}

// SaveWindowSize persists the current window dimensions.
func (s *WindowSettingsService) SaveWindowSize(width, height int) error {
	if s.settings == nil {
		return fmt.Errorf("window settings: no store")
	}
	return s.settings.Store(settingWindow, WindowSize{Width: width, Height: height})
}
