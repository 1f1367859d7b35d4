// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// SearchCompleted carries a retrieval outcome back to the model, together
// with what the query revealed about time and mood.
type SearchCompleted struct {
	Query  string
	Result *domain.RetrievalResult
	Range  *domain.TemporalRange
	Mood   *domain.MoodAnalysis
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the memory search view.
	ViewSearch
	// ViewSettings shows and edits the embedding configuration.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SettingsLoaded carries the effective settings and the stored entries.
type SettingsLoaded struct {
	Settings *domain.Settings
	Entries  []driving.SettingEntry
	Err      error
}

// SettingsSaved signals a settings change was written.
type SettingsSaved struct {
	Err error
}

// SettingsValidated carries the result of probing the embedding provider.
type SettingsValidated struct {
	Err error
}
