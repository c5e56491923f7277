package session

import "fmt"

// State is the UI-facing state of an editing session
type State struct {
	Debug              bool `json:"debug"`
	CurrentPage        int  `json:"current_page"`
	TotalPages         int  `json:"total_pages"`
	AutoPagination     bool `json:"auto_pagination"`
	ShowPageBoundaries bool `json:"show_page_boundaries"`
	PreviewMode        bool `json:"preview_mode"`
	WordCount          int  `json:"word_count"`
}

// InitialState is the state of a new session
func InitialState() State {
	return State{
		CurrentPage:        1,
		TotalPages:         1,
		AutoPagination:     true,
		ShowPageBoundaries: true,
	}
}

// ActionType names a state transition
type ActionType string

const (
	ActionToggleDebug          ActionType = "toggle_debug"
	ActionSetCurrentPage       ActionType = "set_current_page"
	ActionSetTotalPages        ActionType = "set_total_pages"
	ActionToggleAutoPagination ActionType = "toggle_auto_pagination"
	ActionTogglePageBoundaries ActionType = "toggle_page_boundaries"
	ActionTogglePreviewMode    ActionType = "toggle_preview_mode"
	ActionSetWordCount         ActionType = "set_word_count"
	ActionResetUI              ActionType = "reset_ui"
)

// Action is a state transition with an optional payload
type Action struct {
	Type  ActionType `json:"type"`
	Value int        `json:"value,omitempty"`
}

// Validate reports unknown action types
func (a Action) Validate() error {
	switch a.Type {
	case ActionToggleDebug, ActionSetCurrentPage, ActionSetTotalPages,
		ActionToggleAutoPagination, ActionTogglePageBoundaries,
		ActionTogglePreviewMode, ActionSetWordCount, ActionResetUI:
		return nil
	}
	return fmt.Errorf("unknown action %q", a.Type)
}

// Reduce returns the state that results from applying a to s. Unknown
// actions leave the state unchanged. Page numbers never drop below 1.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionToggleDebug:
		s.Debug = !s.Debug
	case ActionSetCurrentPage:
		s.CurrentPage = max(1, a.Value)
	case ActionSetTotalPages:
		s.TotalPages = max(1, a.Value)
	case ActionToggleAutoPagination:
		s.AutoPagination = !s.AutoPagination
	case ActionTogglePageBoundaries:
		s.ShowPageBoundaries = !s.ShowPageBoundaries
	case ActionTogglePreviewMode:
		s.PreviewMode = !s.PreviewMode
	case ActionSetWordCount:
		s.WordCount = max(0, a.Value)
	case ActionResetUI:
		// view toggles go back to their defaults; values derived from the
		// content are kept
		reset := InitialState()
		reset.CurrentPage = s.CurrentPage
		reset.TotalPages = s.TotalPages
		reset.WordCount = s.WordCount
		s = reset
	}
	return s
}
