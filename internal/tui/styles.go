// Package tui provides the interactive terminal chat interface.
// The interface is split across files:
//   - model.go: model types, Init, Update loop
//   - view.go: rendering functions
//   - styles.go: lipgloss styling (this file)
//
// The TUI holds no domain state beyond the selection cursor; everything
// it shows comes from the session store, the conversation log and the
// popup controller.
package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for the chat interface
type Styles struct {
	Header      lipgloss.Style
	UserLabel   lipgloss.Style
	AILabel     lipgloss.Style
	Message     lipgloss.Style
	RecipeTitle lipgloss.Style
	Selected    lipgloss.Style
	Error       lipgloss.Style
	Notice      lipgloss.Style
	Hint        lipgloss.Style
	Modal       lipgloss.Style
	ModalTitle  lipgloss.Style
	ModalHeader lipgloss.Style
	Warning     lipgloss.Style
}

// DefaultStyles returns the default chat styling
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BC34A")),
		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2196F3")),
		AILabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFC107")),
		Message: lipgloss.NewStyle(),
		RecipeTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BC34A")).
			Underline(true),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#101F38")).
			Background(lipgloss.Color("#8BC34A")).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e53935")),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4db6ac")),
		Hint: lipgloss.NewStyle().
			Faint(true),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8BC34A")).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BC34A")),
		ModalHeader: lipgloss.NewStyle().
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFC107")),
	}
}
