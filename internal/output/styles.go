package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/shinji-kodama/devshell/internal/model"
)

// Color palette — named constants for the ANSI 256 colors used in the
// CLI. These are the single source of truth; never use inline
// lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: paths, wrapper names,
	// interpreter versions.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "ready" component state.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "stale" component state.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for the "absent" component state and failures.
	ColorRed = lipgloss.Color("196")
)

// Semantic styles — map domain concepts to visual presentation.
var (
	// StyleNoun styles identifiable nouns (paths, names, versions).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome (separators, hints).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// StateStyle returns the lipgloss style for a component state.
// Unknown states return an unstyled default.
func StateStyle(state model.ComponentState) lipgloss.Style {
	switch state {
	case model.StateReady:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case model.StateStale:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case model.StateAbsent:
		return lipgloss.NewStyle().Foreground(ColorRed)
	default:
		return lipgloss.NewStyle()
	}
}

// StateMark returns the symbol rendered next to a component in status
// output: a check for ready, a tilde for stale, a cross for absent.
func StateMark(state model.ComponentState) string {
	switch state {
	case model.StateReady:
		return "✔"
	case model.StateStale:
		return "~"
	default:
		return "✘"
	}
}
