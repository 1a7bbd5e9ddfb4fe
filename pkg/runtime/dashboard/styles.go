package dashboard

import "github.com/charmbracelet/lipgloss"

// Styles holds the styled components. Injected into the model so rendering
// stays testable without ambient theme state.
type Styles struct {
	Title     lipgloss.Style
	Prompt    lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Spinner   lipgloss.Style
	Help      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5CF6")).Bold(true),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		Value:     lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		Tab:       lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true).Underline(true).Padding(0, 1),
		Spinner:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5CF6")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563")),
	}
}
