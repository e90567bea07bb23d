package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")

	// User speaker label
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	// Model speaker label
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	// System message, timestamps, raw prompts
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	CommandStyle = lipgloss.NewStyle().
			Foreground(successColor)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)
)

// rule renders a dim horizontal line of width n.
func rule(n int) string {
	return DimStyle.Render(strings.Repeat("─", n))
}

// FormatFooter formats alternating keys and descriptions, descriptions in
// the assistant color.
// Usage: FormatFooter("/help", "Commands", "/quit", "Exit")
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}
