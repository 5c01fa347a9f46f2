package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-strategy-builder/internal/compiler"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// WarningStyle for compiler warnings.
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	// SuccessStyle for completed operations.
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// FormatWarning renders a compiler warning on one line.
func FormatWarning(warning compiler.Warning) string {
	return WarningStyle.Render("warning:") + " " + warning.String()
}

// FormatPercent formats a percentage with an indicator for its sign.
func FormatPercent(value float64) string {
	text := fmt.Sprintf("%.2f%%", value)

	if value > 0 {
		return text + " ▲"
	} else if value < 0 {
		return text + " ▼"
	}

	return text
}
