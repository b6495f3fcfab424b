package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/growthdesk/internal/notify"
)

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Amber
	colorError     = lipgloss.Color("196") // Red
	colorInfo      = lipgloss.Color("39")  // Blue
	colorMilestone = lipgloss.Color("220") // Gold
)

// SelectedItem style for the currently highlighted row.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unselected rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// MutedItem style for secondary text.
var MutedItem = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// TabActive and TabInactive style the view switcher.
var (
	TabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(colorPrimary).
			Padding(0, 1)
	TabInactive = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Padding(0, 1)
)

// SectionHeader style for panel titles.
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1).
	Padding(0, 1)

// Card frames a block of related figures.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// Banner is the persistent error strip shown above a view.
var Banner = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("52")).
	Bold(true).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for inline errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// BarFull and BarEmpty draw progress bars.
var (
	BarFull  = lipgloss.NewStyle().Foreground(colorSuccess)
	BarEmpty = lipgloss.NewStyle().Foreground(colorMuted)
)

// Modal frames forms drawn over a view.
var Modal = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// toastBase is shared by every toast kind.
var toastBase = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1).
	Width(44)

// ToastStyle returns the style for a notification kind.
func ToastStyle(kind notify.Kind) lipgloss.Style {
	c := colorInfo
	switch kind {
	case notify.Success:
		c = colorSuccess
	case notify.Error:
		c = colorError
	case notify.Warning:
		c = colorWarning
	case notify.Milestone:
		c = colorMilestone
	}
	return toastBase.BorderForeground(c).Foreground(c)
}

// ToastIcon is the leading glyph for a notification kind.
func ToastIcon(kind notify.Kind) string {
	switch kind {
	case notify.Success:
		return "✓"
	case notify.Error:
		return "✗"
	case notify.Warning:
		return "!"
	case notify.Milestone:
		return "★"
	}
	return "i"
}

// Priority colors for recommendations.
func priorityStyle(priority string) lipgloss.Style {
	switch priority {
	case "high":
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	case "medium":
		return lipgloss.NewStyle().Foreground(colorWarning)
	}
	return lipgloss.NewStyle().Foreground(colorSuccess)
}

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle titles sections of the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
