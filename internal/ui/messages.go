// Package ui provides the Bubble Tea TUI for growthdesk.
package ui

// HealthChecked is sent when the startup backend ping finishes.
type HealthChecked struct {
	Err error
}
