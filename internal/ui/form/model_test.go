package form

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testForm() Model {
	return New("Test", []Field{
		{Label: "Name"},
		{Label: "Months", Value: "12", Choices: []string{"6", "12", "18", "24"}},
		{Label: "Notes"},
	})
}

func TestTypingGoesToFocusedField(t *testing.T) {
	m := testForm()
	m, _ = m.Update(runes("Asha"))
	if got := m.Value(0); got != "Asha" {
		t.Errorf("Value(0) = %q", got)
	}
	if got := m.Value(2); got != "" {
		t.Errorf("Value(2) = %q", got)
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m := testForm()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Focused() != 1 {
		t.Errorf("focus = %d, want 1", m.Focused())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Focused() != 2 {
		t.Errorf("focus = %d, want 2 after wrapping", m.Focused())
	}
}

func TestChoicesCycle(t *testing.T) {
	m := testForm()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := m.Value(1); got != "18" {
		t.Errorf("right = %q, want 18", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.Value(1); got != "6" {
		t.Errorf("left twice = %q, want 6", got)
	}
	m, _ = m.Update(runes("x"))
	if got := m.Value(1); got != "6" {
		t.Errorf("typing into a choice field changed it to %q", got)
	}
}

func TestSubmitAndCancel(t *testing.T) {
	m := testForm()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Submitted() {
		t.Error("enter on a middle field should advance, not submit")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Submitted() {
		t.Error("enter on the last field should submit")
	}
	m.ClearIntent()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.Cancelled() || m.Submitted() {
		t.Errorf("cancelled=%v submitted=%v", m.Cancelled(), m.Submitted())
	}
}
