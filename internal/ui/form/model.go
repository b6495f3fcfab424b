// Package form is a small multi-field text form used by the onboarding,
// progress and goals screens.
package form

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(22)
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).Width(22)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	choiceHint = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Field describes one input. A field with Choices is cycled with left and
// right instead of typed into.
type Field struct {
	Label       string
	Placeholder string
	Value       string
	CharLimit   int
	Choices     []string
}

// Model is the form state.
type Model struct {
	title     string
	fields    []Field
	inputs    []textinput.Model
	focus     int
	submitted bool
	cancelled bool
	busy      bool
}

// New creates a form with the first field focused.
func New(title string, fields []Field) Model {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder
		in.CharLimit = f.CharLimit
		if in.CharLimit == 0 {
			in.CharLimit = 120
		}
		in.Width = 40
		in.Prompt = ""
		in.SetValue(f.Value)
		inputs[i] = in
	}
	m := Model{title: title, fields: fields, inputs: inputs}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key input. Enter on the last field or ctrl+s submits;
// esc cancels. The caller checks Submitted and Cancelled afterwards.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.cancelled = true
			return m, nil
		case "ctrl+s":
			m.submitted = true
			return m, nil
		case "enter":
			if m.focus == len(m.inputs)-1 {
				m.submitted = true
				return m, nil
			}
			return m.move(1), nil
		case "tab", "down":
			return m.move(1), nil
		case "shift+tab", "up":
			return m.move(-1), nil
		case "left", "right":
			if len(m.fields) > 0 && len(m.fields[m.focus].Choices) > 0 {
				step := 1
				if key.String() == "left" {
					step = -1
				}
				m.cycle(step)
				return m, nil
			}
		}
		if len(m.fields) > 0 && len(m.fields[m.focus].Choices) > 0 {
			// Choice fields ignore typing.
			return m, nil
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) move(step int) Model {
	if len(m.inputs) == 0 {
		return m
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + step + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func (m *Model) cycle(step int) {
	choices := m.fields[m.focus].Choices
	cur := m.inputs[m.focus].Value()
	idx := 0
	for i, c := range choices {
		if c == cur {
			idx = i
			break
		}
	}
	idx = (idx + step + len(choices)) % len(choices)
	m.inputs[m.focus].SetValue(choices[idx])
}

// Value returns the raw text of field i.
func (m Model) Value(i int) string {
	if i < 0 || i >= len(m.inputs) {
		return ""
	}
	return m.inputs[i].Value()
}

// Values returns the raw text of every field in order.
func (m Model) Values() []string {
	out := make([]string, len(m.inputs))
	for i := range m.inputs {
		out[i] = m.inputs[i].Value()
	}
	return out
}

// SetValue replaces the text of field i.
func (m *Model) SetValue(i int, v string) {
	if i >= 0 && i < len(m.inputs) {
		m.inputs[i].SetValue(v)
	}
}

// Focused returns the index of the focused field.
func (m Model) Focused() int { return m.focus }

// Submitted reports whether the user asked to submit.
func (m Model) Submitted() bool { return m.submitted }

// Cancelled reports whether the user asked to close the form.
func (m Model) Cancelled() bool { return m.cancelled }

// ClearIntent resets the submit and cancel flags after the caller acts.
func (m *Model) ClearIntent() {
	m.submitted = false
	m.cancelled = false
}

// SetBusy marks the form as waiting on the backend.
func (m *Model) SetBusy(b bool) { m.busy = b }

// View renders the form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, f := range m.fields {
		label := labelStyle.Render(f.Label)
		if i == m.focus {
			label = focusStyle.Render("▶ " + f.Label)
		}
		line := label + m.inputs[i].View()
		if len(f.Choices) > 0 {
			line += choiceHint.Render(fmt.Sprintf("  ◀ ▶ (%s)", strings.Join(f.Choices, "/")))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	if m.busy {
		b.WriteString(helpStyle.Render("Saving..."))
	} else {
		b.WriteString(helpStyle.Render("[tab] next · [enter] submit on last field · [ctrl+s] submit · [esc] cancel"))
	}
	return b.String()
}
