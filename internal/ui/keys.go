package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Analytics  key.Binding
	Roster     key.Binding
	Onboarding key.Binding
	Up         key.Binding
	Down       key.Binding
	Enter      key.Binding
	Back       key.Binding
	Reload     key.Binding
	Churn      key.Binding
	Retrain    key.Binding
	Models     key.Binding
	Emotions   key.Binding
	Progress   key.Binding
	Goals      key.Binding
	Start      key.Binding
	Complete   key.Binding
	Dismiss    key.Binding
	Debug      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Analytics:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "analytics")),
		Roster:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "artists")),
		Onboarding: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "onboard")),
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/analyze")),
		Back:       key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Churn:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "churn")),
		Retrain:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "retrain churn")),
		Models:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "compare models")),
		Emotions:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "emotions")),
		Progress:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "log progress")),
		Goals:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "goals")),
		Start:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start rec")),
		Complete:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete rec")),
		Dismiss:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss toast")),
		Debug:      key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Analytics, k.Roster, k.Onboarding, k.Enter, k.Reload, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Analytics, k.Roster, k.Onboarding, k.Back},
		{k.Up, k.Down, k.Enter, k.Reload},
		{k.Churn, k.Retrain, k.Models, k.Emotions},
		{k.Progress, k.Goals, k.Start, k.Complete},
		{k.Dismiss, k.Debug, k.Help, k.Quit},
	}
}
