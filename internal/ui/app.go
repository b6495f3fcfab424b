package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/growthdesk/internal/gateway"
	"github.com/abelbrown/growthdesk/internal/model"
	"github.com/abelbrown/growthdesk/internal/otel"
	"github.com/abelbrown/growthdesk/internal/session"
	"github.com/abelbrown/growthdesk/internal/ui/form"
)

type formKind int

const (
	formNone formKind = iota
	formOnboarding
	formProgress
	formGoals
	formScore
)

// Onboarding form field order.
const (
	obName = iota
	obEmail
	obGenre
	obLocation
	obFollowers
	obStreams
	obTargetFollowers
	obTargetStreams
	obTimeline
)

// App is the root Bubble Tea model.
// IMPORTANT: App holds no remote state. The session controller owns it and
// App only renders and forwards input.
type App struct {
	ctl    *session.Controller
	events *otel.Logger
	ring   *otel.RingBuffer
	health func() tea.Cmd

	width  int
	height int
	ready  bool

	artistCursor int
	rosterCursor int
	recCursor    int

	form     form.Model
	formKind formKind
	scoreRec string

	spinner   spinner.Model
	keys      keyMap
	help      help.Model
	showDebug bool
	healthErr string
}

// NewApp creates an App driving ctl. events and ring may be nil; health,
// if set, returns the startup backend ping.
func NewApp(ctl *session.Controller, events *otel.Logger, ring *otel.RingBuffer, health func() tea.Cmd) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return App{
		ctl:     ctl,
		events:  events,
		ring:    ring,
		health:  health,
		spinner: sp,
		keys:    defaultKeys(),
		help:    help.New(),
	}
}

// Init loads the roster, starts the spinner and pings the backend.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.ctl.Init(), a.spinner.Tick}
	if a.health != nil {
		cmds = append(cmds, a.health())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case HealthChecked:
		if msg.Err != nil {
			a.healthErr = gateway.Fallback(gateway.OpHealth)
		} else {
			a.healthErr = ""
		}
		return a, nil
	}

	if a.formKind != formNone {
		// Non-key messages such as cursor blinks belong to the form too.
		var fcmd tea.Cmd
		a.form, fcmd = a.form.Update(msg)
		cmd := a.ctl.Update(msg)
		a.sync()
		return a, tea.Batch(fcmd, cmd)
	}

	cmd := a.ctl.Update(msg)
	a.sync()
	return a, cmd
}

// sync closes local forms the controller has closed and keeps cursors in
// range.
func (a *App) sync() {
	switch a.formKind {
	case formOnboarding:
		if a.ctl.View() != session.ViewOnboarding {
			a.formKind = formNone
		} else {
			a.form.SetBusy(a.ctl.Onboarding())
		}
	case formProgress:
		p := a.ctl.Profile()
		if p == nil || !p.ProgressForm().Open {
			a.formKind = formNone
		} else {
			a.form.SetBusy(p.ProgressForm().Submitting)
		}
	case formGoals:
		p := a.ctl.Profile()
		if p == nil || !p.GoalsForm().Open {
			a.formKind = formNone
		} else {
			a.form.SetBusy(p.GoalsForm().Submitting)
		}
	case formScore:
		if a.ctl.Profile() == nil {
			a.formKind = formNone
		}
	}
	a.artistCursor = clamp(a.artistCursor, len(a.ctl.Artists()))
	a.rosterCursor = clamp(a.rosterCursor, len(a.ctl.NewArtists()))
	a.recCursor = clamp(a.recCursor, len(a.recommendations()))
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})

	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.formKind != formNone {
		return a.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	case key.Matches(msg, a.keys.Dismiss):
		a.ctl.Queue().DismissOldest()
		return a, nil
	case key.Matches(msg, a.keys.Analytics):
		cmd := a.ctl.Navigate(session.ViewAnalytics)
		return a, cmd
	case key.Matches(msg, a.keys.Roster):
		cmd := a.ctl.Navigate(session.ViewRoster)
		return a, cmd
	case key.Matches(msg, a.keys.Onboarding):
		return a.openOnboarding()
	}

	switch a.ctl.View() {
	case session.ViewAnalytics:
		return a.handleAnalyticsKey(msg)
	case session.ViewRoster:
		return a.handleRosterKey(msg)
	case session.ViewProfile:
		return a.handleProfileKey(msg)
	}
	return a, nil
}

func (a App) handleAnalyticsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	artists := a.ctl.Artists()
	switch {
	case key.Matches(msg, a.keys.Down):
		if a.artistCursor < len(artists)-1 {
			a.artistCursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.artistCursor > 0 {
			a.artistCursor--
		}
	case key.Matches(msg, a.keys.Enter):
		a.selectCursor()
		return a, a.ctl.RunAnalysis()
	case key.Matches(msg, a.keys.Churn):
		a.selectCursor()
		return a, a.ctl.LoadChurn()
	case key.Matches(msg, a.keys.Retrain):
		a.selectCursor()
		return a, a.ctl.RetrainChurn()
	case key.Matches(msg, a.keys.Models):
		a.selectCursor()
		return a, a.ctl.LoadClustering()
	case key.Matches(msg, a.keys.Emotions):
		a.selectCursor()
		return a, a.ctl.LoadEmotions()
	case key.Matches(msg, a.keys.Reload):
		return a, a.ctl.LoadRoster()
	}
	return a, nil
}

// selectCursor makes the artist under the cursor the analysis target.
func (a App) selectCursor() {
	if artists := a.ctl.Artists(); len(artists) > 0 {
		a.ctl.Select(artists[a.artistCursor].ID)
	}
}

func (a App) handleRosterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	artists := a.ctl.NewArtists()
	switch {
	case key.Matches(msg, a.keys.Down):
		if a.rosterCursor < len(artists)-1 {
			a.rosterCursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.rosterCursor > 0 {
			a.rosterCursor--
		}
	case key.Matches(msg, a.keys.Enter):
		if len(artists) > 0 {
			a.recCursor = 0
			return a, a.ctl.OpenProfile(artists[a.rosterCursor].ID)
		}
	case key.Matches(msg, a.keys.Reload):
		return a, a.ctl.LoadNewArtists()
	}
	return a, nil
}

func (a App) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := a.ctl.Profile()
	if p == nil {
		return a, nil
	}
	recs := a.recommendations()
	switch {
	case key.Matches(msg, a.keys.Back):
		return a, a.ctl.Navigate(session.ViewRoster)
	case key.Matches(msg, a.keys.Reload):
		return a, p.Load()
	case key.Matches(msg, a.keys.Down):
		if a.recCursor < len(recs)-1 {
			a.recCursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.recCursor > 0 {
			a.recCursor--
		}
	}
	if p.State() != session.ProfileReady {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Progress):
		p.OpenProgressForm()
		a.form = progressForm(p.ProgressForm())
		a.formKind = formProgress
		return a, a.form.Init()
	case key.Matches(msg, a.keys.Goals):
		p.OpenGoalsForm()
		a.form = goalsForm(p.GoalsForm().Goals)
		a.formKind = formGoals
		return a, a.form.Init()
	case key.Matches(msg, a.keys.Start):
		if len(recs) > 0 {
			return a, p.SetRecommendationStatus(recs[a.recCursor].ID, model.RecInProgress, nil)
		}
	case key.Matches(msg, a.keys.Complete):
		if len(recs) > 0 {
			a.scoreRec = recs[a.recCursor].ID
			a.form = form.New("Complete recommendation", []form.Field{
				{Label: "Effectiveness (1-5)", Placeholder: "optional", CharLimit: 3},
			})
			a.formKind = formScore
			return a, a.form.Init()
		}
	}
	return a, nil
}

func (a App) openOnboarding() (tea.Model, tea.Cmd) {
	cmd := a.ctl.Navigate(session.ViewOnboarding)
	a.form = onboardingForm(model.DefaultOnboarding())
	a.formKind = formOnboarding
	return a, tea.Batch(cmd, a.form.Init())
}

func (a App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.form, cmd = a.form.Update(msg)

	switch {
	case a.form.Cancelled():
		a.form.ClearIntent()
		return a.cancelForm()
	case a.form.Submitted():
		a.form.ClearIntent()
		return a.submitForm()
	}
	return a, cmd
}

func (a App) cancelForm() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.formKind {
	case formOnboarding:
		cmd = a.ctl.Navigate(session.ViewAnalytics)
	case formProgress:
		if p := a.ctl.Profile(); p != nil {
			p.CloseProgressForm()
		}
	case formGoals:
		if p := a.ctl.Profile(); p != nil {
			p.CloseGoalsForm()
		}
	}
	a.formKind = formNone
	a.sync()
	return a, cmd
}

func (a App) submitForm() (tea.Model, tea.Cmd) {
	v := a.form.Values()
	p := a.ctl.Profile()

	var cmd tea.Cmd
	switch a.formKind {
	case formOnboarding:
		cmd = a.ctl.Onboard(onboardingFromValues(v))
	case formProgress:
		if p != nil {
			cmd = p.UpdateProgress(session.ParseMetrics(v[0], v[1], v[2], v[3]), v[4])
		}
	case formGoals:
		if p != nil {
			cmd = p.UpdateGoals(session.ParseGoals(p.CurrentGoals(), v[0], v[1], v[2]))
		}
	case formScore:
		a.formKind = formNone
		if p != nil {
			cmd = p.SetRecommendationStatus(a.scoreRec, model.RecCompleted, parseScore(v[0]))
		}
	}
	a.sync()
	return a, cmd
}

func parseScore(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func onboardingForm(d model.Onboarding) form.Model {
	timeline := make([]string, len(model.GoalTimelineOptions))
	for i, m := range model.GoalTimelineOptions {
		timeline[i] = strconv.Itoa(m)
	}
	return form.New("Onboard a new artist", []form.Field{
		obName:            {Label: "Artist name *", Placeholder: "Stage name"},
		obEmail:           {Label: "Email *", Placeholder: "artist@example.com"},
		obGenre:           {Label: "Genre", Value: d.Genre},
		obLocation:        {Label: "Location", Value: d.Location},
		obFollowers:       {Label: "Total followers", Placeholder: "0"},
		obStreams:         {Label: "Monthly streams", Placeholder: "0"},
		obTargetFollowers: {Label: "Target followers", Value: strconv.Itoa(d.Goals.TargetFollowers)},
		obTargetStreams:   {Label: "Target streams", Value: strconv.Itoa(d.Goals.TargetMonthlyStreams)},
		obTimeline:        {Label: "Timeline (months)", Value: strconv.Itoa(d.Goals.TimelineMonths), Choices: timeline},
	})
}

func onboardingFromValues(v []string) model.Onboarding {
	req := model.DefaultOnboarding()
	req.Name = v[obName]
	req.Email = v[obEmail]
	if s := strings.TrimSpace(v[obGenre]); s != "" {
		req.Genre = s
	}
	if s := strings.TrimSpace(v[obLocation]); s != "" {
		req.Location = s
	}
	m := session.ParseMetrics(v[obFollowers], v[obStreams], "", "")
	req.CurrentMetrics.TotalFollowers = m.Followers
	req.CurrentMetrics.MonthlyStreams = m.Streams
	req.Goals = session.ParseGoals(req.Goals, v[obTargetFollowers], v[obTargetStreams], v[obTimeline])
	return req
}

func progressForm(f session.ProgressForm) form.Model {
	val := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	eng := ""
	if f.Metrics.EngagementRate != 0 {
		eng = strconv.FormatFloat(f.Metrics.EngagementRate, 'f', -1, 64)
	}
	return form.New("Log progress", []form.Field{
		{Label: "Followers", Placeholder: "0", Value: val(f.Metrics.Followers)},
		{Label: "Streams", Placeholder: "0", Value: val(f.Metrics.Streams)},
		{Label: "Engagement rate %", Placeholder: "0", Value: eng},
		{Label: "New listeners", Placeholder: "0", Value: val(f.Metrics.NewListeners)},
		{Label: "Notes", Placeholder: "What happened this week?", Value: f.Notes, CharLimit: 280},
	})
}

func goalsForm(g model.Goals) form.Model {
	timeline := make([]string, len(model.GoalTimelineOptions))
	for i, m := range model.GoalTimelineOptions {
		timeline[i] = strconv.Itoa(m)
	}
	return form.New("Update goals", []form.Field{
		{Label: "Target followers", Value: strconv.Itoa(g.TargetFollowers)},
		{Label: "Target streams", Value: strconv.Itoa(g.TargetMonthlyStreams)},
		{Label: "Timeline (months)", Value: strconv.Itoa(g.TimelineMonths), Choices: timeline},
	})
}

func (a App) recommendations() []model.Recommendation {
	p := a.ctl.Profile()
	if p == nil || p.Dashboard() == nil {
		return nil
	}
	return p.Dashboard().Recommendations
}

// ShowingDebug reports whether the debug overlay is visible (for testing).
func (a App) ShowingDebug() bool { return a.showDebug }

// FormOpen reports whether a form has focus (for testing).
func (a App) FormOpen() bool { return a.formKind != formNone }

// ArtistCursor returns the analytics roster cursor (for testing).
func (a App) ArtistCursor() int { return a.artistCursor }
