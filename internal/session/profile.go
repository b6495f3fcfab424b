package session

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/growthdesk/internal/gateway"
	"github.com/abelbrown/growthdesk/internal/logging"
	"github.com/abelbrown/growthdesk/internal/metrics"
	"github.com/abelbrown/growthdesk/internal/model"
	"github.com/abelbrown/growthdesk/internal/notify"
	"github.com/abelbrown/growthdesk/internal/otel"
)

// ProfileState is the page-level state of a profile.
type ProfileState int

const (
	ProfileLoading ProfileState = iota
	ProfileReady
	ProfileError
	// ProfileNotFound is terminal; the profile is never reloaded.
	ProfileNotFound
)

func (s ProfileState) String() string {
	switch s {
	case ProfileLoading:
		return "loading"
	case ProfileReady:
		return "ready"
	case ProfileError:
		return "error"
	case ProfileNotFound:
		return "not-found"
	}
	return fmt.Sprintf("ProfileState(%d)", int(s))
}

// Notification copy.
const (
	msgNeedMetrics     = "Please enter at least followers or streams data"
	msgProgressSaved   = "Progress saved successfully!"
	msgGoalsSaved      = "Goals updated successfully! Keep pushing forward!"
	msgRecCompleted    = "Recommendation completed! Great work!"
	msgRecStarted      = "Recommendation started! Keep it up!"
	msgUnknownRecState = "Unknown recommendation status"
)

// Profile is the controller for one artist's profile. It is created fresh
// each time a different artist is opened and tags every request with its
// own instance tag.
type Profile struct {
	*deps
	artistID string
	tag      string

	state    ProfileState
	errMsg   string
	loading  bool
	profile  *model.Profile
	history  *model.GrowthHistory
	timeline *model.Timeline

	// reloadQueued is set when a mutation asks for a reload while one is
	// already in flight; the reload is reissued once the flight settles.
	reloadQueued bool

	dashboard        *model.Dashboard
	dashboardErr     string
	dashboardLoading bool
	dashboardQueued  bool

	progress   ProgressForm
	goals      GoalsForm
	recPending map[string]bool
}

func newProfile(d *deps, artistID string) *Profile {
	return &Profile{
		deps:       d,
		artistID:   artistID,
		tag:        artistID + ":" + uuid.NewString(),
		state:      ProfileLoading,
		recPending: make(map[string]bool),
	}
}

// ArtistID returns the artist this controller was opened for.
func (p *Profile) ArtistID() string { return p.artistID }

// State returns the page-level state.
func (p *Profile) State() ProfileState { return p.state }

// Err is the page-level error message in the error state.
func (p *Profile) Err() string { return p.errMsg }

// Loading reports whether the profile triple is being fetched.
func (p *Profile) Loading() bool { return p.loading }

// Data returns the loaded profile, history and timeline. All three are nil
// until the first load has fully succeeded.
func (p *Profile) Data() (*model.Profile, *model.GrowthHistory, *model.Timeline) {
	return p.profile, p.history, p.timeline
}

// Dashboard returns the recommendations and goal progress.
func (p *Profile) Dashboard() *model.Dashboard { return p.dashboard }

// DashboardError is the last dashboard load failure.
func (p *Profile) DashboardError() string { return p.dashboardErr }

// ProgressForm returns the progress form state.
func (p *Profile) ProgressForm() ProgressForm { return p.progress }

// GoalsForm returns the goals modal state.
func (p *Profile) GoalsForm() GoalsForm { return p.goals }

// CurrentGoals returns the goals as last loaded from the backend, or zero
// goals before the profile is loaded. A failed update never changes them.
func (p *Profile) CurrentGoals() model.Goals {
	if p.profile == nil {
		return model.Goals{}
	}
	return p.profile.Artist.Goals
}

// RecommendationPending reports whether a status change for recID is in
// flight.
func (p *Profile) RecommendationPending(recID string) bool { return p.recPending[recID] }

// Progress derives goal completion from the loaded profile.
type Progress struct {
	Followers     float64
	Streams       float64
	Achieved      bool
	EstimatedDays int
	HasEstimate   bool
}

// Progress reports goal completion, or false before the profile is loaded.
func (p *Profile) Progress() (Progress, bool) {
	if p.profile == nil {
		return Progress{}, false
	}
	cur := p.profile.CurrentMetrics
	goals := p.profile.Artist.Goals
	out := Progress{
		Followers: metrics.GoalPercentage(cur.Followers, goals.TargetFollowers),
		Streams:   metrics.GoalPercentage(cur.Streams, goals.TargetMonthlyStreams),
		Achieved:  metrics.GoalAchieved(cur, goals),
	}
	if p.profile.DaysToGoal != nil {
		out.EstimatedDays, out.HasEstimate = *p.profile.DaysToGoal, true
	} else {
		out.EstimatedDays, out.HasEstimate = metrics.EstimatedDaysToGoal(
			cur.Followers, goals.TargetFollowers, p.profile.GrowthRate.FollowersPerWeek)
	}
	return out, true
}

// Load fetches the profile triple and the dashboard. Nothing renders until
// all three of profile, history and timeline have settled. A not-found
// profile is never reloaded.
func (p *Profile) Load() tea.Cmd {
	return p.load(false)
}

// LoadDashboard fetches recommendations and goal progress.
func (p *Profile) LoadDashboard() tea.Cmd {
	return p.loadDashboard(false)
}

// load starts the triple fetch and the dashboard. With requeue set, a fetch
// already in flight is followed by exactly one more once it settles.
func (p *Profile) load(requeue bool) tea.Cmd {
	if p.state == ProfileNotFound {
		return nil
	}
	return tea.Batch(p.fetchProfile(requeue), p.loadDashboard(requeue))
}

func (p *Profile) fetchProfile(requeue bool) tea.Cmd {
	if p.loading {
		p.reloadQueued = p.reloadQueued || requeue
		return nil
	}
	p.loading = true
	p.emit(otel.Event{Kind: otel.KindProfile, Comp: "profile", ArtistID: p.artistID, Tag: p.tag, Msg: "start"})

	ctx, backend := p.ctx, p.backend
	tag, id := p.tag, p.artistID
	join := func() tea.Msg {
		var (
			prof    *model.Profile
			hist    *model.GrowthHistory
			tl      *model.Timeline
			profErr error
		)
		var g errgroup.Group
		g.Go(func() error {
			prof, profErr = backend.Profile(ctx, id)
			return profErr
		})
		g.Go(func() (err error) {
			hist, err = backend.GrowthHistory(ctx, id)
			return err
		})
		g.Go(func() (err error) {
			tl, err = backend.Timeline(ctx, id)
			return err
		})
		err := g.Wait()
		if gateway.IsNotFound(profErr) {
			err = profErr
		}
		if err != nil {
			return profileLoaded{Tag: tag, Err: err}
		}
		return profileLoaded{Tag: tag, Profile: prof, History: hist, Timeline: tl}
	}
	return join
}

func (p *Profile) loadDashboard(requeue bool) tea.Cmd {
	if p.state == ProfileNotFound {
		return nil
	}
	if p.dashboardLoading {
		p.dashboardQueued = p.dashboardQueued || requeue
		return nil
	}
	p.dashboardLoading = true
	ctx, backend := p.ctx, p.backend
	tag, id := p.tag, p.artistID
	return func() tea.Msg {
		d, err := backend.Dashboard(ctx, id)
		return dashboardLoaded{Tag: tag, Dashboard: d, Err: err}
	}
}

// OpenProgressForm shows the progress form, keeping any values from a
// previous failed submission.
func (p *Profile) OpenProgressForm() {
	p.progress.Open = true
}

// CloseProgressForm hides the progress form and clears it. A form that is
// submitting stays open.
func (p *Profile) CloseProgressForm() {
	if p.progress.Submitting {
		return
	}
	p.progress = ProgressForm{}
}

// OpenGoalsForm shows the goals modal prefilled with the current goals.
func (p *Profile) OpenGoalsForm() {
	if p.goals.Open {
		return
	}
	p.goals = GoalsForm{Open: true}
	if p.profile != nil {
		p.goals.Goals = p.profile.Artist.Goals
	}
}

// CloseGoalsForm hides the goals modal. A modal that is submitting stays
// open.
func (p *Profile) CloseGoalsForm() {
	if p.goals.Submitting {
		return
	}
	p.goals = GoalsForm{}
}

// UpdateProgress submits a progress observation. At least one of followers
// or streams must be non-zero. On success a confirmation is shown at once
// and each milestone follows on a strictly increasing delay in server
// order; the profile is then refetched and the form closed. On failure the
// form stays open with its values.
func (p *Profile) UpdateProgress(m model.Metrics, notes string) tea.Cmd {
	if m.Followers == 0 && m.Streams == 0 {
		return p.push(msgNeedMetrics, notify.Warning)
	}
	if p.progress.Submitting {
		return nil
	}
	p.progress = ProgressForm{Open: true, Submitting: true, Metrics: m, Notes: notes}

	ctx, backend := p.ctx, p.backend
	tag, id := p.tag, p.artistID
	sub := model.ProgressSubmission{Metrics: m, Notes: notes}
	return func() tea.Msg {
		res, err := backend.TrackProgress(ctx, id, sub)
		return progressDone{Tag: tag, Metrics: m, Result: res, Err: err}
	}
}

// UpdateGoals replaces the artist's goals. Use ParseGoals to build goals
// from raw input. On failure the modal stays open and nothing local
// changes.
func (p *Profile) UpdateGoals(goals model.Goals) tea.Cmd {
	if p.goals.Submitting {
		return nil
	}
	p.goals = GoalsForm{Open: true, Submitting: true, Goals: goals}

	ctx, backend := p.ctx, p.backend
	tag, id := p.tag, p.artistID
	return func() tea.Msg {
		err := backend.UpdateGoals(ctx, id, goals)
		return goalsDone{Tag: tag, Goals: goals, Err: err}
	}
}

// SetRecommendationStatus moves a recommendation to in_progress or
// completed. The effectiveness score is sent only on completion. Success
// refetches the dashboard.
func (p *Profile) SetRecommendationStatus(recID, status string, score *float64) tea.Cmd {
	if status != model.RecInProgress && status != model.RecCompleted {
		return p.push(msgUnknownRecState, notify.Warning)
	}
	if recID == "" || p.recPending[recID] {
		return nil
	}
	if status != model.RecCompleted {
		score = nil
	}
	p.recPending[recID] = true

	ctx, backend := p.ctx, p.backend
	tag := p.tag
	upd := model.StatusUpdate{Status: status, EffectivenessScore: score}
	return func() tea.Msg {
		err := backend.UpdateRecommendationStatus(ctx, recID, upd)
		return recStatusDone{Tag: tag, RecID: recID, Status: status, Err: err}
	}
}

func (p *Profile) update(msg profileMsg) tea.Cmd {
	switch msg := msg.(type) {
	case profileLoaded:
		p.loading = false
		if msg.Err != nil {
			p.fail(msg.Err)
		} else {
			p.profile, p.history, p.timeline = msg.Profile, msg.History, msg.Timeline
			p.state = ProfileReady
			p.errMsg = ""
			p.emit(otel.Event{Kind: otel.KindProfile, Comp: "profile", ArtistID: p.artistID, Tag: p.tag, Msg: "ready"})
		}
		queued := p.reloadQueued
		p.reloadQueued = false
		if !queued || p.state == ProfileNotFound {
			return nil
		}
		return p.fetchProfile(false)

	case dashboardLoaded:
		p.dashboardLoading = false
		if msg.Err != nil {
			p.dashboardErr = gateway.Message(msg.Err)
			logging.Warn("load dashboard", "artist", p.artistID, "err", msg.Err)
		} else {
			p.dashboard = msg.Dashboard
			p.dashboardErr = ""
		}
		if !p.dashboardQueued {
			return nil
		}
		p.dashboardQueued = false
		return p.loadDashboard(false)

	case progressDone:
		p.progress.Submitting = false
		if msg.Err != nil {
			p.mutationFailed(gateway.OpTrackProgress, msg.Err)
			return p.push(gateway.Fallback(gateway.OpTrackProgress), notify.Error)
		}
		if p.profile != nil {
			p.profile.CurrentMetrics = msg.Metrics
		}
		p.mutated(gateway.OpTrackProgress)

		cmds := []tea.Cmd{p.push(msgProgressSaved, notify.Success)}
		if msg.Result != nil {
			for i, m := range msg.Result.MilestonesHit {
				delay := p.timing.MilestoneDelay + p.timing.MilestoneStagger*time.Duration(i)
				cmds = append(cmds, p.queue.PushAfter(delay, m.Description, notify.Milestone))
			}
		}
		cmds = append(cmds, p.after(p.timing.ProgressCloseDelay, refetch{Tag: p.tag, Close: formProgress}))
		return tea.Batch(cmds...)

	case goalsDone:
		p.goals.Submitting = false
		if msg.Err != nil {
			p.mutationFailed(gateway.OpUpdateGoals, msg.Err)
			return p.push(gateway.Fallback(gateway.OpUpdateGoals), notify.Error)
		}
		p.mutated(gateway.OpUpdateGoals)
		return tea.Batch(
			p.push(msgGoalsSaved, notify.Success),
			p.after(p.timing.GoalsCloseDelay, refetch{Tag: p.tag, Close: formGoals}),
		)

	case recStatusDone:
		delete(p.recPending, msg.RecID)
		if msg.Err != nil {
			p.mutationFailed(gateway.OpRecStatus, msg.Err)
			return p.push(gateway.Fallback(gateway.OpRecStatus), notify.Error)
		}
		p.mutated(gateway.OpRecStatus)
		text, kind := msgRecStarted, notify.Info
		if msg.Status == model.RecCompleted {
			text, kind = msgRecCompleted, notify.Success
		}
		return tea.Batch(p.push(text, kind), p.loadDashboard(true))

	case refetch:
		switch msg.Close {
		case formProgress:
			p.progress = ProgressForm{}
		case formGoals:
			p.goals = GoalsForm{}
		}
		return p.load(true)
	}
	return nil
}

func (p *Profile) fail(err error) {
	if gateway.IsNotFound(err) {
		p.state = ProfileNotFound
		p.errMsg = "Artist not found"
	} else {
		p.state = ProfileError
		p.errMsg = gateway.Message(err)
	}
	logging.Warn("load profile", "artist", p.artistID, "state", p.state.String(), "err", err)
	p.emit(otel.Event{
		Level: otel.LevelWarn, Kind: otel.KindProfileErr, Comp: "profile",
		ArtistID: p.artistID, Tag: p.tag, Err: err.Error(), Msg: p.state.String(),
	})
}

func (p *Profile) mutated(op string) {
	p.emit(otel.Event{Kind: otel.KindMutation, Comp: "profile", ArtistID: p.artistID, Tag: p.tag, Op: op})
}

func (p *Profile) mutationFailed(op string, err error) {
	logging.Warn("profile mutation failed", "artist", p.artistID, "op", op, "err", err)
	p.emit(otel.Event{
		Level: otel.LevelWarn, Kind: otel.KindMutation, Comp: "profile",
		ArtistID: p.artistID, Tag: p.tag, Op: op, Err: err.Error(),
	})
}
