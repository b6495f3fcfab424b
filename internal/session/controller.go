// Package session holds the client-side state of a coaching session: the
// current view, the analytics roster, the last analysis, onboarding and the
// active artist profile.
//
// Operations never block. Each returns a tea.Cmd that performs the remote
// call; the resulting message must be fed back through Controller.Update,
// which is the only place state changes. Responses that arrive for a target
// the operator has since left are discarded.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/growthdesk/internal/config"
	"github.com/abelbrown/growthdesk/internal/gateway"
	"github.com/abelbrown/growthdesk/internal/logging"
	"github.com/abelbrown/growthdesk/internal/metrics"
	"github.com/abelbrown/growthdesk/internal/model"
	"github.com/abelbrown/growthdesk/internal/notify"
	"github.com/abelbrown/growthdesk/internal/otel"
	"github.com/abelbrown/growthdesk/internal/store"
)

// View is the top-level screen.
type View string

const (
	ViewAnalytics  View = "analytics"
	ViewRoster     View = "new-artists"
	ViewOnboarding View = "onboarding"
	ViewProfile    View = "profile"
)

// Notification copy.
const (
	msgRequiredFields = "Please fill in all required fields"
	msgSelectArtist   = "Please select an artist first"
	msgWelcome        = "Welcome %s! Your journey begins now!"
)

// Backend is the subset of the gateway the session drives.
// *gateway.Client satisfies it.
type Backend interface {
	ListArtists(ctx context.Context) ([]model.Artist, error)
	ListNewArtists(ctx context.Context) ([]model.Artist, error)
	Analyze(ctx context.Context, artistID string) (*model.AnalysisResult, error)
	ChurnPrediction(ctx context.Context, artistID string) (*model.ChurnPrediction, error)
	TrainChurn(ctx context.Context, artistID string) (*model.ChurnTraining, error)
	ClusteringComparison(ctx context.Context, artistID string) (*model.ClusteringComparison, error)
	EmotionAnalysis(ctx context.Context, artistID string) (*model.EmotionAnalysis, error)
	Onboard(ctx context.Context, req model.Onboarding) (*model.OnboardResult, error)
	Profile(ctx context.Context, artistID string) (*model.Profile, error)
	GrowthHistory(ctx context.Context, artistID string) (*model.GrowthHistory, error)
	Timeline(ctx context.Context, artistID string) (*model.Timeline, error)
	Dashboard(ctx context.Context, artistID string) (*model.Dashboard, error)
	TrackProgress(ctx context.Context, artistID string, sub model.ProgressSubmission) (*model.ProgressResult, error)
	UpdateGoals(ctx context.Context, artistID string, goals model.Goals) error
	UpdateRecommendationStatus(ctx context.Context, recID string, upd model.StatusUpdate) error
}

// Journal records shown notifications. *store.Store satisfies it.
type Journal interface {
	Record(e store.Entry) error
}

// Timing holds the delays between a mutation and its follow-up effects.
type Timing struct {
	MilestoneDelay     time.Duration
	MilestoneStagger   time.Duration
	ProgressCloseDelay time.Duration
	GoalsCloseDelay    time.Duration
	OnboardDelay       time.Duration
}

// DefaultTiming matches the stock configuration.
func DefaultTiming() Timing {
	return TimingFromConfig(config.Default().UI)
}

// TimingFromConfig extracts the session delays from UI config.
func TimingFromConfig(ui config.UIConfig) Timing {
	return Timing{
		MilestoneDelay:     ui.MilestoneDelay,
		MilestoneStagger:   ui.MilestoneStagger,
		ProgressCloseDelay: ui.ProgressCloseDelay,
		GoalsCloseDelay:    ui.GoalsCloseDelay,
		OnboardDelay:       ui.OnboardDelay,
	}
}

// Options wires a Controller. Backend and Queue are required.
type Options struct {
	Context  context.Context
	Backend  Backend
	Queue    *notify.Queue
	Events   *otel.Logger
	Journal  Journal
	Timing   Timing
	Schedule notify.Scheduler
}

// deps is shared by the session and its profile sub-controllers.
type deps struct {
	ctx      context.Context
	backend  Backend
	queue    *notify.Queue
	events   *otel.Logger
	timing   Timing
	schedule notify.Scheduler
}

func (d *deps) push(message string, kind notify.Kind) tea.Cmd {
	_, cmd := d.queue.Push(message, kind)
	return cmd
}

// after delivers msg once d has elapsed. A non-positive d delivers it on the
// next update.
func (d *deps) after(delay time.Duration, msg tea.Msg) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return d.schedule(delay, func(time.Time) tea.Msg { return msg })
}

func (d *deps) emit(e otel.Event) {
	d.events.Emit(e)
}

// Controller is the session state machine.
type Controller struct {
	deps
	journal Journal

	view View

	artists       []model.Artist
	rosterErr     string
	rosterLoading bool

	newArtists        []model.Artist
	newArtistsErr     string
	newArtistsLoading bool

	selected    string
	analysis    *model.AnalysisResult
	clusterRows []metrics.ClusterRow
	faults      []metrics.Fault
	analyzing   bool
	analysisErr string

	churn         *model.ChurnPrediction
	churnTraining *model.ChurnTraining
	churnLoading  bool

	clustering        *model.ClusteringComparison
	modelRows         []metrics.ModelRow
	clusteringErr     string
	clusteringLoading bool

	emotions        *model.EmotionAnalysis
	emotionShares   []metrics.EmotionShare
	emotionsErr     string
	emotionsLoading bool

	onboarding bool
	onboardID  string

	profile *Profile
}

// New creates a Controller on the analytics view.
func New(opts Options) *Controller {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Schedule == nil {
		opts.Schedule = tea.Tick
	}
	c := &Controller{
		deps: deps{
			ctx:      opts.Context,
			backend:  opts.Backend,
			queue:    opts.Queue,
			events:   opts.Events,
			timing:   opts.Timing,
			schedule: opts.Schedule,
		},
		journal: opts.Journal,
		view:    ViewAnalytics,
	}
	c.queue.OnPush = c.journalPush
	c.queue.OnRemove = c.observeRemove
	return c
}

func (c *Controller) journalPush(n notify.Notification) {
	c.emit(otel.Event{
		Level: otel.LevelInfo, Kind: otel.KindNotify, Comp: "session",
		ArtistID: c.contextArtist(), Msg: n.Message,
		Extra: map[string]any{"kind": string(n.Kind), "id": n.ID},
	})
	if c.journal == nil {
		return
	}
	err := c.journal.Record(store.Entry{
		ID:       n.ID,
		Kind:     string(n.Kind),
		Message:  n.Message,
		ArtistID: c.contextArtist(),
		View:     string(c.view),
		Created:  n.Created,
	})
	if err != nil {
		logging.Warn("journal notification", "err", err)
		c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindStoreError, Comp: "session", Err: err.Error()})
	}
}

func (c *Controller) observeRemove(n notify.Notification, expired bool) {
	kind := otel.KindDismiss
	if expired {
		kind = otel.KindExpire
	}
	c.emit(otel.Event{Level: otel.LevelDebug, Kind: kind, Comp: "session", Extra: map[string]any{"id": n.ID}})
}

// contextArtist is the artist the operator is looking at, if any.
func (c *Controller) contextArtist() string {
	if c.view == ViewProfile && c.profile != nil {
		return c.profile.artistID
	}
	return c.selected
}

// Init loads the analytics roster.
func (c *Controller) Init() tea.Cmd {
	return c.LoadRoster()
}

// View returns the current screen.
func (c *Controller) View() View { return c.view }

// Queue exposes the notification queue for rendering and dismissal.
func (c *Controller) Queue() *notify.Queue { return c.queue }

// Artists returns the analytics roster.
func (c *Controller) Artists() []model.Artist { return c.artists }

// RosterError is the persistent roster banner, empty when the last load
// succeeded.
func (c *Controller) RosterError() string { return c.rosterErr }

// RosterLoading reports whether the analytics roster is being fetched.
func (c *Controller) RosterLoading() bool { return c.rosterLoading }

// NewArtists returns the growth-program roster.
func (c *Controller) NewArtists() []model.Artist { return c.newArtists }

// NewArtistsError is the growth roster banner.
func (c *Controller) NewArtistsError() string { return c.newArtistsErr }

// NewArtistsLoading reports whether the growth roster is being fetched.
func (c *Controller) NewArtistsLoading() bool { return c.newArtistsLoading }

// Selected returns the artist chosen for analysis.
func (c *Controller) Selected() string { return c.selected }

// Analysis returns the last successful analysis for the selected artist.
func (c *Controller) Analysis() *model.AnalysisResult { return c.analysis }

// ClusterRows returns the cluster table of the current analysis.
func (c *Controller) ClusterRows() []metrics.ClusterRow { return c.clusterRows }

// Faults lists cluster statistics missing from the current analysis.
func (c *Controller) Faults() []metrics.Fault { return c.faults }

// Analyzing reports whether an analysis is in flight.
func (c *Controller) Analyzing() bool { return c.analyzing }

// AnalysisError is the transient error of the last analysis attempt.
func (c *Controller) AnalysisError() string { return c.analysisErr }

// Churn returns the churn prediction for the selected artist.
func (c *Controller) Churn() *model.ChurnPrediction { return c.churn }

// ChurnLoading reports whether a churn prediction is in flight.
func (c *Controller) ChurnLoading() bool { return c.churnLoading }

// ChurnTraining is the last churn model fit for the selected artist, nil
// when the prediction used an existing model.
func (c *Controller) ChurnTraining() *model.ChurnTraining { return c.churnTraining }

// Clustering returns the clustering comparison for the selected artist.
func (c *Controller) Clustering() *model.ClusteringComparison { return c.clustering }

// ModelRows returns the compared clustering models in display form.
func (c *Controller) ModelRows() []metrics.ModelRow { return c.modelRows }

// ClusteringError is the last clustering comparison failure.
func (c *Controller) ClusteringError() string { return c.clusteringErr }

// ClusteringLoading reports whether a clustering comparison is in flight.
func (c *Controller) ClusteringLoading() bool { return c.clusteringLoading }

// Emotions returns the emotion analysis for the selected artist.
func (c *Controller) Emotions() *model.EmotionAnalysis { return c.emotions }

// EmotionShares returns the emotion mix of the current emotion analysis.
func (c *Controller) EmotionShares() []metrics.EmotionShare { return c.emotionShares }

// EmotionsError is the last emotion analysis failure.
func (c *Controller) EmotionsError() string { return c.emotionsErr }

// EmotionsLoading reports whether an emotion analysis is in flight.
func (c *Controller) EmotionsLoading() bool { return c.emotionsLoading }

// Onboarding reports whether an onboarding request is in flight.
func (c *Controller) Onboarding() bool { return c.onboarding }

// OnboardedID is the id of the last artist onboarded this session.
func (c *Controller) OnboardedID() string { return c.onboardID }

// Profile returns the active profile sub-controller, nil outside the
// profile view.
func (c *Controller) Profile() *Profile { return c.profile }

// Navigate switches to a top-level view. Leaving the profile view discards
// its sub-controller. Use OpenProfile to enter the profile view.
func (c *Controller) Navigate(v View) tea.Cmd {
	if v == ViewProfile {
		if c.profile == nil {
			return nil
		}
		return c.OpenProfile(c.profile.artistID)
	}
	from := c.view
	c.view = v
	c.profile = nil
	c.emit(otel.Event{Kind: otel.KindNavigate, Comp: "session", Msg: string(from) + " -> " + string(v)})

	switch v {
	case ViewRoster:
		return c.LoadNewArtists()
	case ViewAnalytics:
		if len(c.artists) == 0 && c.rosterErr == "" {
			return c.LoadRoster()
		}
	}
	return nil
}

// OpenProfile shows an artist's profile. A different artist gets a fresh
// sub-controller; nothing carries over.
func (c *Controller) OpenProfile(artistID string) tea.Cmd {
	if artistID == "" {
		return nil
	}
	if c.view == ViewProfile && c.profile != nil && c.profile.artistID == artistID {
		return nil
	}
	c.view = ViewProfile
	c.profile = newProfile(&c.deps, artistID)
	c.emit(otel.Event{Kind: otel.KindNavigate, Comp: "session", ArtistID: artistID, Tag: c.profile.tag, Msg: "-> profile"})
	return c.profile.Load()
}

// LoadRoster fetches the analytics roster. Success replaces the list and
// clears the banner; failure sets the banner and keeps the previous list.
func (c *Controller) LoadRoster() tea.Cmd {
	if c.rosterLoading {
		return nil
	}
	c.rosterLoading = true
	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		artists, err := backend.ListArtists(ctx)
		return rosterLoaded{Artists: artists, Err: err}
	}
}

// LoadNewArtists fetches the growth-program roster.
func (c *Controller) LoadNewArtists() tea.Cmd {
	if c.newArtistsLoading {
		return nil
	}
	c.newArtistsLoading = true
	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		artists, err := backend.ListNewArtists(ctx)
		return newArtistsLoaded{Artists: artists, Err: err}
	}
}

// Select chooses the artist to analyze. Changing the selection drops the
// previous artist's results.
func (c *Controller) Select(artistID string) {
	if artistID == c.selected {
		return
	}
	c.selected = artistID
	c.analysis = nil
	c.clusterRows = nil
	c.faults = nil
	c.analysisErr = ""
	c.churn = nil
	c.churnTraining = nil
	c.clustering = nil
	c.modelRows = nil
	c.clusteringErr = ""
	c.emotions = nil
	c.emotionShares = nil
	c.emotionsErr = ""
}

// RunAnalysis analyzes the selected artist. While an analysis is in flight
// further calls are rejected and return nil.
func (c *Controller) RunAnalysis() tea.Cmd {
	if c.selected == "" {
		return c.push(msgSelectArtist, notify.Warning)
	}
	if c.analyzing {
		c.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindRejected, Comp: "session", ArtistID: c.selected, Op: gateway.OpAnalyze})
		return nil
	}
	c.analyzing = true
	c.analysisErr = ""
	artistID := c.selected
	c.emit(otel.Event{Kind: otel.KindAnalysis, Comp: "session", ArtistID: artistID, Msg: "start"})

	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		res, err := backend.Analyze(ctx, artistID)
		return analysisDone{ArtistID: artistID, Result: res, Err: err}
	}
}

// LoadChurn fetches churn risk buckets for the selected artist. When the
// backend has no churn model yet one is trained first.
func (c *Controller) LoadChurn() tea.Cmd {
	return c.loadChurn(false)
}

// RetrainChurn fits the churn model on the selected artist's listeners and
// then predicts.
func (c *Controller) RetrainChurn() tea.Cmd {
	return c.loadChurn(true)
}

func (c *Controller) loadChurn(retrain bool) tea.Cmd {
	if c.selected == "" {
		return c.push(msgSelectArtist, notify.Warning)
	}
	if c.churnLoading {
		return nil
	}
	c.churnLoading = true
	artistID := c.selected
	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		res, training, err := gateway.PredictChurn(ctx, backend, artistID, retrain)
		return churnDone{ArtistID: artistID, Result: res, Training: training, Err: err}
	}
}

// LoadClustering compares clustering models on the selected artist's
// listeners.
func (c *Controller) LoadClustering() tea.Cmd {
	if c.selected == "" {
		return c.push(msgSelectArtist, notify.Warning)
	}
	if c.clusteringLoading {
		return nil
	}
	c.clusteringLoading = true
	artistID := c.selected
	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		res, err := backend.ClusteringComparison(ctx, artistID)
		return clusteringDone{ArtistID: artistID, Result: res, Err: err}
	}
}

// LoadEmotions analyzes the emotions in the selected artist's comments.
func (c *Controller) LoadEmotions() tea.Cmd {
	if c.selected == "" {
		return c.push(msgSelectArtist, notify.Warning)
	}
	if c.emotionsLoading {
		return nil
	}
	c.emotionsLoading = true
	artistID := c.selected
	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		res, err := backend.EmotionAnalysis(ctx, artistID)
		return emotionsDone{ArtistID: artistID, Result: res, Err: err}
	}
}

// Onboard registers a new artist. Name and email are required; a
// validation failure pushes a warning and makes no call.
func (c *Controller) Onboard(req model.Onboarding) tea.Cmd {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		return c.push(msgRequiredFields, notify.Warning)
	}
	if c.onboarding {
		return nil
	}
	c.onboarding = true
	ctx, backend := c.ctx, c.backend
	return func() tea.Msg {
		res, err := backend.Onboard(ctx, req)
		return onboarded{Name: req.Name, Result: res, Err: err}
	}
}

// Update applies a message and returns any follow-up command.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notify.Expired, notify.Delayed:
		return c.queue.Update(msg)

	case rosterLoaded:
		c.rosterLoading = false
		if msg.Err != nil {
			c.rosterErr = gateway.Fallback(gateway.OpListArtists)
			logging.Warn("load roster", "err", msg.Err)
			c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindRoster, Comp: "session", Err: msg.Err.Error()})
			return nil
		}
		c.artists = msg.Artists
		c.rosterErr = ""
		c.emit(otel.Event{Kind: otel.KindRoster, Comp: "session", Count: len(msg.Artists)})
		return nil

	case newArtistsLoaded:
		c.newArtistsLoading = false
		if msg.Err != nil {
			c.newArtistsErr = gateway.Message(msg.Err)
			logging.Warn("load new artists", "err", msg.Err)
			return nil
		}
		c.newArtists = msg.Artists
		c.newArtistsErr = ""
		return nil

	case analysisDone:
		return c.applyAnalysis(msg)

	case churnDone:
		c.churnLoading = false
		if msg.ArtistID != c.selected {
			c.stale(msg.ArtistID, "", gateway.OpChurn)
			return nil
		}
		if msg.Err != nil {
			c.churn = nil
			c.churnTraining = msg.Training
			logging.Warn("churn prediction", "artist", msg.ArtistID, "err", msg.Err)
			c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindChurn, Comp: "session", ArtistID: msg.ArtistID, Err: msg.Err.Error()})
			return c.push(gateway.Message(msg.Err), notify.Error)
		}
		c.churn = msg.Result
		c.churnTraining = msg.Training
		e := otel.Event{Kind: otel.KindChurn, Comp: "session", ArtistID: msg.ArtistID}
		if msg.Training != nil {
			e.Msg = "trained"
		}
		c.emit(e)
		return nil

	case clusteringDone:
		c.clusteringLoading = false
		if msg.ArtistID != c.selected {
			c.stale(msg.ArtistID, "", gateway.OpClustering)
			return nil
		}
		if msg.Err != nil {
			c.clustering, c.modelRows = nil, nil
			c.clusteringErr = gateway.Message(msg.Err)
			logging.Warn("clustering comparison", "artist", msg.ArtistID, "err", msg.Err)
			c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindAdvanced, Comp: "session", ArtistID: msg.ArtistID, Op: gateway.OpClustering, Err: msg.Err.Error()})
			return nil
		}
		c.clustering = msg.Result
		c.modelRows = metrics.ModelRows(msg.Result)
		c.clusteringErr = ""
		c.emit(otel.Event{Kind: otel.KindAdvanced, Comp: "session", ArtistID: msg.ArtistID, Op: gateway.OpClustering, Count: len(c.modelRows)})
		return nil

	case emotionsDone:
		c.emotionsLoading = false
		if msg.ArtistID != c.selected {
			c.stale(msg.ArtistID, "", gateway.OpEmotions)
			return nil
		}
		if msg.Err != nil {
			c.emotions, c.emotionShares = nil, nil
			c.emotionsErr = gateway.Message(msg.Err)
			logging.Warn("emotion analysis", "artist", msg.ArtistID, "err", msg.Err)
			c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindAdvanced, Comp: "session", ArtistID: msg.ArtistID, Op: gateway.OpEmotions, Err: msg.Err.Error()})
			return nil
		}
		c.emotions = msg.Result
		c.emotionShares = metrics.EmotionShares(msg.Result.Analysis)
		c.emotionsErr = ""
		c.emit(otel.Event{Kind: otel.KindAdvanced, Comp: "session", ArtistID: msg.ArtistID, Op: gateway.OpEmotions, Count: msg.Result.Analysis.TotalComments})
		return nil

	case onboarded:
		c.onboarding = false
		if msg.Err != nil {
			logging.Warn("onboard", "err", msg.Err)
			c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindOnboard, Comp: "session", Err: msg.Err.Error()})
			return c.push(gateway.Fallback(gateway.OpOnboard), notify.Error)
		}
		c.onboardID = msg.Result.ArtistID
		c.emit(otel.Event{Kind: otel.KindOnboard, Comp: "session", ArtistID: c.onboardID, Msg: msg.Name})
		return tea.Batch(
			c.push(fmt.Sprintf(msgWelcome, msg.Name), notify.Success),
			c.after(c.timing.OnboardDelay, enterProfile{ArtistID: c.onboardID}),
		)

	case enterProfile:
		// The operator may have moved on during the delay.
		if c.view != ViewOnboarding {
			return nil
		}
		return c.OpenProfile(msg.ArtistID)

	case profileMsg:
		if c.profile == nil || c.profile.tag != msg.profileTag() {
			c.stale("", msg.profileTag(), "")
			return nil
		}
		return c.profile.update(msg)
	}
	return nil
}

func (c *Controller) applyAnalysis(msg analysisDone) tea.Cmd {
	c.analyzing = false
	if msg.ArtistID != c.selected {
		c.stale(msg.ArtistID, "", gateway.OpAnalyze)
		return nil
	}
	if msg.Err != nil {
		c.analysis = nil
		c.clusterRows = nil
		c.faults = nil
		c.analysisErr = gateway.Message(msg.Err)
		logging.Warn("analysis failed", "artist", msg.ArtistID, "err", msg.Err)
		c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindAnalysis, Comp: "session", ArtistID: msg.ArtistID, Err: msg.Err.Error()})
		return nil
	}

	c.analysis = msg.Result
	c.clusterRows, c.faults = metrics.ClusterRows(msg.Result.ClusterStatistics)
	for _, f := range c.faults {
		logging.Warn("missing cluster statistic", "artist", msg.ArtistID, "cluster", f.Cluster, "stat", f.Stat)
		c.emit(otel.Event{
			Level: otel.LevelWarn, Kind: otel.KindIntegrity, Comp: "metrics",
			ArtistID: msg.ArtistID, Msg: f.String(),
		})
	}
	c.emit(otel.Event{Kind: otel.KindAnalysis, Comp: "session", ArtistID: msg.ArtistID, Count: len(c.clusterRows), Msg: "done"})
	return nil
}

func (c *Controller) stale(artistID, tag, op string) {
	c.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindStale, Comp: "session", ArtistID: artistID, Tag: tag, Op: op})
}
