package session

import "github.com/abelbrown/growthdesk/internal/model"

// Result messages. Commands returned by the controllers resolve to one of
// these; feed every message back through Controller.Update.

type rosterLoaded struct {
	Artists []model.Artist
	Err     error
}

type newArtistsLoaded struct {
	Artists []model.Artist
	Err     error
}

type analysisDone struct {
	ArtistID string
	Result   *model.AnalysisResult
	Err      error
}

type churnDone struct {
	ArtistID string
	Result   *model.ChurnPrediction
	Training *model.ChurnTraining
	Err      error
}

type clusteringDone struct {
	ArtistID string
	Result   *model.ClusteringComparison
	Err      error
}

type emotionsDone struct {
	ArtistID string
	Result   *model.EmotionAnalysis
	Err      error
}

type onboarded struct {
	Name   string
	Result *model.OnboardResult
	Err    error
}

// enterProfile is the delayed hop from onboarding to the new profile.
type enterProfile struct {
	ArtistID string
}

// profileMsg is implemented by every message owned by a Profile. The tag
// identifies the Profile instance that issued the request.
type profileMsg interface {
	profileTag() string
}

type profileLoaded struct {
	Tag      string
	Profile  *model.Profile
	History  *model.GrowthHistory
	Timeline *model.Timeline
	Err      error
}

type dashboardLoaded struct {
	Tag       string
	Dashboard *model.Dashboard
	Err       error
}

type progressDone struct {
	Tag     string
	Metrics model.Metrics
	Result  *model.ProgressResult
	Err     error
}

type goalsDone struct {
	Tag   string
	Goals model.Goals
	Err   error
}

type recStatusDone struct {
	Tag    string
	RecID  string
	Status string
	Err    error
}

// refetch reloads the profile and closes the named form.
type refetch struct {
	Tag   string
	Close form
}

func (m profileLoaded) profileTag() string   { return m.Tag }
func (m dashboardLoaded) profileTag() string { return m.Tag }
func (m progressDone) profileTag() string    { return m.Tag }
func (m goalsDone) profileTag() string       { return m.Tag }
func (m recStatusDone) profileTag() string   { return m.Tag }
func (m refetch) profileTag() string         { return m.Tag }
