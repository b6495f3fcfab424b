package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/abelbrown/growthdesk/internal/model"
)

// ListArtists returns the analytics roster.
func (c *Client) ListArtists(ctx context.Context) ([]model.Artist, error) {
	var out []model.Artist
	if err := c.get(ctx, OpListArtists, "/artists", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListNewArtists returns artists enrolled in the growth program.
func (c *Client) ListNewArtists(ctx context.Context) ([]model.Artist, error) {
	var out []model.Artist
	if err := c.get(ctx, OpListNewArtists, "/artists/new-artists", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Analyze runs the remote segmentation pipeline. It is a POST and is never
// retried.
func (c *Client) Analyze(ctx context.Context, artistID string) (*model.AnalysisResult, error) {
	var out model.AnalysisResult
	if err := c.send(ctx, OpAnalyze, http.MethodPost, "/analyze/"+url.PathEscape(artistID), nil, &out); err != nil {
		return nil, err
	}
	out.ArtistID = artistID
	return &out, nil
}

// Onboard registers a new artist and returns its id.
func (c *Client) Onboard(ctx context.Context, req model.Onboarding) (*model.OnboardResult, error) {
	var out model.OnboardResult
	if err := c.send(ctx, OpOnboard, http.MethodPost, "/artists/onboard", req, &out); err != nil {
		return nil, err
	}
	if out.ArtistID == "" {
		return nil, &Error{Op: OpOnboard, Status: http.StatusBadGateway, Message: "backend returned no artist id"}
	}
	return &out, nil
}

// Profile fetches an artist's profile. A 404 is reported via IsNotFound.
func (c *Client) Profile(ctx context.Context, artistID string) (*model.Profile, error) {
	var out model.Profile
	if err := c.get(ctx, OpProfile, artistPath(artistID, "/profile"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GrowthHistory fetches dated observations and milestones.
func (c *Client) GrowthHistory(ctx context.Context, artistID string) (*model.GrowthHistory, error) {
	var out model.GrowthHistory
	if err := c.get(ctx, OpGrowthHistory, artistPath(artistID, "/growth-history"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Timeline fetches the artist's journey events.
func (c *Client) Timeline(ctx context.Context, artistID string) (*model.Timeline, error) {
	var out model.Timeline
	if err := c.get(ctx, OpTimeline, artistPath(artistID, "/timeline"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Dashboard fetches pending recommendations and goal progress.
func (c *Client) Dashboard(ctx context.Context, artistID string) (*model.Dashboard, error) {
	var out model.Dashboard
	if err := c.get(ctx, OpDashboard, artistPath(artistID, "/growth-dashboard"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackProgress submits a progress observation.
func (c *Client) TrackProgress(ctx context.Context, artistID string, sub model.ProgressSubmission) (*model.ProgressResult, error) {
	var out model.ProgressResult
	if err := c.send(ctx, OpTrackProgress, http.MethodPost, artistPath(artistID, "/track-progress"), sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGoals replaces the artist's goals.
func (c *Client) UpdateGoals(ctx context.Context, artistID string, goals model.Goals) error {
	return c.send(ctx, OpUpdateGoals, http.MethodPut, artistPath(artistID, "/update-goals"), goals, nil)
}

// UpdateRecommendationStatus moves a recommendation to a new status.
func (c *Client) UpdateRecommendationStatus(ctx context.Context, recID string, upd model.StatusUpdate) error {
	path := "/recommendations/" + url.PathEscape(recID) + "/update-status"
	return c.send(ctx, OpRecStatus, http.MethodPatch, path, upd, nil)
}

// ChurnPrediction fetches churn risk buckets for an artist's listeners. The
// backend answers 400 until a model has been trained; see IsUntrainedModel.
func (c *Client) ChurnPrediction(ctx context.Context, artistID string) (*model.ChurnPrediction, error) {
	var out model.ChurnPrediction
	if err := c.get(ctx, OpChurn, advancedPath("/churn-prediction/", artistID, "/predict"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrainChurn fits the churn model on an artist's listeners. It is a POST and
// is never retried.
func (c *Client) TrainChurn(ctx context.Context, artistID string) (*model.ChurnTraining, error) {
	var out model.ChurnTraining
	if err := c.send(ctx, OpTrainChurn, http.MethodPost, advancedPath("/churn-prediction/", artistID, "/train"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClusteringComparison scores several clustering models on an artist's
// listeners.
func (c *Client) ClusteringComparison(ctx context.Context, artistID string) (*model.ClusteringComparison, error) {
	var out model.ClusteringComparison
	if err := c.get(ctx, OpClustering, advancedPath("/clustering-comparison/", artistID, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmotionAnalysis classifies the emotions in an artist's comments. The
// backend answers 503 while its model is still loading.
func (c *Client) EmotionAnalysis(ctx context.Context, artistID string) (*model.EmotionAnalysis, error) {
	var out model.EmotionAnalysis
	if err := c.get(ctx, OpEmotions, advancedPath("/emotion-analysis/", artistID, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, OpHealth, "/health", nil)
}
