package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Operation names, used in errors and events.
const (
	OpListArtists    = "list-artists"
	OpListNewArtists = "list-new-artists"
	OpAnalyze        = "analyze"
	OpOnboard        = "onboard"
	OpProfile        = "profile"
	OpGrowthHistory  = "growth-history"
	OpTimeline       = "timeline"
	OpDashboard      = "growth-dashboard"
	OpTrackProgress  = "track-progress"
	OpUpdateGoals    = "update-goals"
	OpRecStatus      = "update-recommendation-status"
	OpChurn          = "churn-prediction"
	OpTrainChurn     = "churn-training"
	OpClustering     = "clustering-comparison"
	OpEmotions       = "emotion-analysis"
	OpHealth         = "health"
)

// fallbacks are shown when the backend gives no usable error text.
var fallbacks = map[string]string{
	OpListArtists:    "Failed to load artists. Please ensure the backend is running.",
	OpListNewArtists: "Failed to load new artists.",
	OpAnalyze:        "Analysis failed. Please try again or check the backend.",
	OpOnboard:        "Onboarding failed. Please try again.",
	OpProfile:        "Failed to load profile.",
	OpGrowthHistory:  "Failed to load growth history.",
	OpTimeline:       "Failed to load timeline.",
	OpDashboard:      "Failed to load recommendations.",
	OpTrackProgress:  "Failed to update progress. Please try again.",
	OpUpdateGoals:    "Failed to update goals. Please try again.",
	OpRecStatus:      "Failed to update recommendation status",
	OpChurn:          "Churn prediction failed.",
	OpTrainChurn:     "Churn model training failed.",
	OpClustering:     "Clustering comparison failed.",
	OpEmotions:       "Emotion analysis failed.",
	OpHealth:         "Backend is not responding.",
}

// Error is a normalized gateway failure. Status is 0 for transport errors.
type Error struct {
	Op      string
	Status  int
	Message string // backend "error" field, if any
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("gateway: %s: %d: %s", e.Op, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("gateway: %s: %d: %v", e.Op, e.Status, e.Err)
	default:
		return fmt.Sprintf("gateway: %s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a 404 from the backend.
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

func (e *Error) retryable() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.NotFound()
}

// IsUntrainedModel reports whether err is the backend refusing a churn
// prediction because no model has been trained yet.
func IsUntrainedModel(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Op == OpChurn && ge.Status == http.StatusBadRequest
}

// Message is the operator-facing text for err: the backend's own message
// when it sent one, otherwise the operation's fallback. Raw transport
// errors are never returned.
func Message(err error) string {
	var ge *Error
	if !errors.As(err, &ge) {
		return "Something went wrong. Please try again."
	}
	if ge.Message != "" {
		return ge.Message
	}
	return Fallback(ge.Op)
}

// Fallback is the static message for op.
func Fallback(op string) string {
	if m, ok := fallbacks[op]; ok {
		return m
	}
	return "Request failed. Please try again."
}
