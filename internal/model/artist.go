// Package model holds the wire and domain types exchanged with the
// analytics backend.
//
// Types mirror the backend's JSON shapes. Identifiers are the backend's
// string "_id" values and are treated as opaque.
package model

// Goals are the targets an artist is working toward.
type Goals struct {
	TargetFollowers      int `json:"target_followers"`
	TargetMonthlyStreams int `json:"target_monthly_streams"`
	TimelineMonths       int `json:"timeline_months"`
}

// GoalTimelineOptions are the timeline lengths offered when setting goals.
var GoalTimelineOptions = []int{6, 12, 18, 24}

// Metrics is a single progress observation.
type Metrics struct {
	Followers      int     `json:"followers"`
	Streams        int     `json:"streams"`
	EngagementRate float64 `json:"engagement_rate"`
	NewListeners   int     `json:"new_listeners"`
}

// StartingMetrics is what an artist reports at onboarding time.
type StartingMetrics struct {
	TotalFollowers int      `json:"total_followers"`
	MonthlyStreams int      `json:"monthly_streams"`
	Platforms      []string `json:"platforms,omitempty"`
}

// Artist is a roster entry or the artist section of a profile.
// Roster entries only populate ID, Name, Genre and Location.
type Artist struct {
	ID              string           `json:"_id"`
	Name            string           `json:"artist_name"`
	Genre           string           `json:"genre,omitempty"`
	Location        string           `json:"location,omitempty"`
	Email           string           `json:"email,omitempty"`
	Status          string           `json:"status,omitempty"`
	Goals           Goals            `json:"goals"`
	StartingMetrics *StartingMetrics `json:"current_metrics,omitempty"`
	MentorMatch     string           `json:"mentor_match,omitempty"`
}

// Artist lifecycle statuses reported by the new-artists roster.
const (
	StatusOnboarding   = "onboarding"
	StatusGrowing      = "growing"
	StatusGoalAchieved = "goal_achieved"
	StatusSuperstar    = "superstar"
)

// Onboarding is the request body for registering a new artist.
type Onboarding struct {
	Name           string          `json:"artist_name"`
	Email          string          `json:"email"`
	Genre          string          `json:"genre"`
	Location       string          `json:"location"`
	CurrentMetrics StartingMetrics `json:"current_metrics"`
	Goals          Goals           `json:"goals"`
}

// DefaultOnboarding returns the form defaults shown to the operator.
func DefaultOnboarding() Onboarding {
	return Onboarding{
		Genre:    "Pop",
		Location: "Kathmandu",
		Goals: Goals{
			TargetFollowers:      5000,
			TargetMonthlyStreams: 10000,
			TimelineMonths:       12,
		},
	}
}

// OnboardResult is returned by a successful onboarding.
type OnboardResult struct {
	ArtistID        string                   `json:"artist_id"`
	Recommendations []AnalysisRecommendation `json:"recommendations,omitempty"`
}
