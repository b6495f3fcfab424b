package model

// GrowthRate is the weekly delta computed by the backend from recent
// tracking entries.
type GrowthRate struct {
	FollowersPerWeek float64 `json:"followers_per_week"`
	StreamsPerWeek   float64 `json:"streams_per_week"`
}

// MentorComparison relates the artist to an established mentor.
type MentorComparison struct {
	MentorName             string `json:"mentor_name"`
	MentorGenre            string `json:"mentor_genre"`
	MentorCurrentFollowers int    `json:"mentor_current_followers"`
	YourFollowers          int    `json:"your_followers"`
	Comparison             string `json:"comparison"`
}

// Profile is the artist profile payload.
type Profile struct {
	Artist              Artist            `json:"artist"`
	CurrentMetrics      Metrics           `json:"current_metrics"`
	GrowthRate          GrowthRate        `json:"growth_rate"`
	DaysToGoal          *int              `json:"days_to_goal"`
	MentorComparison    *MentorComparison `json:"mentor_comparison"`
	DaysSinceOnboarding int               `json:"days_since_onboarding"`
	Status              string            `json:"status"`
}

// HistoryPoint is one dated observation in the growth history.
type HistoryPoint struct {
	Date           string  `json:"date"`
	Followers      int     `json:"followers"`
	Streams        int     `json:"streams"`
	EngagementRate float64 `json:"engagement_rate"`
}

// Milestone is a server-detected achievement.
type Milestone struct {
	Date        string `json:"date,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// GrowthHistory is the growth-history payload.
type GrowthHistory struct {
	History    []HistoryPoint `json:"history"`
	Milestones []Milestone    `json:"milestones"`
}

// TimelineEvent is one entry of the artist's journey.
type TimelineEvent struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// Timeline is the timeline payload.
type Timeline struct {
	Events []TimelineEvent `json:"events"`
}

// Recommendation statuses.
const (
	RecPending    = "pending"
	RecInProgress = "in_progress"
	RecCompleted  = "completed"
)

// Recommendation is a coaching action tracked through its lifecycle.
type Recommendation struct {
	ID                 string   `json:"_id"`
	Priority           string   `json:"priority"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	ActionSteps        []string `json:"action_steps,omitempty"`
	ExpectedImpact     string   `json:"expected_impact,omitempty"`
	Status             string   `json:"status"`
	EffectivenessScore *float64 `json:"effectiveness_score,omitempty"`
}

// GoalProgress is current-vs-target for one goal as the backend computes it.
type GoalProgress struct {
	Current    int     `json:"current"`
	Target     int     `json:"target"`
	Percentage float64 `json:"percentage"`
}

// Dashboard is the growth-dashboard payload.
type Dashboard struct {
	Artist          Artist           `json:"artist"`
	Recommendations []Recommendation `json:"recommendations"`
	ProgressToGoals struct {
		Followers GoalProgress `json:"followers"`
		Streams   GoalProgress `json:"streams"`
	} `json:"progress_to_goals"`
}

// ProgressSubmission is the body of a track-progress call.
type ProgressSubmission struct {
	Metrics Metrics `json:"metrics"`
	Notes   string  `json:"notes"`
}

// ProgressResult is the response to a track-progress call. Milestones are
// in the order the backend detected them.
type ProgressResult struct {
	Success       bool        `json:"success"`
	ProgressScore float64     `json:"progress_score"`
	MilestonesHit []Milestone `json:"milestones_hit"`
}

// StatusUpdate is the body of a recommendation status change.
type StatusUpdate struct {
	Status             string   `json:"status"`
	EffectivenessScore *float64 `json:"effectiveness_score"`
}
