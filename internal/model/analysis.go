package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Segment labels as the backend reports them in segment_percentages.
const (
	SegmentSuperfans = "Superfans"
	SegmentCasual    = "Casual Listeners"
	SegmentOneTime   = "One-time Listeners"
)

// SegmentLabels is the fixed display order of listener segments.
var SegmentLabels = []string{SegmentSuperfans, SegmentCasual, SegmentOneTime}

// SegmentShortKeys maps each label to the lowercase key older backends emit.
var SegmentShortKeys = map[string]string{
	SegmentSuperfans: "superfans",
	SegmentCasual:    "casual",
	SegmentOneTime:   "onetime",
}

// ListenerSegments are absolute listener counts per segment.
type ListenerSegments struct {
	Superfans int `json:"superfans"`
	Casual    int `json:"casual"`
	OneTime   int `json:"onetime"`
}

// Total returns the listener count across all segments.
func (s ListenerSegments) Total() int {
	return s.Superfans + s.Casual + s.OneTime
}

// Stat is a per-cluster statistic keyed by cluster id. Key order is the
// order the backend emitted, which the best-cluster tie-break relies on.
type Stat = orderedmap.OrderedMap[string, float64]

// ClusterStatistics are parallel mappings keyed by cluster id.
type ClusterStatistics struct {
	Engagement   *Stat `json:"engagement_score"`
	Loyalty      *Stat `json:"loyalty_score"`
	TotalStreams *Stat `json:"total_streams"`
	Count        *Stat `json:"count"`
}

// Sentiment is the comment sentiment tally.
type Sentiment struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// AnalysisRecommendation is a ranked suggestion attached to an analysis run.
type AnalysisRecommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Text     string `json:"text"`
}

// AnalysisResult is one run of the remote segmentation pipeline. It is
// replaced wholesale by the next run.
type AnalysisResult struct {
	ArtistID           string                   `json:"artist_id,omitempty"`
	ListenerSegments   ListenerSegments         `json:"listener_segments"`
	SegmentPercentages map[string]float64       `json:"segment_percentages"`
	ClusterStatistics  ClusterStatistics        `json:"cluster_statistics"`
	Sentiment          Sentiment                `json:"sentiment_analysis"`
	SilhouetteScore    float64                  `json:"silhouette_score"`
	Recommendations    []AnalysisRecommendation `json:"recommendations"`
	KeyInsights        []string                 `json:"key_insights"`
}

// RiskSegment is one churn risk bucket as the backend reports it. The
// percentage arrives preformatted (e.g. "15.0%") and is not trusted for math.
type RiskSegment struct {
	Count      int    `json:"count"`
	Percentage string `json:"percentage,omitempty"`
}

// RiskSegments groups the three churn buckets.
type RiskSegments struct {
	High   RiskSegment `json:"high_risk"`
	Medium RiskSegment `json:"medium_risk"`
	Low    RiskSegment `json:"low_risk"`
}

// RetentionStrategy is a churn-driven action plan.
type RetentionStrategy struct {
	Priority string   `json:"priority"`
	Target   string   `json:"target"`
	Action   string   `json:"action"`
	Tactics  []string `json:"tactics,omitempty"`
}

// ChurnPrediction is the payload of the churn predict endpoint.
type ChurnPrediction struct {
	ArtistID    string `json:"artist_id"`
	Predictions struct {
		RiskSegments    RiskSegments        `json:"risk_segments"`
		Recommendations []RetentionStrategy `json:"recommendations"`
	} `json:"predictions"`
}
