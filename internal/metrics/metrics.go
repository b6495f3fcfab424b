// Package metrics derives display figures from raw backend payloads.
// All functions are pure: payload in, values out. No side effects.
package metrics

import (
	"fmt"
	"math"

	"github.com/abelbrown/growthdesk/internal/model"
)

// SegmentShare is one listener segment's share of the audience, in [0,1].
type SegmentShare struct {
	Label    string
	Fraction float64
}

// SegmentPercentages returns the three segment shares in fixed label order.
// The display label wins over the lowercase short key when both are present;
// a segment with neither defaults to 0.
func SegmentPercentages(res *model.AnalysisResult) []SegmentShare {
	out := make([]SegmentShare, 0, len(model.SegmentLabels))
	for _, label := range model.SegmentLabels {
		out = append(out, SegmentShare{Label: label, Fraction: lookupSegment(res, label)})
	}
	return out
}

func lookupSegment(res *model.AnalysisResult, label string) float64 {
	if res == nil || res.SegmentPercentages == nil {
		return 0
	}
	if v, ok := res.SegmentPercentages[label]; ok {
		return v
	}
	if v, ok := res.SegmentPercentages[model.SegmentShortKeys[label]]; ok {
		return v
	}
	return 0
}

// ClusterRow is one cluster's statistics in display form.
type ClusterRow struct {
	Cluster      string
	Engagement   float64
	Loyalty      float64
	TotalStreams float64
	Count        float64
}

// Fault records a statistic the backend omitted for a cluster that appears
// in at least one of the other statistic mappings.
type Fault struct {
	Cluster string
	Stat    string
}

func (f Fault) String() string {
	return fmt.Sprintf("cluster %s missing %s", f.Cluster, f.Stat)
}

// ClusterRows builds one row per cluster id in the engagement mapping, in the
// order the backend emitted them. Missing values in the other mappings are
// reported as faults and shown as 0; the row is still produced. A cluster id
// that only the other mappings carry gets no row and an engagement_score
// fault.
func ClusterRows(stats model.ClusterStatistics) ([]ClusterRow, []Fault) {
	var (
		rows   []ClusterRow
		faults []Fault
	)
	if stats.Engagement != nil && stats.Engagement.Len() > 0 {
		rows = make([]ClusterRow, 0, stats.Engagement.Len())
		for p := stats.Engagement.Oldest(); p != nil; p = p.Next() {
			id := p.Key
			row := ClusterRow{Cluster: id, Engagement: p.Value}

			var ok bool
			if row.Loyalty, ok = statValue(stats.Loyalty, id); !ok {
				faults = append(faults, Fault{Cluster: id, Stat: "loyalty_score"})
			}
			if row.TotalStreams, ok = statValue(stats.TotalStreams, id); !ok {
				faults = append(faults, Fault{Cluster: id, Stat: "total_streams"})
			}
			if row.Count, ok = statValue(stats.Count, id); !ok {
				faults = append(faults, Fault{Cluster: id, Stat: "count"})
			}
			rows = append(rows, row)
		}
	}

	seen := make(map[string]bool)
	for _, m := range []*model.Stat{stats.Loyalty, stats.TotalStreams, stats.Count} {
		if m == nil {
			continue
		}
		for p := m.Oldest(); p != nil; p = p.Next() {
			if seen[p.Key] {
				continue
			}
			seen[p.Key] = true
			if _, ok := statValue(stats.Engagement, p.Key); !ok {
				faults = append(faults, Fault{Cluster: p.Key, Stat: "engagement_score"})
			}
		}
	}
	return rows, faults
}

func statValue(m *model.Stat, id string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	return m.Get(id)
}

// BestCluster returns the row with the strictly greatest engagement. Ties go
// to the earliest row. ok is false when rows is empty.
func BestCluster(rows []ClusterRow) (best ClusterRow, ok bool) {
	for i, r := range rows {
		if i == 0 || r.Engagement > best.Engagement {
			best = r
		}
	}
	return best, len(rows) > 0
}

// GoalPercentage is current/target as a percentage capped at 100.
// A zero or negative target yields 0.
func GoalPercentage(current, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(float64(current)/float64(target), 1) * 100
}

// GoalAchieved reports whether both follower and stream goals are met.
func GoalAchieved(m model.Metrics, g model.Goals) bool {
	return GoalPercentage(m.Followers, g.TargetFollowers) >= 100 &&
		GoalPercentage(m.Streams, g.TargetMonthlyStreams) >= 100
}

// EstimatedDaysToGoal projects days until current reaches target at the
// given weekly growth. ok is false when growth is not positive or the goal
// is already reached.
func EstimatedDaysToGoal(current, target int, perWeek float64) (days int, ok bool) {
	if perWeek <= 0 || current >= target {
		return 0, false
	}
	weeks := float64(target-current) / perWeek
	return int(weeks * 7), true
}

// RiskBucket is one churn bucket with its share of the total.
type RiskBucket struct {
	Name       string
	Count      int
	Percentage float64
}

// Risk bucket names.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

// RiskBuckets recomputes bucket percentages from counts so they always sum
// to 100 (or are all 0 when no listeners were scored).
func RiskBuckets(seg model.RiskSegments) []RiskBucket {
	buckets := []RiskBucket{
		{Name: RiskHigh, Count: seg.High.Count},
		{Name: RiskMedium, Count: seg.Medium.Count},
		{Name: RiskLow, Count: seg.Low.Count},
	}
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	if total == 0 {
		return buckets
	}
	for i := range buckets {
		buckets[i].Percentage = float64(buckets[i].Count) / float64(total) * 100
	}
	return buckets
}
