package metrics

import (
	"sort"

	"github.com/abelbrown/growthdesk/internal/model"
)

// EmotionShare is one emotion's share of the analyzed comments.
type EmotionShare struct {
	Emotion    string
	Count      int
	Percentage float64
	Intensity  float64
}

// EmotionShares lists every emotion in the report, known emotions first in
// display order and any others after them alphabetically. Percentages are
// recomputed from counts so they sum to 100, or are all 0 when nothing was
// counted.
func EmotionShares(rep model.EmotionReport) []EmotionShare {
	known := make(map[string]bool, len(model.EmotionLabels))
	names := make([]string, 0, len(rep.Distribution))
	for _, e := range model.EmotionLabels {
		known[e] = true
		if _, ok := rep.Distribution[e]; ok {
			names = append(names, e)
		}
	}
	var extra []string
	for e := range rep.Distribution {
		if !known[e] {
			extra = append(extra, e)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	out := make([]EmotionShare, 0, len(names))
	total := 0
	for _, e := range names {
		s := rep.Distribution[e]
		out = append(out, EmotionShare{Emotion: e, Count: s.Count, Intensity: s.AverageIntensity})
		total += s.Count
	}
	if total == 0 {
		return out
	}
	for i := range out {
		out[i].Percentage = float64(out[i].Count) / float64(total) * 100
	}
	return out
}

// ModelRow is one clustering model's scores in display form. Has* is false
// where the backend could not compute a score.
type ModelRow struct {
	Key              string
	Name             string
	Silhouette       float64
	HasSilhouette    bool
	DaviesBouldin    float64
	HasDaviesBouldin bool
	Note             string
	Best             bool
}

// ModelRows builds one row per compared model in backend order and marks
// the backend's pick. When the pick is missing or names no compared model,
// the model with the strictly greatest silhouette is marked instead; ties go
// to the earliest.
func ModelRows(cmp *model.ClusteringComparison) []ModelRow {
	if cmp == nil || cmp.Results == nil {
		return nil
	}
	rows := make([]ModelRow, 0, cmp.Results.Len())
	best := -1
	for p := cmp.Results.Oldest(); p != nil; p = p.Next() {
		m := p.Value
		row := ModelRow{Key: p.Key, Name: m.Name, Note: m.Metrics.Note}
		if row.Name == "" {
			row.Name = p.Key
		}
		if row.Note == "" {
			row.Note = m.Metrics.Error
		}
		if s := m.Metrics.Silhouette; s != nil {
			row.Silhouette, row.HasSilhouette = *s, true
		}
		if d := m.Metrics.DaviesBouldin; d != nil {
			row.DaviesBouldin, row.HasDaviesBouldin = *d, true
		}
		if p.Key == cmp.BestModel.Model {
			best = len(rows)
		}
		rows = append(rows, row)
	}
	if best < 0 {
		for i, r := range rows {
			if r.HasSilhouette && (best < 0 || r.Silhouette > rows[best].Silhouette) {
				best = i
			}
		}
	}
	if best >= 0 {
		rows[best].Best = true
	}
	return rows
}
