package session

import (
	"strconv"
	"strings"

	"github.com/abelbrown/growthdesk/internal/model"
)

type form int

const (
	formNone form = iota
	formProgress
	formGoals
)

// ProgressForm is the progress-update form state. Values survive a failed
// submission.
type ProgressForm struct {
	Open       bool
	Submitting bool
	Metrics    model.Metrics
	Notes      string
}

// GoalsForm is the goals modal state.
type GoalsForm struct {
	Open       bool
	Submitting bool
	Goals      model.Goals
}

// ParseMetrics reads progress inputs. Blank or non-numeric fields count as 0.
func ParseMetrics(followers, streams, engagement, newListeners string) model.Metrics {
	return model.Metrics{
		Followers:      atoiOr(followers, 0),
		Streams:        atoiOr(streams, 0),
		EngagementRate: atofOr(engagement, 0),
		NewListeners:   atoiOr(newListeners, 0),
	}
}

// ParseGoals reads goal inputs over prev. A field that is not a positive
// integer keeps its previous value, so a goal is never coerced to zero.
func ParseGoals(prev model.Goals, followers, streams, months string) model.Goals {
	g := prev
	if n := atoiOr(followers, 0); n > 0 {
		g.TargetFollowers = n
	}
	if n := atoiOr(streams, 0); n > 0 {
		g.TargetMonthlyStreams = n
	}
	if n := atoiOr(months, 0); n > 0 {
		g.TimelineMonths = n
	}
	return g
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func atofOr(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}
