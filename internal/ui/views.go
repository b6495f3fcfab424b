package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/growthdesk/internal/metrics"
	"github.com/abelbrown/growthdesk/internal/model"
	"github.com/abelbrown/growthdesk/internal/session"
)

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.showDebug {
		return lipgloss.JoinVertical(lipgloss.Left,
			debugOverlay(a.ring, a.width, a.height-1),
			debugStatusBar(a.width))
	}

	var body string
	switch a.ctl.View() {
	case session.ViewAnalytics:
		body = a.renderAnalytics()
	case session.ViewRoster:
		body = a.renderRoster()
	case session.ViewOnboarding:
		body = a.renderOnboarding()
	case session.ViewProfile:
		body = a.renderProfile()
	}
	if a.formKind == formProgress || a.formKind == formGoals || a.formKind == formScore {
		body = lipgloss.JoinVertical(lipgloss.Left, body, Modal.Render(a.form.View()))
	}

	parts := []string{a.renderTabs()}
	if a.healthErr != "" {
		parts = append(parts, Banner.Width(a.width).Render(a.healthErr))
	}
	if toasts := a.renderToasts(); toasts != "" {
		parts = append(parts, lipgloss.PlaceHorizontal(a.width, lipgloss.Right, toasts))
	}
	parts = append(parts, body, a.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderTabs() string {
	tabs := []struct {
		label string
		view  session.View
	}{
		{"1 Analytics", session.ViewAnalytics},
		{"2 Artists", session.ViewRoster},
		{"3 Onboard", session.ViewOnboarding},
	}
	var out []string
	for _, t := range tabs {
		style := TabInactive
		if a.ctl.View() == t.view {
			style = TabActive
		}
		out = append(out, style.Render(t.label))
	}
	if a.ctl.View() == session.ViewProfile {
		out = append(out, TabActive.Render("Profile"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

// renderToasts stacks visible notifications, oldest first.
func (a App) renderToasts() string {
	active := a.ctl.Queue().Active()
	if len(active) == 0 {
		return ""
	}
	var out []string
	for _, n := range active {
		out = append(out, ToastStyle(n.Kind).Render(ToastIcon(n.Kind)+" "+n.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, out...)
}

func (a App) renderStatusBar() string {
	left := ""
	if a.busy() {
		left = a.spinner.View() + " "
	}
	return StatusBar.Width(a.width).Render(left + a.help.View(a.keys))
}

func (a App) busy() bool {
	if a.ctl.Analyzing() || a.ctl.RosterLoading() || a.ctl.NewArtistsLoading() || a.ctl.Onboarding() ||
		a.ctl.ChurnLoading() || a.ctl.ClusteringLoading() || a.ctl.EmotionsLoading() {
		return true
	}
	p := a.ctl.Profile()
	return p != nil && p.Loading()
}

func (a App) renderAnalytics() string {
	var b strings.Builder
	if msg := a.ctl.RosterError(); msg != "" {
		b.WriteString(Banner.Width(a.width).Render(msg) + "\n")
	}

	var roster strings.Builder
	roster.WriteString(SectionHeader.Render("Artists") + "\n")
	artists := a.ctl.Artists()
	if len(artists) == 0 && !a.ctl.RosterLoading() {
		roster.WriteString(MutedItem.Render("No artists. Press r to reload.") + "\n")
	}
	for i, ar := range artists {
		line := fmt.Sprintf("%-22s %s", truncateRunes(ar.Name, 22), ar.Genre)
		switch {
		case i == a.artistCursor:
			roster.WriteString(SelectedItem.Render(line))
		case ar.ID == a.ctl.Selected():
			roster.WriteString(NormalItem.Bold(true).Render(line))
		default:
			roster.WriteString(NormalItem.Render(line))
		}
		roster.WriteString("\n")
	}

	panel := a.renderAnalysis() + a.renderAdvanced()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, roster.String(), "  ", panel))
	return b.String()
}

func (a App) renderAnalysis() string {
	var b strings.Builder
	switch {
	case a.ctl.Analyzing():
		b.WriteString(a.spinner.View() + " Analyzing listeners...\n")
		return b.String()
	case a.ctl.AnalysisError() != "":
		b.WriteString(ErrorStyle.Render(a.ctl.AnalysisError()) + "\n")
		return b.String()
	case a.ctl.Analysis() == nil:
		b.WriteString(MutedItem.Render("Select an artist and press enter to analyze.") + "\n")
		return b.String()
	}

	res := a.ctl.Analysis()
	b.WriteString(SectionHeader.Render("Listener segments") + "\n")
	for _, s := range metrics.SegmentPercentages(res) {
		b.WriteString(fmt.Sprintf("  %-20s %s %5.1f%%\n", s.Label, bar(s.Fraction, 20), s.Fraction*100))
	}

	rows := a.ctl.ClusterRows()
	if len(rows) > 0 {
		best, _ := metrics.BestCluster(rows)
		b.WriteString(SectionHeader.Render("Clusters") + "\n")
		b.WriteString(MutedItem.Render(fmt.Sprintf("%-8s %10s %8s %12s %6s", "cluster", "engagement", "loyalty", "streams", "count")) + "\n")
		for _, r := range rows {
			line := fmt.Sprintf("%-8s %10.2f %8.2f %12.0f %6.0f", r.Cluster, r.Engagement, r.Loyalty, r.TotalStreams, r.Count)
			if r.Cluster == best.Cluster {
				b.WriteString(SelectedItem.Render(line+" ★") + "\n")
			} else {
				b.WriteString(NormalItem.Render(line) + "\n")
			}
		}
		if n := len(a.ctl.Faults()); n > 0 {
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("%d cluster statistics missing, shown as 0", n)) + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("\n  Sentiment  +%d  ~%d  -%d    Silhouette %.2f\n",
		res.Sentiment.Positive, res.Sentiment.Neutral, res.Sentiment.Negative, res.SilhouetteScore))

	if len(res.KeyInsights) > 0 {
		b.WriteString(SectionHeader.Render("Insights") + "\n")
		for _, in := range res.KeyInsights {
			b.WriteString("  • " + in + "\n")
		}
	}
	if len(res.Recommendations) > 0 {
		b.WriteString(SectionHeader.Render("Recommendations") + "\n")
		for _, r := range res.Recommendations {
			b.WriteString("  " + priorityStyle(r.Priority).Render(fmt.Sprintf("[%s]", r.Priority)) + " " + r.Text + "\n")
		}
	}
	return b.String()
}

// renderAdvanced shows churn risk, the clustering model comparison and the
// emotion mix for the selected artist, each once it has been requested.
func (a App) renderAdvanced() string {
	var b strings.Builder

	if c := a.ctl.Churn(); c != nil {
		b.WriteString(SectionHeader.Render("Churn risk") + "\n")
		for _, rb := range metrics.RiskBuckets(c.Predictions.RiskSegments) {
			b.WriteString(fmt.Sprintf("  %-8s %5d  %s %5.1f%%\n", rb.Name, rb.Count, bar(rb.Percentage/100, 16), rb.Percentage))
		}
		if tr := a.ctl.ChurnTraining(); tr != nil {
			m := tr.TrainingResults.Metrics
			b.WriteString(MutedItem.Render(fmt.Sprintf("  model retrained: test accuracy %.1f%%, ROC AUC %.2f",
				m.TestAccuracy*100, m.ROCAUC)) + "\n")
		}
	}

	switch {
	case a.ctl.ClusteringLoading():
		b.WriteString(a.spinner.View() + " Comparing clustering models...\n")
	case a.ctl.ClusteringError() != "":
		b.WriteString(ErrorStyle.Render(a.ctl.ClusteringError()) + "\n")
	case a.ctl.Clustering() != nil:
		b.WriteString(SectionHeader.Render("Clustering models") + "\n")
		b.WriteString(MutedItem.Render(fmt.Sprintf("%-24s %10s %14s", "model", "silhouette", "davies-bouldin")) + "\n")
		for _, r := range a.ctl.ModelRows() {
			line := fmt.Sprintf("%-24s %10s %14s", truncateRunes(r.Name, 24),
				optScore(r.Silhouette, r.HasSilhouette), optScore(r.DaviesBouldin, r.HasDaviesBouldin))
			if r.Best {
				b.WriteString(SelectedItem.Render(line+" ★") + "\n")
			} else {
				b.WriteString(NormalItem.Render(line) + "\n")
			}
			if r.Note != "" {
				b.WriteString(MutedItem.Render("  "+r.Note) + "\n")
			}
		}
		if rec := a.ctl.Clustering().BestModel.Recommendation; rec != "" {
			b.WriteString("  " + rec + "\n")
		}
	}

	switch {
	case a.ctl.EmotionsLoading():
		b.WriteString(a.spinner.View() + " Reading comments...\n")
	case a.ctl.EmotionsError() != "":
		b.WriteString(ErrorStyle.Render(a.ctl.EmotionsError()) + "\n")
	case a.ctl.Emotions() != nil:
		rep := a.ctl.Emotions().Analysis
		b.WriteString(SectionHeader.Render(fmt.Sprintf("Emotions (%d comments)", rep.TotalComments)) + "\n")
		for _, e := range a.ctl.EmotionShares() {
			b.WriteString(fmt.Sprintf("  %-10s %s %5.1f%%  intensity %.2f\n", e.Emotion, bar(e.Percentage/100, 16), e.Percentage, e.Intensity))
		}
		if d := rep.Dominant.Emotion; d != "" {
			b.WriteString(fmt.Sprintf("  Dominant: %s\n", d))
		}
		for _, in := range rep.Insights {
			b.WriteString("  • " + in.Message)
			if in.Action != "" {
				b.WriteString(MutedItem.Render(" → " + in.Action))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func optScore(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func (a App) renderRoster() string {
	var b strings.Builder
	if msg := a.ctl.NewArtistsError(); msg != "" {
		b.WriteString(Banner.Width(a.width).Render(msg) + "\n")
	}
	b.WriteString(SectionHeader.Render("Growth program artists") + "\n")
	artists := a.ctl.NewArtists()
	if len(artists) == 0 && !a.ctl.NewArtistsLoading() {
		b.WriteString(MutedItem.Render("No artists enrolled yet. Press 3 to onboard one.") + "\n")
	}
	for i, ar := range artists {
		line := fmt.Sprintf("%-22s %-12s %-14s %s", truncateRunes(ar.Name, 22), ar.Genre, ar.Location, statusLabel(ar.Status))
		if i == a.rosterCursor {
			b.WriteString(SelectedItem.Render(line))
		} else {
			b.WriteString(NormalItem.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) renderOnboarding() string {
	if a.formKind != formOnboarding {
		return MutedItem.Render("Press 3 to start onboarding.")
	}
	return Modal.Render(a.form.View())
}

func (a App) renderProfile() string {
	p := a.ctl.Profile()
	if p == nil {
		return ""
	}
	switch p.State() {
	case session.ProfileLoading:
		return a.spinner.View() + " Loading profile..."
	case session.ProfileNotFound:
		return ErrorStyle.Render("Artist not found") + "\n" + MutedItem.Render("Press esc to go back.")
	case session.ProfileError:
		return ErrorStyle.Render(p.Err()) + "\n" + MutedItem.Render("Press r to retry or esc to go back.")
	}

	prof, hist, tl := p.Data()
	var b strings.Builder

	ar := prof.Artist
	b.WriteString(SectionHeader.Render(ar.Name) + "\n")
	b.WriteString(MutedItem.Render(fmt.Sprintf("%s · %s · %s · day %d", ar.Genre, ar.Location, statusLabel(prof.Status), prof.DaysSinceOnboarding)) + "\n")

	cur := prof.CurrentMetrics
	metricsCard := Card.Render(fmt.Sprintf("Followers  %d\nStreams    %d\nEngagement %.1f%%\nNew        %d\n\n+%.0f followers/wk\n+%.0f streams/wk",
		cur.Followers, cur.Streams, cur.EngagementRate, cur.NewListeners,
		prof.GrowthRate.FollowersPerWeek, prof.GrowthRate.StreamsPerWeek))

	var goals strings.Builder
	if prog, ok := p.Progress(); ok {
		goals.WriteString(fmt.Sprintf("Followers %s %5.1f%%  (%d / %d)\n", bar(prog.Followers/100, 20), prog.Followers, cur.Followers, ar.Goals.TargetFollowers))
		goals.WriteString(fmt.Sprintf("Streams   %s %5.1f%%  (%d / %d)\n", bar(prog.Streams/100, 20), prog.Streams, cur.Streams, ar.Goals.TargetMonthlyStreams))
		goals.WriteString(fmt.Sprintf("Timeline  %d months\n", ar.Goals.TimelineMonths))
		switch {
		case prog.Achieved:
			goals.WriteString(BarFull.Render("★ Goal achieved!"))
		case prog.HasEstimate:
			goals.WriteString(fmt.Sprintf("~%d days to follower goal", prog.EstimatedDays))
		}
	}
	goalsCard := Card.Render(goals.String())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, metricsCard, " ", goalsCard) + "\n")

	if m := prof.MentorComparison; m != nil {
		b.WriteString(fmt.Sprintf("  Mentor: %s (%s) %d followers. %s\n", m.MentorName, m.MentorGenre, m.MentorCurrentFollowers, m.Comparison))
	}

	b.WriteString(SectionHeader.Render("Recommendations") + "\n")
	if msg := p.DashboardError(); msg != "" {
		b.WriteString(ErrorStyle.Render(msg) + "\n")
	}
	for i, r := range a.recommendations() {
		status := r.Status
		if p.RecommendationPending(r.ID) {
			status = "saving"
		}
		line := fmt.Sprintf("%-8s %-12s %s", "["+r.Priority+"]", status, r.Title)
		if i == a.recCursor {
			b.WriteString(SelectedItem.Render(line))
		} else {
			b.WriteString(NormalItem.Render(line))
		}
		b.WriteString("\n")
	}

	if hist != nil && len(hist.Milestones) > 0 {
		b.WriteString(SectionHeader.Render("Milestones") + "\n")
		for _, m := range hist.Milestones {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n", iconOr(m.Icon, "★"), m.Date, m.Description))
		}
	}
	if tl != nil && len(tl.Events) > 0 {
		b.WriteString(SectionHeader.Render("Journey") + "\n")
		for _, e := range tl.Events {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n", iconOr(e.Icon, "•"), e.Date, e.Description))
		}
	}
	return b.String()
}

// bar draws a fraction in [0,1] as a fixed-width bar.
func bar(frac float64, width int) string {
	if math.IsNaN(frac) || frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	full := int(math.Round(frac * float64(width)))
	return BarFull.Render(strings.Repeat("█", full)) + BarEmpty.Render(strings.Repeat("░", width-full))
}

func statusLabel(s string) string {
	switch s {
	case model.StatusOnboarding:
		return "Onboarding"
	case model.StatusGrowing:
		return "Growing"
	case model.StatusGoalAchieved:
		return "Goal achieved"
	case model.StatusSuperstar:
		return "Superstar"
	case "":
		return "-"
	}
	return s
}

func iconOr(icon, def string) string {
	if icon == "" {
		return def
	}
	return icon
}
