package session

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/growthdesk/internal/gateway"
	"github.com/abelbrown/growthdesk/internal/model"
	"github.com/abelbrown/growthdesk/internal/notify"
)

func openProfile(t *testing.T, h *harness, id string) *Profile {
	t.Helper()
	h.run(h.c.OpenProfile(id))
	p := h.c.Profile()
	if p == nil || p.ArtistID() != id {
		t.Fatalf("profile = %+v", p)
	}
	return p
}

func isDelayed(m tea.Msg) bool {
	_, ok := m.(notify.Delayed)
	return ok
}

func isRefetch(m tea.Msg) bool {
	_, ok := m.(refetch)
	return ok
}

func TestProfileLoadsTriple(t *testing.T) {
	h := newHarness(t)
	p := openProfile(t, h, "a1")

	if p.State() != ProfileReady {
		t.Fatalf("state = %s", p.State())
	}
	prof, hist, tl := p.Data()
	if prof == nil || hist == nil || tl == nil {
		t.Errorf("data = %v %v %v", prof, hist, tl)
	}
	for _, op := range []string{gateway.OpProfile, gateway.OpGrowthHistory, gateway.OpTimeline, gateway.OpDashboard} {
		if got := h.backend.count(op); got != 1 {
			t.Errorf("%s calls = %d, want 1", op, got)
		}
	}
	prog, ok := p.Progress()
	if !ok || prog.Followers != 20 || prog.Achieved {
		t.Errorf("progress = %+v", prog)
	}
}

func TestProfileJoinFailureIsPageError(t *testing.T) {
	h := newHarness(t)
	h.backend.timelineErr = &gateway.Error{Op: gateway.OpTimeline, Status: 500}
	p := openProfile(t, h, "a1")

	if p.State() != ProfileError {
		t.Fatalf("state = %s, want error", p.State())
	}
	if prof, hist, tl := p.Data(); prof != nil || hist != nil || tl != nil {
		t.Error("no partial data should be rendered")
	}
	if p.Err() == "" {
		t.Error("expected a page error message")
	}

	// Error is retryable.
	h.backend.timelineErr = nil
	h.run(p.Load())
	if p.State() != ProfileReady {
		t.Errorf("state after retry = %s", p.State())
	}
}

func TestProfileNotFoundIsTerminal(t *testing.T) {
	h := newHarness(t)
	h.backend.profileErr = notFound(gateway.OpProfile)
	h.backend.timelineErr = &gateway.Error{Op: gateway.OpTimeline, Status: 500}
	p := openProfile(t, h, "ghost")

	if p.State() != ProfileNotFound {
		t.Fatalf("state = %s, want not-found", p.State())
	}
	if cmd := p.Load(); cmd != nil {
		t.Error("not-found profile must not reload")
	}
}

func TestProfileStaleResponseDiscarded(t *testing.T) {
	h := newHarness(t)
	loadA := h.c.OpenProfile("a")
	loadB := h.c.OpenProfile("b")

	h.run(loadA)
	p := h.c.Profile()
	if p.ArtistID() != "b" || p.State() != ProfileLoading {
		t.Fatalf("stale response applied: artist=%s state=%s", p.ArtistID(), p.State())
	}
	h.run(loadB)
	if p.State() != ProfileReady {
		t.Errorf("state = %s", p.State())
	}
}

func TestLeavingProfileDropsResponses(t *testing.T) {
	h := newHarness(t)
	load := h.c.OpenProfile("a1")
	h.c.Navigate(ViewAnalytics)
	h.run(load)

	if h.c.Profile() != nil {
		t.Error("profile should be discarded on navigation")
	}
	if h.c.View() != ViewAnalytics {
		t.Errorf("view = %s", h.c.View())
	}
}

func TestOpenSameProfileKeepsController(t *testing.T) {
	h := newHarness(t)
	p := openProfile(t, h, "a1")
	if cmd := h.c.OpenProfile("a1"); cmd != nil {
		t.Error("reopening the same profile should be a no-op")
	}
	if h.c.Profile() != p {
		t.Error("controller replaced")
	}
	openProfile(t, h, "a2")
	if h.c.Profile() == p {
		t.Error("different artist should get a fresh controller")
	}
}

func TestUpdateProgressValidation(t *testing.T) {
	h := newHarness(t)
	p := openProfile(t, h, "a1")
	h.run(p.UpdateProgress(model.Metrics{EngagementRate: 4.2}, "quiet week"))

	if got := h.backend.count(gateway.OpTrackProgress); got != 0 {
		t.Errorf("track-progress calls = %d, want 0", got)
	}
	n := h.lastNotification(t)
	if n.Kind != notify.Warning || n.Message != "Please enter at least followers or streams data" {
		t.Errorf("notification = %+v", n)
	}
}

func TestUpdateProgressMilestonesInOrder(t *testing.T) {
	h := newHarness(t)
	h.backend.progress = &model.ProgressResult{
		Success: true,
		MilestonesHit: []model.Milestone{
			{Description: "Reached 1000 followers!"},
			{Description: "Hit 5000 streams!"},
			{Description: "Engagement doubled!"},
		},
	}
	p := openProfile(t, h, "a1")
	p.OpenProgressForm()
	submitted := model.Metrics{Followers: 1200, Streams: 5100}
	h.run(p.UpdateProgress(submitted, "new single"))

	if got := h.messages(); len(got) != 1 || got[0] != "Progress saved successfully!" {
		t.Fatalf("immediate notifications = %v", got)
	}
	prof, _, _ := p.Data()
	if prof.CurrentMetrics != submitted {
		t.Errorf("current metrics = %+v, want %+v", prof.CurrentMetrics, submitted)
	}

	milestones := h.rec.take(isDelayed)
	if len(milestones) != 3 {
		t.Fatalf("milestones scheduled = %d", len(milestones))
	}
	want := []string{"Reached 1000 followers!", "Hit 5000 streams!", "Engagement doubled!"}
	var prev time.Duration
	for i, m := range milestones {
		if m.delay <= prev {
			t.Errorf("milestone %d delay %v not after %v", i, m.delay, prev)
		}
		prev = m.delay
		d := m.msg.(notify.Delayed)
		if d.Message != want[i] || d.Kind != notify.Milestone {
			t.Errorf("milestone %d = %+v", i, d)
		}
	}
	if milestones[0].delay != time.Second {
		t.Errorf("first milestone delay = %v", milestones[0].delay)
	}

	// Delivering them pushes in server order after the confirmation.
	for _, m := range milestones {
		h.run(h.c.Update(m.msg))
	}
	if got := h.messages(); len(got) != 4 || got[1] != want[0] || got[3] != want[2] {
		t.Errorf("notifications = %v", got)
	}

	if !p.ProgressForm().Open {
		t.Error("form should stay open until the refetch")
	}
	refetches := h.rec.take(isRefetch)
	if len(refetches) != 1 || refetches[0].delay != 2*time.Second {
		t.Fatalf("refetches = %+v", refetches)
	}
	h.run(h.c.Update(refetches[0].msg))
	if p.ProgressForm().Open {
		t.Error("form should close after the refetch")
	}
	if got := h.backend.count(gateway.OpProfile); got != 2 {
		t.Errorf("profile calls = %d, want 2", got)
	}
}

func TestUpdateProgressFailureKeepsForm(t *testing.T) {
	h := newHarness(t)
	h.backend.progressErr = &gateway.Error{Op: gateway.OpTrackProgress, Status: 500}
	p := openProfile(t, h, "a1")
	p.OpenProgressForm()
	h.run(p.UpdateProgress(model.Metrics{Followers: 1500}, "tour"))

	form := p.ProgressForm()
	if !form.Open || form.Submitting || form.Metrics.Followers != 1500 || form.Notes != "tour" {
		t.Errorf("form = %+v", form)
	}
	prof, _, _ := p.Data()
	if prof.CurrentMetrics.Followers != 1000 {
		t.Error("failed submission must not change current metrics")
	}
	if n := h.lastNotification(t); n.Message != "Failed to update progress. Please try again." {
		t.Errorf("notification = %+v", n)
	}
}

func TestUpdateGoalsFailureKeepsModal(t *testing.T) {
	h := newHarness(t)
	h.backend.goalsErr = &gateway.Error{Op: gateway.OpUpdateGoals, Status: 500}
	p := openProfile(t, h, "a1")
	p.OpenGoalsForm()

	prev := p.GoalsForm().Goals
	goals := ParseGoals(prev, "abc", "20000", "18")
	h.run(p.UpdateGoals(goals))

	if h.backend.lastGoals.TargetFollowers != 5000 || h.backend.lastGoals.TargetMonthlyStreams != 20000 {
		t.Errorf("sent goals = %+v", h.backend.lastGoals)
	}
	form := p.GoalsForm()
	if !form.Open || form.Submitting {
		t.Errorf("form = %+v", form)
	}
	prof, _, _ := p.Data()
	if prof.Artist.Goals != prev {
		t.Errorf("goals mutated locally: %+v", prof.Artist.Goals)
	}
	n := h.lastNotification(t)
	if n.Kind != notify.Error || n.Message != "Failed to update goals. Please try again." {
		t.Errorf("notification = %+v", n)
	}
}

func TestUpdateGoalsSuccessRefetches(t *testing.T) {
	h := newHarness(t)
	p := openProfile(t, h, "a1")
	p.OpenGoalsForm()
	h.run(p.UpdateGoals(model.Goals{TargetFollowers: 8000, TargetMonthlyStreams: 15000, TimelineMonths: 6}))

	if n := h.lastNotification(t); n.Message != "Goals updated successfully! Keep pushing forward!" {
		t.Errorf("notification = %+v", n)
	}
	refetches := h.rec.take(isRefetch)
	if len(refetches) != 1 || refetches[0].delay != 1500*time.Millisecond {
		t.Fatalf("refetches = %+v", refetches)
	}
	h.run(h.c.Update(refetches[0].msg))
	if p.GoalsForm().Open {
		t.Error("modal should close")
	}
}

func TestSetRecommendationStatus(t *testing.T) {
	h := newHarness(t)
	p := openProfile(t, h, "a1")
	score := 4.0

	h.run(p.SetRecommendationStatus("r1", model.RecInProgress, &score))
	if h.backend.lastStatus.EffectivenessScore != nil {
		t.Error("score is only sent on completion")
	}
	if n := h.lastNotification(t); n.Kind != notify.Info || n.Message != "Recommendation started! Keep it up!" {
		t.Errorf("notification = %+v", n)
	}
	if got := h.backend.count(gateway.OpDashboard); got != 2 {
		t.Errorf("dashboard calls = %d, want 2", got)
	}

	h.run(p.SetRecommendationStatus("r1", model.RecCompleted, &score))
	if s := h.backend.lastStatus.EffectivenessScore; s == nil || *s != 4 {
		t.Errorf("score = %v", s)
	}
	if n := h.lastNotification(t); n.Kind != notify.Success || n.Message != "Recommendation completed! Great work!" {
		t.Errorf("notification = %+v", n)
	}

	h.backend.recErr = &gateway.Error{Op: gateway.OpRecStatus, Status: 500}
	h.run(p.SetRecommendationStatus("r2", model.RecCompleted, nil))
	if n := h.lastNotification(t); n.Message != "Failed to update recommendation status" {
		t.Errorf("notification = %+v", n)
	}
	if p.RecommendationPending("r2") {
		t.Error("pending flag should clear")
	}
}

func TestSetRecommendationStatusRejectsUnknown(t *testing.T) {
	h := newHarness(t)
	p := openProfile(t, h, "a1")
	h.run(p.SetRecommendationStatus("r1", "archived", nil))
	if got := h.backend.count(gateway.OpRecStatus); got != 0 {
		t.Errorf("calls = %d", got)
	}
}

func TestRecommendationStatusDuringDashboardLoadRefetchesAfter(t *testing.T) {
	h := newHarness(t)
	p := openProfile(t, h, "a1")

	inFlight := p.LoadDashboard()
	if inFlight == nil {
		t.Fatal("expected a dashboard fetch")
	}
	h.run(p.SetRecommendationStatus("r1", model.RecInProgress, nil))
	h.run(p.SetRecommendationStatus("r2", model.RecCompleted, nil))
	if got := h.backend.count(gateway.OpDashboard); got != 1 {
		t.Fatalf("dashboard calls before settle = %d, want 1", got)
	}

	h.run(inFlight)
	if got := h.backend.count(gateway.OpDashboard); got != 3 {
		t.Errorf("dashboard calls = %d, want 3 (in flight plus one coalesced refetch)", got)
	}
	h.run(p.LoadDashboard())
	if got := h.backend.count(gateway.OpDashboard); got != 4 {
		t.Errorf("dashboard calls = %d, want 4", got)
	}
}

func TestGoalsRefetchDuringLoadReloadsAfter(t *testing.T) {
	h := newHarness(t)
	p := openProfile(t, h, "a1")
	p.OpenGoalsForm()
	h.run(p.UpdateGoals(model.Goals{TargetFollowers: 8000, TargetMonthlyStreams: 15000, TimelineMonths: 6}))
	refetches := h.rec.take(isRefetch)
	if len(refetches) != 1 {
		t.Fatalf("refetches = %+v", refetches)
	}

	inFlight := p.Load()
	h.run(p.Load())
	h.run(h.c.Update(refetches[0].msg))
	if p.GoalsForm().Open {
		t.Error("modal should close even while a load is in flight")
	}
	if got := h.backend.count(gateway.OpProfile); got != 1 {
		t.Fatalf("profile calls before settle = %d, want 1", got)
	}

	h.run(inFlight)
	if got := h.backend.count(gateway.OpProfile); got != 3 {
		t.Errorf("profile calls = %d, want 3", got)
	}
	if got := h.backend.count(gateway.OpDashboard); got != 3 {
		t.Errorf("dashboard calls = %d, want 3", got)
	}
	if p.Loading() || p.State() != ProfileReady {
		t.Errorf("loading = %v, state = %s", p.Loading(), p.State())
	}
}

func TestProgressRefetchDuringLoadReloadsAfter(t *testing.T) {
	h := newHarness(t)
	h.backend.progress = &model.ProgressResult{}
	p := openProfile(t, h, "a1")
	p.OpenProgressForm()
	h.run(p.UpdateProgress(model.Metrics{Followers: 1200}, ""))
	refetches := h.rec.take(isRefetch)
	if len(refetches) != 1 {
		t.Fatalf("refetches = %+v", refetches)
	}

	inFlight := p.Load()
	h.run(h.c.Update(refetches[0].msg))
	if p.ProgressForm().Open {
		t.Error("form should close even while a load is in flight")
	}
	h.run(inFlight)
	if got := h.backend.count(gateway.OpProfile); got != 3 {
		t.Errorf("profile calls = %d, want 3", got)
	}
}

func TestQueuedReloadDroppedOnNotFound(t *testing.T) {
	h := newHarness(t)
	p := openProfile(t, h, "a1")
	p.OpenGoalsForm()
	h.run(p.UpdateGoals(model.Goals{TargetFollowers: 1}))
	refetches := h.rec.take(isRefetch)

	inFlight := p.Load()
	h.run(h.c.Update(refetches[0].msg))
	h.backend.profileErr = notFound(gateway.OpProfile)
	h.run(inFlight)

	if p.State() != ProfileNotFound {
		t.Fatalf("state = %s", p.State())
	}
	if got := h.backend.count(gateway.OpProfile); got != 2 {
		t.Errorf("profile calls = %d, want 2", got)
	}
}
