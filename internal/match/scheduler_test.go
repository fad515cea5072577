package match

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type mockNotifier struct {
	sent    map[string][]string
	failFor map[string]struct{}
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{sent: make(map[string][]string), failFor: make(map[string]struct{})}
}

func (n *mockNotifier) SendDirectMessage(userID, content string) error {
	if _, fail := n.failFor[userID]; fail {
		return errors.New("dm blocked")
	}
	n.sent[userID] = append(n.sent[userID], content)
	return nil
}

type mockUpdater struct {
	closedMatchIDs []int64
}

func (u *mockUpdater) RecruitmentClosed(_ context.Context, m *Match) {
	u.closedMatchIDs = append(u.closedMatchIDs, m.ID)
}

func newTestScheduler(r *Registry, n Notifier, u AnnouncementUpdater) *Scheduler {
	s := NewScheduler(r, n, u, time.Minute, 10*time.Minute, time.UTC)
	s.now = fixedTime
	return s
}

func TestSweepRecruitmentWindows_ClosesElapsedMatches(t *testing.T) {
	store := newMockStore()
	r := newTestRegistry(store)
	ctx := context.Background()

	past := fixedTime().Add(30 * time.Minute)
	input := baseInput()
	input.RecruitmentEndAt = &past
	expiring := mustCreate(t, r, input)
	open := mustCreate(t, r, CreateInput{HostID: "h", StartAt: fixedTime().Add(time.Hour), Activities: []string{"Chess"}})

	updater := &mockUpdater{}
	s := newTestScheduler(r, newMockNotifier(), updater)
	s.now = func() time.Time { return past.Add(time.Second) }

	s.SweepRecruitmentWindows(ctx)

	closedSnap, _ := r.Get(expiring.ID)
	if closedSnap.IsRecruiting {
		t.Fatal("elapsed window must be closed")
	}
	openSnap, _ := r.Get(open.ID)
	if !openSnap.IsRecruiting {
		t.Fatal("match without a deadline must stay open")
	}
	if len(updater.closedMatchIDs) != 1 || updater.closedMatchIDs[0] != expiring.ID {
		t.Fatalf("updater must see exactly the closed match, got %v", updater.closedMatchIDs)
	}

	// A second sweep sees no transition and stays quiet.
	s.SweepRecruitmentWindows(ctx)
	if len(updater.closedMatchIDs) != 1 {
		t.Fatalf("no repeat notification expected, got %v", updater.closedMatchIDs)
	}
}

func TestSweepReminders_SendsOncePerParticipant(t *testing.T) {
	r := newTestRegistry(newMockStore())
	ctx := context.Background()

	m := mustCreate(t, r, CreateInput{
		HostID:     "h",
		StartAt:    fixedTime().Add(5 * time.Minute),
		Activities: []string{"Valorant", "Apex"},
	})
	if _, err := r.ToggleAttendance(ctx, m.ID, "u1", "Valorant"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := r.ToggleAttendance(ctx, m.ID, "u1", "Apex"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := r.ToggleAttendance(ctx, m.ID, "u2", "Apex"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	notifier := newMockNotifier()
	s := newTestScheduler(r, notifier, &mockUpdater{})

	s.SweepReminders(ctx)

	if len(notifier.sent["u1"]) != 1 || len(notifier.sent["u2"]) != 1 {
		t.Fatalf("each participant gets one reminder, got %v", notifier.sent)
	}
	if !strings.Contains(notifier.sent["u1"][0], "Valorant、Apex") {
		t.Fatalf("reminder must list the joined activities, got %q", notifier.sent["u1"][0])
	}

	s.SweepReminders(ctx)
	if len(notifier.sent["u1"]) != 1 || len(notifier.sent["u2"]) != 1 {
		t.Fatalf("reminders must not repeat, got %v", notifier.sent)
	}
}

func TestSweepReminders_RespectsLeadWindow(t *testing.T) {
	r := newTestRegistry(newMockStore())
	ctx := context.Background()

	early := mustCreate(t, r, CreateInput{HostID: "h", StartAt: fixedTime().Add(time.Hour), Activities: []string{"A"}})
	started := mustCreate(t, r, CreateInput{HostID: "h", StartAt: fixedTime().Add(-time.Minute), Activities: []string{"B"}})
	for _, m := range []*Match{early, started} {
		if _, err := r.ToggleAttendance(ctx, m.ID, "u1", m.Activities[0]); err != nil {
			t.Fatalf("join failed: %v", err)
		}
	}

	notifier := newMockNotifier()
	s := newTestScheduler(r, notifier, &mockUpdater{})
	s.SweepReminders(ctx)

	if len(notifier.sent) != 0 {
		t.Fatalf("matches outside the lead window must be skipped, got %v", notifier.sent)
	}
}

func TestSweepReminders_SkipsAbsentUsers(t *testing.T) {
	r := newTestRegistry(newMockStore())
	ctx := context.Background()

	m := mustCreate(t, r, CreateInput{HostID: "h", StartAt: fixedTime().Add(5 * time.Minute), Activities: []string{"Valorant"}})
	if _, err := r.ToggleAttendance(ctx, m.ID, "u1", "Valorant"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := r.RecordAbsence(ctx, m.ID, "u1", []string{"Valorant"}, "用事"); err != nil {
		t.Fatalf("absence failed: %v", err)
	}

	notifier := newMockNotifier()
	s := newTestScheduler(r, notifier, &mockUpdater{})
	s.SweepReminders(ctx)

	if len(notifier.sent) != 0 {
		t.Fatalf("absent users must not be reminded, got %v", notifier.sent)
	}
}

func TestSweepReminders_MarkersSurviveRestart(t *testing.T) {
	r := newTestRegistry(newMockStore())
	ctx := context.Background()

	m := mustCreate(t, r, CreateInput{HostID: "h", StartAt: fixedTime().Add(5 * time.Minute), Activities: []string{"Valorant"}})
	if _, err := r.ToggleAttendance(ctx, m.ID, "u1", "Valorant"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := r.ToggleAttendance(ctx, m.ID, "u2", "Valorant"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	notifier := newMockNotifier()
	notifier.failFor["u2"] = struct{}{}
	s := newTestScheduler(r, notifier, &mockUpdater{})
	s.SweepReminders(ctx)
	if len(notifier.sent["u1"]) != 1 {
		t.Fatalf("expected one reminder before restart, got %v", notifier.sent)
	}

	store := r.repo.(*mockStore)
	restarted := reloadRegistry(t, store)
	delete(notifier.failFor, "u2")
	s = newTestScheduler(restarted, notifier, &mockUpdater{})
	s.SweepReminders(ctx)

	if len(notifier.sent["u1"]) != 1 {
		t.Fatalf("restored marker must block a second reminder, got %v", notifier.sent)
	}
	if len(notifier.sent["u2"]) != 1 {
		t.Fatalf("user without a marker must still be reminded, got %v", notifier.sent)
	}
}

func TestSweepReminders_FailedDeliveryRetriesNextSweep(t *testing.T) {
	r := newTestRegistry(newMockStore())
	ctx := context.Background()

	m := mustCreate(t, r, CreateInput{HostID: "h", StartAt: fixedTime().Add(5 * time.Minute), Activities: []string{"Valorant"}})
	if _, err := r.ToggleAttendance(ctx, m.ID, "u1", "Valorant"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	notifier := newMockNotifier()
	notifier.failFor["u1"] = struct{}{}
	s := newTestScheduler(r, notifier, &mockUpdater{})

	s.SweepReminders(ctx)
	if len(notifier.sent["u1"]) != 0 {
		t.Fatal("failed delivery must not count as sent")
	}

	// The marker is only set after a successful send, so the next
	// sweep tries again.
	delete(notifier.failFor, "u1")
	s.SweepReminders(ctx)
	if len(notifier.sent["u1"]) != 1 {
		t.Fatalf("retry after failure expected, got %v", notifier.sent)
	}
}
