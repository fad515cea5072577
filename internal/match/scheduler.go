package match

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Notifier is the best-effort direct notification sink used for start
// reminders. A failed send is logged and never retried.
type Notifier interface {
	SendDirectMessage(userID, content string) error
}

// AnnouncementUpdater receives projection update events from the
// periodic evaluators so the adapter can refresh what it rendered.
type AnnouncementUpdater interface {
	RecruitmentClosed(ctx context.Context, m *Match)
}

// Scheduler runs the two periodic evaluators: the recruitment window
// controller and the start reminder sweep. Both iterate a snapshot of
// the registry on a fixed tick.
type Scheduler struct {
	registry *Registry
	notifier Notifier
	updater  AnnouncementUpdater
	tick     time.Duration
	lead     time.Duration
	loc      *time.Location
	now      func() time.Time
}

func NewScheduler(registry *Registry, notifier Notifier, updater AnnouncementUpdater, tick, lead time.Duration, loc *time.Location) *Scheduler {
	return &Scheduler{
		registry: registry,
		notifier: notifier,
		updater:  updater,
		tick:     tick,
		lead:     lead,
		loc:      loc,
		now:      time.Now,
	}
}

// Start launches both evaluator loops. They stop when ctx is
// cancelled; there is no other cancellation semantics.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runLoop(ctx, "recruitment_window", s.SweepRecruitmentWindows)
	go s.runLoop(ctx, "start_reminder", s.SweepReminders)
	slog.Info("schedulers started", "tick", s.tick, "reminder_lead", s.lead)
}

func (s *Scheduler) runLoop(ctx context.Context, name string, sweep func(ctx context.Context)) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped", "task", name)
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

// SweepRecruitmentWindows closes every match whose recruitment
// deadline has passed and emits a projection update for each
// transition.
func (s *Scheduler) SweepRecruitmentWindows(ctx context.Context) {
	now := s.now()
	for _, m := range s.registry.ListActive() {
		if !m.IsRecruiting || m.RecruitmentEndAt == nil || now.Before(*m.RecruitmentEndAt) {
			continue
		}
		closed, err := s.registry.CloseRecruitment(ctx, m.ID)
		if err != nil {
			slog.Error("failed to close recruitment", "error", err, "match_id", m.ID)
			continue
		}
		if !closed {
			continue
		}
		slog.Info("recruitment window elapsed", "match_id", m.ID)
		if s.updater != nil {
			if updated, err := s.registry.Get(m.ID); err == nil {
				s.updater.RecruitmentClosed(ctx, updated)
			}
		}
	}
}

// SweepReminders sends a one-time direct notification to every
// participant of a match starting within the lead window. The marker
// is persisted only after a successful dispatch; delivery failures are
// logged and otherwise ignored.
func (s *Scheduler) SweepReminders(ctx context.Context) {
	now := s.now()
	for _, m := range s.registry.ListActive() {
		untilStart := m.StartAt.Sub(now)
		if untilStart <= 0 || untilStart > s.lead {
			continue
		}
		for _, userID := range s.pendingReminderUsers(m) {
			activities := m.ActiveActivities(userID)
			content := reminderMessage(m.StartAt, s.loc, activities)
			if err := s.notifier.SendDirectMessage(userID, content); err != nil {
				slog.Warn("reminder delivery failed", "error", err, "match_id", m.ID, "user_id", userID)
				continue
			}
			if err := s.registry.MarkReminded(ctx, m.ID, userID); err != nil {
				slog.Error("failed to persist reminder marker", "error", err, "match_id", m.ID, "user_id", userID)
				continue
			}
			slog.Info("reminder sent", "match_id", m.ID, "user_id", userID, "activities", activities)
		}
	}
}

// pendingReminderUsers returns, in stable order, users with at least
// one active activity who have not been reminded yet.
func (s *Scheduler) pendingReminderUsers(m *Match) []string {
	var users []string
	for userID := range m.Attendance {
		if _, done := m.Reminded[userID]; done {
			continue
		}
		if len(m.ActiveActivities(userID)) == 0 {
			continue
		}
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

func reminderMessage(startAt time.Time, loc *time.Location, activities []string) string {
	if loc == nil {
		loc = time.UTC
	}
	return strings.Join([]string{
		"まもなく **" + startAt.In(loc).Format(reminderTimeLayout) + "** から",
		strings.Join(activities, "、") + " の内戦が始まります！",
		"忘れずに参加してください 😉",
	}, "\n")
}
