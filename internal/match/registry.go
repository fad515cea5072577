package match

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/tomodachin/internal/repository"
)

// Registry owns the canonical in-memory copy of every loaded match and
// writes through to the store. Every mutation persists first and only
// then updates the cache, inside the per-match critical section, so a
// failed store write leaves the in-memory state untouched.
type Registry struct {
	repo repository.Store
	now  func() time.Time

	mu      sync.Mutex
	entries map[int64]*entry
	order   []int64
	nextID  int64
}

type entry struct {
	mu      sync.Mutex
	deleted bool
	m       *Match
}

func NewRegistry(repo repository.Store) *Registry {
	return &Registry{
		repo:    repo,
		now:     time.Now,
		entries: make(map[int64]*entry),
		nextID:  1,
	}
}

// Load restores every stored match into the cache and seeds the id
// counter past the highest stored id. Matches whose recruitment window
// already elapsed are closed immediately.
func (r *Registry) Load(ctx context.Context) error {
	stored, err := r.repo.ListMatches(ctx)
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range stored {
		m, err := r.restoreMatch(ctx, row)
		if err != nil {
			return err
		}
		if m.IsRecruiting && m.RecruitmentEndAt != nil && !now.Before(*m.RecruitmentEndAt) {
			if err := r.repo.UpdateMatchRecruiting(ctx, m.ID, false); err != nil {
				return fmt.Errorf("failed to close expired match %d: %w", m.ID, err)
			}
			m.IsRecruiting = false
			slog.Info("closed expired recruitment on load", "match_id", m.ID)
		}
		r.entries[m.ID] = &entry{m: m}
		r.order = append(r.order, m.ID)
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
	}
	slog.Info("match registry loaded", "matches", len(stored), "next_id", r.nextID)
	return nil
}

func (r *Registry) restoreMatch(ctx context.Context, row repository.Match) (*Match, error) {
	m := &Match{
		ID:               row.ID,
		HostID:           row.HostID,
		StartAt:          row.StartAt,
		Activities:       row.Activities,
		Description:      row.Description,
		RecruitmentEndAt: row.RecruitmentEndAt,
		IsRecruiting:     row.IsRecruiting,
		Attendance:       make(map[string]map[string]struct{}),
		Absence:          make(map[string]map[string]string),
		Reminded:         make(map[string]struct{}),
	}
	if row.ChannelID != "" && row.MessageID != "" {
		m.Announcement = &AnnouncementRef{ChannelID: row.ChannelID, MessageID: row.MessageID}
	}
	attendance, err := r.repo.ListAttendance(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for match %d: %w", row.ID, err)
	}
	for _, rec := range attendance {
		if m.Attendance[rec.UserID] == nil {
			m.Attendance[rec.UserID] = make(map[string]struct{})
		}
		m.Attendance[rec.UserID][rec.Activity] = struct{}{}
	}
	absences, err := r.repo.ListAbsences(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list absences for match %d: %w", row.ID, err)
	}
	for _, rec := range absences {
		if m.Absence[rec.UserID] == nil {
			m.Absence[rec.UserID] = make(map[string]string)
		}
		m.Absence[rec.UserID][rec.Activity] = rec.Reason
	}
	reminders, err := r.repo.ListReminders(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders for match %d: %w", row.ID, err)
	}
	for _, rec := range reminders {
		m.Reminded[rec.UserID] = struct{}{}
	}
	return m, nil
}

type CreateInput struct {
	HostID           string
	StartAt          time.Time
	RecruitmentEndAt *time.Time
	Activities       []string
	Description      string
}

// Create validates the input, checks for recruiting conflicts, then
// allocates the next id, persists the match and caches it. Creation is
// serialized on the registry lock so two overlapping candidates cannot
// both pass the conflict check.
func (r *Registry) Create(ctx context.Context, input CreateInput) (*Match, error) {
	activities, err := normalizeActivities(input.Activities)
	if err != nil {
		return nil, err
	}
	if input.HostID == "" {
		return nil, &ValidationError{Reason: "host id is required"}
	}
	if input.StartAt.IsZero() {
		return nil, &ValidationError{Reason: "start time is required"}
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if conflicts := conflictingActivities(activities, r.recruitingActivitySetsLocked(now)); len(conflicts) > 0 {
		return nil, &ConflictError{Activities: conflicts}
	}

	m := &Match{
		ID:               r.nextID,
		HostID:           input.HostID,
		StartAt:          input.StartAt,
		Activities:       activities,
		Description:      input.Description,
		RecruitmentEndAt: input.RecruitmentEndAt,
		IsRecruiting:     true,
		Attendance:       make(map[string]map[string]struct{}),
		Absence:          make(map[string]map[string]string),
		Reminded:         make(map[string]struct{}),
	}
	if err := r.repo.InsertMatch(ctx, repository.Match{
		ID:               m.ID,
		HostID:           m.HostID,
		StartAt:          m.StartAt,
		Activities:       m.Activities,
		Description:      m.Description,
		RecruitmentEndAt: m.RecruitmentEndAt,
		IsRecruiting:     true,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist match: %w", err)
	}
	r.nextID++
	r.entries[m.ID] = &entry{m: m}
	r.order = append(r.order, m.ID)
	slog.Info("match created", "match_id", m.ID, "host_id", m.HostID, "activities", m.Activities)
	return m.Clone(), nil
}

// recruitingActivitySetsLocked snapshots the activity lists of every
// effectively recruiting match. Caller holds r.mu.
func (r *Registry) recruitingActivitySetsLocked(now time.Time) [][]string {
	var sets [][]string
	for _, id := range r.order {
		e := r.entries[id]
		e.mu.Lock()
		if !e.deleted && e.m.EffectivelyRecruiting(now) {
			sets = append(sets, append([]string(nil), e.m.Activities...))
		}
		e.mu.Unlock()
	}
	return sets
}

// Delete removes the match and, through the store's cascading foreign
// keys, all of its attendance, absence and reminder rows. Only the
// host may delete.
func (r *Registry) Delete(ctx context.Context, matchID int64, requesterID string) (*Match, error) {
	e, err := r.lookup(matchID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, ErrNotFound
	}
	if e.m.HostID != requesterID {
		e.mu.Unlock()
		return nil, ErrPermission
	}
	if err := r.repo.DeleteMatch(ctx, matchID); err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("failed to delete match: %w", err)
	}
	e.deleted = true
	deleted := e.m.Clone()
	e.mu.Unlock()

	r.mu.Lock()
	delete(r.entries, matchID)
	for i, id := range r.order {
		if id == matchID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	slog.Info("match deleted", "match_id", matchID, "requester_id", requesterID)
	return deleted, nil
}

// Get returns a snapshot of the match.
func (r *Registry) Get(matchID int64) (*Match, error) {
	e, err := r.lookup(matchID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, ErrNotFound
	}
	return e.m.Clone(), nil
}

// ListActive returns snapshots of every loaded match in creation
// order. Closed matches are included; they persist for history.
func (r *Registry) ListActive() []*Match {
	r.mu.Lock()
	ids := append([]int64(nil), r.order...)
	entries := make([]*entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, r.entries[id])
	}
	r.mu.Unlock()

	matches := make([]*Match, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted {
			matches = append(matches, e.m.Clone())
		}
		e.mu.Unlock()
	}
	return matches
}

// ToggleResult carries what the adapter needs to refresh its rendering
// after a successful toggle.
type ToggleResult struct {
	Activity         string
	ClearedAbsence   bool
	ParticipantCount int
	Match            *Match
}

// ToggleAttendance drives the per-(user, activity) state machine:
// unset becomes joined, absent becomes joined with the reason cleared,
// and joined is rejected in favor of the absence flow. A toggle
// against an expired window closes recruitment as a side effect before
// rejecting.
func (r *Registry) ToggleAttendance(ctx context.Context, matchID int64, userID, activity string) (*ToggleResult, error) {
	e, err := r.lookup(matchID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, ErrNotFound
	}
	m := e.m
	if err := r.ensureRecruitingLocked(ctx, m); err != nil {
		return nil, err
	}
	canonical, ok := m.CanonicalActivity(activity)
	if !ok {
		return nil, &ValidationError{Reason: "unknown activity: " + activity}
	}

	_, joined := m.Attendance[userID][canonical]
	_, absent := m.Absence[userID][canonical]
	switch {
	case absent:
		if err := r.repo.MoveAbsenceToAttendance(ctx, matchID, userID, canonical); err != nil {
			return nil, fmt.Errorf("failed to clear absence: %w", err)
		}
		delete(m.Absence[userID], canonical)
		if len(m.Absence[userID]) == 0 {
			delete(m.Absence, userID)
		}
		joinActivityLocked(m, userID, canonical)
	case joined:
		return nil, ErrAlreadyJoined
	default:
		if err := r.repo.InsertAttendance(ctx, matchID, userID, canonical); err != nil {
			return nil, fmt.Errorf("failed to persist attendance: %w", err)
		}
		joinActivityLocked(m, userID, canonical)
	}
	slog.Info("attendance toggled", "match_id", matchID, "user_id", userID, "activity", canonical, "cleared_absence", absent)
	return &ToggleResult{
		Activity:         canonical,
		ClearedAbsence:   absent,
		ParticipantCount: m.ParticipantCount(canonical),
		Match:            m.Clone(),
	}, nil
}

func joinActivityLocked(m *Match, userID, activity string) {
	if m.Attendance[userID] == nil {
		m.Attendance[userID] = make(map[string]struct{})
	}
	m.Attendance[userID][activity] = struct{}{}
}

// RecordAbsence moves each named activity from the user's attendance
// to their absence map with the given reason. Activities the user
// never joined still get the reason stored; an existing reason is
// overwritten. Each activity's move is one atomic store write, so the
// durable rows never hold both sides of a pair.
func (r *Registry) RecordAbsence(ctx context.Context, matchID int64, userID string, activities []string, reason string) (*Match, error) {
	e, err := r.lookup(matchID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, ErrNotFound
	}
	m := e.m
	if err := r.ensureRecruitingLocked(ctx, m); err != nil {
		return nil, err
	}
	for _, activity := range activities {
		canonical, ok := m.CanonicalActivity(activity)
		if !ok {
			return nil, &ValidationError{Reason: "unknown activity: " + activity}
		}
		if err := r.repo.MoveAttendanceToAbsence(ctx, matchID, userID, canonical, reason); err != nil {
			return nil, fmt.Errorf("failed to persist absence: %w", err)
		}
		if m.Absence[userID] == nil {
			m.Absence[userID] = make(map[string]string)
		}
		m.Absence[userID][canonical] = reason
		delete(m.Attendance[userID], canonical)
		if len(m.Attendance[userID]) == 0 {
			delete(m.Attendance, userID)
		}
	}
	slog.Info("absence recorded", "match_id", matchID, "user_id", userID, "activities", activities)
	return m.Clone(), nil
}

// ensureRecruitingLocked rejects mutations against a closed match. On
// a lazily-detected expiry it closes recruitment first so the window
// transition happens even between scheduler ticks. Caller holds the
// entry lock.
func (r *Registry) ensureRecruitingLocked(ctx context.Context, m *Match) error {
	if !m.IsRecruiting {
		return ErrClosed
	}
	if m.RecruitmentEndAt != nil && !r.now().Before(*m.RecruitmentEndAt) {
		if err := r.repo.UpdateMatchRecruiting(ctx, m.ID, false); err != nil {
			return fmt.Errorf("failed to close expired recruitment: %w", err)
		}
		m.IsRecruiting = false
		slog.Info("recruitment closed lazily on expired action", "match_id", m.ID)
		return ErrClosed
	}
	return nil
}

// CloseRecruitment idempotently ends recruitment. It reports whether a
// transition actually occurred so the adapter knows to re-render.
func (r *Registry) CloseRecruitment(ctx context.Context, matchID int64) (bool, error) {
	e, err := r.lookup(matchID)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return false, ErrNotFound
	}
	if !e.m.IsRecruiting {
		return false, nil
	}
	if err := r.repo.UpdateMatchRecruiting(ctx, matchID, false); err != nil {
		return false, fmt.Errorf("failed to persist recruitment close: %w", err)
	}
	e.m.IsRecruiting = false
	slog.Info("recruitment closed", "match_id", matchID)
	return true, nil
}

// SetAnnouncement records the rendered announcement message once.
// Later calls are no-ops.
func (r *Registry) SetAnnouncement(ctx context.Context, matchID int64, ref AnnouncementRef) error {
	e, err := r.lookup(matchID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrNotFound
	}
	if e.m.Announcement != nil {
		return nil
	}
	if err := r.repo.UpdateMatchAnnouncement(ctx, matchID, ref.ChannelID, ref.MessageID); err != nil {
		return fmt.Errorf("failed to persist announcement ref: %w", err)
	}
	e.m.Announcement = &ref
	return nil
}

// MarkReminded persists the one-time reminder marker for the user.
func (r *Registry) MarkReminded(ctx context.Context, matchID int64, userID string) error {
	e, err := r.lookup(matchID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrNotFound
	}
	if _, done := e.m.Reminded[userID]; done {
		return nil
	}
	if err := r.repo.InsertReminder(ctx, matchID, userID); err != nil {
		return fmt.Errorf("failed to persist reminder marker: %w", err)
	}
	e.m.Reminded[userID] = struct{}{}
	return nil
}

func (r *Registry) lookup(matchID int64) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[matchID]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}
