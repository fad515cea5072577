package match

import (
	"strings"
	"time"
)

// AnnouncementRef points at the rendered recruitment message so the
// adapter can refresh it after every state change.
type AnnouncementRef struct {
	ChannelID string
	MessageID string
}

// Match is one recruitment drive covering one or more activities.
// Identity fields are immutable after creation; attendance, absence,
// reminder and recruiting state are mutated only through the Registry
// under the per-match lock.
type Match struct {
	ID               int64
	HostID           string
	StartAt          time.Time
	Activities       []string
	Description      string
	RecruitmentEndAt *time.Time
	IsRecruiting     bool

	// Attendance maps userID to the set of activities the user joined.
	Attendance map[string]map[string]struct{}
	// Absence maps userID to activity to the recorded reason. A
	// (user, activity) pair is never in both Attendance and Absence.
	Absence map[string]map[string]string
	// Reminded holds userIDs already sent a start reminder.
	Reminded map[string]struct{}

	Announcement *AnnouncementRef
}

// EffectivelyRecruiting reports whether toggles are still permitted:
// the recruiting flag is set and the deadline, if any, has not passed.
func (m *Match) EffectivelyRecruiting(now time.Time) bool {
	if !m.IsRecruiting {
		return false
	}
	if m.RecruitmentEndAt != nil && !now.Before(*m.RecruitmentEndAt) {
		return false
	}
	return true
}

// CanonicalActivity resolves a case-insensitive activity name to the
// originally-cased entry of the activity list.
func (m *Match) CanonicalActivity(name string) (string, bool) {
	for _, a := range m.Activities {
		if strings.EqualFold(a, name) {
			return a, true
		}
	}
	return "", false
}

// ParticipantCount counts users joined to the activity and not absent
// from it.
func (m *Match) ParticipantCount(activity string) int {
	count := 0
	for userID, joined := range m.Attendance {
		if _, ok := joined[activity]; !ok {
			continue
		}
		if _, absent := m.Absence[userID][activity]; absent {
			continue
		}
		count++
	}
	return count
}

// TotalUniqueParticipants counts users with at least one joined
// activity they are not absent from.
func (m *Match) TotalUniqueParticipants() int {
	count := 0
	for userID, joined := range m.Attendance {
		for activity := range joined {
			if _, absent := m.Absence[userID][activity]; !absent {
				count++
				break
			}
		}
	}
	return count
}

// ActiveActivities returns, in activity-list order, the activities the
// user is joined to and not absent from.
func (m *Match) ActiveActivities(userID string) []string {
	joined := m.Attendance[userID]
	if len(joined) == 0 {
		return nil
	}
	var active []string
	for _, activity := range m.Activities {
		if _, ok := joined[activity]; !ok {
			continue
		}
		if _, absent := m.Absence[userID][activity]; absent {
			continue
		}
		active = append(active, activity)
	}
	return active
}

// Clone deep-copies the match so callers can read it without holding
// the per-match lock.
func (m *Match) Clone() *Match {
	c := *m
	c.Activities = append([]string(nil), m.Activities...)
	if m.RecruitmentEndAt != nil {
		end := *m.RecruitmentEndAt
		c.RecruitmentEndAt = &end
	}
	c.Attendance = make(map[string]map[string]struct{}, len(m.Attendance))
	for userID, joined := range m.Attendance {
		set := make(map[string]struct{}, len(joined))
		for activity := range joined {
			set[activity] = struct{}{}
		}
		c.Attendance[userID] = set
	}
	c.Absence = make(map[string]map[string]string, len(m.Absence))
	for userID, reasons := range m.Absence {
		byActivity := make(map[string]string, len(reasons))
		for activity, reason := range reasons {
			byActivity[activity] = reason
		}
		c.Absence[userID] = byActivity
	}
	c.Reminded = make(map[string]struct{}, len(m.Reminded))
	for userID := range m.Reminded {
		c.Reminded[userID] = struct{}{}
	}
	if m.Announcement != nil {
		ref := *m.Announcement
		c.Announcement = &ref
	}
	return &c
}

func normalizeActivities(raw []string) ([]string, error) {
	activities := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, a := range raw {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if _, dup := seen[key]; dup {
			return nil, &ValidationError{Reason: "duplicate activity: " + a}
		}
		seen[key] = struct{}{}
		activities = append(activities, a)
	}
	if len(activities) == 0 {
		return nil, &ValidationError{Reason: "at least one activity is required"}
	}
	return activities, nil
}
