package repository

import "context"

type MatchStore interface {
	InsertMatch(ctx context.Context, m Match) error
	ListMatches(ctx context.Context) ([]Match, error)
	UpdateMatchRecruiting(ctx context.Context, matchID int64, isRecruiting bool) error
	UpdateMatchAnnouncement(ctx context.Context, matchID int64, channelID, messageID string) error
	DeleteMatch(ctx context.Context, matchID int64) error
}

type AttendanceStore interface {
	InsertAttendance(ctx context.Context, matchID int64, userID, activity string) error
	DeleteAttendance(ctx context.Context, matchID int64, userID, activity string) error
	ListAttendance(ctx context.Context, matchID int64) ([]AttendanceRecord, error)
	// MoveAttendanceToAbsence upserts the absence reason and removes
	// any attendance row for the pair in one atomic write, so the
	// store never durably holds both sides.
	MoveAttendanceToAbsence(ctx context.Context, matchID int64, userID, activity, reason string) error
	// MoveAbsenceToAttendance is the reverse move, equally atomic.
	MoveAbsenceToAttendance(ctx context.Context, matchID int64, userID, activity string) error
	ListAbsences(ctx context.Context, matchID int64) ([]AbsenceRecord, error)
}

type ReminderStore interface {
	InsertReminder(ctx context.Context, matchID int64, userID string) error
	ListReminders(ctx context.Context, matchID int64) ([]ReminderRecord, error)
}

type Store interface {
	MatchStore
	AttendanceStore
	ReminderStore
}
