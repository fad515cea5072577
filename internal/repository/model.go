package repository

import "time"

type Match struct {
	ID               int64
	HostID           string
	StartAt          time.Time
	Activities       []string
	Description      string
	ChannelID        string
	MessageID        string
	RecruitmentEndAt *time.Time
	IsRecruiting     bool
}

type AttendanceRecord struct {
	MatchID  int64
	UserID   string
	Activity string
}

type AbsenceRecord struct {
	MatchID  int64
	UserID   string
	Activity string
	Reason   string
}

type ReminderRecord struct {
	MatchID int64
	UserID  string
}
