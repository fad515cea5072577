package webhook

import "context"

const (
	EventMatchCreated      = "match_created"
	EventRecruitmentClosed = "recruitment_closed"
	EventMatchDeleted      = "match_deleted"
)

type MatchEvent struct {
	Type       string   `json:"type"`
	MatchID    int64    `json:"match_id"`
	HostID     string   `json:"host_id"`
	Activities []string `json:"activities"`
	StartAt    string   `json:"start_at"`
	OccurredAt string   `json:"occurred_at"`
}

type Sender interface {
	SendMatchEvent(ctx context.Context, ev MatchEvent) error
}
