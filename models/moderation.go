package models

import "time"

// Severities, ordered.
const (
	SeverityNone   = ""
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// SeverityRank orders severities for comparison and sorting.
func SeverityRank(s string) int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// Moderation item kinds.
const (
	ModerationKindChat = "chat_message"
	ModerationKindFAQ  = "faq"
)

// Moderation item statuses.
const (
	ModerationPending   = "pending"
	ModerationDismissed = "dismissed"
	ModerationActioned  = "actioned"
)

// Moderation actions.
const (
	ModerationActionDismiss = "dismiss"
	ModerationActionWarn    = "warn"
	ModerationActionSuspend = "suspend"
)

type ModerationItem struct {
	ID           string     `bson:"id" json:"id"`
	Kind         string     `bson:"kind" json:"kind"`
	RefID        string     `bson:"refId" json:"refId"`
	UserID       string     `bson:"userId" json:"userId"`
	Excerpt      string     `bson:"excerpt" json:"excerpt"`
	Categories   []string   `bson:"categories" json:"categories"`
	Severity     string     `bson:"severity" json:"severity"`
	SeverityRank int        `bson:"severityRank" json:"-"`
	Status       string     `bson:"status" json:"status"`
	ReviewerID   string     `bson:"reviewerId,omitempty" json:"reviewerId,omitempty"`
	Action       string     `bson:"action,omitempty" json:"action,omitempty"`
	Note         string     `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	ReviewedAt   *time.Time `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
}

// ModerationReview is the payload for an admin decision on a flagged item.
type ModerationReview struct {
	Action string `json:"action" binding:"required,oneof=dismiss warn suspend"`
	Note   string `json:"note" binding:"max=500"`
}
