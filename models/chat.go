package models

import "time"

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

type ChatSession struct {
	ID             string    `bson:"id" json:"id"`
	UserID         string    `bson:"userId" json:"userId"`
	Title          string    `bson:"title" json:"title"`
	MessageCount   int       `bson:"messageCount" json:"messageCount"`
	HoursUsed      float64   `bson:"hoursUsed" json:"hoursUsed"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	LastActivityAt time.Time `bson:"lastActivityAt" json:"lastActivityAt"`
}

type ChatMessage struct {
	ID           string    `bson:"id" json:"id"`
	SessionID    string    `bson:"sessionId" json:"sessionId"`
	UserID       string    `bson:"userId" json:"userId"`
	Role         string    `bson:"role" json:"role"`
	Content      string    `bson:"content" json:"content"`
	Flagged      bool      `bson:"flagged" json:"flagged"`
	HoursCharged float64   `bson:"hoursCharged" json:"hoursCharged"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// ChatReply is the result of sending one message.
type ChatReply struct {
	Message        ChatMessage `json:"message"`
	Reply          ChatMessage `json:"reply"`
	HoursCharged   float64     `json:"hoursCharged"`
	HoursRemaining float64     `json:"hoursRemaining"`
	Flagged        bool        `json:"flagged"`
}
