package models

import "time"

type AuditEntry struct {
	ID         string         `bson:"id" json:"id"`
	ActorID    string         `bson:"actorId" json:"actorId"`
	ActorRole  string         `bson:"actorRole" json:"actorRole"`
	Action     string         `bson:"action" json:"action"`
	TargetType string         `bson:"targetType" json:"targetType"`
	TargetID   string         `bson:"targetId" json:"targetId"`
	Metadata   map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	IP         string         `bson:"ip,omitempty" json:"ip,omitempty"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
}

type AuditFilter struct {
	ActorID  string
	Action   string
	TargetID string
	Since    time.Time
	Page     Page
}
