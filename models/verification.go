package models

import "time"

// Verification request statuses.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Document kinds accepted for lawyer verification.
const (
	DocBarLicense   = "bar_license"
	DocGovernmentID = "government_id"
	DocOther        = "other"
)

type VerificationDocument struct {
	Kind        string    `bson:"kind" json:"kind"`
	PublicID    string    `bson:"publicId" json:"publicId"`
	FileName    string    `bson:"fileName" json:"fileName"`
	ContentType string    `bson:"contentType" json:"contentType"`
	UploadedAt  time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

type VerificationRequest struct {
	ID           string                 `bson:"id" json:"id"`
	UserID       string                 `bson:"userId" json:"userId"`
	BarNumber    string                 `bson:"barNumber" json:"barNumber"`
	Jurisdiction string                 `bson:"jurisdiction" json:"jurisdiction"`
	Documents    []VerificationDocument `bson:"documents" json:"documents"`
	Status       string                 `bson:"status" json:"status"`
	ReviewerID   string                 `bson:"reviewerId,omitempty" json:"reviewerId,omitempty"`
	Note         string                 `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt    time.Time              `bson:"createdAt" json:"createdAt"`
	ReviewedAt   *time.Time             `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
}

// VerificationSubmission is the payload for POST /api/verification.
type VerificationSubmission struct {
	BarNumber    string                 `json:"barNumber" binding:"required,max=40"`
	Jurisdiction string                 `json:"jurisdiction" binding:"required,max=80"`
	Documents    []VerificationDocument `json:"documents" binding:"required,min=1,dive"`
}

// VerificationDecision is the payload for an admin review.
type VerificationDecision struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" binding:"max=1000"`
}
