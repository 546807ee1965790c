// File: models/faq.go
package models

import "time"

// FAQ statuses.
const (
	FAQPending   = "pending"
	FAQDrafted   = "drafted"
	FAQPublished = "published"
	FAQRejected  = "rejected"
	FAQArchived  = "archived"
)

// Answer sources.
const (
	AnswerSourceAI     = "ai"
	AnswerSourceLawyer = "lawyer"
	AnswerSourceAdmin  = "admin"
)

type FAQ struct {
	ID                string             `bson:"id" json:"id"`
	Question          string             `bson:"question" json:"question"`
	Answer            string             `bson:"answer,omitempty" json:"answer,omitempty"`
	Category          string             `bson:"category" json:"category"`
	Tags              []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Jurisdiction      string             `bson:"jurisdiction,omitempty" json:"jurisdiction,omitempty"`
	Status            string             `bson:"status" json:"status"`
	SubmittedBy       string             `bson:"submittedBy" json:"-"`
	AnswerSource      string             `bson:"answerSource,omitempty" json:"answerSource,omitempty"`
	AnsweredBy        string             `bson:"answeredBy,omitempty" json:"-"`
	Confidence        float64            `bson:"confidence" json:"confidence"`
	ConfidenceSignals *ConfidenceSignals `bson:"confidenceSignals,omitempty" json:"confidenceSignals,omitempty"`
	ReviewedBy        string             `bson:"reviewedBy,omitempty" json:"-"`
	ReviewNote        string             `bson:"reviewNote,omitempty" json:"reviewNote,omitempty"`
	Views             int64              `bson:"views" json:"views"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
	PublishedAt       *time.Time         `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
}

// ConfidenceSignals explains how a draft's confidence was computed.
type ConfidenceSignals struct {
	SelfReported float64 `bson:"selfReported" json:"selfReported"`
	Hedges       int     `bson:"hedges" json:"hedges"`
	Citations    int     `bson:"citations" json:"citations"`
	Overlap      float64 `bson:"overlap" json:"overlap"`
	Words        int     `bson:"words" json:"words"`
}

// FAQSubmission is the payload for POST /api/faqs.
type FAQSubmission struct {
	Question     string `json:"question" binding:"required"`
	Category     string `json:"category" binding:"omitempty,max=60"`
	Jurisdiction string `json:"jurisdiction" binding:"omitempty,max=80"`
}

// FAQReview is the payload for an admin review decision.
type FAQReview struct {
	Approve      bool     `json:"approve"`
	EditedAnswer string   `json:"editedAnswer"`
	Note         string   `json:"note"`
	Tags         []string `json:"tags"`
}

// FAQFilter narrows FAQ listings.
type FAQFilter struct {
	Query       string
	Category    string
	Status      []string
	SubmittedBy string
	Page        Page
}
