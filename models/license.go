// File: models/license.go
package models

import "time"

// License statuses.
const (
	LicenseActive    = "active"
	LicenseExpired   = "expired"
	LicenseExhausted = "exhausted"
	LicenseRevoked   = "revoked"
)

// Plan is a purchasable (or trial) hour bundle.
type Plan struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Hours        float64 `json:"hours"`
	DurationDays int     `json:"durationDays"`
	PriceCents   int64   `json:"priceCents"`
	Currency     string  `json:"currency"`
	Purchasable  bool    `json:"-"`
}

// UserLicense grants a fixed hour budget for a bounded time window.
type UserLicense struct {
	ID             string     `bson:"id" json:"id"`
	UserID         string     `bson:"userId" json:"userId"`
	PlanID         string     `bson:"planId" json:"planId"`
	IsTrial        bool       `bson:"isTrial" json:"isTrial"`
	HoursTotal     float64    `bson:"hoursTotal" json:"hoursTotal"`
	HoursRemaining float64    `bson:"hoursRemaining" json:"hoursRemaining"`
	StartsAt       time.Time  `bson:"startsAt" json:"startsAt"`
	ExpiresAt      time.Time  `bson:"expiresAt" json:"expiresAt"`
	Status         string     `bson:"status" json:"status"`
	PaymentID      string     `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	GrantedBy      string     `bson:"grantedBy,omitempty" json:"grantedBy,omitempty"`
	RevokeReason   string     `bson:"revokeReason,omitempty" json:"revokeReason,omitempty"`
	NotifiedAt     *time.Time `bson:"notifiedAt,omitempty" json:"-"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// UsageRecord is one debit against a license.
type UsageRecord struct {
	ID        string    `bson:"id" json:"id"`
	LicenseID string    `bson:"licenseId" json:"licenseId"`
	UserID    string    `bson:"userId" json:"userId"`
	SessionID string    `bson:"sessionId" json:"sessionId"`
	Hours     float64   `bson:"hours" json:"hours"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// LicenseStatus summarises a user's entitlement.
type LicenseStatus struct {
	HasAccess      bool          `json:"hasAccess"`
	HoursRemaining float64       `json:"hoursRemaining"`
	NextExpiry     *time.Time    `json:"nextExpiry,omitempty"`
	TrialUsed      bool          `json:"trialUsed"`
	Licenses       []UserLicense `json:"licenses"`
}

// LicenseNoticePayload is carried by the license:notify task.
type LicenseNoticePayload struct {
	LicenseID      string    `json:"licenseId"`
	UserID         string    `json:"userId"`
	Reason         string    `json:"reason"` // "expiring" or "low_hours"
	HoursRemaining float64   `json:"hoursRemaining"`
	ExpiresAt      time.Time `json:"expiresAt"`
}
