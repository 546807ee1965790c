package models

import "time"

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// Payment tracks a plan purchase through the payment provider.
type Payment struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	PlanID      string    `bson:"planId" json:"planId"`
	ProviderRef string    `bson:"providerRef" json:"providerRef"`
	AmountCents int64     `bson:"amountCents" json:"amountCents"`
	Currency    string    `bson:"currency" json:"currency"`
	Status      string    `bson:"status" json:"status"`
	LicenseID   string    `bson:"licenseId,omitempty" json:"licenseId,omitempty"`
	Error       string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CheckoutSession is returned to the client to complete payment.
type CheckoutSession struct {
	PaymentID       string `json:"paymentId"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	AmountCents     int64  `json:"amountCents"`
	Currency        string `json:"currency"`
	PlanID          string `json:"planId"`
}
