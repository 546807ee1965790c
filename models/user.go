// File: models/user.go
package models

import "time"

// Roles a platform account can hold.
const (
	RoleUser   = "user"
	RoleLawyer = "lawyer"
	RoleAdmin  = "admin"
)

// User represents a platform account.
type User struct {
	ID              string         `bson:"id" json:"id"`
	Name            string         `bson:"name" json:"name"`
	Email           string         `bson:"email" json:"email"`
	Password        string         `bson:"-" json:"-"`
	PasswordHash    string         `bson:"passwordHash,omitempty" json:"-"`
	Role            string         `bson:"role" json:"role"`
	Devices         []Device       `bson:"devices" json:"devices,omitempty"`
	PushTokens      []string       `bson:"pushTokens,omitempty" json:"-"`
	TrialUsed       bool           `bson:"trialUsed" json:"trialUsed"`
	Strikes         int            `bson:"strikes" json:"strikes"`
	Suspended       bool           `bson:"suspended" json:"suspended"`
	LawyerProfile   *LawyerProfile `bson:"lawyerProfile,omitempty" json:"lawyerProfile,omitempty"`
	TermsVersion    string         `bson:"termsVersion" json:"termsVersion"`
	TermsAcceptedAt time.Time      `bson:"termsAcceptedAt" json:"termsAcceptedAt"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// LawyerProfile is set once a verification request is approved.
type LawyerProfile struct {
	BarNumber    string    `bson:"barNumber" json:"barNumber"`
	Jurisdiction string    `bson:"jurisdiction" json:"jurisdiction"`
	VerifiedAt   time.Time `bson:"verifiedAt" json:"verifiedAt"`
	VerifiedBy   string    `bson:"verifiedBy" json:"-"`
}

// IsLawyer reports whether the account holds verified lawyer status.
func (u *User) IsLawyer() bool {
	return u.Role == RoleLawyer && u.LawyerProfile != nil
}

// UserRegistrationRequest is the payload for POST /api/users/register.
type UserRegistrationRequest struct {
	Name          string `json:"name" binding:"required,max=120"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	AcceptedTerms bool   `json:"acceptedTerms"`
}

// UserLoginRequest is the payload for POST /api/users/login.
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserListFilter narrows admin user listings.
type UserListFilter struct {
	Role      string
	Suspended *bool
	Page      Page
}
