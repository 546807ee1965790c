package models

import "time"

// Overview is the admin dashboard aggregate.
type Overview struct {
	Since                time.Time        `json:"since"`
	UsersByRole          map[string]int64 `json:"usersByRole"`
	NewUsers             int64            `json:"newUsers"`
	SuspendedUsers       int64            `json:"suspendedUsers"`
	ActiveLicenses       int64            `json:"activeLicenses"`
	ActiveTrials         int64            `json:"activeTrials"`
	HoursConsumed        float64          `json:"hoursConsumed"`
	RevenueCents         int64            `json:"revenueCents"`
	FAQsByStatus         map[string]int64 `json:"faqsByStatus"`
	PendingModeration    int64            `json:"pendingModeration"`
	PendingVerifications int64            `json:"pendingVerifications"`
	ChatMessages         int64            `json:"chatMessages"`
}

// UsagePoint is hours consumed in one bucket.
type UsagePoint struct {
	Day   string  `bson:"_id" json:"day"`
	Hours float64 `bson:"hours" json:"hours"`
}

// UserDashboard is returned by GET /api/dashboard.
type UserDashboard struct {
	User           *User                `json:"user"`
	License        LicenseStatus        `json:"license"`
	RecentSessions []ChatSession        `json:"recentSessions"`
	MyFAQs         []FAQ                `json:"myFaqs"`
	Verification   *VerificationRequest `json:"verification,omitempty"`
}

// LawyerDashboard is returned by GET /api/lawyer/dashboard.
type LawyerDashboard struct {
	Profile     *LawyerProfile `json:"profile"`
	OpenFAQs    []FAQ          `json:"openFaqs"`
	AnswerCount int64          `json:"answerCount"`
}
