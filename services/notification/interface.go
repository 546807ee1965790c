package notification

import (
	"context"

	"lexassist/models"

	"firebase.google.com/go/v4/messaging"
)

// NotificationService delivers push notifications to a user's devices.
type NotificationService interface {
	Notify(ctx context.Context, userID, title, body string, data map[string]string) error
}

// PushTokenSource is the part of the user repository the FCM notifier needs.
type PushTokenSource interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	RemovePushTokens(ctx context.Context, id string, tokens []string) error
}

// Sender is satisfied by *messaging.Client.
type Sender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Notification types carried in the data payload.
const (
	TypeVerificationDecision = "verification_decision"
	TypeLicenseNotice        = "license_notice"
	TypeLicenseGranted       = "license_granted"
	TypeFAQPublished         = "faq_published"
	TypeModerationWarning    = "moderation_warning"
)
