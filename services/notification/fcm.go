package notification

import (
	"context"
	"fmt"

	"lexassist/utils"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// NewFCMClient builds a messaging client from a service-account file.
func NewFCMClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize FCM client: %w", err)
	}
	return client, nil
}

// FCMNotificationService sends to every registered push token of a user.
type FCMNotificationService struct {
	Users  PushTokenSource
	Client Sender
}

func (s *FCMNotificationService) Notify(ctx context.Context, userID, title, body string, data map[string]string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not load user %s: %w", userID, err)
	}
	if u == nil || len(u.PushTokens) == 0 {
		utils.GetLogger().Debug("Notify: no push target", zap.String("userId", userID))
		return nil
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = u.Role
	}

	msg := &messaging.MulticastMessage{
		Tokens:       u.PushTokens,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	}

	resp, err := s.Client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	var stale []string
	for i, r := range resp.Responses {
		if r.Success || i >= len(u.PushTokens) {
			continue
		}
		if messaging.IsUnregistered(r.Error) || messaging.IsInvalidArgument(r.Error) {
			stale = append(stale, u.PushTokens[i])
		}
	}
	if len(stale) > 0 {
		if err := s.Users.RemovePushTokens(ctx, userID, stale); err != nil {
			utils.GetLogger().Warn("Notify: failed to prune stale tokens", zap.String("userId", userID), zap.Error(err))
		}
	}
	return nil
}

// LogNotificationService only logs. Used when FCM credentials are not configured.
type LogNotificationService struct{}

func (LogNotificationService) Notify(_ context.Context, userID, title, body string, data map[string]string) error {
	utils.GetLogger().Info("Notify (push disabled)",
		zap.String("userId", userID),
		zap.String("title", title),
		zap.String("body", body),
		zap.Any("data", data))
	return nil
}
