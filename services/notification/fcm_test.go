package notification

import (
	"context"
	"errors"
	"testing"

	"lexassist/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenStore struct {
	user    *models.User
	removed []string
}

func (s *tokenStore) GetByID(_ context.Context, id string) (*models.User, error) {
	return s.user, nil
}

func (s *tokenStore) RemovePushTokens(_ context.Context, id string, tokens []string) error {
	s.removed = append(s.removed, tokens...)
	return nil
}

type fakeSender struct {
	sent *messaging.MulticastMessage
	resp *messaging.BatchResponse
	err  error
}

func (f *fakeSender) SendEachForMulticast(_ context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.sent = m
	return f.resp, f.err
}

func TestNotifySendsToEveryToken(t *testing.T) {
	users := &tokenStore{user: &models.User{ID: "u1", Role: models.RoleLawyer, PushTokens: []string{"t1", "t2"}}}
	sender := &fakeSender{resp: &messaging.BatchResponse{
		SuccessCount: 2,
		Responses:    []*messaging.SendResponse{{Success: true}, {Success: true}},
	}}
	svc := &FCMNotificationService{Users: users, Client: sender}

	err := svc.Notify(context.Background(), "u1", "Verified", "You are now a verified lawyer", map[string]string{"type": TypeVerificationDecision})
	require.NoError(t, err)
	require.NotNil(t, sender.sent)
	assert.Equal(t, []string{"t1", "t2"}, sender.sent.Tokens)
	assert.Equal(t, "Verified", sender.sent.Notification.Title)
	assert.Equal(t, TypeVerificationDecision, sender.sent.Data["type"])
	assert.Equal(t, models.RoleLawyer, sender.sent.Data["role"])
	assert.Empty(t, users.removed)
}

func TestNotifyWithoutTokensIsNoop(t *testing.T) {
	sender := &fakeSender{}
	svc := &FCMNotificationService{Users: &tokenStore{user: &models.User{ID: "u1"}}, Client: sender}
	require.NoError(t, svc.Notify(context.Background(), "u1", "t", "b", nil))
	assert.Nil(t, sender.sent)

	svc.Users = &tokenStore{}
	require.NoError(t, svc.Notify(context.Background(), "gone", "t", "b", nil))
	assert.Nil(t, sender.sent)
}

func TestNotifySendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("unavailable")}
	svc := &FCMNotificationService{Users: &tokenStore{user: &models.User{ID: "u1", PushTokens: []string{"t1"}}}, Client: sender}
	assert.Error(t, svc.Notify(context.Background(), "u1", "t", "b", nil))
}

func TestLogNotificationService(t *testing.T) {
	assert.NoError(t, LogNotificationService{}.Notify(context.Background(), "u1", "t", "b", nil))
}
