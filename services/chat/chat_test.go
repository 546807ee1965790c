package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"lexassist/models"
	ai "lexassist/services/intelligence"
	"lexassist/services/license"
	"lexassist/services/moderation"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type memChat struct {
	mu       sync.Mutex
	sessions map[string]*models.ChatSession
	messages []models.ChatMessage
}

func (r *memChat) CreateSession(_ context.Context, s *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *memChat) GetSession(_ context.Context, id string) (*models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *memChat) ListSessions(_ context.Context, userID string, _ int64) ([]models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChatSession
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memChat) TouchSession(_ context.Context, id string, at time.Time, messages int, hours float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[id]
	s.LastActivityAt = at
	s.MessageCount += messages
	s.HoursUsed += hours
	return nil
}

func (r *memChat) InsertMessage(_ context.Context, m *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *memChat) ListMessages(_ context.Context, sessionID string, limit int64) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range r.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func (r *memChat) CountMessagesSince(context.Context, time.Time) (int64, error) { return 0, nil }
func (r *memChat) DeleteByUser(context.Context, string) error                 { return nil }

type fakeLicenses struct {
	usable    bool
	remaining float64
	consumed  []float64
}

func (f *fakeLicenses) HasUsableLicense(context.Context, string) (bool, error) { return f.usable, nil }

func (f *fakeLicenses) Consume(_ context.Context, _, _ string, hours float64) (*license.ConsumeResult, error) {
	if !f.usable {
		return nil, license.ErrNoActiveLicense
	}
	f.consumed = append(f.consumed, hours)
	f.remaining -= hours
	return &license.ConsumeResult{HoursCharged: hours, HoursRemaining: f.remaining}, nil
}

func (f *fakeLicenses) Status(context.Context, string) (*models.LicenseStatus, error) {
	return &models.LicenseStatus{HasAccess: f.usable, HoursRemaining: f.remaining}, nil
}

type fakeModerator struct{ flagged []string }

func (m *fakeModerator) Screen(text string) moderation.Result { return moderation.Screen(text) }

func (m *fakeModerator) Flag(_ context.Context, _, refID, _, _ string, _ moderation.Result) (*models.ModerationItem, error) {
	m.flagged = append(m.flagged, refID)
	return &models.ModerationItem{ID: "mod-" + refID}, nil
}

type mockLLM struct{ mock.Mock }

func (m *mockLLM) Generate(ctx context.Context, p ai.Prompt) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

type fixture struct {
	svc      *DefaultChatService
	repo     *memChat
	licenses *fakeLicenses
	mod      *fakeModerator
	llm      *mockLLM
	store    *ai.RedisContextStore
	session  *models.ChatSession
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		repo:     &memChat{sessions: map[string]*models.ChatSession{}},
		licenses: &fakeLicenses{usable: true, remaining: 1},
		mod:      &fakeModerator{},
		llm:      &mockLLM{},
		store:    ai.NewRedisContextStore(client, 0),
	}
	f.svc = &DefaultChatService{
		Repo:       f.repo,
		Licenses:   f.licenses,
		Moderation: f.mod,
		LLM:        f.llm,
		Context:    f.store,
		Now:        func() time.Time { return clock },
	}
	f.session = &models.ChatSession{
		ID:             "s1",
		UserID:         "u1",
		Title:          "Deposit",
		CreatedAt:      clock.Add(-time.Hour),
		LastActivityAt: clock.Add(-2 * time.Minute),
	}
	require.NoError(t, f.repo.CreateSession(context.Background(), f.session))
	return f
}

func TestCharge(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    time.Duration
	}{
		{"quick follow-up pays the minimum", 10 * time.Second, time.Minute},
		{"within bounds", 150 * time.Second, 150 * time.Second},
		{"idle time is capped", 3 * time.Hour, 5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Charge(clock.Add(-tt.elapsed), clock, time.Minute, 5*time.Minute)
			assert.InDelta(t, tt.want.Hours(), got, 1e-12)
		})
	}
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.llm.On("Generate", mock.Anything, mock.MatchedBy(func(p ai.Prompt) bool {
		return p.Message == "Can my landlord keep my deposit?" && strings.Contains(p.System, "not provide legal advice")
	})).Return("Usually only for unpaid rent or damage.", nil).Once()

	reply, err := f.svc.SendMessage(ctx, "u1", "s1", "  Can my <i>landlord</i> keep my deposit?  ")
	require.NoError(t, err)

	assert.Equal(t, "Usually only for unpaid rent or damage.", reply.Reply.Content)
	assert.Equal(t, models.ChatRoleAssistant, reply.Reply.Role)
	assert.InDelta(t, (2 * time.Minute).Hours(), reply.HoursCharged, 1e-12)
	assert.InDelta(t, 1-(2*time.Minute).Hours(), reply.HoursRemaining, 1e-12)
	assert.False(t, reply.Flagged)
	require.Len(t, f.licenses.consumed, 1)

	sess, _ := f.repo.GetSession(ctx, "s1")
	assert.Equal(t, 2, sess.MessageCount)
	assert.Equal(t, clock, sess.LastActivityAt)

	cached, found, err := f.store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, cached.Turns, 2)
	assert.Equal(t, models.ChatRoleUser, cached.Turns[0].Role)
	f.llm.AssertExpectations(t)
}

func TestSendMessageRequiresLicenseBeforeModelCall(t *testing.T) {
	f := newFixture(t)
	f.licenses.usable = false

	_, err := f.svc.SendMessage(context.Background(), "u1", "s1", "What is adverse possession?")
	assert.ErrorIs(t, err, license.ErrNoActiveLicense)
	f.llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	assert.Empty(t, f.repo.messages)
}

func TestSendMessageHighSeveritySkipsModel(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.SendMessage(context.Background(), "u1", "s1", "I want to kill myself over this eviction")
	require.NoError(t, err)

	assert.True(t, reply.Flagged)
	assert.True(t, reply.Message.Flagged)
	assert.Equal(t, SafetyReply, reply.Reply.Content)
	assert.Zero(t, reply.HoursCharged)
	assert.Empty(t, f.licenses.consumed)
	assert.Equal(t, []string{reply.Message.ID}, f.mod.flagged)
	f.llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSendMessageMediumSeverityIsAnswered(t *testing.T) {
	f := newFixture(t)
	f.llm.On("Generate", mock.Anything, mock.Anything).Return("Do not share identifiers here.", nil).Once()

	reply, err := f.svc.SendMessage(context.Background(), "u1", "s1", "My SSN is 123-45-6789, was it misused?")
	require.NoError(t, err)
	assert.True(t, reply.Flagged)
	assert.Len(t, f.mod.flagged, 1)
	assert.Len(t, f.licenses.consumed, 1)
}

func TestSendMessageModelFailureIsFree(t *testing.T) {
	f := newFixture(t)
	f.llm.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()

	_, err := f.svc.SendMessage(context.Background(), "u1", "s1", "What is a lien?")
	assert.ErrorIs(t, err, ErrLLMUnavailable)
	assert.Empty(t, f.licenses.consumed)
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name    string
		userID  string
		session string
		text    string
		want    error
	}{
		{"empty after sanitizing", "u1", "s1", "<p>   </p>", ErrEmptyMessage},
		{"too long", "u1", "s1", strings.Repeat("a", MaxMessageLength+1), ErrMessageTooLong},
		{"someone else's session", "u2", "s1", "hello there", ErrSessionNotFound},
		{"unknown session", "u1", "nope", "hello there", ErrSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SendMessage(context.Background(), tt.userID, tt.session, tt.text)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	f.llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHistoryFallsBackToStoredMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, m := range []models.ChatMessage{
		{ID: "m1", SessionID: "s1", Role: models.ChatRoleUser, Content: "I rent in Ohio."},
		{ID: "m2", SessionID: "s1", Role: models.ChatRoleAssistant, Content: "Noted."},
		{ID: "m3", SessionID: "s1", Role: models.ChatRoleSystem, Content: SafetyReply},
	} {
		require.NoError(t, f.repo.InsertMessage(ctx, &m))
	}

	f.llm.On("Generate", mock.Anything, mock.MatchedBy(func(p ai.Prompt) bool {
		return len(p.History) == 2 && p.History[0].Content == "I rent in Ohio."
	})).Return("In Ohio, 30 days.", nil).Once()

	_, err := f.svc.SendMessage(ctx, "u1", "s1", "How long does the landlord have?")
	require.NoError(t, err)
	f.llm.AssertExpectations(t)
}

func TestGetMessagesOwnerOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetMessages(context.Background(), "u2", "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	msgs, err := f.svc.GetMessages(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestCreateSessionDefaultsTitle(t *testing.T) {
	f := newFixture(t)
	sess, err := f.svc.CreateSession(context.Background(), "u1", "  ")
	require.NoError(t, err)
	assert.Equal(t, defaultTitle, sess.Title)
	assert.Equal(t, clock, sess.LastActivityAt)
}
