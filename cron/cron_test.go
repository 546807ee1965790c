package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"lexassist/models"
	"lexassist/services/faq"
	"lexassist/services/license"
	"lexassist/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDrafter struct {
	calls []string
	err   error
}

func (d *fakeDrafter) DraftAnswer(_ context.Context, id string) (*models.FAQ, error) {
	d.calls = append(d.calls, id)
	return &models.FAQ{ID: id}, d.err
}

type fakeNotices struct {
	sent []models.LicenseNoticePayload
	err  error
}

func (n *fakeNotices) SendNotice(_ context.Context, p models.LicenseNoticePayload) error {
	n.sent = append(n.sent, p)
	return n.err
}

func TestHandleFAQDraft(t *testing.T) {
	task, _, err := tasks.NewFAQDraftTask("faq-1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		draftErr error
		wantErr  bool
	}{
		{"drafted", nil, false},
		{"already answered", faq.ErrInvalidTransition, false},
		{"deleted", faq.ErrFAQNotFound, false},
		{"llm down", faq.ErrLLMUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDrafter{err: tt.draftErr}
			err := handleFAQDraft(d)(context.Background(), task)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, []string{"faq-1"}, d.calls)
		})
	}

	d := &fakeDrafter{}
	err = handleFAQDraft(d)(context.Background(), asynq.NewTask(tasks.TypeFAQDraft, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, d.calls)
}

func TestHandleLicenseNotice(t *testing.T) {
	p := models.LicenseNoticePayload{LicenseID: "l1", UserID: "u1", Reason: license.ReasonLowHours, HoursRemaining: 0.1}
	task, _, err := tasks.NewLicenseNoticeTask(p)
	require.NoError(t, err)

	n := &fakeNotices{}
	require.NoError(t, handleLicenseNotice(n)(context.Background(), task))
	require.Len(t, n.sent, 1)
	assert.Equal(t, "l1", n.sent[0].LicenseID)

	n.err = errors.New("fcm down")
	assert.Error(t, handleLicenseNotice(n)(context.Background(), task))

	b, _ := json.Marshal(models.LicenseNoticePayload{LicenseID: "l2"})
	err = handleLicenseNotice(n)(context.Background(), asynq.NewTask(tasks.TypeLicenseNotice, b))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type fakeSweeper struct {
	at  []time.Time
	err error
}

func (s *fakeSweeper) Sweep(_ context.Context, now time.Time) (*license.SweepResult, error) {
	s.at = append(s.at, now)
	return &license.SweepResult{}, s.err
}

func TestSweepJob(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s := &fakeSweeper{err: errors.New("mongo down")}
	sweepJob(s, func() time.Time { return fixed })()
	assert.Equal(t, []time.Time{fixed}, s.at)
}

func TestStartSchedulerRejectsBadSpec(t *testing.T) {
	_, err := StartScheduler("every tuesday-ish", &fakeSweeper{})
	assert.Error(t, err)
}

func TestStartScheduler(t *testing.T) {
	c, err := StartScheduler("@every 1h", &fakeSweeper{})
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
