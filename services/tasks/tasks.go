package tasks

import (
	"context"
	"encoding/json"
	"time"

	"lexassist/models"

	"github.com/hibiken/asynq"
)

const (
	TypeFAQDraft      = "faq:draft"
	TypeLicenseNotice = "license:notify"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// FAQDraftPayload is carried by the faq:draft task.
type FAQDraftPayload struct {
	FAQID string `json:"faqId"`
}

func NewFAQDraftTask(faqID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(FAQDraftPayload{FAQID: faqID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeFAQDraft, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
		asynq.TaskID("faq-draft-" + faqID),
	}
	return task, opts, nil
}

func NewLicenseNoticeTask(payload models.LicenseNoticePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeLicenseNotice, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// ParseFAQDraft decodes a faq:draft payload.
func ParseFAQDraft(t *asynq.Task) (FAQDraftPayload, error) {
	var p FAQDraftPayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}

// ParseLicenseNotice decodes a license:notify payload.
func ParseLicenseNotice(t *asynq.Task) (models.LicenseNoticePayload, error) {
	var p models.LicenseNoticePayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}

// Enqueue builds and enqueues in one step. asynq.ErrTaskIDConflict is treated as success.
func Enqueue(ctx context.Context, q Enqueuer, task *asynq.Task, opts []asynq.Option) error {
	if q == nil {
		return nil
	}
	_, err := q.EnqueueContext(ctx, task, opts...)
	if err == asynq.ErrTaskIDConflict {
		return nil
	}
	return err
}
