package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lexassist/config"
	"lexassist/models"
	"lexassist/services/faq"
	"lexassist/services/tasks"
	"lexassist/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// FAQDrafter produces the AI draft for a submitted question.
type FAQDrafter interface {
	DraftAnswer(ctx context.Context, faqID string) (*models.FAQ, error)
}

// NoticeSender delivers license notices.
type NoticeSender interface {
	SendNotice(ctx context.Context, p models.LicenseNoticePayload) error
}

// QueueRedisOpt is the asynq connection shared by the worker and the task client.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewServeMux routes every task type to its handler.
func NewServeMux(drafter FAQDrafter, notices NoticeSender) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeFAQDraft, handleFAQDraft(drafter))
	mux.HandleFunc(tasks.TypeLicenseNotice, handleLicenseNotice(notices))
	return mux
}

// StartWorker runs the asynq server in the background. The caller owns
// Shutdown.
func StartWorker(drafter FAQDrafter, notices NoticeSender) *asynq.Server {
	srv := asynq.NewServer(QueueRedisOpt(), asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
		Logger: utils.GetLogger().Sugar(),
	})
	mux := NewServeMux(drafter, notices)

	go func() {
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := srv.Start(mux)
			if err == nil {
				utils.GetLogger().Info("Task worker started")
				return
			}
			utils.GetLogger().Error("Task worker failed to start",
				zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
		utils.GetLogger().Error("Task worker gave up; background drafting and notices are disabled")
	}()
	return srv
}

func handleFAQDraft(drafter FAQDrafter) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseFAQDraft(task)
		if err != nil || p.FAQID == "" {
			return fmt.Errorf("invalid faq draft payload: %v: %w", err, asynq.SkipRetry)
		}
		_, err = drafter.DraftAnswer(ctx, p.FAQID)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, faq.ErrFAQNotFound), errors.Is(err, faq.ErrInvalidTransition):
			// Deleted, answered by a lawyer, or reviewed before the worker got to it.
			utils.GetLogger().Info("FAQ draft skipped", zap.String("faqId", p.FAQID), zap.Error(err))
			return nil
		default:
			utils.GetLogger().Warn("FAQ draft failed", zap.String("faqId", p.FAQID), zap.Error(err))
			return err
		}
	}
}

func handleLicenseNotice(notices NoticeSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseLicenseNotice(task)
		if err != nil || p.UserID == "" {
			return fmt.Errorf("invalid license notice payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := notices.SendNotice(ctx, p); err != nil {
			utils.GetLogger().Warn("License notice failed",
				zap.String("licenseId", p.LicenseID), zap.String("userId", p.UserID), zap.Error(err))
			return err
		}
		return nil
	}
}
