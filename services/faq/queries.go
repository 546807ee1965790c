package faq

import (
	"context"
	"fmt"
	"strings"

	"lexassist/models"
	"lexassist/utils"

	"go.uber.org/zap"
)

func (s *DefaultFAQService) ListPublished(ctx context.Context, query, category string, page models.Page) ([]models.FAQ, int64, error) {
	return s.Repo.List(ctx, models.FAQFilter{
		Query:    utils.SanitizeText(query, 200),
		Category: strings.ToLower(utils.SanitizeText(category, 60)),
		Status:   []string{models.FAQPublished},
		Page:     page.Normalize(),
	})
}

// GetPublished returns a published FAQ and counts the view.
func (s *DefaultFAQService) GetPublished(ctx context.Context, faqID string) (*models.FAQ, error) {
	f, err := s.get(ctx, faqID)
	if err != nil {
		return nil, err
	}
	if f.Status != models.FAQPublished {
		return nil, ErrFAQNotFound
	}
	if err := s.Repo.IncrementViews(ctx, faqID); err != nil {
		utils.GetLogger().Warn("FAQ: failed to count view", zap.String("faqId", faqID), zap.Error(err))
	} else {
		f.Views++
	}
	return f, nil
}

func (s *DefaultFAQService) ReviewQueue(ctx context.Context, page models.Page) ([]models.FAQ, int64, error) {
	return s.Repo.ReviewQueue(ctx, page.Normalize())
}

func (s *DefaultFAQService) ListOpen(ctx context.Context, page models.Page) ([]models.FAQ, int64, error) {
	return s.Repo.List(ctx, models.FAQFilter{
		Status: []string{models.FAQPending, models.FAQDrafted},
		Page:   page.Normalize(),
	})
}

func (s *DefaultFAQService) ListMine(ctx context.Context, userID string) ([]models.FAQ, error) {
	items, _, err := s.Repo.List(ctx, models.FAQFilter{
		SubmittedBy: userID,
		Page:        models.Page{Number: 1, Size: models.MaxPageSize},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return items, nil
}

func (s *DefaultFAQService) CountAnsweredBy(ctx context.Context, userID string) (int64, error) {
	return s.Repo.CountAnsweredBy(ctx, userID)
}
