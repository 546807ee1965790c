package faq

import (
	"context"
	"fmt"
	"strings"

	"lexassist/models"
	"lexassist/services/audit"
	ai "lexassist/services/intelligence"
	"lexassist/services/notification"
	"lexassist/utils"

	"go.uber.org/zap"
)

const draftSystem = "You write entries for a public legal FAQ. Answers are general legal information, not legal advice."

// DraftAnswer asks the model for an answer and scores it. Questions already
// answered by a lawyer are left alone.
func (s *DefaultFAQService) DraftAnswer(ctx context.Context, faqID string) (*models.FAQ, error) {
	f, err := s.get(ctx, faqID)
	if err != nil {
		return nil, err
	}
	if (f.Status != models.FAQPending && f.Status != models.FAQDrafted) || f.AnswerSource == models.AnswerSourceLawyer {
		return nil, ErrInvalidTransition
	}

	raw, err := s.LLM.Generate(ctx, ai.Prompt{
		System:      draftSystem,
		Message:     ai.FAQDraftPrompt(f.Question, f.Category, f.Jurisdiction),
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	if err != nil {
		utils.LLMRequestsTotal.WithLabelValues(utils.LLMOutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	utils.LLMRequestsTotal.WithLabelValues(utils.LLMOutcomeOK).Inc()

	answer, self, reported := ExtractConfidence(raw)
	answer = utils.SanitizeMultiline(answer, MaxAnswerLength)
	if answer == "" {
		return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, ai.ErrEmptyResponse)
	}
	score, signals := ScoreConfidence(f.Question, answer, self, reported)

	return s.transition(ctx, faqID, []string{models.FAQPending, models.FAQDrafted}, map[string]any{
		"answer":            answer,
		"answerSource":      models.AnswerSourceAI,
		"answeredBy":        "",
		"confidence":        score,
		"confidenceSignals": signals,
		"status":            models.FAQDrafted,
	})
}

// LawyerAnswer replaces any draft with a verified lawyer's answer. The FAQ
// still goes through admin review.
func (s *DefaultFAQService) LawyerAnswer(ctx context.Context, actor audit.Actor, faqID, answer string) (*models.FAQ, error) {
	lawyer, err := s.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer: %w", err)
	}
	if lawyer == nil || !lawyer.IsLawyer() {
		return nil, ErrNotLawyer
	}
	answer = utils.SanitizeMultiline(answer, MaxAnswerLength)
	if strings.TrimSpace(answer) == "" {
		return nil, ErrAnswerRequired
	}
	if _, err := s.get(ctx, faqID); err != nil {
		return nil, err
	}

	f, err := s.transition(ctx, faqID, []string{models.FAQPending, models.FAQDrafted}, map[string]any{
		"answer":            answer,
		"answerSource":      models.AnswerSourceLawyer,
		"answeredBy":        actor.ID,
		"confidence":        1.0,
		"confidenceSignals": nil,
		"status":            models.FAQDrafted,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor.Entry(audit.ActionFAQAnswered, audit.TargetFAQ, faqID, nil))
	return f, nil
}

// Review publishes or rejects. Only drafted FAQs can be published; pending
// and drafted ones can be rejected.
func (s *DefaultFAQService) Review(ctx context.Context, actor audit.Actor, faqID string, review models.FAQReview) (*models.FAQ, error) {
	f, err := s.get(ctx, faqID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	set := map[string]any{
		"reviewedBy": actor.ID,
		"reviewNote": utils.SanitizeText(review.Note, 1000),
	}

	var from []string
	if review.Approve {
		if f.Status != models.FAQDrafted {
			return nil, ErrInvalidTransition
		}
		if edited := utils.SanitizeMultiline(review.EditedAnswer, MaxAnswerLength); edited != "" && edited != f.Answer {
			set["answer"] = edited
			set["answerSource"] = models.AnswerSourceAdmin
			set["answeredBy"] = actor.ID
			set["confidence"] = 1.0
		} else if strings.TrimSpace(f.Answer) == "" {
			return nil, ErrAnswerRequired
		}
		set["status"] = models.FAQPublished
		set["publishedAt"] = now
		if tags := cleanTags(review.Tags); len(tags) > 0 {
			set["tags"] = tags
		}
		from = []string{models.FAQDrafted}
	} else {
		if f.Status != models.FAQPending && f.Status != models.FAQDrafted {
			return nil, ErrInvalidTransition
		}
		set["status"] = models.FAQRejected
		from = []string{models.FAQPending, models.FAQDrafted}
	}

	updated, err := s.transition(ctx, faqID, from, set)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor.Entry(audit.ActionFAQReviewed, audit.TargetFAQ, faqID, map[string]any{
		"approve":    review.Approve,
		"confidence": f.Confidence,
		"source":     f.AnswerSource,
	}))
	if review.Approve {
		s.notifyPublished(ctx, updated)
	}
	return updated, nil
}

func (s *DefaultFAQService) Archive(ctx context.Context, actor audit.Actor, faqID string) (*models.FAQ, error) {
	if _, err := s.get(ctx, faqID); err != nil {
		return nil, err
	}
	f, err := s.transition(ctx, faqID, []string{models.FAQPublished}, map[string]any{"status": models.FAQArchived})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor.Entry(audit.ActionFAQArchived, audit.TargetFAQ, faqID, nil))
	return f, nil
}

func (s *DefaultFAQService) notifyPublished(ctx context.Context, f *models.FAQ) {
	if s.Notifier == nil || f.SubmittedBy == "" {
		return
	}
	if err := s.Notifier.Notify(ctx, f.SubmittedBy, "Your question was answered",
		"An answer to your question is now published in the knowledge base.",
		map[string]string{"type": notification.TypeFAQPublished, "faqId": f.ID}); err != nil {
		utils.GetLogger().Warn("FAQ: publish notification failed", zap.String("faqId", f.ID), zap.Error(err))
	}
}

func cleanTags(raw []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range raw {
		t = strings.ToLower(utils.SanitizeText(t, 30))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}
