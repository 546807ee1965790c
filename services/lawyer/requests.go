package lawyer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	verificationRepo "lexassist/database/repository/verification"
	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/services/notification"
	"lexassist/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultLawyerService) get(ctx context.Context, id string) (*models.VerificationRequest, error) {
	req, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load verification request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// Submit opens a verification request from previously uploaded documents.
func (s *DefaultLawyerService) Submit(ctx context.Context, userID string, sub models.VerificationSubmission) (*models.VerificationRequest, error) {
	u, err := s.Accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if u.IsLawyer() {
		return nil, ErrAlreadyLawyer
	}
	if u.Role == models.RoleAdmin {
		return nil, ErrAdminAccount
	}

	bar := utils.SanitizeText(sub.BarNumber, 40)
	jurisdiction := utils.SanitizeText(sub.Jurisdiction, 80)
	if bar == "" || jurisdiction == "" {
		return nil, ErrMissingFields
	}
	docs, err := checkDocuments(userID, sub.Documents)
	if err != nil {
		return nil, err
	}

	pending, err := s.Repo.HasPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, ErrPendingRequestExists
	}

	req := &models.VerificationRequest{
		ID:           uuid.New().String(),
		UserID:       userID,
		BarNumber:    bar,
		Jurisdiction: jurisdiction,
		Documents:    docs,
		Status:       models.VerificationPending,
		CreatedAt:    s.now(),
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		if errors.Is(err, verificationRepo.ErrPendingExists) {
			return nil, ErrPendingRequestExists
		}
		return nil, fmt.Errorf("failed to create verification request: %w", err)
	}
	return req, nil
}

func checkDocuments(userID string, in []models.VerificationDocument) ([]models.VerificationDocument, error) {
	if len(in) > MaxDocuments {
		return nil, ErrTooManyDocuments
	}
	prefix := documentFolder(userID) + "/"
	out := make([]models.VerificationDocument, 0, len(in))
	hasBar := false
	for _, d := range in {
		if !validKind(d.Kind) {
			return nil, ErrInvalidDocumentKind
		}
		if !strings.HasPrefix(d.PublicID, prefix) {
			return nil, ErrForeignDocument
		}
		if _, ok := allowedTypes[d.ContentType]; !ok {
			return nil, ErrUnsupportedType
		}
		d.FileName = utils.SanitizeText(d.FileName, 255)
		hasBar = hasBar || d.Kind == models.DocBarLicense
		out = append(out, d)
	}
	if !hasBar {
		return nil, ErrBarLicenseRequired
	}
	return out, nil
}

// Review decides a pending request. Approval grants the lawyer role; if the
// grant fails the request goes back to pending so the review can be retried.
func (s *DefaultLawyerService) Review(ctx context.Context, actor audit.Actor, requestID string, d models.VerificationDecision) (*models.VerificationRequest, error) {
	note := utils.SanitizeMultiline(d.Note, 1000)
	if !d.Approve && note == "" {
		return nil, ErrNoteRequired
	}
	req, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.VerificationPending {
		return nil, ErrNotPending
	}

	status := models.VerificationRejected
	if d.Approve {
		status = models.VerificationApproved
	}
	now := s.now()
	resolved, err := s.Repo.Resolve(ctx, requestID, status, actor.ID, note, now)
	if errors.Is(err, verificationRepo.ErrNotPending) {
		return nil, ErrNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve verification request: %w", err)
	}

	if d.Approve {
		profile := models.LawyerProfile{
			BarNumber:    req.BarNumber,
			Jurisdiction: req.Jurisdiction,
			VerifiedAt:   now,
			VerifiedBy:   actor.ID,
		}
		if err := s.Accounts.PromoteToLawyer(ctx, req.UserID, profile); err != nil {
			utils.GetLogger().Error("Verification approved but promotion failed, reopening request",
				zap.String("requestId", requestID), zap.String("userId", req.UserID), zap.Error(err))
			if rerr := s.Repo.Reopen(ctx, requestID, status); rerr != nil {
				utils.GetLogger().Error("Failed to reopen verification request",
					zap.String("requestId", requestID), zap.Error(rerr))
			}
			return nil, fmt.Errorf("failed to grant lawyer role: %w", err)
		}
	}

	s.record(ctx, actor.Entry(audit.ActionVerificationDecided, audit.TargetVerification, requestID, map[string]any{
		"userId": req.UserID,
		"status": status,
	}))
	s.notifyDecision(ctx, resolved)
	return resolved, nil
}

func (s *DefaultLawyerService) notifyDecision(ctx context.Context, req *models.VerificationRequest) {
	if s.Notifier == nil {
		return
	}
	title, body := "Verification approved", "Your lawyer account is active. You can now answer questions from the community."
	if req.Status == models.VerificationRejected {
		title, body = "Verification not approved", req.Note
	}
	if err := s.Notifier.Notify(ctx, req.UserID, title, body, map[string]string{
		"type":      notification.TypeVerificationDecision,
		"requestId": req.ID,
		"status":    req.Status,
	}); err != nil {
		utils.GetLogger().Warn("Verification: decision notification failed", zap.String("userId", req.UserID), zap.Error(err))
	}
}

// Mine returns the user's latest request, or nil.
func (s *DefaultLawyerService) Mine(ctx context.Context, userID string) (*models.VerificationRequest, error) {
	req, err := s.Repo.LatestByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verification request: %w", err)
	}
	return req, nil
}

// Queue lists requests by status; empty means pending and "all" lists everything.
func (s *DefaultLawyerService) Queue(ctx context.Context, status string, page models.Page) ([]models.VerificationRequest, int64, error) {
	switch status {
	case "":
		status = models.VerificationPending
	case "all":
		status = ""
	case models.VerificationPending, models.VerificationApproved, models.VerificationRejected:
	default:
		return nil, 0, ErrInvalidStatus
	}
	return s.Repo.Queue(ctx, status, page.Normalize())
}
