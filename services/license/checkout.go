package license

import (
	"context"
	"errors"
	"fmt"

	licenseRepo "lexassist/database/repository/license"
	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/services/notification"
	"lexassist/services/payment"
	"lexassist/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultLicenseService) CreateCheckout(ctx context.Context, userID, planID string) (*models.CheckoutSession, error) {
	if s.Payments == nil {
		return nil, ErrPaymentsDisabled
	}
	plan, ok := PlanByID(planID)
	if !ok {
		return nil, ErrUnknownPlan
	}
	if !plan.Purchasable {
		return nil, ErrPlanNotPurchasable
	}

	paymentID := uuid.New().String()
	intent, err := s.Payments.CreateIntent(ctx, plan.PriceCents, plan.Currency, "LexAssist "+plan.Name+" plan", map[string]string{
		"user_id":    userID,
		"plan_id":    plan.ID,
		"payment_id": paymentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start checkout: %w", err)
	}

	p := &models.Payment{
		ID:          paymentID,
		UserID:      userID,
		PlanID:      plan.ID,
		ProviderRef: intent.ID,
		AmountCents: plan.PriceCents,
		Currency:    plan.Currency,
		Status:      models.PaymentPending,
	}
	if err := s.Repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return &models.CheckoutSession{
		PaymentID:       p.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		AmountCents:     p.AmountCents,
		Currency:        p.Currency,
		PlanID:          plan.ID,
	}, nil
}

// ConfirmPayment is called by the client after the card step. It is
// idempotent: a payment already fulfilled returns its license.
func (s *DefaultLicenseService) ConfirmPayment(ctx context.Context, userID, paymentIntentID string) (*models.UserLicense, error) {
	if s.Payments == nil {
		return nil, ErrPaymentsDisabled
	}
	p, err := s.Repo.GetPaymentByProviderRef(ctx, paymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if p == nil || (userID != "" && p.UserID != userID) {
		return nil, ErrPaymentNotFound
	}
	if p.Status == models.PaymentSucceeded && p.LicenseID != "" {
		return s.licenseForPayment(ctx, p)
	}

	intent, err := s.Payments.GetIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	switch intent.Status {
	case payment.IntentSucceeded:
		return s.fulfil(ctx, p, intent)
	case payment.IntentCanceled:
		s.markFailed(ctx, p, "payment canceled")
		return nil, ErrPaymentFailed
	case payment.IntentFailed:
		if intent.LastError != "" {
			s.markFailed(ctx, p, intent.LastError)
			return nil, ErrPaymentFailed
		}
	}
	return nil, ErrPaymentNotCompleted
}

// HandleWebhook applies a verified payment callback.
func (s *DefaultLicenseService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if s.Payments == nil {
		return ErrPaymentsDisabled
	}
	ev, err := s.Payments.ParseWebhook(body, signature)
	if err != nil {
		return err
	}
	if ev.Intent == nil {
		return nil
	}

	p, err := s.Repo.GetPaymentByProviderRef(ctx, ev.Intent.ID)
	if err != nil {
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if p == nil {
		utils.GetLogger().Warn("Webhook: unknown payment intent", zap.String("intent", ev.Intent.ID), zap.String("event", ev.Type))
		return nil
	}

	switch ev.Type {
	case payment.EventIntentSucceeded:
		_, err = s.fulfil(ctx, p, ev.Intent)
		return err
	case payment.EventIntentFailed, payment.EventIntentCanceled:
		if p.Status != models.PaymentSucceeded {
			msg := ev.Intent.LastError
			if msg == "" {
				msg = ev.Type
			}
			s.markFailed(ctx, p, msg)
		}
	}
	return nil
}

func (s *DefaultLicenseService) licenseForPayment(ctx context.Context, p *models.Payment) (*models.UserLicense, error) {
	l, err := s.Repo.GetByPaymentID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load license: %w", err)
	}
	if l == nil {
		return nil, ErrLicenseNotFound
	}
	return l, nil
}

// fulfil grants the plan's license once per payment. The unique paymentId
// index makes a second concurrent fulfilment fail with ErrPaymentAlreadyGranted.
func (s *DefaultLicenseService) fulfil(ctx context.Context, p *models.Payment, intent *payment.Intent) (*models.UserLicense, error) {
	if existing, err := s.Repo.GetByPaymentID(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("failed to load license: %w", err)
	} else if existing != nil {
		if p.Status != models.PaymentSucceeded {
			_ = s.Repo.UpdatePaymentStatus(ctx, p.ID, models.PaymentSucceeded, existing.ID, "")
		}
		return existing, nil
	}

	plan, ok := PlanByID(p.PlanID)
	if !ok {
		return nil, ErrUnknownPlan
	}
	if intent != nil && intent.AmountCents != 0 && intent.AmountCents != p.AmountCents {
		utils.GetLogger().Warn("Payment amount mismatch",
			zap.String("paymentId", p.ID),
			zap.Int64("expected", p.AmountCents),
			zap.Int64("received", intent.AmountCents))
	}

	l := newLicense(p.UserID, plan, plan.Hours, plan.DurationDays, s.now())
	l.PaymentID = p.ID
	if err := s.Repo.Create(ctx, l); err != nil {
		if errors.Is(err, licenseRepo.ErrPaymentAlreadyGranted) {
			return s.licenseForPayment(ctx, p)
		}
		return nil, fmt.Errorf("failed to create license: %w", err)
	}
	if err := s.Repo.UpdatePaymentStatus(ctx, p.ID, models.PaymentSucceeded, l.ID, ""); err != nil {
		utils.GetLogger().Error("Payment: failed to mark succeeded", zap.String("paymentId", p.ID), zap.Error(err))
	}

	actor := audit.Actor{ID: p.UserID, Role: models.RoleUser}
	s.record(ctx, actor.Entry(audit.ActionPaymentSucceeded, audit.TargetPayment, p.ID, map[string]any{
		"amountCents": p.AmountCents,
		"currency":    p.Currency,
		"licenseId":   l.ID,
	}))
	s.record(ctx, actor.Entry(audit.ActionLicenseGranted, audit.TargetLicense, l.ID, map[string]any{
		"userId":    p.UserID,
		"planId":    plan.ID,
		"paymentId": p.ID,
	}))
	s.notifyGranted(ctx, l)
	return l, nil
}

func (s *DefaultLicenseService) markFailed(ctx context.Context, p *models.Payment, msg string) {
	if err := s.Repo.UpdatePaymentStatus(ctx, p.ID, models.PaymentFailed, "", msg); err != nil {
		utils.GetLogger().Error("Payment: failed to mark failed", zap.String("paymentId", p.ID), zap.Error(err))
	}
}

func (s *DefaultLicenseService) notifyGranted(ctx context.Context, l *models.UserLicense) {
	if s.Notifier == nil {
		return
	}
	body := fmt.Sprintf("%.1f hours are available until %s.", l.HoursTotal, l.ExpiresAt.Format("Jan 2, 2006"))
	err := s.Notifier.Notify(ctx, l.UserID, "Your LexAssist license is active", body, map[string]string{
		"type":      notification.TypeLicenseGranted,
		"licenseId": l.ID,
	})
	if err != nil {
		utils.GetLogger().Warn("License: grant notification failed", zap.String("licenseId", l.ID), zap.Error(err))
	}
}
