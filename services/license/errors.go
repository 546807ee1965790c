package license

import "errors"

var (
	ErrNoActiveLicense     = errors.New("no active license with remaining hours")
	ErrTrialAlreadyUsed    = errors.New("trial already used")
	ErrTrialNotRenewable   = errors.New("trial licenses cannot be renewed or extended")
	ErrUnknownPlan         = errors.New("unknown plan")
	ErrPlanNotPurchasable  = errors.New("plan cannot be purchased")
	ErrLicenseNotFound     = errors.New("license not found")
	ErrLicenseNotActive    = errors.New("license is not active")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentNotCompleted = errors.New("payment has not completed")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrPaymentsDisabled    = errors.New("payments are not configured")
	ErrInvalidHours        = errors.New("hours must be positive")
	ErrUserNotFound        = errors.New("user not found")
)
