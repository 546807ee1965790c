package license

import (
	"lexassist/config"
	"lexassist/models"

	"github.com/go-playground/validator/v10"
)

const (
	PlanTrial        = "trial"
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanFirm         = "firm"
)

const (
	defaultTrialHours = 1.0
	defaultTrialDays  = 14
)

var paidPlans = []models.Plan{
	{
		ID:           PlanStarter,
		Name:         "Starter",
		Description:  "5 hours of assistant time, valid for 30 days.",
		Hours:        5,
		DurationDays: 30,
		PriceCents:   4900,
		Currency:     "usd",
		Purchasable:  true,
	},
	{
		ID:           PlanProfessional,
		Name:         "Professional",
		Description:  "20 hours of assistant time, valid for 90 days.",
		Hours:        20,
		DurationDays: 90,
		PriceCents:   17900,
		Currency:     "usd",
		Purchasable:  true,
	},
	{
		ID:           PlanFirm,
		Name:         "Firm",
		Description:  "100 hours of assistant time, valid for one year.",
		Hours:        100,
		DurationDays: 365,
		PriceCents:   79900,
		Currency:     "usd",
		Purchasable:  true,
	},
}

// TrialPlan is the one-time signup grant, sized from TRIAL_HOURS and TRIAL_DAYS.
func TrialPlan() models.Plan {
	hours := config.AppConfig.TrialHours
	if hours <= 0 {
		hours = defaultTrialHours
	}
	days := config.AppConfig.TrialDays
	if days <= 0 {
		days = defaultTrialDays
	}
	return models.Plan{
		ID:           PlanTrial,
		Name:         "Trial",
		Description:  "Free one-time trial granted at signup.",
		Hours:        hours,
		DurationDays: days,
		Currency:     "usd",
	}
}

// PurchasablePlans is the public catalog.
func PurchasablePlans() []models.Plan {
	out := make([]models.Plan, len(paidPlans))
	copy(out, paidPlans)
	return out
}

// PlanByID looks a plan up, trial included.
func PlanByID(id string) (models.Plan, bool) {
	if id == PlanTrial {
		return TrialPlan(), true
	}
	for _, p := range paidPlans {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

// RegisterValidators adds the "licenseplan" tag: a purchasable plan ID.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("licenseplan", func(fl validator.FieldLevel) bool {
		p, ok := PlanByID(fl.Field().String())
		return ok && p.Purchasable
	})
}
