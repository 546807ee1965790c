package content

import (
	"lexassist/models"
	"lexassist/services/license"
)

// TermsVersion is the version of the terms recorded on registration.
const TermsVersion = "v1.2"

const updated = "2025-01-15"

type ContentService interface {
	LegalSections() []models.LegalSection
	// LegalSection returns the section with the given id, or false.
	LegalSection(id string) (models.LegalSection, bool)
	Plans() []models.Plan
}

type DefaultContentService struct{}

// LegalSections returns all legal documents.
func (s *DefaultContentService) LegalSections() []models.LegalSection {
	return []models.LegalSection{
		{
			ID:      "tos",
			Title:   "Terms of Service",
			Summary: "These terms govern your use of LexAssist.",
			Content: termsOfService,
			Version: TermsVersion,
			Updated: updated,
		},
		{
			ID:      "privacy",
			Title:   "Privacy Policy",
			Summary: "What LexAssist stores about you and for how long.",
			Content: privacyPolicy,
			Version: "v1.1",
			Updated: updated,
		},
		{
			ID:      "ai-disclaimer",
			Title:   "AI Disclaimer",
			Summary: "Answers generated by the assistant are legal information, not legal advice.",
			Content: aiDisclaimer,
			Version: "v1.0",
			Updated: updated,
		},
		{
			ID:      "acceptable-use",
			Title:   "Acceptable Use Policy",
			Summary: "Content that is screened, reviewed and can lead to suspension.",
			Content: acceptableUse,
			Version: "v1.0",
			Updated: updated,
		},
	}
}

func (s *DefaultContentService) LegalSection(id string) (models.LegalSection, bool) {
	for _, sec := range s.LegalSections() {
		if sec.ID == id {
			return sec, true
		}
	}
	return models.LegalSection{}, false
}

// Plans lists the purchasable plans.
func (s *DefaultContentService) Plans() []models.Plan {
	return license.PurchasablePlans()
}

const termsOfService = `By creating a LexAssist account you agree to these Terms of Service.

1. Eligibility: you must be 18 or older.
2. Service: LexAssist provides general legal information through an AI assistant and a reviewed FAQ knowledge base. It does not create an attorney-client relationship.
3. Licenses: chat usage is metered in hours against your license. Every account receives one free trial license, which cannot be renewed or extended. Paid licenses expire on their end date or when their hours are used up, whichever comes first.
4. Payments: purchases are processed by Stripe. Unused hours are not refundable after expiry.
5. Conduct: the Acceptable Use Policy applies to everything you submit.
6. Termination: accounts that repeatedly break the Acceptable Use Policy are suspended.`

const privacyPolicy = `LexAssist stores your name, email, devices you signed in from, chat history, submitted questions and license usage.

Chat context is cached for 30 minutes to keep conversations coherent. Verification documents uploaded by lawyers are stored privately and are only viewable by administrators through short-lived links.

Deleting your account removes your profile and chat history. Audit records of administrative actions are retained.`

const aiDisclaimer = `The assistant produces general legal information. It can be wrong, out of date, or not applicable to your jurisdiction.

Do not rely on it as a substitute for advice from a lawyer licensed where you live. FAQ answers marked as drafted by AI are reviewed by an administrator before publication; answers from verified lawyers are marked as such.`

const acceptableUse = `Messages and questions are screened automatically for self-harm, threats of violence, personal identifiers such as social security or card numbers, requests for help committing crimes, and abusive language.

Flagged content is reviewed by an administrator. A warning adds a strike to your account; three strikes suspend it. If you are in crisis, contact local emergency services.`
