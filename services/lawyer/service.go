package lawyer

import (
	"context"
	"errors"
	"io"
	"time"

	verificationRepo "lexassist/database/repository/verification"
	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/services/notification"
	"lexassist/services/storage"
)

const (
	// MaxDocumentSize is the upload limit for one verification document.
	MaxDocumentSize = 10 << 20
	// MaxDocuments per request.
	MaxDocuments = 10
	// DocumentURLTTL is how long an admin's document link stays valid.
	DocumentURLTTL = 10 * time.Minute
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAlreadyLawyer        = errors.New("account is already a verified lawyer")
	ErrAdminAccount         = errors.New("admin accounts cannot apply for lawyer verification")
	ErrPendingRequestExists = errors.New("a verification request is already pending")
	ErrBarLicenseRequired   = errors.New("a bar_license document is required")
	ErrTooManyDocuments     = errors.New("too many documents")
	ErrForeignDocument      = errors.New("document does not belong to this account")
	ErrInvalidDocumentKind  = errors.New("invalid document kind")
	ErrUnsupportedType      = errors.New("only PDF, JPEG and PNG files are accepted")
	ErrFileTooLarge         = errors.New("file exceeds the 10MB limit")
	ErrEmptyFile            = errors.New("file is empty")
	ErrMissingFields        = errors.New("bar number and jurisdiction are required")
	ErrRequestNotFound      = errors.New("verification request not found")
	ErrNotPending           = errors.New("verification request was already reviewed")
	ErrNoteRequired         = errors.New("a note is required when rejecting")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrInvalidStatus        = errors.New("invalid status filter")
)

// allowedTypes maps sniffed content types to stored file extensions.
var allowedTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// Accounts is the part of the user layer verification needs.
type Accounts interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	PromoteToLawyer(ctx context.Context, userID string, profile models.LawyerProfile) error
}

type LawyerService interface {
	UploadDocument(ctx context.Context, userID, kind, fileName string, r io.Reader) (*models.VerificationDocument, error)
	Submit(ctx context.Context, userID string, sub models.VerificationSubmission) (*models.VerificationRequest, error)
	Review(ctx context.Context, actor audit.Actor, requestID string, d models.VerificationDecision) (*models.VerificationRequest, error)
	Mine(ctx context.Context, userID string) (*models.VerificationRequest, error)
	Queue(ctx context.Context, status string, page models.Page) ([]models.VerificationRequest, int64, error)
	DocumentURL(ctx context.Context, actor audit.Actor, requestID string, index int) (string, error)
}

type DefaultLawyerService struct {
	Repo     verificationRepo.VerificationRepository
	Accounts Accounts
	Storage  storage.StorageService
	Audit    audit.AuditService
	Notifier notification.NotificationService
	Now      func() time.Time
}

func (s *DefaultLawyerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultLawyerService) record(ctx context.Context, e models.AuditEntry) {
	if s.Audit != nil {
		s.Audit.Record(ctx, e)
	}
}

func validKind(kind string) bool {
	switch kind {
	case models.DocBarLicense, models.DocGovernmentID, models.DocOther:
		return true
	}
	return false
}

func documentFolder(userID string) string {
	return "verification/" + userID
}
