package lawyer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	verificationRepo "lexassist/database/repository/verification"
	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/services/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRequests struct {
	reqs []*models.VerificationRequest
}

func (r *memRequests) Create(_ context.Context, req *models.VerificationRequest) error {
	for _, x := range r.reqs {
		if x.UserID == req.UserID && x.Status == models.VerificationPending {
			return verificationRepo.ErrPendingExists
		}
	}
	cp := *req
	r.reqs = append(r.reqs, &cp)
	return nil
}

func (r *memRequests) GetByID(_ context.Context, id string) (*models.VerificationRequest, error) {
	for _, x := range r.reqs {
		if x.ID == id {
			cp := *x
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRequests) LatestByUser(_ context.Context, userID string) (*models.VerificationRequest, error) {
	for i := len(r.reqs) - 1; i >= 0; i-- {
		if r.reqs[i].UserID == userID {
			cp := *r.reqs[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRequests) HasPending(_ context.Context, userID string) (bool, error) {
	for _, x := range r.reqs {
		if x.UserID == userID && x.Status == models.VerificationPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRequests) Queue(_ context.Context, status string, _ models.Page) ([]models.VerificationRequest, int64, error) {
	var out []models.VerificationRequest
	for _, x := range r.reqs {
		if status == "" || x.Status == status {
			out = append(out, *x)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memRequests) Resolve(_ context.Context, id, status, reviewerID, note string, at time.Time) (*models.VerificationRequest, error) {
	for _, x := range r.reqs {
		if x.ID == id {
			if x.Status != models.VerificationPending {
				return nil, verificationRepo.ErrNotPending
			}
			x.Status, x.ReviewerID, x.Note, x.ReviewedAt = status, reviewerID, note, &at
			cp := *x
			return &cp, nil
		}
	}
	return nil, verificationRepo.ErrNotPending
}

func (r *memRequests) Reopen(_ context.Context, id, status string) error {
	for _, x := range r.reqs {
		if x.ID == id && x.Status == status {
			x.Status, x.ReviewerID, x.Note, x.ReviewedAt = models.VerificationPending, "", "", nil
		}
	}
	return nil
}

func (r *memRequests) CountPending(ctx context.Context) (int64, error) {
	_, n, err := r.Queue(ctx, models.VerificationPending, models.Page{})
	return n, err
}

type fakeAccounts struct {
	users      map[string]*models.User
	promoted   map[string]models.LawyerProfile
	promoteErr error
}

func (a *fakeAccounts) GetByID(_ context.Context, id string) (*models.User, error) {
	return a.users[id], nil
}

func (a *fakeAccounts) PromoteToLawyer(_ context.Context, userID string, p models.LawyerProfile) error {
	if a.promoteErr != nil {
		return a.promoteErr
	}
	a.promoted[userID] = p
	return nil
}

type fakeStorage struct {
	uploads []string
}

func (f *fakeStorage) UploadPrivate(_ context.Context, r io.Reader, folder, name string) (*storage.StoredFile, error) {
	b, _ := io.ReadAll(r)
	id := folder + "/" + name
	f.uploads = append(f.uploads, id)
	return &storage.StoredFile{PublicID: id, Bytes: len(b)}, nil
}

func (f *fakeStorage) Delete(context.Context, string) error { return nil }

func (f *fakeStorage) SignedURL(publicID string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + publicID + "?ttl=" + ttl.String(), nil
}

type recordingAudit struct{ entries []models.AuditEntry }

func (a *recordingAudit) Record(_ context.Context, e models.AuditEntry) { a.entries = append(a.entries, e) }
func (a *recordingAudit) List(context.Context, models.AuditFilter) ([]models.AuditEntry, int64, error) {
	return a.entries, int64(len(a.entries)), nil
}

type notice struct{ userID, title, status string }

type recordingNotifier struct{ sent []notice }

func (n *recordingNotifier) Notify(_ context.Context, userID, title, _ string, data map[string]string) error {
	n.sent = append(n.sent, notice{userID, title, data["status"]})
	return nil
}

type fixture struct {
	svc      *DefaultLawyerService
	repo     *memRequests
	accounts *fakeAccounts
	store    *fakeStorage
	audit    *recordingAudit
	notifier *recordingNotifier
}

var (
	pdfBytes = []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	admin    = audit.Actor{ID: "admin-1", Role: models.RoleAdmin}
)

func newFixture() *fixture {
	f := &fixture{
		repo: &memRequests{},
		accounts: &fakeAccounts{
			users: map[string]*models.User{
				"u1":  {ID: "u1", Role: models.RoleUser},
				"law": {ID: "law", Role: models.RoleLawyer, LawyerProfile: &models.LawyerProfile{BarNumber: "X"}},
				"adm": {ID: "adm", Role: models.RoleAdmin},
			},
			promoted: map[string]models.LawyerProfile{},
		},
		store:    &fakeStorage{},
		audit:    &recordingAudit{},
		notifier: &recordingNotifier{},
	}
	f.svc = &DefaultLawyerService{
		Repo:     f.repo,
		Accounts: f.accounts,
		Storage:  f.store,
		Audit:    f.audit,
		Notifier: f.notifier,
		Now:      func() time.Time { return time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *fixture) submit(t *testing.T, userID string) *models.VerificationRequest {
	t.Helper()
	doc, err := f.svc.UploadDocument(context.Background(), userID, models.DocBarLicense, "bar.pdf", bytes.NewReader(pdfBytes))
	require.NoError(t, err)
	req, err := f.svc.Submit(context.Background(), userID, models.VerificationSubmission{
		BarNumber:    " 12345 ",
		Jurisdiction: "New York",
		Documents:    []models.VerificationDocument{*doc},
	})
	require.NoError(t, err)
	return req
}

func TestUploadDocument(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc, err := f.svc.UploadDocument(ctx, "u1", models.DocGovernmentID, "<i>id</i>.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "image/png", doc.ContentType)
	assert.True(t, strings.HasPrefix(doc.PublicID, "verification/u1/"))
	assert.True(t, strings.HasSuffix(doc.PublicID, ".png"))
	assert.Equal(t, "id.png", doc.FileName)

	big := make([]byte, MaxDocumentSize+1)
	copy(big, pdfBytes)

	tests := []struct {
		name string
		kind string
		data []byte
		want error
	}{
		{"bad kind", "selfie", pdfBytes, ErrInvalidDocumentKind},
		{"empty", models.DocOther, nil, ErrEmptyFile},
		{"too large", models.DocOther, big, ErrFileTooLarge},
		{"plain text", models.DocOther, []byte("just some text"), ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UploadDocument(ctx, "u1", tt.kind, "f", bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, f.store.uploads, 1)
}

func TestSubmit(t *testing.T) {
	f := newFixture()
	req := f.submit(t, "u1")
	assert.Equal(t, models.VerificationPending, req.Status)
	assert.Equal(t, "12345", req.BarNumber)

	mine, err := f.svc.Mine(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, req.ID, mine.ID)
}

func TestSubmitRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bar := models.VerificationDocument{Kind: models.DocBarLicense, PublicID: "verification/u1/a.pdf", ContentType: "application/pdf"}
	id := models.VerificationDocument{Kind: models.DocGovernmentID, PublicID: "verification/u1/b.png", ContentType: "image/png"}
	foreign := models.VerificationDocument{Kind: models.DocBarLicense, PublicID: "verification/u2/a.pdf", ContentType: "application/pdf"}

	tests := []struct {
		name   string
		userID string
		docs   []models.VerificationDocument
		bar    string
		want   error
	}{
		{"no bar license", "u1", []models.VerificationDocument{id}, "1", ErrBarLicenseRequired},
		{"foreign document", "u1", []models.VerificationDocument{foreign}, "1", ErrForeignDocument},
		{"blank bar number", "u1", []models.VerificationDocument{bar}, "<p> </p>", ErrMissingFields},
		{"already lawyer", "law", []models.VerificationDocument{bar}, "1", ErrAlreadyLawyer},
		{"admin account", "adm", []models.VerificationDocument{bar}, "1", ErrAdminAccount},
		{"unknown user", "ghost", []models.VerificationDocument{bar}, "1", ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, tt.userID, models.VerificationSubmission{
				BarNumber: tt.bar, Jurisdiction: "NY", Documents: tt.docs,
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	f.submit(t, "u1")
	_, err := f.svc.Submit(ctx, "u1", models.VerificationSubmission{
		BarNumber: "1", Jurisdiction: "NY", Documents: []models.VerificationDocument{bar},
	})
	assert.ErrorIs(t, err, ErrPendingRequestExists)
}

func TestReviewApprove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.submit(t, "u1")

	out, err := f.svc.Review(ctx, admin, req.ID, models.VerificationDecision{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, out.Status)
	assert.Equal(t, "admin-1", out.ReviewerID)

	profile, ok := f.accounts.promoted["u1"]
	require.True(t, ok)
	assert.Equal(t, "12345", profile.BarNumber)
	assert.Equal(t, "New York", profile.Jurisdiction)
	assert.Equal(t, "admin-1", profile.VerifiedBy)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, models.VerificationApproved, f.notifier.sent[0].status)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, audit.ActionVerificationDecided, f.audit.entries[0].Action)

	_, err = f.svc.Review(ctx, admin, req.ID, models.VerificationDecision{Approve: false, Note: "dup"})
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestReviewApproveRetriesAfterPromotionFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.submit(t, "u1")
	f.accounts.promoteErr = errors.New("mongo: write timeout")

	_, err := f.svc.Review(ctx, admin, req.ID, models.VerificationDecision{Approve: true})
	require.Error(t, err)

	stored, err := f.repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, stored.Status)
	assert.Empty(t, stored.ReviewerID)
	assert.Nil(t, stored.ReviewedAt)
	assert.Empty(t, f.accounts.promoted)
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.audit.entries)

	f.accounts.promoteErr = nil
	out, err := f.svc.Review(ctx, admin, req.ID, models.VerificationDecision{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, out.Status)
	assert.Contains(t, f.accounts.promoted, "u1")
}

func TestReviewReject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.submit(t, "u1")

	_, err := f.svc.Review(ctx, admin, req.ID, models.VerificationDecision{Approve: false})
	assert.ErrorIs(t, err, ErrNoteRequired)

	out, err := f.svc.Review(ctx, admin, req.ID, models.VerificationDecision{Approve: false, Note: "Document is illegible"})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, out.Status)
	assert.Empty(t, f.accounts.promoted)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Verification not approved", f.notifier.sent[0].title)

	_, err = f.svc.Review(ctx, admin, "missing", models.VerificationDecision{Approve: true})
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestDocumentURL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.submit(t, "u1")

	link, err := f.svc.DocumentURL(ctx, admin, req.ID, 0)
	require.NoError(t, err)
	assert.Contains(t, link, req.Documents[0].PublicID)
	assert.Contains(t, link, "ttl=10m0s")
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, audit.ActionVerificationViewed, f.audit.entries[0].Action)

	_, err = f.svc.DocumentURL(ctx, admin, req.ID, 1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	_, err = f.svc.DocumentURL(ctx, admin, req.ID, -1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestQueue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.submit(t, "u1")

	items, total, err := f.svc.Queue(ctx, "", models.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)

	items, _, err = f.svc.Queue(ctx, models.VerificationApproved, models.Page{})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, _, err = f.svc.Queue(ctx, "bogus", models.Page{})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
