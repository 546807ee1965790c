package license

import (
	"context"
	"sync"
	"time"

	licenseRepo "lexassist/database/repository/license"
	"lexassist/models"
	"lexassist/services/payment"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

type memRepo struct {
	mu       sync.Mutex
	licenses map[string]*models.UserLicense
	usage    []models.UsageRecord
	payments map[string]*models.Payment
	notified map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		licenses: map[string]*models.UserLicense{},
		payments: map[string]*models.Payment{},
		notified: map[string]bool{},
	}
}

func (r *memRepo) put(l models.UserLicense) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := l
	r.licenses[l.ID] = &cp
}

func (r *memRepo) get(id string) models.UserLicense {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.licenses[id]
}

func (r *memRepo) Create(_ context.Context, l *models.UserLicense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.PaymentID != "" {
		for _, x := range r.licenses {
			if x.PaymentID == l.PaymentID {
				return licenseRepo.ErrPaymentAlreadyGranted
			}
		}
	}
	cp := *l
	r.licenses[l.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.UserLicense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.licenses[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) GetByPaymentID(_ context.Context, paymentID string) (*models.UserLicense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.licenses {
		if l.PaymentID == paymentID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID string) ([]models.UserLicense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.UserLicense{}
	for _, l := range r.licenses {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memRepo) ListUsable(ctx context.Context, userID string, now time.Time) ([]models.UserLicense, error) {
	all, _ := r.ListByUser(ctx, userID)
	out := []models.UserLicense{}
	for _, l := range all {
		if IsUsable(l, now) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memRepo) Debit(_ context.Context, id string, hours float64, now time.Time) (*models.UserLicense, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.licenses[id]
	if !ok || !IsUsable(*l, now) {
		return nil, 0, licenseRepo.ErrNotUsable
	}
	taken := hours
	if taken > l.HoursRemaining {
		taken = l.HoursRemaining
	}
	l.HoursRemaining -= taken
	if l.HoursRemaining <= licenseRepo.HoursEpsilon {
		l.HoursRemaining = 0
		l.Status = models.LicenseExhausted
	}
	cp := *l
	return &cp, taken, nil
}

func (r *memRepo) Revoke(_ context.Context, id, reason string) (*models.UserLicense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.licenses[id]
	if !ok || l.Status != models.LicenseActive {
		return nil, licenseRepo.ErrLicenseNotFound
	}
	l.Status = models.LicenseRevoked
	l.RevokeReason = reason
	cp := *l
	return &cp, nil
}

func (r *memRepo) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.licenses {
		if l.Status == models.LicenseActive && !l.ExpiresAt.After(now) {
			l.Status = models.LicenseExpired
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListNoticeCandidates(_ context.Context, now, before time.Time, low float64) ([]models.UserLicense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.UserLicense{}
	for _, l := range r.licenses {
		if !IsUsable(*l, now) || r.notified[l.ID] {
			continue
		}
		if !l.ExpiresAt.After(before) || l.HoursRemaining < low {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memRepo) MarkNotified(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.notified[id] {
		return false, nil
	}
	r.notified[id] = true
	return true, nil
}

func (r *memRepo) ClearNotified(_ context.Context, id string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notified, id)
	return nil
}

func (r *memRepo) CountActive(context.Context, time.Time) (int64, int64, error) { return 0, 0, nil }

func (r *memRepo) InsertUsage(_ context.Context, rec *models.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage = append(r.usage, *rec)
	return nil
}

func (r *memRepo) HoursConsumedSince(context.Context, time.Time) (float64, error) { return 0, nil }

func (r *memRepo) UsageSeries(context.Context, time.Time) ([]models.UsagePoint, error) {
	return nil, nil
}

func (r *memRepo) CreatePayment(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ProviderRef] = &cp
	return nil
}

func (r *memRepo) GetPaymentByProviderRef(_ context.Context, ref string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[ref]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) UpdatePaymentStatus(_ context.Context, id, status, licenseID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ID == id {
			p.Status = status
			if licenseID != "" {
				p.LicenseID = licenseID
			}
			p.Error = errMsg
		}
	}
	return nil
}

func (r *memRepo) RevenueSince(context.Context, time.Time) (int64, error) { return 0, nil }

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers(ids ...string) *memUsers {
	m := &memUsers{users: map[string]*models.User{}}
	for _, id := range ids {
		m.users[id] = &models.User{ID: id, Role: models.RoleUser}
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) MarkTrialUsed(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.TrialUsed {
		return false, nil
	}
	u.TrialUsed = true
	return true, nil
}

func (m *memUsers) UpdateSetDocument(_ context.Context, id string, fields bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := fields["trialUsed"].(bool); ok {
		m.users[id].TrialUsed = v
	}
	return nil
}

type mockGateway struct{ mock.Mock }

func (g *mockGateway) CreateIntent(ctx context.Context, amount int64, currency, desc string, meta map[string]string) (*payment.Intent, error) {
	args := g.Called(ctx, amount, currency, desc, meta)
	in, _ := args.Get(0).(*payment.Intent)
	return in, args.Error(1)
}

func (g *mockGateway) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	args := g.Called(ctx, id)
	in, _ := args.Get(0).(*payment.Intent)
	return in, args.Error(1)
}

func (g *mockGateway) ParseWebhook(payload []byte, sig string) (*payment.WebhookEvent, error) {
	args := g.Called(payload, sig)
	ev, _ := args.Get(0).(*payment.WebhookEvent)
	return ev, args.Error(1)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (a *recordingAudit) Record(_ context.Context, e models.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *recordingAudit) List(context.Context, models.AuditFilter) ([]models.AuditEntry, int64, error) {
	return a.entries, int64(len(a.entries)), nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type memQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (q *memQueue) EnqueueContext(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, t)
	return &asynq.TaskInfo{}, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) Notify(_ context.Context, userID, title, _ string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, userID+":"+title)
	return nil
}
