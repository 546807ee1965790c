package user

import (
	"context"
	"slices"
	"sync"
	"time"

	userRepo "lexassist/database/repository/user"
	"lexassist/models"

	"go.mongodb.org/mongo-driver/bson"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*models.User{}}
}

func (r *memUsers) copyOf(u *models.User) *models.User {
	cp := *u
	cp.Devices = append([]models.Device(nil), u.Devices...)
	cp.PushTokens = append([]string(nil), u.PushTokens...)
	return &cp
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return r.copyOf(u), nil
	}
	return nil, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return r.copyOf(u), nil
		}
	}
	return nil, nil
}

func (r *memUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Email == u.Email {
			return userRepo.ErrDuplicateEmail
		}
	}
	r.users[u.ID] = r.copyOf(u)
	return nil
}

func (r *memUsers) UpdateSetDocument(_ context.Context, id string, fields bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return userRepo.ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "passwordHash":
			u.PasswordHash = v.(string)
		case "suspended":
			u.Suspended = v.(bool)
		case "role":
			u.Role = v.(string)
		case "trialUsed":
			u.TrialUsed = v.(bool)
		case "lawyerProfile":
			lp := v.(models.LawyerProfile)
			u.LawyerProfile = &lp
		case "updatedAt":
			u.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memUsers) MarkTrialUsed(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.TrialUsed {
		return false, nil
	}
	u.TrialUsed = true
	return true, nil
}

func (r *memUsers) IncrementStrikes(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, userRepo.ErrUserNotFound
	}
	u.Strikes++
	return u.Strikes, nil
}

func (r *memUsers) UpsertDevice(_ context.Context, id string, d models.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	for i := range u.Devices {
		if u.Devices[i].DeviceID == d.DeviceID {
			u.Devices[i] = d
			return nil
		}
	}
	u.Devices = append(u.Devices, d)
	return nil
}

func (r *memUsers) RemoveDevices(_ context.Context, id string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.Devices = slices.DeleteFunc(u.Devices, func(d models.Device) bool { return slices.Contains(ids, d.DeviceID) })
	return nil
}

func (r *memUsers) AddPushToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	if !slices.Contains(u.PushTokens, token) {
		u.PushTokens = append(u.PushTokens, token)
	}
	return nil
}

func (r *memUsers) RemovePushTokens(_ context.Context, id string, tokens []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.PushTokens = slices.DeleteFunc(u.PushTokens, func(t string) bool { return slices.Contains(tokens, t) })
	return nil
}

func (r *memUsers) List(_ context.Context, f models.UserListFilter) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *memUsers) CountByRole(context.Context) (map[string]int64, error)      { return nil, nil }
func (r *memUsers) CountCreatedSince(context.Context, time.Time) (int64, error) { return 0, nil }
func (r *memUsers) CountSuspended(context.Context) (int64, error)               { return 0, nil }

type fakeTrials struct {
	granted []string
	err     error
}

func (f *fakeTrials) GrantTrial(_ context.Context, userID string) (*models.UserLicense, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.granted = append(f.granted, userID)
	return &models.UserLicense{ID: "lic-" + userID, UserID: userID, IsTrial: true}, nil
}

type fakeChats struct{ deleted []string }

func (f *fakeChats) DeleteByUser(_ context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

type recordingAudit struct{ entries []models.AuditEntry }

func (a *recordingAudit) Record(_ context.Context, e models.AuditEntry) { a.entries = append(a.entries, e) }
func (a *recordingAudit) List(context.Context, models.AuditFilter) ([]models.AuditEntry, int64, error) {
	return a.entries, int64(len(a.entries)), nil
}
