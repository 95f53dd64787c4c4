package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type mockRepository struct {
	users   map[uuid.UUID]*User
	pending map[uuid.UUID]*PendingAccount
	mu      sync.RWMutex

	// err, when set, is returned by every call.
	err error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:   make(map[uuid.UUID]*User),
		pending: make(map[uuid.UUID]*PendingAccount),
	}
}

func cloneUser(u *User) *User {
	c := *u
	return &c
}

func clonePending(p *PendingAccount) *PendingAccount {
	c := *p
	return &c
}

// addUser stores a user directly, bypassing registration.
func (r *mockRepository) addUser(user *User) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = cloneUser(user)
	return user
}

func (r *mockRepository) pendingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

func (r *mockRepository) findUser(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockRepository) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	return r.findUser(func(u *User) bool { return u.ID == id })
}

func (r *mockRepository) GetUserByUsername(_ context.Context, username string) (*User, error) {
	return r.findUser(func(u *User) bool { return u.Username == username })
}

func (r *mockRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	return r.findUser(func(u *User) bool { return u.Email == email })
}

func (r *mockRepository) GetUserByResetToken(_ context.Context, token string, now time.Time) (*User, error) {
	return r.findUser(func(u *User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token &&
			u.ResetPasswordExpiresAt != nil && u.ResetPasswordExpiresAt.After(now)
	})
}

func (r *mockRepository) SetResetToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.ResetPasswordToken = &token
	u.ResetPasswordExpiresAt = &expiresAt
	u.UpdatedAt = time.Now()
	return nil
}

func (r *mockRepository) ConsumeResetToken(_ context.Context, userID uuid.UUID, token, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	u, ok := r.users[userID]
	if !ok || u.ResetPasswordToken == nil || *u.ResetPasswordToken != token {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpiresAt = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (r *mockRepository) FindPendingAccount(_ context.Context, email, username string) (*PendingAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.pending {
		if p.Email == email || p.Username == username {
			return clonePending(p), nil
		}
	}
	return nil, ErrPendingNotFound
}

func (r *mockRepository) GetPendingAccountByToken(_ context.Context, email, token string) (*PendingAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.pending {
		if p.Email == email && p.Token == token {
			return clonePending(p), nil
		}
	}
	return nil, ErrPendingNotFound
}

func (r *mockRepository) CreatePendingAccount(_ context.Context, pending *PendingAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == pending.Email || u.Username == pending.Username {
			return ErrUserExists
		}
	}
	for _, p := range r.pending {
		if p.Email == pending.Email || p.Username == pending.Username {
			return ErrPendingExists
		}
	}

	if pending.ID == uuid.Nil {
		pending.ID = uuid.New()
	}
	pending.CreatedAt = time.Now()
	r.pending[pending.ID] = clonePending(pending)
	return nil
}

func (r *mockRepository) PromotePendingAccount(_ context.Context, pending *PendingAccount) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.pending[pending.ID]; !ok {
		return nil, ErrPendingNotFound
	}
	for _, u := range r.users {
		if u.Email == pending.Email || u.Username == pending.Username {
			return nil, ErrUserExists
		}
	}

	user := pending.toUser()
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = cloneUser(user)
	delete(r.pending, pending.ID)
	return user, nil
}

func (r *mockRepository) DeletePendingAccount(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	delete(r.pending, id)
	return nil
}

func (r *mockRepository) DeleteExpiredPendingAccounts(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return 0, r.err
	}
	var removed int64
	for id, p := range r.pending {
		if !p.ExpiresAt.After(now) {
			delete(r.pending, id)
			removed++
		}
	}
	return removed, nil
}
