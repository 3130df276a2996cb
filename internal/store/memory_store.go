package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps users in memory only. It backs JSONStore and is used directly in tests.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*User
	dirty bool
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory user store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*User),
		now:   time.Now,
	}
}

// Load is a no-op for a memory store
func (m *MemoryStore) Load() error {
	return nil
}

// Persist is a no-op for a memory store
func (m *MemoryStore) Persist() error {
	m.mu.Lock()
	m.dirty = false
	m.mu.Unlock()
	return nil
}

// Find returns a copy of the user record
func (m *MemoryStore) Find(username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// Create adds a new active user holding the opening balance coin
func (m *MemoryStore) Create(username, credential string, coin int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; ok {
		return nil, ErrUserExists
	}

	now := m.now()
	u := &User{
		ID:         uuid.NewString(),
		Username:   username,
		Credential: credential,
		Status:     StatusActive,
		Coin:       max(coin, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.users[username] = u
	m.dirty = true

	cp := *u
	return &cp, nil
}

// AdjustCoin adds delta to the balance and returns the new balance.
// A change that would make the balance negative is refused.
func (m *MemoryStore) AdjustCoin(username string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return 0, ErrUserNotFound
	}
	if u.Coin+delta < 0 {
		return u.Coin, ErrInsufficientCoin
	}

	u.Coin += delta
	u.UpdatedAt = m.now()
	m.dirty = true
	return u.Coin, nil
}

// SetStatus bans or reinstates a user
func (m *MemoryStore) SetStatus(username string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrUserNotFound
	}
	u.Status = status
	u.UpdatedAt = m.now()
	m.dirty = true
	return nil
}

// Count returns the number of stored users
func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// snapshot returns all users ordered by username along with the dirty flag
func (m *MemoryStore) snapshot() ([]User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, m.dirty
}

func (m *MemoryStore) replace(users []User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[string]*User, len(users))
	for i := range users {
		u := users[i]
		if u.Status == "" {
			u.Status = StatusActive
		}
		m.users[u.Username] = &u
	}
	m.dirty = false
}

func (m *MemoryStore) markClean() {
	m.mu.Lock()
	m.dirty = false
	m.mu.Unlock()
}
