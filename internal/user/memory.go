// AngelaMos | 2026
// memory.go

package user

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

// MemoryRepository mirrors the Mongo repository, including the unique
// email and single-admin constraints.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
	seq   int64
	order map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]User),
		order: make(map[string]int64),
	}
}

func (m *MemoryRepository) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; ok {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		if user.AdminSlot != nil && u.AdminSlot != nil {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = cloneUser(*user)
	m.seq++
	m.order[user.ID] = m.seq
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok || u.IsDeleted {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	out := cloneUser(u)
	return &out, nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email && !u.IsDeleted {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (m *MemoryRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) CountActiveByRole(_ context.Context, roleID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, u := range m.users {
		if u.RoleID == roleID && !u.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) ListByRole(
	_ context.Context,
	roleID string,
	page core.PageRequest,
) ([]User, int64, error) {
	return m.filter(page, func(u User) bool { return u.RoleID == roleID })
}

func (m *MemoryRepository) ListByCustomer(
	_ context.Context,
	customerID string,
	page core.PageRequest,
) ([]User, int64, error) {
	return m.filter(page, func(u User) bool { return u.BelongsTo(customerID) })
}

func (m *MemoryRepository) List(_ context.Context, page core.PageRequest) ([]User, int64, error) {
	return m.filter(page, func(User) bool { return true })
}

func (m *MemoryRepository) filter(page core.PageRequest, keep func(User) bool) ([]User, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]User, 0)
	for _, u := range m.users {
		if !u.IsDeleted && keep(u) {
			matched = append(matched, cloneUser(u))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return m.order[matched[i].ID] > m.order[matched[j].ID]
	})

	total := int64(len(matched))
	start := page.Offset()
	if start >= len(matched) {
		return []User{}, total, nil
	}
	end := min(start+page.PageSize, len(matched))
	return matched[start:end], total, nil
}

func (m *MemoryRepository) Update(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok || existing.IsDeleted {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	for id, u := range m.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		if user.AdminSlot != nil && u.AdminSlot != nil {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
	}

	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = cloneUser(*user)
	return nil
}

func (m *MemoryRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok || u.IsDeleted {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func (m *MemoryRepository) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok || u.IsDeleted {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	u.IsDeleted = true
	u.AdminSlot = nil
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return nil
}

func (m *MemoryRepository) SoftDeleteByCustomer(_ context.Context, customerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, u := range m.users {
		if u.BelongsTo(customerID) && !u.IsDeleted {
			u.IsDeleted = true
			m.users[id] = u
			n++
		}
	}
	return n, nil
}

// Raw returns the stored record regardless of its deleted flag.
func (m *MemoryRepository) Raw(id string) (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	return cloneUser(u), ok
}

// Len counts every stored record.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func cloneUser(u User) User {
	if u.CustomerID != nil {
		id := *u.CustomerID
		u.CustomerID = &id
	}
	if u.AdminSlot != nil {
		slot := *u.AdminSlot
		u.AdminSlot = &slot
	}
	return u
}
