// AngelaMos | 2026
// memory.go

package role

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

// MemoryRepository keeps roles in process. Used by tests and local runs
// without MongoDB.
type MemoryRepository struct {
	mu    sync.RWMutex
	roles map[string]Role
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{roles: make(map[string]Role)}
}

func (m *MemoryRepository) Create(_ context.Context, role *Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.roles[role.ID]; ok {
		return fmt.Errorf("create role: %w", core.ErrDuplicateKey)
	}

	now := time.Now().UTC()
	role.CreatedAt = now
	role.UpdatedAt = now
	m.roles[role.ID] = *role
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.roles[id]
	if !ok || r.IsDeleted {
		return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	return &r, nil
}

func (m *MemoryRepository) GetByName(_ context.Context, name string) (*Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.roles {
		if r.Name == name && !r.IsDeleted {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("get role by name: %w", core.ErrNotFound)
}

func (m *MemoryRepository) Update(_ context.Context, role *Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.roles[role.ID]
	if !ok || existing.IsDeleted {
		return fmt.Errorf("update role: %w", core.ErrNotFound)
	}

	role.UpdatedAt = time.Now().UTC()
	m.roles[role.ID] = *role
	return nil
}

func (m *MemoryRepository) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.roles[id]
	if !ok || r.IsDeleted {
		return fmt.Errorf("delete role: %w", core.ErrNotFound)
	}

	r.IsDeleted = true
	r.UpdatedAt = time.Now().UTC()
	m.roles[id] = r
	return nil
}

func (m *MemoryRepository) List(_ context.Context) ([]Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Role, 0, len(m.roles))
	for _, r := range m.roles {
		if !r.IsDeleted {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Count returns every stored role including soft-deleted ones.
func (m *MemoryRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.roles)
}
