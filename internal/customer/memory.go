// AngelaMos | 2026
// memory.go

package customer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

// MemoryRepository mirrors the Mongo repository, including the version
// check and the unique email among live customers.
type MemoryRepository struct {
	mu        sync.RWMutex
	customers map[string]Customer
	order     map[string]int64
	seq       int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		customers: make(map[string]Customer),
		order:     make(map[string]int64),
	}
}

func (m *MemoryRepository) Create(_ context.Context, c *Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.customers[c.ID]; ok {
		return fmt.Errorf("create customer: %w", core.ErrDuplicateKey)
	}
	if m.emailTaken(c.ID, c.Email) {
		return fmt.Errorf("create customer: %w", core.ErrDuplicateKey)
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Version = 1

	m.customers[c.ID] = cloneCustomer(*c)
	m.seq++
	m.order[c.ID] = m.seq
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customers[id]
	if !ok || c.IsDeleted {
		return nil, fmt.Errorf("get customer: %w", core.ErrNotFound)
	}
	out := cloneCustomer(c)
	return &out, nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.customers {
		if c.Email == email && !c.IsDeleted {
			out := cloneCustomer(c)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get customer by email: %w", core.ErrNotFound)
}

func (m *MemoryRepository) Replace(_ context.Context, c *Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.customers[c.ID]
	if !ok || stored.IsDeleted {
		return fmt.Errorf("replace customer: %w", core.ErrNotFound)
	}
	if stored.Version != c.Version {
		return fmt.Errorf("replace customer: %w", core.ErrConcurrencyConflict)
	}
	if !c.IsDeleted && m.emailTaken(c.ID, c.Email) {
		return fmt.Errorf("replace customer: %w", core.ErrDuplicateKey)
	}

	c.Version++
	c.UpdatedAt = time.Now().UTC()
	m.customers[c.ID] = cloneCustomer(*c)
	return nil
}

func (m *MemoryRepository) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.customers[id]
	if !ok || c.IsDeleted {
		return fmt.Errorf("delete customer: %w", core.ErrNotFound)
	}
	c.IsDeleted = true
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	m.customers[id] = c
	return nil
}

func (m *MemoryRepository) List(_ context.Context, page core.PageRequest) ([]Customer, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	live := make([]Customer, 0, len(m.customers))
	for _, c := range m.customers {
		if !c.IsDeleted {
			live = append(live, cloneCustomer(c))
		}
	}
	sort.Slice(live, func(i, j int) bool {
		return m.order[live[i].ID] > m.order[live[j].ID]
	})

	total := int64(len(live))
	start := page.Offset()
	if start >= len(live) {
		return []Customer{}, total, nil
	}
	end := min(start+page.PageSize, len(live))
	return live[start:end], total, nil
}

func (m *MemoryRepository) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, c := range m.customers {
		if !c.IsDeleted {
			n++
		}
	}
	return n, nil
}

// Raw returns the stored record regardless of its deleted flag.
func (m *MemoryRepository) Raw(id string) (Customer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customers[id]
	return cloneCustomer(c), ok
}

func (m *MemoryRepository) emailTaken(id, email string) bool {
	for otherID, c := range m.customers {
		if otherID != id && !c.IsDeleted && c.Email == email {
			return true
		}
	}
	return false
}

func cloneCustomer(c Customer) Customer {
	if c.Sites != nil {
		sites := make([]Site, len(c.Sites))
		for i, s := range c.Sites {
			if s.Devices != nil {
				s.Devices = append([]Device(nil), s.Devices...)
			}
			sites[i] = s
		}
		c.Sites = sites
	}
	if c.CustomerUsers != nil {
		c.CustomerUsers = append([]string(nil), c.CustomerUsers...)
	}
	if c.DigitalServices != nil {
		services := make([]DigitalService, len(c.DigitalServices))
		for i, ds := range c.DigitalServices {
			if ds.NotificationUsers != nil {
				ds.NotificationUsers = append([]string(nil), ds.NotificationUsers...)
			}
			services[i] = ds
		}
		c.DigitalServices = services
	}
	return c
}
