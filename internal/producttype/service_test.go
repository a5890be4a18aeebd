// AngelaMos | 2026
// service_test.go

package producttype

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

type memoryRepo struct {
	mu    sync.Mutex
	items map[string]ProductType
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]ProductType{}}
}

func (m *memoryRepo) Create(_ context.Context, p *ProductType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Name == p.Name {
			return fmt.Errorf("create product type: %w", core.ErrDuplicateKey)
		}
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.items[p.ID] = *p
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*ProductType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("get product type: %w", core.ErrNotFound)
	}
	return &p, nil
}

func (m *memoryRepo) GetByName(_ context.Context, name string) (*ProductType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("get product type by name: %w", core.ErrNotFound)
}

func (m *memoryRepo) Update(_ context.Context, p *ProductType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return fmt.Errorf("update product type: %w", core.ErrNotFound)
	}
	for id, existing := range m.items {
		if id != p.ID && existing.Name == p.Name {
			return fmt.Errorf("update product type: %w", core.ErrDuplicateKey)
		}
	}
	m.items[p.ID] = *p
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("delete product type: %w", core.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepo) List(_ context.Context, params ListParams) ([]ProductType, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []ProductType{}
	for _, p := range m.items {
		if params.Search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return []ProductType{}, int64(len(matched)), nil
	}
	end := min(start+params.PageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func TestCreateProductType(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateRequest{Name: "Temperature", MinValue: -40, MaxValue: 85, UOM: "C", IsActive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	_, err = svc.Create(ctx, CreateRequest{Name: "Temperature", MinValue: 0, MaxValue: 1, UOM: "F"})
	assert.Equal(t, core.CodeConflict, core.FromError(err).Code)

	_, err = svc.Create(ctx, CreateRequest{Name: "Pressure", MinValue: 10, MaxValue: 1, UOM: "bar"})
	assert.Equal(t, core.CodeValidationFailed, core.FromError(err).Code)
}

func TestUpdateProductType(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	temp, err := svc.Create(ctx, CreateRequest{Name: "Temperature", MinValue: -40, MaxValue: 85, UOM: "C"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequest{Name: "Humidity", MinValue: 0, MaxValue: 100, UOM: "%"})
	require.NoError(t, err)

	maxValue := 120.0
	updated, err := svc.Update(ctx, temp.ID, UpdateRequest{MaxValue: &maxValue})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.MaxValue)

	name := "Humidity"
	_, err = svc.Update(ctx, temp.ID, UpdateRequest{Name: &name})
	assert.Equal(t, core.CodeConflict, core.FromError(err).Code)

	minValue := 500.0
	_, err = svc.Update(ctx, temp.ID, UpdateRequest{MinValue: &minValue})
	assert.Equal(t, core.CodeValidationFailed, core.FromError(err).Code)

	_, err = svc.Update(ctx, "missing", UpdateRequest{Name: &name})
	assert.Equal(t, core.CodeNotFound, core.FromError(err).Code)
}

func TestDeleteProductTypeIsHard(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateRequest{Name: "Voltage", MaxValue: 240, UOM: "V"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Empty(t, repo.items)

	err = svc.Delete(ctx, p.ID)
	assert.Equal(t, core.CodeNotFound, core.FromError(err).Code)
}

func TestListProductTypesNormalizesPage(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	for _, name := range []string{"Temperature", "Humidity", "Pressure"} {
		_, err := svc.Create(ctx, CreateRequest{Name: name, MaxValue: 1, UOM: "u"})
		require.NoError(t, err)
	}

	zero, zeroTotal, err := svc.List(ctx, ListParams{})
	require.NoError(t, err)
	explicit, explicitTotal, err := svc.List(ctx, ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, explicit, zero)
	assert.Equal(t, explicitTotal, zeroTotal)
	assert.Equal(t, int64(3), zeroTotal)
}

func TestExistsRequiresActive(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Name: "Temperature", MaxValue: 1, UOM: "C", IsActive: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequest{Name: "Legacy", MaxValue: 1, UOM: "C"})
	require.NoError(t, err)

	ok, err := svc.Exists(ctx, "Temperature")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, "Legacy")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Exists(ctx, "Unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}
