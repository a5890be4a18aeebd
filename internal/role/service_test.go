// AngelaMos | 2026
// service_test.go

package role

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/core"
)

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(repo), repo
}

func TestGetOrCreateCreatesOnce(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, access.RoleAdmin, "")
	require.NoError(t, err)
	assert.Equal(t, "Admin", first.Name)
	assert.Equal(t, "Global Admin role registered.", first.Description)

	second, err := svc.GetOrCreate(ctx, access.RoleAdmin, "ignored")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.Count())
}

func TestSoftDeletedRoleIsNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, access.RoleUser, "")
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, "User"))

	_, err = svc.Resolve(ctx, access.RoleUser)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	recreated, err := svc.GetOrCreate(ctx, access.RoleUser, "")
	require.NoError(t, err)
	assert.False(t, recreated.IsDeleted)
}

func TestSoftDeleteUnknownRole(t *testing.T) {
	svc, _ := newTestService()

	err := svc.SoftDelete(context.Background(), "CustomerAdmin")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestSoftDeleteBuiltInRoleForbidden(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, access.RoleAdmin, "")
	require.NoError(t, err)

	err = svc.SoftDelete(ctx, "Admin")
	assert.True(t, errors.Is(err, core.ErrForbidden))
}

func TestCreateRoleConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRoleRequest{Name: "CustomerAdmin"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateRoleRequest{Name: "CustomerAdmin"})
	assert.True(t, errors.Is(err, core.ErrConflict))
}

func TestCreateRoleRejectsUnknownName(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateRoleRequest{Name: "Operator"})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestUpdateRoleDescriptionAndRename(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRoleRequest{Name: "User"})
	require.NoError(t, err)

	desc := "tenant member"
	renamed := "CustomerAdmin"
	updated, err := svc.Update(ctx, created.ID, UpdateRoleRequest{Name: &renamed, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "CustomerAdmin", updated.Name)
	assert.Equal(t, "tenant member", updated.Description)

	name, err := svc.NameOf(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, access.RoleCustomerAdmin, name)
}

func TestUpdateBuiltInRoleRenameForbidden(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	admin, err := svc.GetOrCreate(ctx, access.RoleAdmin, "")
	require.NoError(t, err)

	renamed := "User"
	_, err = svc.Update(ctx, admin.ID, UpdateRoleRequest{Name: &renamed})
	assert.True(t, errors.Is(err, core.ErrForbidden))
}

func TestListSkipsDeleted(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, access.RoleUser, "")
	require.NoError(t, err)
	_, err = svc.GetOrCreate(ctx, access.RoleCustomerAdmin, "")
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, "User"))

	roles, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "CustomerAdmin", roles[0].Name)
}
