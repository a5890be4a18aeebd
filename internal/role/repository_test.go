// AngelaMos | 2026
// repository_test.go

package role

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/core"
	"github.com/carterperez-dev/iot-admin/internal/testutil"
)

func TestRepositoryMongo(t *testing.T) {
	db := testutil.Mongo(t)
	ctx := context.Background()

	require.NoError(t, EnsureIndexes(ctx, db))
	svc := NewService(NewRepository(db))

	created, err := svc.GetOrCreate(ctx, access.RoleUser, "")
	require.NoError(t, err)

	again, err := svc.GetOrCreate(ctx, access.RoleUser, "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	name, err := svc.NameOf(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, access.RoleUser, name)

	require.NoError(t, svc.SoftDelete(ctx, access.RoleUser.String()))

	_, err = svc.Resolve(ctx, access.RoleUser)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	_, err = svc.GetByID(ctx, uuid.New().String())
	assert.True(t, errors.Is(err, core.ErrNotFound))

	roles, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)
}
