// AngelaMos | 2026
// repository_test.go

package producttype

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

func newPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("iot_admin"),
		postgres.WithUsername("iot"),
		postgres.WithPassword("iot"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck // best-effort container cleanup
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck // best-effort pool cleanup
		_ = db.Close()
	})

	require.NoError(t, EnsureSchema(ctx, db))
	require.NoError(t, EnsureSchema(ctx, db))
	return db
}

func TestRepositoryPostgres(t *testing.T) {
	db := newPostgres(t)
	repo := NewRepository(db)
	ctx := context.Background()

	p := &ProductType{
		ID:       uuid.New().String(),
		Name:     "Temperature",
		MinValue: -40,
		MaxValue: 85,
		UOM:      "C",
		IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, p))
	assert.False(t, p.CreatedAt.IsZero())

	dup := *p
	dup.ID = uuid.New().String()
	err := repo.Create(ctx, &dup)
	assert.True(t, errors.Is(err, core.ErrDuplicateKey))

	got, err := repo.GetByName(ctx, "Temperature")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	got.MaxValue = 100
	require.NoError(t, repo.Update(ctx, got))

	reread, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, reread.MaxValue)

	other := &ProductType{ID: uuid.New().String(), Name: "Humidity_%", MaxValue: 100, UOM: "%"}
	require.NoError(t, repo.Create(ctx, other))

	items, total, err := repo.List(ctx, ListParams{Page: 1, PageSize: 10, Search: "_%"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Humidity_%", items[0].Name)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	err = repo.Delete(ctx, p.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
