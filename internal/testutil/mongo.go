// AngelaMos | 2026
// mongo.go

package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carterperez-dev/iot-admin/internal/config"
	"github.com/carterperez-dev/iot-admin/internal/core"
)

// Mongo starts a disposable MongoDB container and returns a fresh
// database on it. Tests using it are skipped under -short.
func Mongo(t *testing.T) *mongo.Database {
	t.Helper()

	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck // best-effort container cleanup
		_ = container.Terminate(context.Background())
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	conn, err := core.NewMongo(ctx, config.MongoConfig{
		URI:            uri,
		Database:       "test_" + strings.ReplaceAll(uuid.New().String()[:8], "-", ""),
		MaxPoolSize:    10,
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck // best-effort client cleanup
		_ = conn.Close(context.Background())
	})

	return conn.DB
}
