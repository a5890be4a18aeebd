// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/middleware"
)

func as(role access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithCaller(r.Context(), access.Caller{ID: "caller", Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRouter(role access.Role, cfg HandlerConfig) http.Handler {
	r := chi.NewRouter()
	NewHandler(cfg).RegisterRoutes(r, as(role))
	return r
}

func TestTenancyStats(t *testing.T) {
	router := newRouter(access.RoleAdmin, HandlerConfig{
		Customers: func(context.Context) (int64, error) { return 4, nil },
		Admins:    func(context.Context) (int64, error) { return 1, nil },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/tenancy", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data TenancyStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(4), body.Data.Customers)
	assert.Equal(t, int64(1), body.Data.GlobalAdmins)
}

func TestSystemStatsReportsMongo(t *testing.T) {
	router := newRouter(access.RoleAdmin, HandlerConfig{
		MongoPing: func(context.Context) error { return errors.New("down") },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Data.Mongo.Healthy)
	assert.True(t, body.Data.Database.Healthy)
	assert.Nil(t, body.Data.Tenancy)
}

func TestSystemStatsIncludesTenancy(t *testing.T) {
	router := newRouter(access.RoleAdmin, HandlerConfig{
		MongoPing: func(context.Context) error { return nil },
		Customers: func(context.Context) (int64, error) { return 2, nil },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data.Tenancy)
	assert.Equal(t, int64(2), body.Data.Tenancy.Customers)
}

func TestStatsRequireAdmin(t *testing.T) {
	router := newRouter(access.RoleCustomer, HandlerConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/runtime", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
