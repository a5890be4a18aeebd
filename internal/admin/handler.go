// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/core"
	"github.com/carterperez-dev/iot-admin/internal/middleware"
)

// Counter reports how many live records a collection holds.
type Counter func(ctx context.Context) (int64, error)

type Pinger func(ctx context.Context) error

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     Pinger
	RedisPing  Pinger
	MongoPing  Pinger
	Customers  Counter
	Admins     Counter
}

type Handler struct {
	cfg HandlerConfig
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireCapability(access.OpSystemStats))

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Get("/stats/tenancy", h.GetTenancyStats)
	})
}

// GetSystemStats pings every backend concurrently and reports them
// alongside pool and runtime figures. Tenancy counts are omitted when the
// document store is down.
func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var db, rds, mongo bool
	var wg sync.WaitGroup
	for _, backend := range []struct {
		ping Pinger
		ok   *bool
	}{
		{h.cfg.DBPing, &db},
		{h.cfg.RedisPing, &rds},
		{h.cfg.MongoPing, &mongo},
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*backend.ok = reachable(ctx, backend.ping)
		}()
	}
	wg.Wait()

	resp := SystemStatsResponse{
		Database: DatabaseStatus{Healthy: db, Stats: h.dbPool()},
		Redis:    RedisStatus{Healthy: rds, Stats: h.redisPool()},
		Mongo:    MongoStatus{Healthy: mongo},
		Runtime:  readRuntime(),
	}

	if mongo {
		if tenancy, err := h.tenancy(ctx); err == nil {
			resp.Tenancy = tenancy
		}
	}

	core.OK(w, resp)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.dbPool())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.redisPool())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntime())
}

func (h *Handler) GetTenancyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tenancy(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}
	core.OK(w, stats)
}

func (h *Handler) tenancy(ctx context.Context) (*TenancyStats, error) {
	var stats TenancyStats
	var err error

	if h.cfg.Customers != nil {
		if stats.Customers, err = h.cfg.Customers(ctx); err != nil {
			return nil, err
		}
	}
	if h.cfg.Admins != nil {
		if stats.GlobalAdmins, err = h.cfg.Admins(ctx); err != nil {
			return nil, err
		}
	}

	return &stats, nil
}

// reachable treats an unconfigured backend as healthy.
func reachable(ctx context.Context, ping Pinger) bool {
	return ping == nil || ping(ctx) == nil
}

func readRuntime() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
	}
}

func (h *Handler) dbPool() *DBPoolStats {
	if h.cfg.DBStats == nil {
		return nil
	}

	s := h.cfg.DBStats()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
		MaxIdleClosed:      s.MaxIdleClosed,
		MaxIdleTimeClosed:  s.MaxIdleTimeClosed,
		MaxLifetimeClosed:  s.MaxLifetimeClosed,
	}
}

func (h *Handler) redisPool() *RedisPoolStats {
	if h.cfg.RedisStats == nil {
		return nil
	}

	s := h.cfg.RedisStats()
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
		StaleConns: s.StaleConns,
	}
}
