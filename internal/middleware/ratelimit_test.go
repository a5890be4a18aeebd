// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestKeyByScopeSeparatesBuckets(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	r.RemoteAddr = "10.0.0.7:5123"

	login := KeyByScope("login")(r)
	other := KeyByScope("register")(r)

	assert.Contains(t, login, "login")
	assert.NotEqual(t, login, other)
	assert.NotEqual(t, KeyByIP(r), login)
}

func TestRateLimiterFallsBackToLocalBucket(t *testing.T) {
	limiter := NewRateLimiter(unreachableRedis(t), RateLimitConfig{
		Limit:         PerMinute(1, 1),
		KeyFunc:       KeyByScope("login"),
		LocalFallback: true,
	})

	send := sender(limiter)
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRateLimiterWithoutFallback(t *testing.T) {
	t.Run("fail open passes requests through", func(t *testing.T) {
		send := sender(NewRateLimiter(unreachableRedis(t), RateLimitConfig{
			Limit:    PerMinute(1, 1),
			FailOpen: true,
		}))

		assert.Equal(t, http.StatusOK, send())
		assert.Equal(t, http.StatusOK, send())
	})

	t.Run("fail closed answers unavailable", func(t *testing.T) {
		send := sender(NewRateLimiter(unreachableRedis(t), RateLimitConfig{
			Limit: PerMinute(1, 1),
		}))

		assert.Equal(t, http.StatusServiceUnavailable, send())
	})
}

func sender(limiter *RateLimiter) func() int {
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	return func() int {
		r := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		r.RemoteAddr = "10.0.0.8:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec.Code
	}
}
