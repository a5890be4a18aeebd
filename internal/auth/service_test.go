// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/core"
)

type fakeUsers struct {
	byEmail map[string]*UserInfo
	rehash  map[string]string
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.rehash[id] = hash
	return nil
}

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func (m *memoryRevoker) Revoke(_ context.Context, jti string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = exp
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

func newTestService(t *testing.T) (*Service, *memoryRevoker) {
	t.Helper()

	hash, err := core.HashPassword("Customer123+")
	require.NoError(t, err)

	users := &fakeUsers{
		byEmail: map[string]*UserInfo{
			"acme@example.com": {
				ID:           "c-1",
				Email:        "acme@example.com",
				FirstName:    "Acme",
				PasswordHash: hash,
				Role:         access.RoleCustomer,
			},
		},
		rehash: map[string]string{},
	}
	revoker := &memoryRevoker{revoked: map[string]time.Time{}}

	return NewService(newTestManager(t, 15*time.Minute), users, revoker), revoker
}

func TestLoginIssuesRoleToken(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "acme@example.com",
		Password: "Customer123+",
	})
	require.NoError(t, err)
	assert.Equal(t, "Customer", resp.User.Role)

	claims, err := svc.VerifyAccessToken(context.Background(), resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "c-1", claims.UserID)
	assert.Equal(t, access.RoleCustomer, claims.Role)
}

func TestLoginFailuresLookIdentical(t *testing.T) {
	svc, _ := newTestService(t)

	_, unknown := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "Customer123+",
	})
	_, wrong := svc.Login(context.Background(), LoginRequest{
		Email:    "acme@example.com",
		Password: "not-the-password",
	})

	require.Error(t, unknown)
	require.Error(t, wrong)

	a, b := core.FromError(unknown), core.FromError(wrong)
	assert.Equal(t, a.StatusCode, b.StatusCode)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, InvalidCredentialsMessage, a.Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, revoker := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{Email: "acme@example.com", Password: "Customer123+"})
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(ctx, resp.Token.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	assert.Contains(t, revoker.revoked, claims.JTI)

	_, err = svc.VerifyAccessToken(ctx, resp.Token.AccessToken)
	assert.True(t, errors.Is(err, core.ErrTokenRevoked))
}

func TestVerifyFailsClosedWhenStoreIsDown(t *testing.T) {
	svc, revoker := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{Email: "acme@example.com", Password: "Customer123+"})
	require.NoError(t, err)

	revoker.err = errors.New("connection refused")

	_, err = svc.VerifyAccessToken(ctx, resp.Token.AccessToken)
	assert.True(t, errors.Is(err, core.ErrTokenInvalid))
}

func TestMe(t *testing.T) {
	svc, _ := newTestService(t)

	me, err := svc.Me(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "acme@example.com", me.Email)

	_, err = svc.Me(context.Background(), "missing")
	assert.Equal(t, core.CodeNotFound, core.FromError(err).Code)
}
