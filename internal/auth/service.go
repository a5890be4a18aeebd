// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/core"
	"github.com/carterperez-dev/iot-admin/internal/middleware"
)

const InvalidCredentialsMessage = "invalid email or password"

// ErrInvalidCredentials is returned for every failed login so callers
// cannot tell a missing account from a wrong password.
var ErrInvalidCredentials = core.UnauthorizedError(InvalidCredentialsMessage)

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type TokenIssuer interface {
	Issue(subject string, role access.Role, userID string) (*Token, error)
	ParseAccessToken(token string) (*middleware.AccessTokenClaims, error)
}

type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Service struct {
	tokens      TokenIssuer
	users       UserProvider
	revocations Revoker
}

func NewService(
	tokens TokenIssuer,
	users UserProvider,
	revocations Revoker,
) *Service {
	return &Service{
		tokens:      tokens,
		users:       users,
		revocations: revocations,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		slog.WarnContext(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, ErrInvalidCredentials
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	token, err := s.tokens.Issue(user.Email, user.Role, user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResponse{
		User:  toUserResponse(user),
		Token: token,
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *middleware.AccessTokenClaims) error {
	if claims == nil {
		return core.UnauthorizedError("")
	}

	if err := s.revocations.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (s *Service) Me(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("user")
		}
		return nil, fmt.Errorf("get current user: %w", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// VerifyAccessToken parses the token and rejects revoked ones. A failing
// revocation lookup rejects the token.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.JTI)
	if err != nil {
		slog.ErrorContext(ctx, "revocation lookup failed", "error", err)
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}
