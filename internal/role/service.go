// AngelaMos | 2026
// service.go

package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/core"
)

// Service is the role registry. Lookups never return soft-deleted roles.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate returns the active role called name, creating it on first
// use. Two concurrent first calls may both create a record.
func (s *Service) GetOrCreate(
	ctx context.Context,
	name access.Role,
	description string,
) (*Role, error) {
	existing, err := s.repo.GetByName(ctx, name.String())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("get or create role: %w", err)
	}

	if description == "" {
		description = name.Description()
	}

	r := &Role{
		ID:          uuid.New().String(),
		Name:        name.String(),
		Description: description,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("get or create role: %w", err)
	}

	return r, nil
}

// Resolve returns the active role called name or a NotFound error.
func (s *Service) Resolve(ctx context.Context, name access.Role) (*Role, error) {
	r, err := s.repo.GetByName(ctx, name.String())
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError(fmt.Sprintf("role %q", name))
		}
		return nil, fmt.Errorf("resolve role: %w", err)
	}
	return r, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Role, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("role")
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return r, nil
}

// NameOf resolves a role id to its enum value.
func (s *Service) NameOf(ctx context.Context, id string) (access.Role, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	name, err := access.ParseRole(r.Name)
	if err != nil {
		return "", fmt.Errorf("role %s: %w", id, err)
	}
	return name, nil
}

func (s *Service) Create(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	name, err := access.ParseRole(req.Name)
	if err != nil {
		return nil, core.ValidationError(err.Error(), nil)
	}

	if _, err := s.repo.GetByName(ctx, name.String()); err == nil {
		return nil, core.ConflictError("role already exists")
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("create role: %w", err)
	}

	description := req.Description
	if description == "" {
		description = name.Description()
	}

	r := &Role{
		ID:          uuid.New().String(),
		Name:        name.String(),
		Description: description,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	return r, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateRoleRequest,
) (*Role, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != r.Name {
		current, _ := access.ParseRole(r.Name) //nolint:errcheck // unknown names are never privileged
		if current.Privileged() {
			return nil, core.ForbiddenError("built-in roles cannot be renamed")
		}

		name, parseErr := access.ParseRole(*req.Name)
		if parseErr != nil {
			return nil, core.ValidationError(parseErr.Error(), nil)
		}

		if _, lookupErr := s.repo.GetByName(ctx, name.String()); lookupErr == nil {
			return nil, core.ConflictError("role already exists")
		} else if !errors.Is(lookupErr, core.ErrNotFound) {
			return nil, fmt.Errorf("update role: %w", lookupErr)
		}

		r.Name = name.String()
	}

	if req.Description != nil {
		r.Description = *req.Description
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	return r, nil
}

// SoftDelete hides the role called name from every lookup.
func (s *Service) SoftDelete(ctx context.Context, name string) error {
	roleName, err := access.ParseRole(name)
	if err != nil {
		return core.NotFoundError("role")
	}

	if roleName.Privileged() {
		return core.ForbiddenError("built-in roles cannot be deleted")
	}

	r, err := s.Resolve(ctx, roleName)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, r.ID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	return nil
}

func (s *Service) List(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}
