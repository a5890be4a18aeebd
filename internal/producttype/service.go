// AngelaMos | 2026
// service.go

package producttype

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*ProductType, error) {
	if req.MinValue > req.MaxValue {
		return nil, rangeError()
	}

	p := &ProductType{
		ID:       uuid.New().String(),
		Name:     req.Name,
		MinValue: req.MinValue,
		MaxValue: req.MaxValue,
		UOM:      req.UOM,
		IsActive: req.IsActive,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("product type already exists")
		}
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*ProductType, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("product type")
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*ProductType, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.MinValue != nil {
		p.MinValue = *req.MinValue
	}
	if req.MaxValue != nil {
		p.MaxValue = *req.MaxValue
	}
	if req.UOM != nil {
		p.UOM = *req.UOM
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if p.MinValue > p.MaxValue {
		return nil, rangeError()
	}

	if err := s.repo.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, core.ConflictError("product type already exists")
		case errors.Is(err, core.ErrNotFound):
			return nil, core.NotFoundError("product type")
		}
		return nil, err
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("product type")
		}
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]ProductType, int64, error) {
	page := core.PageRequest{Page: params.Page, PageSize: params.PageSize}.Normalize()
	params.Page = page.Page
	params.PageSize = page.PageSize

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list product types: %w", err)
	}
	return items, total, nil
}

// Exists reports whether an active product type is called name.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.IsActive, nil
}

func rangeError() error {
	return core.ValidationError(
		"min_value must be less than or equal to max_value",
		map[string]string{"max_value": "must be greater than or equal to min_value"},
	)
}
