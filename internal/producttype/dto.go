// AngelaMos | 2026
// dto.go

package producttype

import (
	"time"
)

type CreateRequest struct {
	Name     string  `json:"name"      validate:"required,max=100"`
	MinValue float64 `json:"min_value"`
	MaxValue float64 `json:"max_value" validate:"gtefield=MinValue"`
	UOM      string  `json:"uom"       validate:"required,max=20"`
	IsActive bool    `json:"is_active"`
}

type UpdateRequest struct {
	Name     *string  `json:"name,omitempty"      validate:"omitempty,min=1,max=100"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	UOM      *string  `json:"uom,omitempty"       validate:"omitempty,min=1,max=20"`
	IsActive *bool    `json:"is_active,omitempty"`
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MinValue  float64   `json:"min_value"`
	MaxValue  float64   `json:"max_value"`
	UOM       string    `json:"uom"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToResponse(p *ProductType) Response {
	return Response{
		ID:        p.ID,
		Name:      p.Name,
		MinValue:  p.MinValue,
		MaxValue:  p.MaxValue,
		UOM:       p.UOM,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToResponseList(items []ProductType) []Response {
	out := make([]Response, len(items))
	for i := range items {
		out[i] = ToResponse(&items[i])
	}
	return out
}
