// AngelaMos | 2026
// entity.go

package producttype

import (
	"time"
)

type ProductType struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	MinValue  float64   `db:"min_value"`
	MaxValue  float64   `db:"max_value"`
	UOM       string    `db:"uom"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
