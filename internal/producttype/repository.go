// AngelaMos | 2026
// repository.go

package producttype

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/iot-admin/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS product_types (
	id          UUID PRIMARY KEY,
	name        VARCHAR(100) NOT NULL,
	min_value   DOUBLE PRECISION NOT NULL DEFAULT 0,
	max_value   DOUBLE PRECISION NOT NULL DEFAULT 0,
	uom         VARCHAR(20) NOT NULL,
	is_active   BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT product_types_range CHECK (min_value <= max_value)
)`

const nameIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS product_types_name_key ON product_types (name)`

type Repository interface {
	Create(ctx context.Context, p *ProductType) error
	GetByID(ctx context.Context, id string) (*ProductType, error)
	GetByName(ctx context.Context, name string) (*ProductType, error)
	Update(ctx context.Context, p *ProductType) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]ProductType, int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// EnsureSchema creates the product type table and its indexes.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	return core.InTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{schema, nameIndex} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("ensure product type schema: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) Create(ctx context.Context, p *ProductType) error {
	query := `
		INSERT INTO product_types (id, name, min_value, max_value, uom, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.Name,
		p.MinValue,
		p.MaxValue,
		p.UOM,
		p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return core.MapPostgresError("create product type", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*ProductType, error) {
	query := `
		SELECT id, name, min_value, max_value, uom, is_active, created_at, updated_at
		FROM product_types
		WHERE id = $1`

	var p ProductType
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		return nil, core.MapPostgresError("get product type", err)
	}

	return &p, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (*ProductType, error) {
	query := `
		SELECT id, name, min_value, max_value, uom, is_active, created_at, updated_at
		FROM product_types
		WHERE name = $1`

	var p ProductType
	err := r.db.GetContext(ctx, &p, query, name)
	if err != nil {
		return nil, core.MapPostgresError("get product type by name", err)
	}

	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *ProductType) error {
	query := `
		UPDATE product_types
		SET name = $2, min_value = $3, max_value = $4, uom = $5, is_active = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID,
		p.Name,
		p.MinValue,
		p.MaxValue,
		p.UOM,
		p.IsActive,
	)
	if err != nil {
		return core.MapPostgresError("update product type", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product type: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product type: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete product type: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]ProductType, int64, error) {
	where := ""
	args := []any{}

	if params.Search != "" {
		args = append(args, "%"+escapeLike(params.Search)+"%")
		where = "WHERE name ILIKE $1"
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM product_types " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count product types: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	listArgs := append(args, params.PageSize, offset)
	//nolint:gosec // G202: where clause is built from fixed fragments
	query := fmt.Sprintf(`
		SELECT id, name, min_value, max_value, uom, is_active, created_at, updated_at
		FROM product_types
		%s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	items := []ProductType{}
	if err := r.db.SelectContext(ctx, &items, query, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list product types: %w", err)
	}

	return items, total, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
