package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/stocklens/catalog-api/internal/models"
)

// SpecificationRepository owns the per-product key/value specification
// map, one row per business identifier.
type SpecificationRepository struct {
	db *sqlx.DB
}

// NewSpecificationRepository creates a new SpecificationRepository.
func NewSpecificationRepository(db *sqlx.DB) *SpecificationRepository {
	return &SpecificationRepository{db: db}
}

// GetByProductID returns the specification record for a product, or
// sql.ErrNoRows when none exists yet.
func (r *SpecificationRepository) GetByProductID(ctx context.Context, productID string) (*models.ProductSpecification, error) {
	const q = `SELECT product_id, specification, updated_at FROM product_specifications WHERE product_id = $1 LIMIT 1`
	var s models.ProductSpecification
	if err := r.db.GetContext(ctx, &s, q, productID); err != nil {
		return nil, err
	}
	return &s, nil
}

// Replace writes the full specification map for a product, creating the
// row if absent. Whole-map replace, never a deep merge.
func (r *SpecificationRepository) Replace(ctx context.Context, productID string, spec models.SpecMap) error {
	const q = `
        INSERT INTO product_specifications (product_id, specification)
        VALUES ($1, $2)
        ON CONFLICT (product_id) DO UPDATE SET
            specification = EXCLUDED.specification,
            updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, q, productID, spec)
	return err
}
