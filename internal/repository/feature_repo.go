package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/stocklens/catalog-api/internal/models"
)

// FeatureRepository owns the per-product feature list, one row per
// business identifier.
type FeatureRepository struct {
	db *sqlx.DB
}

// NewFeatureRepository creates a new FeatureRepository.
func NewFeatureRepository(db *sqlx.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

// GetByProductID returns the feature record for a product, or
// sql.ErrNoRows when none exists yet.
func (r *FeatureRepository) GetByProductID(ctx context.Context, productID string) (*models.ProductFeature, error) {
	const q = `SELECT product_id, features, updated_at FROM product_features WHERE product_id = $1 LIMIT 1`
	var f models.ProductFeature
	if err := r.db.GetContext(ctx, &f, q, productID); err != nil {
		return nil, err
	}
	return &f, nil
}

// Replace writes the full feature list for a product, creating the row
// if absent. The previous list is discarded, never merged.
func (r *FeatureRepository) Replace(ctx context.Context, productID string, features []string) error {
	const q = `
        INSERT INTO product_features (product_id, features)
        VALUES ($1, $2)
        ON CONFLICT (product_id) DO UPDATE SET
            features = EXCLUDED.features,
            updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, q, productID, pq.StringArray(features))
	return err
}
