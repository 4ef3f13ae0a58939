package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stocklens/catalog-api/internal/models"
)

// ProductRepository handles data access for canonical product records.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, product_id, barcode, brand_id, category_id, product_line_id,
        product_name, description, quantity, unit, review_status,
        is_delete, deleted_by, deleted_on, created_at, updated_at`

// GetByProductID returns a product by its business identifier, or
// sql.ErrNoRows. Soft-deleted records are excluded.
func (r *ProductRepository) GetByProductID(ctx context.Context, productID string) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1 AND NOT is_delete LIMIT 1`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, productID); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByBarcode returns the single live (non-deleted) product carrying
// the barcode, or sql.ErrNoRows.
func (r *ProductRepository) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1 AND NOT is_delete LIMIT 1`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, barcode); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID returns a product by storage id regardless of delete state.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1 LIMIT 1`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetReviewStatusByProductID flags review state by business identifier.
// Returns the number of rows updated so callers can fall back to a
// barcode match when the identifier no longer resolves.
func (r *ProductRepository) SetReviewStatusByProductID(ctx context.Context, productID string, status models.ReviewStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET review_status = $2, updated_at = NOW() WHERE product_id = $1 AND NOT is_delete`,
		productID, status)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetReviewStatusByBarcode flags review state by barcode.
func (r *ProductRepository) SetReviewStatusByBarcode(ctx context.Context, barcode string, status models.ReviewStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET review_status = $2, updated_at = NOW() WHERE barcode = $1 AND NOT is_delete`,
		barcode, status)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpsertByBarcode writes all editable product fields keyed by barcode.
// The partial unique index on live barcodes makes the operation
// idempotent: re-running it with the same values is a no-op update.
func (r *ProductRepository) UpsertByBarcode(ctx context.Context, p *models.Product) error {
	const q = `
        INSERT INTO products (product_id, barcode, brand_id, category_id, product_line_id,
                              product_name, description, quantity, unit, review_status, is_delete)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false)
        ON CONFLICT (barcode) WHERE NOT is_delete DO UPDATE SET
            brand_id = EXCLUDED.brand_id,
            category_id = EXCLUDED.category_id,
            product_line_id = EXCLUDED.product_line_id,
            product_name = EXCLUDED.product_name,
            description = EXCLUDED.description,
            quantity = EXCLUDED.quantity,
            unit = EXCLUDED.unit,
            review_status = EXCLUDED.review_status,
            is_delete = false,
            deleted_by = NULL,
            deleted_on = NULL,
            updated_at = NOW()
        RETURNING id, product_id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		p.ProductID,
		p.Barcode,
		p.BrandID,
		p.CategoryID,
		p.ProductLineID,
		p.ProductName,
		p.Description,
		p.Quantity,
		p.Unit,
		p.ReviewStatus,
	).Scan(&p.ID, &p.ProductID, &p.CreatedAt, &p.UpdatedAt)
}

// UpdateByID writes editable fields of a product addressed by storage
// id, used by the direct admin edit path.
func (r *ProductRepository) UpdateByID(ctx context.Context, p *models.Product) error {
	const q = `
        UPDATE products
        SET barcode = $2, brand_id = $3, category_id = $4, product_line_id = $5,
            product_name = $6, description = $7, quantity = $8, unit = $9,
            review_status = $10, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, q,
		p.ID,
		p.Barcode,
		p.BrandID,
		p.CategoryID,
		p.ProductLineID,
		p.ProductName,
		p.Description,
		p.Quantity,
		p.Unit,
		p.ReviewStatus,
	).Scan(&p.UpdatedAt)
}

// SoftDelete marks a product deleted without removing the row.
func (r *ProductRepository) SoftDelete(ctx context.Context, id, deletedBy string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_delete = true, deleted_by = $2, deleted_on = $3, updated_at = NOW() WHERE id = $1 AND NOT is_delete`,
		id, deletedBy, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Restore clears the soft-delete flag. The partial unique barcode index
// rejects the restore with a unique violation if another live product
// has since taken the barcode.
func (r *ProductRepository) Restore(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_delete = false, deleted_by = NULL, deleted_on = NULL, updated_at = NOW() WHERE id = $1 AND is_delete`,
		id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ProductFilter holds filters for catalog list queries.
type ProductFilter struct {
	Search        string
	CategoryID    string
	ProductLineID string
	BrandID       string
	Page          int
	Limit         int
}

// List returns live products matching the filter with a total count for
// pagination.
func (r *ProductRepository) List(ctx context.Context, filter *ProductFilter) ([]models.Product, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	offset := (filter.Page - 1) * filter.Limit

	baseWhere := `WHERE NOT is_delete`
	args := []interface{}{}
	argIdx := 1

	if filter.Search != "" {
		baseWhere += fmt.Sprintf(" AND product_name ILIKE $%d", argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	if filter.CategoryID != "" {
		baseWhere += fmt.Sprintf(" AND category_id = $%d", argIdx)
		args = append(args, filter.CategoryID)
		argIdx++
	}
	if filter.ProductLineID != "" {
		baseWhere += fmt.Sprintf(" AND product_line_id = $%d", argIdx)
		args = append(args, filter.ProductLineID)
		argIdx++
	}
	if filter.BrandID != "" {
		baseWhere += fmt.Sprintf(" AND brand_id = $%d", argIdx)
		args = append(args, filter.BrandID)
		argIdx++
	}

	countQuery := `SELECT COUNT(1) FROM products ` + baseWhere
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`SELECT `+productColumns+` FROM products %s ORDER BY product_name LIMIT $%d OFFSET $%d`,
		baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, listQuery, args...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
