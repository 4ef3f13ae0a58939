package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/stocklens/catalog-api/internal/models"
)

// taxonomyTable maps a kind to its table and code sequence. Each kind
// owns a Postgres sequence so code minting is an atomic increment
// instead of a scan-then-write over the current maximum.
type taxonomyTable struct {
	table string
	seq   string
}

var taxonomyTables = map[models.TaxonomyKind]taxonomyTable{
	models.KindCategory:    {table: "categories", seq: "category_code_seq"},
	models.KindBrand:       {table: "brands", seq: "brand_code_seq"},
	models.KindProductLine: {table: "product_lines", seq: "product_line_code_seq"},
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// TaxonomyRepository handles data access for the category, brand and
// product-line collections.
type TaxonomyRepository struct {
	db *sqlx.DB
}

// NewTaxonomyRepository creates a new TaxonomyRepository.
func NewTaxonomyRepository(db *sqlx.DB) *TaxonomyRepository {
	return &TaxonomyRepository{db: db}
}

func (r *TaxonomyRepository) meta(kind models.TaxonomyKind) (taxonomyTable, error) {
	m, ok := taxonomyTables[kind]
	if !ok {
		return taxonomyTable{}, fmt.Errorf("unknown taxonomy kind %q", kind)
	}
	return m, nil
}

// GetByName returns the entry with an exact display-name match, or
// sql.ErrNoRows when no entry exists.
func (r *TaxonomyRepository) GetByName(ctx context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyEntry, error) {
	m, err := r.meta(kind)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT code, name, COALESCE(category_id, '') AS category_id, created_at FROM %s WHERE name = $1 LIMIT 1`, m.table)
	var e models.TaxonomyEntry
	if err := r.db.GetContext(ctx, &e, q, name); err != nil {
		return nil, err
	}
	e.Kind = kind
	return &e, nil
}

// GetByCode returns the entry with the given code, or sql.ErrNoRows.
func (r *TaxonomyRepository) GetByCode(ctx context.Context, kind models.TaxonomyKind, code string) (*models.TaxonomyEntry, error) {
	m, err := r.meta(kind)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT code, name, COALESCE(category_id, '') AS category_id, created_at FROM %s WHERE code = $1 LIMIT 1`, m.table)
	var e models.TaxonomyEntry
	if err := r.db.GetContext(ctx, &e, q, code); err != nil {
		return nil, err
	}
	e.Kind = kind
	return &e, nil
}

// NextNumber atomically reserves the next code number for a kind.
// Concurrent callers always receive distinct numbers.
func (r *TaxonomyRepository) NextNumber(ctx context.Context, kind models.TaxonomyKind) (int64, error) {
	m, err := r.meta(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT nextval($1)`, m.seq); err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts a new taxonomy entry. The name and code columns carry
// unique constraints; a duplicate name surfaces as a unique violation
// the caller is expected to resolve by re-reading the winner.
func (r *TaxonomyRepository) Create(ctx context.Context, e *models.TaxonomyEntry) error {
	m, err := r.meta(e.Kind)
	if err != nil {
		return err
	}
	if e.Kind == models.KindProductLine {
		q := fmt.Sprintf(`INSERT INTO %s (code, name, category_id) VALUES ($1, $2, $3) RETURNING created_at`, m.table)
		return r.db.QueryRowxContext(ctx, q, e.Code, e.Name, e.CategoryID).Scan(&e.CreatedAt)
	}
	q := fmt.Sprintf(`INSERT INTO %s (code, name) VALUES ($1, $2) RETURNING created_at`, m.table)
	return r.db.QueryRowxContext(ctx, q, e.Code, e.Name).Scan(&e.CreatedAt)
}

// List returns all entries of a kind ordered by code.
func (r *TaxonomyRepository) List(ctx context.Context, kind models.TaxonomyKind) ([]models.TaxonomyEntry, error) {
	m, err := r.meta(kind)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT code, name, COALESCE(category_id, '') AS category_id, created_at FROM %s ORDER BY code`, m.table)
	var entries []models.TaxonomyEntry
	if err := r.db.SelectContext(ctx, &entries, q); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Kind = kind
	}
	return entries, nil
}

// SearchByName returns entries whose display name contains the query,
// case-insensitively.
func (r *TaxonomyRepository) SearchByName(ctx context.Context, kind models.TaxonomyKind, query string) ([]models.TaxonomyEntry, error) {
	m, err := r.meta(kind)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT code, name, COALESCE(category_id, '') AS category_id, created_at FROM %s WHERE name ILIKE '%%' || $1 || '%%' ORDER BY name`, m.table)
	var entries []models.TaxonomyEntry
	if err := r.db.SelectContext(ctx, &entries, q, query); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Kind = kind
	}
	return entries, nil
}

// UpdateName renames an entry identified by code. The code itself is
// immutable once assigned.
func (r *TaxonomyRepository) UpdateName(ctx context.Context, kind models.TaxonomyKind, code, name string) (*models.TaxonomyEntry, error) {
	m, err := r.meta(kind)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`UPDATE %s SET name = $2 WHERE code = $1 RETURNING code, name, COALESCE(category_id, '') AS category_id, created_at`, m.table)
	var e models.TaxonomyEntry
	if err := r.db.GetContext(ctx, &e, q, code, name); err != nil {
		return nil, err
	}
	e.Kind = kind
	return &e, nil
}
