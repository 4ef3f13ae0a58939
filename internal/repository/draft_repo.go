package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stocklens/catalog-api/internal/models"
)

// DraftRepository owns in-progress edit documents keyed by
// (product, employee).
type DraftRepository struct {
	db *sqlx.DB
}

// NewDraftRepository creates a new DraftRepository.
func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

const draftColumns = `id, product_id, employee_id, draft_data, save_type, last_saved, is_published`

// Upsert creates the draft for (product, employee) or overwrites its
// payload, save type and timestamp. Last write wins; the unique key on
// the pair guarantees a single stored draft no matter how frequently
// autosaves arrive.
func (r *DraftRepository) Upsert(ctx context.Context, d *models.Draft) error {
	const q = `
        INSERT INTO drafts (id, product_id, employee_id, draft_data, save_type, last_saved, is_published)
        VALUES ($1, $2, $3, $4, $5, NOW(), false)
        ON CONFLICT (product_id, employee_id) DO UPDATE SET
            draft_data = EXCLUDED.draft_data,
            save_type = EXCLUDED.save_type,
            last_saved = NOW()
        RETURNING ` + draftColumns

	return r.db.GetContext(ctx, d, q, d.ID, d.ProductID, d.EmployeeID, d.Data, d.SaveType)
}

// GetByID returns a draft by storage id, or sql.ErrNoRows.
func (r *DraftRepository) GetByID(ctx context.Context, id string) (*models.Draft, error) {
	const q = `SELECT ` + draftColumns + ` FROM drafts WHERE id = $1 LIMIT 1`
	var d models.Draft
	if err := r.db.GetContext(ctx, &d, q, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByKey returns the draft for a (product, employee) pair, or
// sql.ErrNoRows.
func (r *DraftRepository) GetByKey(ctx context.Context, productID, employeeID string) (*models.Draft, error) {
	const q = `SELECT ` + draftColumns + ` FROM drafts WHERE product_id = $1 AND employee_id = $2 LIMIT 1`
	var d models.Draft
	if err := r.db.GetContext(ctx, &d, q, productID, employeeID); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateByID overwrites payload and save type of an existing draft.
func (r *DraftRepository) UpdateByID(ctx context.Context, id string, data models.DraftData, saveType models.SaveType) (*models.Draft, error) {
	const q = `
        UPDATE drafts SET draft_data = $2, save_type = $3, last_saved = NOW()
        WHERE id = $1
        RETURNING ` + draftColumns
	var d models.Draft
	if err := r.db.GetContext(ctx, &d, q, id, data, saveType); err != nil {
		return nil, err
	}
	return &d, nil
}

// Delete removes a draft. Returns the number of rows deleted.
func (r *DraftRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByEmployee returns an employee's drafts newest-first, optionally
// filtered by save type.
func (r *DraftRepository) ListByEmployee(ctx context.Context, employeeID string, saveType models.SaveType) ([]models.Draft, error) {
	q := `SELECT ` + draftColumns + ` FROM drafts WHERE employee_id = $1`
	args := []interface{}{employeeID}
	if saveType != "" {
		q += ` AND save_type = $2`
		args = append(args, saveType)
	}
	q += ` ORDER BY last_saved DESC`

	var drafts []models.Draft
	if err := r.db.SelectContext(ctx, &drafts, q, args...); err != nil {
		return nil, err
	}
	return drafts, nil
}

// ListPending returns all submitted, unpublished drafts newest-first:
// the admin review queue.
func (r *DraftRepository) ListPending(ctx context.Context) ([]models.Draft, error) {
	const q = `SELECT ` + draftColumns + ` FROM drafts WHERE save_type = $1 AND NOT is_published ORDER BY last_saved DESC`
	var drafts []models.Draft
	if err := r.db.SelectContext(ctx, &drafts, q, models.SaveTypeSubmitted); err != nil {
		return nil, err
	}
	return drafts, nil
}

// DeleteStaleAuto purges auto-save drafts untouched since the cutoff.
// Submitted and manual drafts are never purged.
func (r *DraftRepository) DeleteStaleAuto(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM drafts WHERE save_type = $1 AND last_saved < $2`,
		models.SaveTypeAuto, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
