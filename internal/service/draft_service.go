package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/utils"
)

// DraftStore is the storage surface for in-progress edits. Implemented
// by repository.DraftRepository.
type DraftStore interface {
	Upsert(ctx context.Context, d *models.Draft) error
	GetByID(ctx context.Context, id string) (*models.Draft, error)
	GetByKey(ctx context.Context, productID, employeeID string) (*models.Draft, error)
	UpdateByID(ctx context.Context, id string, data models.DraftData, saveType models.SaveType) (*models.Draft, error)
	Delete(ctx context.Context, id string) (int64, error)
	ListByEmployee(ctx context.Context, employeeID string, saveType models.SaveType) ([]models.Draft, error)
	ListPending(ctx context.Context) ([]models.Draft, error)
	DeleteStaleAuto(ctx context.Context, olderThan time.Time) (int64, error)
}

// DraftService manages the lifecycle of an employee's in-progress edit:
// repeated auto and manual saves until a submission hands the draft to
// the approval workflow.
type DraftService struct {
	drafts DraftStore
}

// NewDraftService constructs a DraftService.
func NewDraftService(drafts DraftStore) *DraftService {
	return &DraftService{drafts: drafts}
}

// Upsert creates or overwrites the draft for (productID, employeeID).
// Last write wins; clients may autosave arbitrarily often. An empty
// saveType defaults to auto.
func (s *DraftService) Upsert(ctx context.Context, productID, employeeID string, data models.DraftData, saveType models.SaveType) (*models.Draft, error) {
	if productID == "" || employeeID == "" {
		return nil, utils.InvalidArgument("MISSING_DRAFT_KEY", "productId and employeeId are required")
	}
	if saveType == "" {
		saveType = models.SaveTypeAuto
	}
	if !saveType.Valid() {
		return nil, utils.InvalidArgument("INVALID_SAVE_TYPE", "saveType must be auto, manual or submitted")
	}

	d := &models.Draft{
		ID:         uuid.New().String(),
		ProductID:  productID,
		EmployeeID: employeeID,
		Data:       data,
		SaveType:   saveType,
	}
	if err := s.drafts.Upsert(ctx, d); err != nil {
		return nil, utils.Internal("upsert-draft", err)
	}
	return d, nil
}

// Update overwrites payload and save type of an existing draft by id.
func (s *DraftService) Update(ctx context.Context, draftID string, data models.DraftData, saveType models.SaveType) (*models.Draft, error) {
	if saveType == "" {
		saveType = models.SaveTypeAuto
	}
	if !saveType.Valid() {
		return nil, utils.InvalidArgument("INVALID_SAVE_TYPE", "saveType must be auto, manual or submitted")
	}
	d, err := s.drafts.UpdateByID(ctx, draftID, data, saveType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("DRAFT_NOT_FOUND", "no draft with id "+draftID)
		}
		return nil, utils.Internal("upsert-draft", err)
	}
	return d, nil
}

// Fetch returns the draft for a (product, employee) pair.
func (s *DraftService) Fetch(ctx context.Context, productID, employeeID string) (*models.Draft, error) {
	if productID == "" || employeeID == "" {
		return nil, utils.InvalidArgument("MISSING_DRAFT_KEY", "productId and employeeId are required")
	}
	d, err := s.drafts.GetByKey(ctx, productID, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("DRAFT_NOT_FOUND", "no draft for that product and employee")
		}
		return nil, utils.Internal("", err)
	}
	return d, nil
}

// GetByID returns a draft by storage id.
func (s *DraftService) GetByID(ctx context.Context, draftID string) (*models.Draft, error) {
	d, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("DRAFT_NOT_FOUND", "no draft with id "+draftID)
		}
		return nil, utils.Internal("", err)
	}
	return d, nil
}

// Delete removes a draft by id.
func (s *DraftService) Delete(ctx context.Context, draftID string) error {
	n, err := s.drafts.Delete(ctx, draftID)
	if err != nil {
		return utils.Internal("delete-draft", err)
	}
	if n == 0 {
		return utils.NotFound("DRAFT_NOT_FOUND", "no draft with id "+draftID)
	}
	return nil
}

// ListByEmployee returns an employee's drafts newest-first, optionally
// filtered by save type.
func (s *DraftService) ListByEmployee(ctx context.Context, employeeID string, saveType models.SaveType) ([]models.Draft, error) {
	if employeeID == "" {
		return nil, utils.InvalidArgument("MISSING_EMPLOYEE_ID", "employeeId is required")
	}
	if saveType != "" && !saveType.Valid() {
		return nil, utils.InvalidArgument("INVALID_SAVE_TYPE", "saveType must be auto, manual or submitted")
	}
	drafts, err := s.drafts.ListByEmployee(ctx, employeeID, saveType)
	if err != nil {
		return nil, utils.Internal("", err)
	}
	return drafts, nil
}

// ListPending returns the admin review queue: submitted drafts awaiting
// a decision, newest-first.
func (s *DraftService) ListPending(ctx context.Context) ([]models.Draft, error) {
	drafts, err := s.drafts.ListPending(ctx)
	if err != nil {
		return nil, utils.Internal("", err)
	}
	return drafts, nil
}

// CleanupStaleAuto purges auto-save drafts untouched for longer than
// maxAge. Called by the cleanup worker.
func (s *DraftService) CleanupStaleAuto(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.drafts.DeleteStaleAuto(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("purged", n).Dur("max_age", maxAge).Msg("stale auto-save drafts removed")
	}
	return n, nil
}
