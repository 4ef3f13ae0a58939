package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/sse"
	"github.com/stocklens/catalog-api/internal/utils"
)

// ProductStore is the product storage surface the workflow needs.
// Implemented by repository.ProductRepository.
type ProductStore interface {
	GetByProductID(ctx context.Context, productID string) (*models.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	SetReviewStatusByProductID(ctx context.Context, productID string, status models.ReviewStatus) (int64, error)
	SetReviewStatusByBarcode(ctx context.Context, barcode string, status models.ReviewStatus) (int64, error)
	UpsertByBarcode(ctx context.Context, p *models.Product) error
}

// FeatureStore owns the denormalized per-product feature list.
// Implemented by repository.FeatureRepository.
type FeatureStore interface {
	Replace(ctx context.Context, productID string, features []string) error
}

// SpecificationStore owns the per-product specification map.
// Implemented by repository.SpecificationRepository.
type SpecificationStore interface {
	Replace(ctx context.Context, productID string, spec models.SpecMap) error
}

// TaxonomyResolver resolves display names to codes, creating entries
// when none match. Implemented by TaxonomyService.
type TaxonomyResolver interface {
	Resolve(ctx context.Context, kind models.TaxonomyKind, name string) (string, error)
	ResolveProductLine(ctx context.Context, name, categoryCode string) (string, error)
}

// NotificationDispatcher is the slice of NotificationService the
// workflow uses to emit and retract review notifications.
type NotificationDispatcher interface {
	Create(ctx context.Context, req *CreateNotificationRequest) (*models.Notification, error)
	DeleteMatching(ctx context.Context, relatedID, senderID, notifType string) error
}

// ApprovalService orchestrates the submit → approve / reject
// transitions: it flags the product, materializes the draft's taxonomy
// names into stable codes, writes the canonical record and its feature
// and specification satellites, and retires the draft with its
// notification.
//
// Approve runs its steps in a fixed order and every step is idempotent
// on retry; a partial failure surfaces the failing step instead of
// rolling back, so the caller can safely re-run the whole operation.
type ApprovalService struct {
	drafts        DraftStore
	products      ProductStore
	features      FeatureStore
	specs         SpecificationStore
	taxonomy      TaxonomyResolver
	notifications NotificationDispatcher
	notifier      sse.ReviewNotifier
}

// NewApprovalService constructs an ApprovalService. notifier may be nil
// when no live feed is attached.
func NewApprovalService(
	drafts DraftStore,
	products ProductStore,
	features FeatureStore,
	specs SpecificationStore,
	taxonomy TaxonomyResolver,
	notifications NotificationDispatcher,
	notifier sse.ReviewNotifier,
) *ApprovalService {
	return &ApprovalService{
		drafts:        drafts,
		products:      products,
		features:      features,
		specs:         specs,
		taxonomy:      taxonomy,
		notifications: notifications,
		notifier:      notifier,
	}
}

// Submit stores the draft as submitted, flags the target product as
// pending review and raises an "editing" notification for the admin
// role. The product is matched by business identifier first, then by
// the barcode carried in the payload: the draft may reference a product
// whose identifier has since changed.
func (s *ApprovalService) Submit(ctx context.Context, productID, employeeID string, data models.DraftData) (*models.Draft, error) {
	if productID == "" || employeeID == "" {
		return nil, utils.InvalidArgument("MISSING_DRAFT_KEY", "productId and employeeId are required")
	}
	// The notification step requires a well-formed sender identifier;
	// checking here keeps validation failures free of partial writes.
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, utils.InvalidArgument("INVALID_EMPLOYEE_ID", "employeeId must be a well-formed identifier")
	}

	draft := &models.Draft{
		ID:         uuid.New().String(),
		ProductID:  productID,
		EmployeeID: employeeID,
		Data:       data,
		SaveType:   models.SaveTypeSubmitted,
	}
	if err := s.drafts.Upsert(ctx, draft); err != nil {
		return nil, utils.Internal("upsert-draft", err)
	}

	n, err := s.products.SetReviewStatusByProductID(ctx, productID, models.ReviewStatusPending)
	if err != nil {
		return nil, utils.Internal("flag-product", err)
	}
	if n == 0 && data.Barcode != "" {
		n, err = s.products.SetReviewStatusByBarcode(ctx, data.Barcode, models.ReviewStatusPending)
		if err != nil {
			return nil, utils.Internal("flag-product", err)
		}
	}
	if n == 0 {
		return nil, utils.NotFound("PRODUCT_NOT_FOUND", "no product matches productId "+productID+" or the draft barcode")
	}

	_, err = s.notifications.Create(ctx, &CreateNotificationRequest{
		Message:      fmt.Sprintf("Edit submitted for product %s", data.ProductName),
		Type:         models.NotificationTypeEditing,
		SenderID:     employeeID,
		ReceiverRole: models.RoleAdmin,
		RelatedID:    productID,
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyDraftSubmitted(draft)
	}
	log.Info().Str("draft_id", draft.ID).Str("product_id", productID).Str("employee_id", employeeID).Msg("draft submitted for review")
	return draft, nil
}

// Approve applies a submitted draft to the canonical catalog. The live
// product is re-anchored by the barcode in the draft payload — the one
// field stable across identifier edits — then the draft's taxonomy
// names are resolved to codes, the product and its feature and
// specification records are replaced, and the draft and its
// notification are retired.
func (s *ApprovalService) Approve(ctx context.Context, draftID string) (*models.Product, error) {
	draft, err := s.loadReviewable(ctx, draftID)
	if err != nil {
		return nil, err
	}

	product, err := s.locateByBarcode(ctx, draft)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.taxonomy.Resolve(ctx, models.KindCategory, draft.Data.Category)
	if err != nil {
		return nil, err
	}
	productLineID, err := s.taxonomy.ResolveProductLine(ctx, draft.Data.ProductLine, categoryID)
	if err != nil {
		return nil, err
	}
	brandID, err := s.taxonomy.Resolve(ctx, models.KindBrand, draft.Data.Brand)
	if err != nil {
		return nil, err
	}

	updated := &models.Product{
		ProductID:     product.ProductID,
		Barcode:       draft.Data.Barcode,
		BrandID:       brandID,
		CategoryID:    categoryID,
		ProductLineID: productLineID,
		ProductName:   draft.Data.ProductName,
		Description:   draft.Data.Description,
		Quantity:      draft.Data.Quantity,
		Unit:          draft.Data.Unit,
		ReviewStatus:  models.ReviewStatusReviewed,
	}
	if err := s.products.UpsertByBarcode(ctx, updated); err != nil {
		return nil, utils.Internal("upsert-product", err)
	}

	if err := s.features.Replace(ctx, updated.ProductID, draft.Data.Features); err != nil {
		return nil, utils.Internal("replace-features", err)
	}
	if err := s.specs.Replace(ctx, updated.ProductID, draft.Data.Specification); err != nil {
		return nil, utils.Internal("replace-specification", err)
	}

	if _, err := s.drafts.Delete(ctx, draft.ID); err != nil {
		return nil, utils.Internal("delete-draft", err)
	}
	if err := s.notifications.DeleteMatching(ctx, draft.ProductID, draft.EmployeeID, models.NotificationTypeEditing); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyDraftApproved(draft)
	}
	log.Info().Str("draft_id", draft.ID).Str("product_id", updated.ProductID).Str("barcode", updated.Barcode).Msg("draft approved")
	return updated, nil
}

// Reject discards a submitted draft without applying any field changes.
// The product is marked reviewed and the draft and its notification are
// retired.
func (s *ApprovalService) Reject(ctx context.Context, draftID string) error {
	draft, err := s.loadReviewable(ctx, draftID)
	if err != nil {
		return err
	}

	product, err := s.locateByBarcode(ctx, draft)
	if err != nil {
		return err
	}

	if _, err := s.products.SetReviewStatusByBarcode(ctx, product.Barcode, models.ReviewStatusReviewed); err != nil {
		return utils.Internal("flag-product", err)
	}

	if _, err := s.drafts.Delete(ctx, draft.ID); err != nil {
		return utils.Internal("delete-draft", err)
	}
	if err := s.notifications.DeleteMatching(ctx, draft.ProductID, draft.EmployeeID, models.NotificationTypeEditing); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyDraftRejected(draft)
	}
	log.Info().Str("draft_id", draft.ID).Str("product_id", draft.ProductID).Msg("draft rejected")
	return nil
}

// loadReviewable fetches a draft and checks the transition is legal:
// only submitted, unpublished drafts can be approved or rejected.
func (s *ApprovalService) loadReviewable(ctx context.Context, draftID string) (*models.Draft, error) {
	draft, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("DRAFT_NOT_FOUND", "no draft with id "+draftID)
		}
		return nil, utils.Internal("load-draft", err)
	}
	if !draft.Reviewable() {
		return nil, utils.Conflict("DRAFT_NOT_SUBMITTED", "draft has not been submitted for review")
	}
	return draft, nil
}

// locateByBarcode re-anchors the draft to the canonical product record
// through the barcode carried in the payload.
func (s *ApprovalService) locateByBarcode(ctx context.Context, draft *models.Draft) (*models.Product, error) {
	if draft.Data.Barcode == "" {
		return nil, utils.InvalidArgument("MISSING_BARCODE", "draft payload carries no barcode")
	}
	product, err := s.products.GetByBarcode(ctx, draft.Data.Barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("PRODUCT_NOT_FOUND", "no product found with matching barcode "+draft.Data.Barcode)
		}
		return nil, utils.Internal("locate-product", err)
	}
	return product, nil
}
