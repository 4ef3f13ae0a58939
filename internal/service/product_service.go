package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/repository"
	"github.com/stocklens/catalog-api/internal/utils"
)

// CatalogStore extends ProductStore with the read and delete paths used
// by the catalog endpoints. Implemented by repository.ProductRepository.
type CatalogStore interface {
	ProductStore
	GetByID(ctx context.Context, id string) (*models.Product, error)
	UpdateByID(ctx context.Context, p *models.Product) error
	SoftDelete(ctx context.Context, id, deletedBy string) (int64, error)
	Restore(ctx context.Context, id string) (int64, error)
	List(ctx context.Context, filter *repository.ProductFilter) ([]models.Product, int, error)
}

// FeatureReader adds the read path to FeatureStore.
type FeatureReader interface {
	FeatureStore
	GetByProductID(ctx context.Context, productID string) (*models.ProductFeature, error)
}

// SpecificationReader adds the read path to SpecificationStore.
type SpecificationReader interface {
	SpecificationStore
	GetByProductID(ctx context.Context, productID string) (*models.ProductSpecification, error)
}

// TaxonomyReader is the taxonomy lookup surface the catalog read
// endpoints use to translate codes back into display names.
type TaxonomyReader interface {
	TaxonomyResolver
	List(ctx context.Context, kind models.TaxonomyKind) ([]models.TaxonomyEntry, error)
	Get(ctx context.Context, kind models.TaxonomyKind, code string) (*models.TaxonomyEntry, error)
}

// ProductService serves the catalog read endpoints and the direct admin
// edit path, which resolves taxonomy names exactly like an approval.
type ProductService struct {
	products CatalogStore
	features FeatureReader
	specs    SpecificationReader
	taxonomy TaxonomyReader
}

// NewProductService constructs a ProductService.
func NewProductService(products CatalogStore, features FeatureReader, specs SpecificationReader, taxonomy TaxonomyReader) *ProductService {
	return &ProductService{products: products, features: features, specs: specs, taxonomy: taxonomy}
}

// ListedProduct is one row of the catalog list view, with taxonomy
// codes already translated to display names.
type ListedProduct struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Quantity        string `json:"quantity"`
	Unit            string `json:"unit"`
	BrandName       string `json:"Brand_name"`
	CategoryName    string `json:"Category_name"`
	ProductLineName string `json:"ProductLine_name"`
}

// ListFilter mirrors repository.ProductFilter for the HTTP layer.
type ListFilter = repository.ProductFilter

// List returns live products matching the filter, formatted with
// taxonomy names, plus the unpaginated total.
func (s *ProductService) List(ctx context.Context, filter *ListFilter) ([]ListedProduct, int, error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, utils.Internal("", err)
	}

	names, err := s.taxonomyNameMaps(ctx)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ListedProduct, 0, len(products))
	for _, p := range products {
		out = append(out, ListedProduct{
			ID:              p.ProductID,
			Name:            p.ProductName,
			Quantity:        p.Quantity,
			Unit:            p.Unit,
			BrandName:       names[models.KindBrand][p.BrandID],
			CategoryName:    names[models.KindCategory][p.CategoryID],
			ProductLineName: names[models.KindProductLine][p.ProductLineID],
		})
	}
	return out, total, nil
}

// ProductDetail is the single-product view: editable fields with
// taxonomy names plus the feature list and specification map.
type ProductDetail struct {
	Barcode       string         `json:"Barcode"`
	ProductID     string         `json:"Product_id"`
	ProductName   string         `json:"ProductName"`
	Description   string         `json:"Description"`
	Category      string         `json:"Category"`
	ProductLine   string         `json:"ProductLine"`
	Brand         string         `json:"Brand"`
	Quantity      string         `json:"Quantity"`
	Unit          string         `json:"Unit"`
	ReviewStatus  string         `json:"Review_Status"`
	Features      []string       `json:"Features"`
	Specification models.SpecMap `json:"Specification"`
}

// GetDetail returns a product by business identifier with its features,
// specification and taxonomy names attached.
func (s *ProductService) GetDetail(ctx context.Context, productID string) (*ProductDetail, error) {
	product, err := s.products.GetByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("PRODUCT_NOT_FOUND", "no product with id "+productID)
		}
		return nil, utils.Internal("", err)
	}
	return s.detail(ctx, product)
}

// FetchByBarcode returns the live product carrying a barcode.
func (s *ProductService) FetchByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	if barcode == "" {
		return nil, utils.InvalidArgument("MISSING_BARCODE", "barcode is required")
	}
	product, err := s.products.GetByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("PRODUCT_NOT_FOUND", "no product with barcode "+barcode)
		}
		return nil, utils.Internal("", err)
	}
	return product, nil
}

// EnrichedProduct is the flattened export view of one product.
type EnrichedProduct struct {
	Barcode       string         `json:"Barcode"`
	ProductName   string         `json:"Product Name"`
	Brand         string         `json:"Brand"`
	Description   string         `json:"Description"`
	Category      string         `json:"Category"`
	ProductLine   string         `json:"ProductLine"`
	Quantity      string         `json:"Quantity"`
	Features      []string       `json:"Features"`
	Specification models.SpecMap `json:"Specification"`
	Timestamp     string         `json:"Timestamp"`
}

// GetEnriched returns the export view for one product; taxonomy codes
// that no longer resolve render as "N/A" instead of failing the export.
func (s *ProductService) GetEnriched(ctx context.Context, productID string) (*EnrichedProduct, error) {
	d, err := s.GetDetail(ctx, productID)
	if err != nil {
		return nil, err
	}
	orNA := func(v string) string {
		if v == "" {
			return "N/A"
		}
		return v
	}
	return &EnrichedProduct{
		Barcode:       d.Barcode,
		ProductName:   d.ProductName,
		Brand:         orNA(d.Brand),
		Description:   orNA(d.Description),
		Category:      orNA(d.Category),
		ProductLine:   orNA(d.ProductLine),
		Quantity:      fmt.Sprintf("%s %s", d.Quantity, d.Unit),
		Features:      d.Features,
		Specification: d.Specification,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// AdminEditRequest carries a direct admin edit: taxonomy fields hold
// display names, resolved on write.
type AdminEditRequest struct {
	ProductName   string         `json:"ProductName"`
	Category      string         `json:"Category"`
	ProductLine   string         `json:"ProductLine"`
	Brand         string         `json:"Brand"`
	Quantity      string         `json:"Quantity"`
	Unit          string         `json:"Unit"`
	Barcode       string         `json:"Barcode"`
	Description   string         `json:"Description"`
	Features      []string       `json:"Features"`
	Specification models.SpecMap `json:"Specification"`
}

// AdminEdit applies a direct product edit by storage id, resolving the
// taxonomy names create-if-missing and replacing the feature and
// specification records wholesale.
func (s *ProductService) AdminEdit(ctx context.Context, id string, req *AdminEditRequest) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("PRODUCT_NOT_FOUND", "no product with id "+id)
		}
		return nil, utils.Internal("", err)
	}

	categoryID, err := s.taxonomy.Resolve(ctx, models.KindCategory, req.Category)
	if err != nil {
		return nil, err
	}
	productLineID, err := s.taxonomy.ResolveProductLine(ctx, req.ProductLine, categoryID)
	if err != nil {
		return nil, err
	}
	brandID, err := s.taxonomy.Resolve(ctx, models.KindBrand, req.Brand)
	if err != nil {
		return nil, err
	}

	product.Barcode = req.Barcode
	product.BrandID = brandID
	product.CategoryID = categoryID
	product.ProductLineID = productLineID
	product.ProductName = req.ProductName
	product.Description = req.Description
	product.Quantity = req.Quantity
	product.Unit = req.Unit
	product.ReviewStatus = models.ReviewStatusReviewed

	if err := s.products.UpdateByID(ctx, product); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, utils.Conflict("BARCODE_TAKEN", "another live product already carries that barcode")
		}
		return nil, utils.Internal("upsert-product", err)
	}

	if req.Features != nil {
		if err := s.features.Replace(ctx, product.ProductID, req.Features); err != nil {
			return nil, utils.Internal("replace-features", err)
		}
	}
	if req.Specification != nil {
		if err := s.specs.Replace(ctx, product.ProductID, req.Specification); err != nil {
			return nil, utils.Internal("replace-specification", err)
		}
	}

	log.Info().Str("product_id", product.ProductID).Msg("product updated by admin")
	return product, nil
}

// SoftDelete marks a product deleted, recording who and when.
func (s *ProductService) SoftDelete(ctx context.Context, id, deletedBy string) error {
	n, err := s.products.SoftDelete(ctx, id, deletedBy)
	if err != nil {
		return utils.Internal("", err)
	}
	if n == 0 {
		return utils.NotFound("PRODUCT_NOT_FOUND", "no live product with id "+id)
	}
	return nil
}

// Restore puts a soft-deleted product back into the live catalog.
func (s *ProductService) Restore(ctx context.Context, id string) error {
	n, err := s.products.Restore(ctx, id)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return utils.Conflict("BARCODE_TAKEN", "another live product already carries that barcode")
		}
		return utils.Internal("", err)
	}
	if n == 0 {
		return utils.NotFound("PRODUCT_NOT_FOUND", "no deleted product with id "+id)
	}
	return nil
}

func (s *ProductService) detail(ctx context.Context, product *models.Product) (*ProductDetail, error) {
	d := &ProductDetail{
		Barcode:       product.Barcode,
		ProductID:     product.ProductID,
		ProductName:   product.ProductName,
		Description:   product.Description,
		Quantity:      product.Quantity,
		Unit:          product.Unit,
		ReviewStatus:  string(product.ReviewStatus),
		Features:      []string{},
		Specification: models.SpecMap{},
	}

	if product.CategoryID != "" {
		if e, err := s.taxonomy.Get(ctx, models.KindCategory, product.CategoryID); err == nil {
			d.Category = e.Name
		}
	}
	if product.ProductLineID != "" {
		if e, err := s.taxonomy.Get(ctx, models.KindProductLine, product.ProductLineID); err == nil {
			d.ProductLine = e.Name
		}
	}
	if product.BrandID != "" {
		if e, err := s.taxonomy.Get(ctx, models.KindBrand, product.BrandID); err == nil {
			d.Brand = e.Name
		}
	}

	if f, err := s.features.GetByProductID(ctx, product.ProductID); err == nil {
		d.Features = f.Features
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, utils.Internal("", err)
	}
	if sp, err := s.specs.GetByProductID(ctx, product.ProductID); err == nil {
		d.Specification = sp.Specification
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, utils.Internal("", err)
	}
	return d, nil
}

func (s *ProductService) taxonomyNameMaps(ctx context.Context) (map[models.TaxonomyKind]map[string]string, error) {
	out := make(map[models.TaxonomyKind]map[string]string, 3)
	for _, kind := range []models.TaxonomyKind{models.KindBrand, models.KindCategory, models.KindProductLine} {
		entries, err := s.taxonomy.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		m := make(map[string]string, len(entries))
		for _, e := range entries {
			m[e.Code] = e.Name
		}
		out[kind] = m
	}
	return out, nil
}
