package models

import (
	"time"

	"github.com/lib/pq"
)

// ReviewStatus tracks where a product sits in the edit-review cycle.
type ReviewStatus string

const (
	ReviewStatusNone     ReviewStatus = "None"
	ReviewStatusPending  ReviewStatus = "Pending"
	ReviewStatusReviewed ReviewStatus = "Reviewed"
)

// Product is the canonical catalog record. ProductID is the stable
// business key (distinct from the storage key) and taxonomy fields hold
// resolved codes, never display names.
type Product struct {
	ID            string       `db:"id" json:"-"`
	ProductID     string       `db:"product_id" json:"Product_id"`
	Barcode       string       `db:"barcode" json:"Barcode"`
	BrandID       string       `db:"brand_id" json:"Brand_id"`
	CategoryID    string       `db:"category_id" json:"Category_id"`
	ProductLineID string       `db:"product_line_id" json:"ProductLine_id"`
	ProductName   string       `db:"product_name" json:"ProductName"`
	Description   string       `db:"description" json:"Description"`
	Quantity      string       `db:"quantity" json:"Quantity"`
	Unit          string       `db:"unit" json:"Unit"`
	ReviewStatus  ReviewStatus `db:"review_status" json:"Review_Status"`
	IsDelete      bool         `db:"is_delete" json:"Is_Delete"`
	DeletedBy     *string      `db:"deleted_by" json:"Deleted_by,omitempty"`
	DeletedOn     *time.Time   `db:"deleted_on" json:"Deleted_on,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"-"`
	UpdatedAt     time.Time    `db:"updated_at" json:"-"`
}

// ProductFeature holds the ordered feature list for one product,
// keyed by the business identifier. At most one row per product.
type ProductFeature struct {
	ProductID string         `db:"product_id" json:"Product_id"`
	Features  pq.StringArray `db:"features" json:"Features"`
	UpdatedAt time.Time      `db:"updated_at" json:"-"`
}

// ProductSpecification holds the key/value specification bag for one
// product. Keys are unique, insertion order is irrelevant.
type ProductSpecification struct {
	ProductID     string    `db:"product_id" json:"Product_id"`
	Specification SpecMap   `db:"specification" json:"Specification"`
	UpdatedAt     time.Time `db:"updated_at" json:"-"`
}
