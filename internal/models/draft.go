package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SaveType tags how a draft was last written: background autosave,
// explicit manual save, or formal submission for review.
type SaveType string

const (
	SaveTypeAuto      SaveType = "auto"
	SaveTypeManual    SaveType = "manual"
	SaveTypeSubmitted SaveType = "submitted"
)

// Valid reports whether the save type is one of the known tags.
func (s SaveType) Valid() bool {
	switch s {
	case SaveTypeAuto, SaveTypeManual, SaveTypeSubmitted:
		return true
	}
	return false
}

// SpecMap is a string-keyed specification bag stored as JSONB.
// Replacement semantics are whole-map: an update never merges keys.
type SpecMap map[string]string

// Value implements driver.Valuer for JSONB storage.
func (m SpecMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (m *SpecMap) Scan(src interface{}) error {
	if src == nil {
		*m = SpecMap{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into SpecMap", src)
	}
	return json.Unmarshal(b, m)
}

// DraftData is the full snapshot of editable product fields carried by
// a draft. Brand, Category and ProductLine hold display names; they are
// translated to codes only when the draft is approved.
type DraftData struct {
	Barcode       string   `json:"Barcode"`
	ProductID     string   `json:"Product_id"`
	Brand         string   `json:"Brand"`
	Category      string   `json:"Category"`
	ProductLine   string   `json:"ProductLine"`
	ProductName   string   `json:"ProductName"`
	Description   string   `json:"Description"`
	Quantity      string   `json:"Quantity"`
	Unit          string   `json:"Unit"`
	Features      []string `json:"Features"`
	Specification SpecMap  `json:"Specification"`
}

// Value implements driver.Valuer for JSONB storage.
func (d DraftData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (d *DraftData) Scan(src interface{}) error {
	if src == nil {
		*d = DraftData{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into DraftData", src)
	}
	return json.Unmarshal(b, d)
}

// Draft is a proposed edit to one product by one employee. There is at
// most one draft per (product, employee) pair; saves mutate it in place
// and a review decision destroys it.
type Draft struct {
	ID          string    `db:"id" json:"id"`
	ProductID   string    `db:"product_id" json:"productId"`
	EmployeeID  string    `db:"employee_id" json:"employeeId"`
	Data        DraftData `db:"draft_data" json:"draftData"`
	SaveType    SaveType  `db:"save_type" json:"saveType"`
	LastSaved   time.Time `db:"last_saved" json:"lastSaved"`
	IsPublished bool      `db:"is_published" json:"isPublished"`
}

// Reviewable reports whether the draft may be approved or rejected.
// Only submitted drafts enter the review queue; auto and manual saves
// are still being edited.
func (d *Draft) Reviewable() bool {
	return d.SaveType == SaveTypeSubmitted && !d.IsPublished
}
