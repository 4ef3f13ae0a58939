package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaxonomyKind distinguishes the three taxonomy collections. Each kind
// owns its code prefix and its own numbering.
type TaxonomyKind string

const (
	KindCategory    TaxonomyKind = "category"
	KindBrand       TaxonomyKind = "brand"
	KindProductLine TaxonomyKind = "productLine"
)

var codePrefixes = map[TaxonomyKind]string{
	KindCategory:    "C",
	KindBrand:       "B",
	KindProductLine: "PL",
}

// Valid reports whether the kind is one of the known collections.
func (k TaxonomyKind) Valid() bool {
	_, ok := codePrefixes[k]
	return ok
}

// Prefix returns the code prefix for the kind ("C", "B" or "PL").
func (k TaxonomyKind) Prefix() string {
	return codePrefixes[k]
}

// FormatCode renders a minted number as a stable code: the kind prefix
// followed by the number zero-padded to three digits. Numbers past 999
// widen naturally.
func FormatCode(kind TaxonomyKind, n int64) string {
	return fmt.Sprintf("%s%03d", kind.Prefix(), n)
}

// ParseCodeNumber extracts the numeric part of a code. Malformed codes
// parse as 0, which keeps a polluted collection from wedging minting.
func ParseCodeNumber(kind TaxonomyKind, code string) int64 {
	rest := strings.TrimPrefix(code, kind.Prefix())
	if rest == code {
		return 0
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// TaxonomyEntry is one row of a taxonomy collection. CategoryID is only
// populated for product lines, recording the owning category's code.
type TaxonomyEntry struct {
	Code       string       `db:"code" json:"code"`
	Name       string       `db:"name" json:"name"`
	Kind       TaxonomyKind `db:"-" json:"kind,omitempty"`
	CategoryID string       `db:"category_id" json:"categoryId,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}
