package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/service"
	"github.com/stocklens/catalog-api/internal/utils"
)

// TaxonomyHandler serves category, brand and product-line endpoints.
// One handler covers all three kinds; the route group fixes the kind.
type TaxonomyHandler struct {
	taxonomyService *service.TaxonomyService
	kind            models.TaxonomyKind
}

// NewTaxonomyHandler constructs a TaxonomyHandler bound to one kind.
func NewTaxonomyHandler(taxonomyService *service.TaxonomyService, kind models.TaxonomyKind) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyService: taxonomyService, kind: kind}
}

// List handles GET /v1/{categories,brands,product-lines}.
func (h *TaxonomyHandler) List(c *gin.Context) {
	entries, err := h.taxonomyService.List(c.Request.Context(), h.kind)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Entries retrieved", entries)
}

// Get handles GET /v1/{...}/:code.
func (h *TaxonomyHandler) Get(c *gin.Context) {
	entry, err := h.taxonomyService.Get(c.Request.Context(), h.kind, c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Entry retrieved", entry)
}

// Search handles GET /v1/{...}/search?q=.
func (h *TaxonomyHandler) Search(c *gin.Context) {
	entries, err := h.taxonomyService.Search(c.Request.Context(), h.kind, c.Query("q"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Entries retrieved", entries)
}

// CreateTaxonomyRequest is the body of POST /v1/{...}. CategoryCode is
// only meaningful for product lines.
type CreateTaxonomyRequest struct {
	Name         string `json:"name" binding:"required"`
	CategoryCode string `json:"categoryCode"`
}

// Create handles POST /v1/{...}. Creation goes through the same
// sequence-backed code minting as resolve-or-create, so a concurrent
// resolve for the same name converges on one entry.
func (h *TaxonomyHandler) Create(c *gin.Context) {
	var req CreateTaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	entry, err := h.taxonomyService.Create(c.Request.Context(), h.kind, req.Name, req.CategoryCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 201, "Entry created", entry)
}

// RenameTaxonomyRequest is the body of PUT /v1/{...}/:code.
type RenameTaxonomyRequest struct {
	Name string `json:"name" binding:"required"`
}

// Rename handles PUT /v1/{...}/:code.
func (h *TaxonomyHandler) Rename(c *gin.Context) {
	var req RenameTaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	entry, err := h.taxonomyService.Rename(c.Request.Context(), h.kind, c.Param("code"), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Entry renamed", entry)
}
