package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stocklens/catalog-api/internal/service"
	"github.com/stocklens/catalog-api/internal/utils"
)

// ProductHandler handles catalog read endpoints and admin edits.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles GET /v1/products with search, taxonomy filters and
// pagination.
func (h *ProductHandler) List(c *gin.Context) {
	filter := &service.ListFilter{
		Search:        c.Query("search"),
		CategoryID:    c.Query("categoryId"),
		ProductLineID: c.Query("productLineId"),
		BrandID:       c.Query("brandId"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Products retrieved", products, filter.Page, filter.Limit, total)
}

// ByCategory handles GET /v1/products/by-category/:categoryId.
func (h *ProductHandler) ByCategory(c *gin.Context) {
	filter := &service.ListFilter{CategoryID: c.Param("categoryId")}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Products retrieved", products, filter.Page, filter.Limit, total)
}

// ByProductLine handles GET /v1/products/by-product-line/:productLineId.
func (h *ProductHandler) ByProductLine(c *gin.Context) {
	filter := &service.ListFilter{ProductLineID: c.Param("productLineId")}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Products retrieved", products, filter.Page, filter.Limit, total)
}

// Detail handles GET /v1/products/:productId — the product with its
// features, specification and resolved taxonomy names.
func (h *ProductHandler) Detail(c *gin.Context) {
	detail, err := h.productService.GetDetail(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved", detail)
}

// Enriched handles GET /v1/products/:productId/enriched.
func (h *ProductHandler) Enriched(c *gin.Context) {
	enriched, err := h.productService.GetEnriched(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved", enriched)
}

// FetchByBarcodeRequest is the body of POST /v1/products/fetchByBarcode.
type FetchByBarcodeRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// FetchByBarcode handles POST /v1/products/fetchByBarcode.
func (h *ProductHandler) FetchByBarcode(c *gin.Context) {
	var req FetchByBarcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productService.FetchByBarcode(c.Request.Context(), req.Barcode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved", product)
}

// AdminEdit handles PUT /v1/adminEdit/:id — a direct product edit that
// bypasses the draft workflow.
func (h *ProductHandler) AdminEdit(c *gin.Context) {
	var req service.AdminEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productService.AdminEdit(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Product updated", product)
}

// SoftDelete handles DELETE /v1/adminEdit/:id.
func (h *ProductHandler) SoftDelete(c *gin.Context) {
	deletedBy := c.GetString("user_id")
	if err := h.productService.SoftDelete(c.Request.Context(), c.Param("id"), deletedBy); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Product deleted", nil)
}

// Restore handles PUT /v1/adminEdit/:id/restore.
func (h *ProductHandler) Restore(c *gin.Context) {
	if err := h.productService.Restore(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Product restored", nil)
}
