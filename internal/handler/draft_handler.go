package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/service"
	"github.com/stocklens/catalog-api/internal/utils"
)

// DraftHandler handles draft lifecycle HTTP endpoints.
type DraftHandler struct {
	draftService    *service.DraftService
	approvalService *service.ApprovalService
}

// NewDraftHandler constructs a DraftHandler.
func NewDraftHandler(draftService *service.DraftService, approvalService *service.ApprovalService) *DraftHandler {
	return &DraftHandler{draftService: draftService, approvalService: approvalService}
}

// SaveDraftRequest is the body of POST /v1/drafts.
type SaveDraftRequest struct {
	ProductID  string           `json:"productId" binding:"required"`
	EmployeeID string           `json:"employeeId" binding:"required"`
	DraftData  models.DraftData `json:"draftData"`
	SaveType   models.SaveType  `json:"saveType"`
}

// UpdateDraftRequest is the body of PUT /v1/drafts/:draftId.
type UpdateDraftRequest struct {
	DraftData models.DraftData `json:"draftData"`
	SaveType  models.SaveType  `json:"saveType"`
}

// Save handles POST /v1/drafts — create or overwrite the draft for a
// (product, employee) pair. A submitted saveType routes through the
// full approval workflow so the product is flagged and the admin
// notified.
func (h *DraftHandler) Save(c *gin.Context) {
	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if req.SaveType == models.SaveTypeSubmitted {
		draft, err := h.approvalService.Submit(c.Request.Context(), req.ProductID, req.EmployeeID, req.DraftData)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.Success(c, 201, "Draft submitted for review", draft)
		return
	}

	draft, err := h.draftService.Upsert(c.Request.Context(), req.ProductID, req.EmployeeID, req.DraftData, req.SaveType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 201, "Draft saved", draft)
}

// Submit handles POST /v1/drafts/submit — explicit submission endpoint.
func (h *DraftHandler) Submit(c *gin.Context) {
	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	draft, err := h.approvalService.Submit(c.Request.Context(), req.ProductID, req.EmployeeID, req.DraftData)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 201, "Draft submitted for review", draft)
}

// Update handles PUT /v1/drafts/:draftId.
func (h *DraftHandler) Update(c *gin.Context) {
	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	draft, err := h.draftService.Update(c.Request.Context(), c.Param("draftId"), req.DraftData, req.SaveType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Draft updated", draft)
}

// Fetch handles GET /v1/drafts/fetch?productId=&employeeId=.
func (h *DraftHandler) Fetch(c *gin.Context) {
	draft, err := h.draftService.Fetch(c.Request.Context(), c.Query("productId"), c.Query("employeeId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Draft retrieved", draft)
}

// ListByEmployee handles GET /v1/drafts/employee/:id?type=.
func (h *DraftHandler) ListByEmployee(c *gin.Context) {
	drafts, err := h.draftService.ListByEmployee(c.Request.Context(), c.Param("id"), models.SaveType(c.Query("type")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Drafts retrieved", drafts)
}

// ListPending handles GET /v1/drafts/admin/pending — the review queue.
func (h *DraftHandler) ListPending(c *gin.Context) {
	drafts, err := h.draftService.ListPending(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Pending drafts retrieved", drafts)
}

// Delete handles DELETE /v1/drafts/:draftId.
func (h *DraftHandler) Delete(c *gin.Context) {
	if err := h.draftService.Delete(c.Request.Context(), c.Param("draftId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Draft deleted", nil)
}

// Approve handles PUT /v1/drafts/:draftId/approve.
func (h *DraftHandler) Approve(c *gin.Context) {
	product, err := h.approvalService.Approve(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Draft approved and product updated", product)
}

// Reject handles PUT /v1/drafts/:draftId/reject.
func (h *DraftHandler) Reject(c *gin.Context) {
	if err := h.approvalService.Reject(c.Request.Context(), c.Param("draftId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, 200, "Draft rejected", nil)
}
