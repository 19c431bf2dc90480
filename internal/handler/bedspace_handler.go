package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/havenpath/service-placement/internal/application"
	"github.com/havenpath/service-placement/internal/dates"
)

// BedspaceHandler handles HTTP requests for bedspace operations.
type BedspaceHandler struct {
	service *application.BedspaceService
}

// NewBedspaceHandler creates a new BedspaceHandler.
func NewBedspaceHandler(service *application.BedspaceService) *BedspaceHandler {
	return &BedspaceHandler{service: service}
}

// RegisterRoutes registers all bedspace routes on the given router group.
func (h *BedspaceHandler) RegisterRoutes(r *gin.RouterGroup) {
	bedspaces := r.Group("/api/v1/bedspaces")
	{
		bedspaces.POST("", h.CreateBedspace)
		bedspaces.GET("/:id", h.GetBedspace)
		bedspaces.PUT("/:id", h.UpdateBedspace)
		bedspaces.GET("/:id/archive-check", h.CheckArchiveBlocked)
		bedspaces.POST("/:id/archive", h.ArchiveBedspace)
		bedspaces.DELETE("/:id/archive", h.CancelScheduledArchive)
		bedspaces.POST("/:id/unarchive", h.UnarchiveBedspace)
		bedspaces.DELETE("/:id/unarchive", h.CancelScheduledUnarchive)
	}

	premises := r.Group("/api/v1/premises")
	{
		premises.GET("/:premisesId/bedspaces", h.GetPremisesBedspaces)
		premises.GET("/:premisesId/summary", h.GetPremisesSummary)
	}
}

// CreateBedspace handles POST /api/v1/bedspaces.
func (h *BedspaceHandler) CreateBedspace(c *gin.Context) {
	var req application.CreateBedspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBedspace(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// GetBedspace handles GET /api/v1/bedspaces/:id.
func (h *BedspaceHandler) GetBedspace(c *gin.Context) {
	bedspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid bedspace ID")
		return
	}

	result, err := h.service.GetBedspace(c.Request.Context(), bedspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// UpdateBedspace handles PUT /api/v1/bedspaces/:id.
func (h *BedspaceHandler) UpdateBedspace(c *gin.Context) {
	bedspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid bedspace ID")
		return
	}

	var req struct {
		Characteristics []string `json:"characteristics"`
		Notes           string   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBedspace(c.Request.Context(), bedspaceID, req.Characteristics, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// CheckArchiveBlocked handles GET /api/v1/bedspaces/:id/archive-check?end_date=2026-06-01.
func (h *BedspaceHandler) CheckArchiveBlocked(c *gin.Context) {
	bedspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid bedspace ID")
		return
	}

	endDate, err := dates.ParseISO(c.Query("end_date"))
	if err != nil {
		badRequest(c, "invalid or missing end_date")
		return
	}

	blocker, err := h.service.CheckArchiveBlocked(c.Request.Context(), bedspaceID, endDate)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"blocked": blocker != nil, "blocker": blocker})
}

// ArchiveBedspace handles POST /api/v1/bedspaces/:id/archive.
func (h *BedspaceHandler) ArchiveBedspace(c *gin.Context) {
	bedspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid bedspace ID")
		return
	}

	var req application.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.ArchiveBedspace(c.Request.Context(), bedspaceID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// CancelScheduledArchive handles DELETE /api/v1/bedspaces/:id/archive.
func (h *BedspaceHandler) CancelScheduledArchive(c *gin.Context) {
	bedspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid bedspace ID")
		return
	}

	result, err := h.service.CancelScheduledArchive(c.Request.Context(), bedspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// UnarchiveBedspace handles POST /api/v1/bedspaces/:id/unarchive.
func (h *BedspaceHandler) UnarchiveBedspace(c *gin.Context) {
	bedspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid bedspace ID")
		return
	}

	var req application.UnarchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.UnarchiveBedspace(c.Request.Context(), bedspaceID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// CancelScheduledUnarchive handles DELETE /api/v1/bedspaces/:id/unarchive.
func (h *BedspaceHandler) CancelScheduledUnarchive(c *gin.Context) {
	bedspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid bedspace ID")
		return
	}

	result, err := h.service.CancelScheduledUnarchive(c.Request.Context(), bedspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetPremisesBedspaces handles GET /api/v1/premises/:premisesId/bedspaces.
func (h *BedspaceHandler) GetPremisesBedspaces(c *gin.Context) {
	premisesID, err := uuid.Parse(c.Param("premisesId"))
	if err != nil {
		badRequest(c, "invalid premises ID")
		return
	}

	result, err := h.service.GetPremisesBedspaces(c.Request.Context(), premisesID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetPremisesSummary handles GET /api/v1/premises/:premisesId/summary.
func (h *BedspaceHandler) GetPremisesSummary(c *gin.Context) {
	premisesID, err := uuid.Parse(c.Param("premisesId"))
	if err != nil {
		badRequest(c, "invalid premises ID")
		return
	}

	result, err := h.service.GetPremisesSummary(c.Request.Context(), premisesID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
