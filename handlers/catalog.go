package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resourceRepo "stayops/database/repository/resource"
	"stayops/models"
	"stayops/services/catalog"
	"stayops/utils"
)

// CatalogHandler exposes the resource catalog over HTTP.
type CatalogHandler struct {
	Service catalog.CatalogService
	Logger  *zap.Logger
}

func NewCatalogHandler(svc catalog.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Service: svc, Logger: logger}
}

// RegisterResource handles POST /api/resources.
func (h *CatalogHandler) RegisterResource(c *gin.Context) {
	var input models.Resource
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	res, err := h.Service.RegisterResource(c.Request.Context(), input)
	if err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "registration failed", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"resource": res})
}

// GetResource handles GET /api/resources/:id.
func (h *CatalogHandler) GetResource(c *gin.Context) {
	res, err := h.Service.GetResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, resourceRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "lookup failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource": res})
}

// ListResources handles GET /api/resources.
func (h *CatalogHandler) ListResources(c *gin.Context) {
	var query struct {
		Kind           models.ResourceKind `form:"kind"`
		MinCapacity    int                 `form:"min_capacity"`
		IncludeRetired bool                `form:"include_retired"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	resources, err := h.Service.ListResources(c.Request.Context(), resourceRepo.ResourceFilter{
		Kind:           query.Kind,
		MinCapacity:    query.MinCapacity,
		IncludeRetired: query.IncludeRetired,
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "listing failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

// SetOperationalStatus handles PATCH /api/resources/:id/status.
func (h *CatalogHandler) SetOperationalStatus(c *gin.Context) {
	var input struct {
		Status models.OperationalStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	res, err := h.Service.SetOperationalStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		var unknown *catalog.ErrUnknownStatus
		switch {
		case errors.Is(err, resourceRepo.ErrNotFound):
			utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
		case errors.As(err, &unknown):
			utils.JSONError(c, http.StatusUnprocessableEntity, "unknown status", err.Error())
		default:
			utils.JSONError(c, http.StatusInternalServerError, "update failed", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource": res})
}

// RetireResource handles POST /api/resources/:id/retire. Retired resources
// stop matching availability queries; existing bookings stay untouched.
func (h *CatalogHandler) RetireResource(c *gin.Context) {
	res, err := h.Service.RetireResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, resourceRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "retire failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource": res})
}
