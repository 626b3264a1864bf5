package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stayops/models"
	"stayops/services/reporting"
	"stayops/utils"
)

// ReportingHandler serves the read-side listing and aggregation endpoints.
type ReportingHandler struct {
	Service reporting.ReportingService
	Logger  *zap.Logger
}

func NewReportingHandler(svc reporting.ReportingService, logger *zap.Logger) *ReportingHandler {
	return &ReportingHandler{Service: svc, Logger: logger}
}

func bindBookingFilter(c *gin.Context) (models.BookingFilter, bool) {
	var filter models.BookingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return filter, false
	}
	return filter, true
}

// ListBookings handles GET /api/bookings.
func (h *ReportingHandler) ListBookings(c *gin.Context) {
	filter, ok := bindBookingFilter(c)
	if !ok {
		return
	}

	bookings, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "listing failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// Summary handles GET /api/bookings/summary.
func (h *ReportingHandler) Summary(c *gin.Context) {
	filter, ok := bindBookingFilter(c)
	if !ok {
		return
	}

	counts, err := h.Service.Aggregate(c.Request.Context(), filter)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "aggregation failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

// ExportCSV handles GET /api/bookings/export.csv.
func (h *ReportingHandler) ExportCSV(c *gin.Context) {
	filter, ok := bindBookingFilter(c)
	if !ok {
		return
	}

	data, err := h.Service.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		h.Logger.Error("csv export failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "export failed", err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="bookings.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
