package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stayops/middleware"
	"stayops/models"
	"stayops/services/booking"
	"stayops/utils"
)

// BookingHandler exposes the booking lifecycle manager over HTTP.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// respondLifecycleError maps the typed failure taxonomy onto HTTP statuses.
func respondLifecycleError(c *gin.Context, err error) {
	var notFound *booking.NotFoundError
	var conflict *booking.ConflictError
	var capacity *booking.CapacityError
	var transition *booking.TransitionError
	var forbidden *booking.ForbiddenError

	switch {
	case errors.As(err, &notFound):
		utils.JSONError(c, http.StatusNotFound, "not found", notFound.Error())
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":        conflict.Error(),
			"alternatives": conflict.Alternatives,
		})
	case errors.As(err, &capacity):
		utils.JSONError(c, http.StatusUnprocessableEntity, "capacity exceeded", capacity.Error())
	case errors.As(err, &transition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   transition.Error(),
			"allowed": transition.Allowed,
		})
	case errors.As(err, &forbidden):
		utils.JSONError(c, http.StatusForbidden, "forbidden", forbidden.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	actor := middleware.GetActor(c)
	if input.GuestID == "" {
		input.GuestID = actor.ID
	}
	if !actor.Staff() && input.GuestID != actor.ID {
		utils.JSONError(c, http.StatusForbidden, "forbidden", "guests may only book for themselves")
		return
	}
	// Guests never pre-stamp a payment; that path belongs to reconciliation.
	if !actor.Staff() {
		input.PaymentRef = ""
	}

	b, err := h.Service.Create(c.Request.Context(), input)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// CancelBooking handles POST /api/bookings/:id/cancel. Safe to call twice;
// the second call returns the already-canceled booking.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	b, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), middleware.GetActor(c))
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	var input struct {
		Status models.BookingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status, middleware.GetActor(c))
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// RescheduleBooking handles POST /api/bookings/:id/reschedule.
func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	var input struct {
		Date            string `json:"date" binding:"required"`
		Start           int    `json:"start"`
		DurationMinutes int    `json:"duration_minutes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Service.Reschedule(c.Request.Context(), c.Param("id"), input.Date, input.Start, input.DurationMinutes, middleware.GetActor(c))
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// GetAvailability handles GET /api/availability. Serves the cached, advisory
// view; the write path recomputes its own.
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	var query struct {
		Kind            models.ResourceKind `form:"kind" binding:"required"`
		Date            string              `form:"date" binding:"required"`
		Start           int                 `form:"start"`
		DurationMinutes int                 `form:"duration_minutes"`
		MinCapacity     int                 `form:"min_capacity"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	if query.DurationMinutes <= 0 {
		query.DurationMinutes = 60
	}

	free, err := h.Service.CachedAvailable(c.Request.Context(), query.Kind, query.Date, query.Start, query.DurationMinutes, query.MinCapacity)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "availability lookup failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": free})
}
