package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stayops/config"
	bookingRepo "stayops/database/repository/booking"
	"stayops/services/payment"
	"stayops/utils"
)

// PaymentHandler terminates the payment provider's callbacks and hands the
// resulting events to the reconciler. Both the webhook and the client-side
// confirm fallback land on the same Reconcile call, so whichever arrives
// first wins and the other becomes a no-op.
type PaymentHandler struct {
	Reconciler payment.ReconcileService
	Gateway    *payment.StripeGateway
	Logger     *zap.Logger
}

func NewPaymentHandler(rec payment.ReconcileService, gw *payment.StripeGateway, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Reconciler: rec, Gateway: gw, Logger: logger}
}

// CreateCheckout handles POST /api/payments/checkout.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var input payment.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	url, sessionID, err := h.Gateway.CreateCheckoutSession(c.Request.Context(), input)
	if err != nil {
		h.Logger.Error("checkout session creation failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "checkout failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout_url": url, "session_id": sessionID})
}

// Webhook handles POST /api/payments/webhook. Signature verification uses
// the raw body, so it is read before any binding.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "unreadable body", err.Error())
		return
	}

	event, relevant, err := h.Gateway.ParseWebhookEvent(body, c.GetHeader("Stripe-Signature"), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook rejected", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "invalid webhook", err.Error())
		return
	}
	if !relevant {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	result, err := h.Reconciler.Reconcile(c.Request.Context(), *event)
	if err != nil {
		h.respondReconcileError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": result.Booking, "created": result.Created})
}

// ConfirmSession handles GET /api/payments/confirm. Redirect targets hit
// this when the browser lands back before the webhook is processed.
func (h *PaymentHandler) ConfirmSession(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing session_id", "session_id query parameter is required")
		return
	}

	event, err := h.Gateway.VerifySession(c.Request.Context(), sessionID)
	if err != nil {
		h.respondReconcileError(c, err)
		return
	}

	result, err := h.Reconciler.Reconcile(c.Request.Context(), *event)
	if err != nil {
		h.respondReconcileError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": result.Booking, "created": result.Created})
}

// Refund handles POST /api/payments/:booking_id/refund.
func (h *PaymentHandler) Refund(c *gin.Context) {
	b, err := h.Reconciler.Refund(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		h.respondReconcileError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *PaymentHandler) respondReconcileError(c *gin.Context, err error) {
	var failure *payment.FailureError
	switch {
	case errors.As(err, &failure):
		utils.JSONError(c, http.StatusPaymentRequired, "payment failed", failure.Error())
	case errors.Is(err, bookingRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	default:
		respondLifecycleError(c, err)
	}
}
