package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stayops/handlers"
	"stayops/middleware"
)

// HandlerBundle collects the handlers routes need.
type HandlerBundle struct {
	Booking   *handlers.BookingHandler
	Catalog   *handlers.CatalogHandler
	Payment   *handlers.PaymentHandler
	Reporting *handlers.ReportingHandler
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.ActorMiddleware())
		api.POST("", hb.Booking.CreateBooking)
		api.GET("/:id", hb.Booking.GetBooking)
		api.POST("/:id/cancel", hb.Booking.CancelBooking)
		api.POST("/:id/reschedule", hb.Booking.RescheduleBooking)

		// Listing and staff-driven transitions.
		staff := api.Group("")
		staff.Use(middleware.RequireStaff())
		staff.GET("", hb.Reporting.ListBookings)
		staff.GET("/summary", hb.Reporting.Summary)
		staff.GET("/export.csv", hb.Reporting.ExportCSV)
		staff.PATCH("/:id/status", hb.Booking.UpdateBookingStatus)
	}
}

// RegisterCatalogRoutes sets up the resource catalog endpoints. Reads are
// open; mutations require staff.
func RegisterCatalogRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/resources")
	{
		api.GET("", hb.Catalog.ListResources)
		api.GET("/:id", hb.Catalog.GetResource)

		staff := api.Group("")
		staff.Use(middleware.ActorMiddleware(), middleware.RequireStaff())
		staff.POST("", hb.Catalog.RegisterResource)
		staff.PATCH("/:id/status", hb.Catalog.SetOperationalStatus)
		staff.POST("/:id/retire", hb.Catalog.RetireResource)
	}
}

// RegisterAvailabilityRoute sets up the public availability query.
func RegisterAvailabilityRoute(r *gin.Engine, hb *HandlerBundle) {
	r.GET("/api/availability", hb.Booking.GetAvailability)
}

// RegisterPaymentRoutes sets up payment endpoints. The webhook and confirm
// fallback authenticate via provider signatures, not actor headers.
func RegisterPaymentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.Payment.Webhook)
		api.GET("/confirm", hb.Payment.ConfirmSession)

		authed := api.Group("")
		authed.Use(middleware.ActorMiddleware())
		authed.POST("/checkout", hb.Payment.CreateCheckout)

		staff := authed.Group("")
		staff.Use(middleware.RequireStaff())
		staff.POST("/:booking_id/refund", hb.Payment.Refund)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "stayops up"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Actor-Id", "X-Actor-Role"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterCatalogRoutes(r, hb)
	RegisterAvailabilityRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
}
