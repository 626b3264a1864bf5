package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookingRepo "stayops/database/repository/booking"
	paymentRepo "stayops/database/repository/payment"
	resourceRepo "stayops/database/repository/resource"
	"stayops/handlers"
	"stayops/models"
	"stayops/services/booking"
	"stayops/services/catalog"
	"stayops/services/payment"
	"stayops/services/reporting"
	"stayops/services/tasks"
)

// buildTestRouter wires the full route tree against in-memory stores.
func buildTestRouter(t *testing.T) (*gin.Engine, *resourceRepo.MemoryResourceRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := bookingRepo.NewMemoryBookingRepo()
	resources := resourceRepo.NewMemoryResourceRepo()
	logger := zap.NewNop()

	bookingSvc := &booking.DefaultBookingService{
		Repo:       repo,
		Resources:  resources,
		Queue:      tasks.NopQueue{},
		HoldWindow: 30 * time.Minute,
	}
	reconcileSvc := &payment.DefaultReconcileService{
		Bookings: bookingSvc,
		Repo:     repo,
		Attempts: paymentRepo.NewMemoryPaymentAttemptRepo(),
	}

	router := gin.New()
	RegisterRoutes(router, &HandlerBundle{
		Booking:   handlers.NewBookingHandler(bookingSvc, logger),
		Catalog:   handlers.NewCatalogHandler(&catalog.DefaultCatalogService{Repo: resources}, logger),
		Payment:   handlers.NewPaymentHandler(reconcileSvc, &payment.StripeGateway{}, logger),
		Reporting: handlers.NewReportingHandler(&reporting.DefaultReportingService{Repo: repo}, logger),
	})
	return router, resources
}

func seedTable(t *testing.T, resources *resourceRepo.MemoryResourceRepo, id string) {
	t.Helper()
	err := resources.Create(context.Background(), &models.Resource{
		ID:                id,
		Name:              id,
		Kind:              models.KindTable,
		Capacity:          4,
		OperationalStatus: models.OpAvailable,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var guestHeaders = map[string]string{"X-Actor-Role": "guest", "X-Actor-Id": "guest-1"}
var adminHeaders = map[string]string{"X-Actor-Role": "admin", "X-Actor-Id": "admin-1"}

func createBookingReq() map[string]any {
	return map[string]any{
		"resource_id":      "table-1",
		"service_id":       "dinner",
		"date":             "2026-09-15",
		"start":            1140,
		"duration_minutes": 90,
		"party_size":       2,
	}
}

func TestBookingRoutesRequireActorHeaders(t *testing.T) {
	router, resources := buildTestRouter(t)
	seedTable(t, resources, "table-1")

	w := doJSON(t, router, http.MethodPost, "/api/bookings", createBookingReq(), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without actor headers, got %d", w.Code)
	}
}

func TestCreateAndConflictOverHTTP(t *testing.T) {
	router, resources := buildTestRouter(t)
	seedTable(t, resources, "table-1")

	w := doJSON(t, router, http.MethodPost, "/api/bookings", createBookingReq(), guestHeaders)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	other := map[string]string{"X-Actor-Role": "guest", "X-Actor-Id": "guest-2"}
	w = doJSON(t, router, http.MethodPost, "/api/bookings", createBookingReq(), other)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on overlap, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Alternatives []models.Resource `json:"alternatives"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode conflict body: %v", err)
	}
}

func TestGuestCannotListOrMutateOthers(t *testing.T) {
	router, resources := buildTestRouter(t)
	seedTable(t, resources, "table-1")

	// Listing is staff-only.
	w := doJSON(t, router, http.MethodGet, "/api/bookings", nil, guestHeaders)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for guest listing, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/bookings", createBookingReq(), guestHeaders)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	var created struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// A different guest cannot cancel it.
	other := map[string]string{"X-Actor-Role": "guest", "X-Actor-Id": "guest-2"}
	w = doJSON(t, router, http.MethodPost, "/api/bookings/"+created.Booking.ID+"/cancel", nil, other)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign cancel, got %d: %s", w.Code, w.Body.String())
	}

	// The owner can.
	w = doJSON(t, router, http.MethodPost, "/api/bookings/"+created.Booking.ID+"/cancel", nil, guestHeaders)
	if w.Code != http.StatusOK {
		t.Fatalf("owner cancel: %d: %s", w.Code, w.Body.String())
	}
}

func TestStaffStatusTransitionOverHTTP(t *testing.T) {
	router, resources := buildTestRouter(t)
	seedTable(t, resources, "table-1")

	w := doJSON(t, router, http.MethodPost, "/api/bookings", createBookingReq(), guestHeaders)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	var created struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := created.Booking.ID

	// Illegal jump is a 422 naming the permitted moves.
	w = doJSON(t, router, http.MethodPatch, "/api/bookings/"+id+"/status",
		map[string]string{"status": "completed"}, adminHeaders)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for illegal transition, got %d: %s", w.Code, w.Body.String())
	}
	var rejected struct {
		Allowed []models.BookingStatus `json:"allowed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rejected); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rejected.Allowed) == 0 {
		t.Fatal("expected the permitted transitions in the response")
	}

	w = doJSON(t, router, http.MethodPatch, "/api/bookings/"+id+"/status",
		map[string]string{"status": "confirmed"}, adminHeaders)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: %d: %s", w.Code, w.Body.String())
	}
}

func TestGuestCannotRescheduleForeignBooking(t *testing.T) {
	router, resources := buildTestRouter(t)
	seedTable(t, resources, "table-1")

	w := doJSON(t, router, http.MethodPost, "/api/bookings", createBookingReq(), guestHeaders)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	var created struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := created.Booking.ID

	w = doJSON(t, router, http.MethodPatch, "/api/bookings/"+id+"/status",
		map[string]string{"status": "confirmed"}, adminHeaders)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: %d: %s", w.Code, w.Body.String())
	}

	move := map[string]any{"date": "2026-09-16", "start": 600, "duration_minutes": 60}
	other := map[string]string{"X-Actor-Role": "guest", "X-Actor-Id": "guest-2"}
	w = doJSON(t, router, http.MethodPost, "/api/bookings/"+id+"/reschedule", move, other)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign reschedule, got %d: %s", w.Code, w.Body.String())
	}

	// The booking did not move.
	w = doJSON(t, router, http.MethodGet, "/api/bookings/"+id, nil, guestHeaders)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var got struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Booking.Date != "2026-09-15" || got.Booking.Start != 1140 {
		t.Fatalf("foreign reschedule moved the booking: %+v", got.Booking)
	}

	// The owner's reschedule goes through.
	w = doJSON(t, router, http.MethodPost, "/api/bookings/"+id+"/reschedule", move, guestHeaders)
	if w.Code != http.StatusOK {
		t.Fatalf("owner reschedule: %d: %s", w.Code, w.Body.String())
	}
}

func TestCatalogMutationsAreStaffOnly(t *testing.T) {
	router, _ := buildTestRouter(t)

	body := map[string]any{"name": "Bay table", "kind": "table", "capacity": 4}
	w := doJSON(t, router, http.MethodPost, "/api/resources", body, guestHeaders)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for guest, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/resources", body, adminHeaders)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin register: %d: %s", w.Code, w.Body.String())
	}

	// Public listing sees it.
	w = doJSON(t, router, http.MethodGet, "/api/resources?kind=table", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var listed struct {
		Resources []models.Resource `json:"resources"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed.Resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(listed.Resources))
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	router, resources := buildTestRouter(t)
	seedTable(t, resources, "table-1")
	seedTable(t, resources, "table-2")

	w := doJSON(t, router, http.MethodPost, "/api/bookings", createBookingReq(), guestHeaders)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/availability?kind=table&date=2026-09-15&start=1140&duration_minutes=90", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("availability: %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Resources []models.Resource `json:"resources"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Resources) != 1 || resp.Resources[0].ID != "table-2" {
		t.Fatalf("expected only table-2 free, got %+v", resp.Resources)
	}
}

func TestHealthRoute(t *testing.T) {
	router, _ := buildTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
}
