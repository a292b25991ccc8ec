package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"innbook/internal/config"
	"innbook/internal/database"
	"innbook/internal/export"
	"innbook/internal/models"
	"innbook/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg config.APIConfig) *HTTPServer {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reservations := service.NewReservationService(db, nil, nil, nil, time.Minute, &logger)
	guests := service.NewGuestService(db, nil, time.Minute, &logger)
	units := service.NewUnitService(db, nil, time.Minute, &logger)
	exporter := export.NewExporter(db, filepath.Join(t.TempDir(), "exports"), &logger)

	return NewHTTPServer(cfg, reservations, guests, units, exporter, &logger)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func seedGuestAndUnit(t *testing.T, handler http.Handler) (guestID, unitID int64) {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/guests", map[string]any{
		"name": "Alice", "email": "alice@example.com", "phone": "+100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var guest models.Guest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guest))

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/units", map[string]any{
		"name": "Seaside Cabin", "capacity": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var unit models.Unit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unit))

	return guest.ID, unit.ID
}

func TestGuestEndpoints(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/guests", map[string]any{
		"name": "Alice", "email": "alice@example.com",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate email conflicts.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/guests", map[string]any{
		"name": "Other Alice", "email": "alice@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/guests", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Guests []models.Guest `json:"guests"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Guests, 1)
}

func TestUnitEndpoints(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/units", map[string]any{
		"name": "Loft", "capacity": 2,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/units", map[string]any{
		"name": "Loft",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/units", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReservationLifecycle(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	handler := srv.Handler()
	guestID, unitID := seedGuestAndUnit(t, handler)

	// Create.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
		"guest_id": guestID, "unit_id": unitID,
		"check_in": "2024-07-01", "check_out": "2024-07-05",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.StatusActive, created.Status)

	// Overlap rejected.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
		"guest_id": guestID, "unit_id": unitID,
		"check_in": "2024-07-03", "check_out": "2024-07-07",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Back-to-back admitted.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
		"guest_id": guestID, "unit_id": unitID,
		"check_in": "2024-07-05", "check_out": "2024-07-08",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Get.
	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/reservations/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Update into the neighbour fails.
	rec = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/v1/reservations/%d", created.ID), map[string]any{
		"check_out": "2024-07-06",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Shrinking within own window succeeds.
	rec = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/v1/reservations/%d", created.ID), map[string]any{
		"check_out": "2024-07-04",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Cancel, then cancel again: both succeed.
	rec = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/reservations/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var cancelled models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	rec = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/reservations/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReservationValidation(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	handler := srv.Handler()
	guestID, unitID := seedGuestAndUnit(t, handler)

	// Reversed range.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
		"guest_id": guestID, "unit_id": unitID,
		"check_in": "2024-07-05", "check_out": "2024-07-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Bad date format.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
		"guest_id": guestID, "unit_id": unitID,
		"check_in": "07/01/2024", "check_out": "2024-07-05",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown guest.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
		"guest_id": 9999, "unit_id": unitID,
		"check_in": "2024-07-01", "check_out": "2024-07-05",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown reservation.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reservations/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Garbage id.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reservations/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnitConflictEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	handler := srv.Handler()
	guestID, unitID := seedGuestAndUnit(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
		"guest_id": guestID, "unit_id": unitID,
		"check_in": "2024-07-01", "check_out": "2024-07-05",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/units/Seaside%20Cabin/conflict?check_in=2024-07-03&check_out=2024-07-06", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Available bool                `json:"available"`
		Conflict  *models.Reservation `json:"conflict"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Available)
	require.NotNil(t, resp.Conflict)

	// Check-out day is free for the next guest.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/units/Seaside%20Cabin/conflict?check_in=2024-07-05&check_out=2024-07-08", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Available)

	// Unknown unit.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/units/Nowhere/conflict?check_in=2024-07-01&check_out=2024-07-02", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing params.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/units/Seaside%20Cabin/conflict", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	handler := srv.Handler()
	guestID, unitID := seedGuestAndUnit(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
		"guest_id": guestID, "unit_id": unitID,
		"check_in": "2024-07-01", "check_out": "2024-07-05",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reservations/export?start=2024-07-01&end=2024-07-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "occupancy_2024-07-01_to_2024-07-10.xlsx")

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reservations/export?start=2024-07-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys:      []config.APIClientKey{{Key: "secret-key", Name: "tester"}},
		},
	}
	srv := newTestServer(t, cfg)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("x-api-key", "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("x-api-key", "secret-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := config.APIConfig{
		RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 1},
	}
	srv := newTestServer(t, cfg)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-Id", "my-id")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	assert.Equal(t, "my-id", rec2.Header().Get("X-Request-Id"))
}

func TestServerShutdownBeforeStart(t *testing.T) {
	srv := newTestServer(t, config.APIConfig{})
	require.NoError(t, srv.Shutdown(context.Background()))
}
