package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"innbook/internal/database"
	"innbook/internal/metrics"
	"innbook/internal/models"
	"innbook/internal/service"
)

func (s *HTTPServer) handleGuests(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("guests")
	switch r.Method {
	case http.MethodGet:
		limit, offset := pagination(r)
		guests, err := s.guests.ListGuests(r.Context(), limit, offset)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"guests": guests})
	case http.MethodPost:
		var body struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Phone string `json:"phone"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		guest, err := s.guests.CreateGuest(r.Context(), body.Name, body.Email, body.Phone)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, guest)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleUnits(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("units")
	switch r.Method {
	case http.MethodGet:
		limit, offset := pagination(r)
		units, err := s.units.ListUnits(r.Context(), limit, offset)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"units": units})
	case http.MethodPost:
		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Capacity    int64  `json:"capacity"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		unit, err := s.units.CreateUnit(r.Context(), body.Name, body.Description, body.Capacity)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, unit)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleUnitConflict answers GET /api/v1/units/{name}/conflict: is the
// interval free on the named unit, and if not, what blocks it.
func (s *HTTPServer) handleUnitConflict(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("unit_conflict")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/units/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	name, action, found := strings.Cut(rest, "/")
	if !found || action != "conflict" || name == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	checkIn, err := parseDateParam(r, "check_in")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	checkOut, err := parseDateParam(r, "check_out")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	unit, err := s.units.GetUnitByName(r.Context(), name)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	conflict, err := s.reservations.FindConflict(r.Context(), unit.ID, checkIn, checkOut)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	resp := map[string]any{"available": conflict == nil}
	if conflict != nil {
		resp["conflict"] = conflict
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations")
	switch r.Method {
	case http.MethodGet:
		limit, offset := pagination(r)
		reservations, err := s.reservations.ListReservations(r.Context(), limit, offset)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
	case http.MethodPost:
		var body struct {
			GuestID  int64  `json:"guest_id"`
			UnitID   int64  `json:"unit_id"`
			CheckIn  string `json:"check_in"`
			CheckOut string `json:"check_out"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		checkIn, err := models.ParseDate(body.CheckIn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_in; expected YYYY-MM-DD")
			return
		}
		checkOut, err := models.ParseDate(body.CheckOut)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_out; expected YYYY-MM-DD")
			return
		}

		reservation, err := s.reservations.CreateReservation(r.Context(), body.GuestID, body.UnitID, checkIn, checkOut)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reservation)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservation_by_id")
	const prefix = "/api/v1/reservations/"
	idStr := strings.TrimPrefix(r.URL.Path, prefix)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		reservation, err := s.reservations.GetReservation(r.Context(), id)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reservation)
	case http.MethodPut, http.MethodPatch:
		var body struct {
			GuestID  *int64  `json:"guest_id"`
			UnitID   *int64  `json:"unit_id"`
			CheckIn  *string `json:"check_in"`
			CheckOut *string `json:"check_out"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		patch := models.ReservationPatch{GuestID: body.GuestID, UnitID: body.UnitID}
		if body.CheckIn != nil {
			parsed, err := models.ParseDate(*body.CheckIn)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid check_in; expected YYYY-MM-DD")
				return
			}
			patch.CheckIn = &parsed
		}
		if body.CheckOut != nil {
			parsed, err := models.ParseDate(*body.CheckOut)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid check_out; expected YYYY-MM-DD")
				return
			}
			patch.CheckOut = &parsed
		}

		reservation, err := s.reservations.UpdateReservation(r.Context(), id, patch)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reservation)
	case http.MethodDelete:
		reservation, err := s.reservations.CancelReservation(r.Context(), id)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reservation)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleExport generates the occupancy xlsx for [start, end) and serves
// it as an attachment.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := s.exporter.OccupancyReport(r.Context(), start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("occupancy export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}

// writeStoreError maps store errors onto HTTP status codes.
func (s *HTTPServer) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrInvalidDateRange), errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrOverlappingReservation):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrDuplicateEmail), errors.Is(err, database.ErrDuplicateUnitName):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrGuestNotFound),
		errors.Is(err, database.ErrUnitNotFound),
		errors.Is(err, database.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = models.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, errors.New(name + " is required")
	}
	parsed, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, errors.New("invalid " + name + "; expected YYYY-MM-DD")
	}
	return parsed, nil
}
