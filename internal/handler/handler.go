// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/service"
)

// ReservationHandler holds all HTTP handlers for the reservation API.
type ReservationHandler struct {
	svc *service.ReservationService
	log *logrus.Logger
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(svc *service.ReservationService, log *logrus.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *ReservationHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_error",
			Field:   verr.Field,
			Message: verr.Message,
		})
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "email does not match booking")
	case errors.Is(err, service.ErrNoAvailability):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:   "no_availability",
			Message: "no rooms of this type are available for the requested dates",
		})
	case errors.Is(err, service.ErrConflict):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:   "conflict",
			Message: "the room was booked by someone else; search again",
		})
	case errors.Is(err, service.ErrPaymentDeclined):
		writeJSON(w, http.StatusPaymentRequired, model.ErrorResponse{
			Error:   "payment_declined",
			Message: err.Error(),
		})
	default:
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListRoomTypes handles GET /room-types
func (h *ReservationHandler) ListRoomTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListRoomTypes(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if types == nil {
		types = []model.RoomType{}
	}
	writeJSON(w, http.StatusOK, types)
}

// GetRoomType handles GET /room-types/{slug}
func (h *ReservationHandler) GetRoomType(w http.ResponseWriter, r *http.Request) {
	rt, err := h.svc.GetRoomType(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

// SearchAvailability handles GET /availability
// Query: check_in, check_out (YYYY-MM-DD), adults, children.
func (h *ReservationHandler) SearchAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := model.SearchRequest{
		CheckInDate:  q.Get("check_in"),
		CheckOutDate: q.Get("check_out"),
	}

	var err error
	if req.Adults, err = queryInt(q.Get("adults"), 1); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "validation_error", Field: "adults", Message: "must be an integer"})
		return
	}
	if req.Children, err = queryInt(q.Get("children"), 0); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "validation_error", Field: "children", Message: "must be an integer"})
		return
	}

	result, err := h.svc.SearchAvailability(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateBooking handles POST /bookings
// Allocates a room, takes payment and returns the confirmation.
func (h *ReservationHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	confirmation, err := h.svc.CreateBooking(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/bookings/"+confirmation.ConfirmationCode)
	writeJSON(w, http.StatusCreated, confirmation)
}

// LookupBooking handles GET /bookings/{code}?email=
func (h *ReservationHandler) LookupBooking(w http.ResponseWriter, r *http.Request) {
	confirmation, err := h.svc.LookupBooking(r.Context(), chi.URLParam(r, "code"), r.URL.Query().Get("email"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmation)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(v string, fallback int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
