package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/logger"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/payment"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/repository"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/service"
)

var today = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func date(days int) string {
	return today.AddDate(0, 0, days).Format("2006-01-02")
}

func newTestRouter(t *testing.T, bookingLimit func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, repository.Seed(context.Background(), store))

	log := logger.Discard()
	svc := service.NewReservationService(store, payment.NewSandbox(), nil, log,
		service.WithClock(func() time.Time { return today }))
	t.Cleanup(svc.Wait)
	return NewRouter(NewReservationHandler(svc, log), log, bookingLimit)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func booking(roomType, in, out string, adults int) map[string]any {
	return map[string]any{
		"guest": map[string]any{
			"first_name": "Alan",
			"last_name":  "Turing",
			"email":      "alan@example.com",
		},
		"room_type":          roomType,
		"check_in_date":      in,
		"check_out_date":     out,
		"number_of_adults":   adults,
		"number_of_children": 0,
		"payment_token":      "tok_visa",
		"payment_method":     "CREDIT_CARD",
	}
}

func TestHealthAndCORS(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodOptions, "/bookings", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRoomTypes(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/room-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	types := decode[[]model.RoomType](t, rec)
	assert.Len(t, types, 3)

	rec = do(t, h, http.MethodGet, "/room-types/deluxe-suite", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rt := decode[model.RoomType](t, rec)
	assert.Equal(t, "Deluxe Suite", rt.Name)
	assert.Equal(t, 3, rt.MaxAdults)

	rec = do(t, h, http.MethodGet, "/room-types/penthouse", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchAvailability(t *testing.T) {
	h := newTestRouter(t, nil)

	t.Run("single room types", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/availability?check_in="+date(1)+"&check_out="+date(4)+"&adults=2", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[model.SearchResult](t, rec)
		assert.Equal(t, 3, res.Nights)
		assert.Len(t, res.MatchingRoomTypes, 3)
		assert.Nil(t, res.Plans)
	})

	t.Run("large party gets plans", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/availability?check_in="+date(1)+"&check_out="+date(2)+"&adults=9", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[model.SearchResult](t, rec)
		assert.Empty(t, res.MatchingRoomTypes)
		require.NotNil(t, res.Plans)
		require.NotEmpty(t, res.Plans.BudgetFriendly)
		assert.GreaterOrEqual(t, res.Plans.BudgetFriendly[0].TotalAdults, 9)
	})

	t.Run("missing check-in", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/availability?check_out="+date(2), nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[model.ErrorResponse](t, rec)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "check_in", body.Field)
	})

	t.Run("non numeric adults", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/availability?check_in="+date(1)+"&check_out="+date(2)+"&adults=two", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "adults", decode[model.ErrorResponse](t, rec).Field)
	})
}

func TestCreateAndLookupBooking(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/bookings", booking("standard-room", date(1), date(3), 2))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[model.BookingConfirmation](t, rec)
	assert.Equal(t, "/bookings/"+c.ConfirmationCode, rec.Header().Get("Location"))
	assert.Equal(t, model.BookingConfirmed, c.Status)
	assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(200)), c.TotalPrice.String())
	assert.Equal(t, "101", c.RoomNumber)

	t.Run("lookup", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/bookings/"+c.ConfirmationCode+"?email=ALAN@example.com", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[model.BookingConfirmation](t, rec)
		assert.Equal(t, c.ConfirmationCode, got.ConfirmationCode)
		require.Len(t, got.Payments, 1)
		assert.Equal(t, model.PaymentCompleted, got.Payments[0].Status)
	})

	t.Run("lookup with wrong email", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/bookings/"+c.ConfirmationCode+"?email=eve@example.com", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("lookup of unknown code", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/bookings/ZZZZ9999?email=alan@example.com", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lookup without email", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/bookings/"+c.ConfirmationCode, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email", decode[model.ErrorResponse](t, rec).Field)
	})
}

func TestCreateBookingErrors(t *testing.T) {
	h := newTestRouter(t, nil)

	t.Run("unknown body field", func(t *testing.T) {
		b := booking("standard-room", date(1), date(3), 2)
		b["discount"] = "FREE"
		rec := do(t, h, http.MethodPost, "/bookings", b)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/bookings", `{"guest":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/bookings", booking("standard-room", date(-2), date(3), 2))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[model.ErrorResponse](t, rec)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "check_in_date", body.Field)
	})

	t.Run("payment declined", func(t *testing.T) {
		b := booking("standard-room", date(1), date(3), 2)
		b["payment_token"] = "decline_me"
		rec := do(t, h, http.MethodPost, "/bookings", b)
		require.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Equal(t, "payment_declined", decode[model.ErrorResponse](t, rec).Error)
	})

	t.Run("sold out", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := do(t, h, http.MethodPost, "/bookings", booking("deluxe-suite", date(5), date(7), 3))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		}
		rec := do(t, h, http.MethodPost, "/bookings", booking("deluxe-suite", date(6), date(8), 1))
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "no_availability", decode[model.ErrorResponse](t, rec).Error)
	})
}

func TestBookingRateLimit(t *testing.T) {
	limit, err := RateLimit(memory.NewStore(), "1-M", logger.Discard())
	require.NoError(t, err)
	h := newTestRouter(t, limit)

	rec := do(t, h, http.MethodPost, "/bookings", booking("family-suite", date(1), date(2), 2))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = do(t, h, http.MethodPost, "/bookings", booking("family-suite", date(3), date(4), 2))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(t, h, http.MethodGet, "/room-types", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not limited")
}

func TestRateLimitRejectsBadFormat(t *testing.T) {
	_, err := RateLimit(memory.NewStore(), "lots", logger.Discard())
	assert.Error(t, err)
}

func TestNewLimiterStoreWithoutRedis(t *testing.T) {
	store, err := NewLimiterStore(nil)
	require.NoError(t, err)
	assert.NotNil(t, store)
}
