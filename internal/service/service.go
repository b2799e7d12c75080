// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the storage, payment and notification layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/availability"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/notify"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/payment"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/planner"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/pricing"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/repository"
)

var (
	// ErrNotFound is returned when a room type or booking does not exist.
	ErrNotFound = repository.ErrNotFound
	// ErrConflict is returned when the room was taken between the
	// availability check and the commit. Callers may search again.
	ErrConflict = repository.ErrConflict
	// ErrNoAvailability is returned when no room satisfies the request.
	ErrNoAvailability = errors.New("no rooms available for the requested dates")
	// ErrPaymentDeclined is returned when the gateway refuses the payment.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrForbidden is returned when a lookup email does not match the booking.
	ErrForbidden = errors.New("email does not match booking")
	// ErrConfirmationCodeExhausted is returned when no unique confirmation
	// code could be minted within the attempt budget.
	ErrConfirmationCodeExhausted = errors.New("could not generate a unique confirmation code")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Store is the persistence the service depends on. repository.Store and
// repository.MemoryStore both satisfy it.
type Store interface {
	availability.Source
	pricing.Source

	ListRoomTypes(ctx context.Context) ([]model.RoomType, error)
	GetRoomType(ctx context.Context, id string) (*model.RoomType, error)
	GetRoomTypeBySlug(ctx context.Context, slug string) (*model.RoomType, error)
	ConfirmationCodeExists(ctx context.Context, code string) (bool, error)
	CommitReservation(ctx context.Context, res *repository.Reservation) error
	GetConfirmation(ctx context.Context, code string) (*model.BookingConfirmation, error)
}

// maxCodeAttempts bounds confirmation code regeneration.
const maxCodeAttempts = 5

// maxStayNights bounds the length of a single stay.
const maxStayNights = 365

// ReservationService orchestrates search, allocation and lookup.
type ReservationService struct {
	store    Store
	rooms    *availability.Resolver
	prices   *pricing.Resolver
	payments payment.Authorizer
	notifier notify.Notifier
	log      *logrus.Logger

	now           func() time.Time
	newCode       func() (string, error)
	planOptions   planner.Options
	notifyTimeout time.Duration

	inflight sync.WaitGroup
}

// Option customises a ReservationService.
type Option func(*ReservationService)

// WithClock overrides the time source used for "today" and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ReservationService) { s.now = now }
}

// WithCodeGenerator overrides confirmation code generation.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *ReservationService) { s.newCode = gen }
}

// WithPlanOptions overrides the plan search bounds.
func WithPlanOptions(opts planner.Options) Option {
	return func(s *ReservationService) { s.planOptions = opts }
}

// WithNotifyTimeout bounds each post-commit notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *ReservationService) { s.notifyTimeout = d }
}

// NewReservationService constructs a ReservationService with its dependencies.
// A nil notifier disables notifications.
func NewReservationService(
	store Store,
	payments payment.Authorizer,
	notifier notify.Notifier,
	log *logrus.Logger,
	opts ...Option,
) *ReservationService {
	if notifier == nil {
		notifier = notify.Multi{}
	}
	s := &ReservationService{
		store:         store,
		rooms:         availability.NewResolver(store),
		prices:        pricing.NewResolver(store),
		payments:      payments,
		notifier:      notifier,
		log:           log,
		now:           time.Now,
		newCode:       NewConfirmationCode,
		planOptions:   planner.DefaultOptions,
		notifyTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until every in-flight notification has finished.
func (s *ReservationService) Wait() {
	s.inflight.Wait()
}

// ListRoomTypes returns all room types.
func (s *ReservationService) ListRoomTypes(ctx context.Context) ([]model.RoomType, error) {
	return s.store.ListRoomTypes(ctx)
}

// GetRoomType returns a room type by slug, falling back to id.
func (s *ReservationService) GetRoomType(ctx context.Context, slugOrID string) (*model.RoomType, error) {
	if slugOrID == "" {
		return nil, invalid("room_type", "is required")
	}
	rt, err := s.store.GetRoomTypeBySlug(ctx, slugOrID)
	if errors.Is(err, repository.ErrNotFound) {
		rt, err = s.store.GetRoomType(ctx, slugOrID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room type: %w", err)
	}
	return rt, nil
}

// LookupBooking returns a booking by confirmation code. The email must
// match the guest's email, case-insensitively.
func (s *ReservationService) LookupBooking(ctx context.Context, code, email string) (*model.BookingConfirmation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	email = strings.TrimSpace(email)
	if code == "" {
		return nil, invalid("confirmation_code", "is required")
	}
	if email == "" {
		return nil, invalid("email", "is required")
	}

	c, err := s.store.GetConfirmation(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup booking: %w", err)
	}
	if !strings.EqualFold(c.Guest.Email, email) {
		return nil, ErrForbidden
	}
	return c, nil
}
