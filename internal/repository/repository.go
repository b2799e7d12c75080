// Package repository implements all persistence for the reservation system.
// It uses pgx directly (no ORM); MemoryStore offers the same contract for
// tests and local development.
package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a commit would give a room two overlapping
// active bookings, or the room stopped being bookable before the commit.
var ErrConflict = errors.New("room is no longer available for the requested dates")

// ErrDuplicateConfirmationCode is returned when the confirmation code is
// already taken at commit time.
var ErrDuplicateConfirmationCode = errors.New("confirmation code already in use")

// ErrAlreadyExists is returned when an inventory record collides with an
// existing one on a unique name, slug or room number.
var ErrAlreadyExists = errors.New("already exists")

// ErrOverlappingWindow is returned when a pricing window would overlap
// another window of the same room type.
var ErrOverlappingWindow = errors.New("pricing window overlaps an existing window")

// Postgres SQLSTATE codes and constraint names the repositories translate.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"

	constraintBookingCode    = "bookings_confirmation_code_key"
	constraintPricingOverlap = "pricing_windows_no_overlap"
)

// Reservation is everything a successful allocation writes, as one unit.
type Reservation struct {
	Guest   model.Guest
	Booking model.Booking
	Payment model.Payment
}

// Store bundles the Postgres repositories behind one value.
type Store struct {
	*RoomRepository
	*BookingRepository
}

// NewStore constructs a Store over a pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		RoomRepository:    NewRoomRepository(db),
		BookingRepository: NewBookingRepository(db),
	}
}

// translate maps constraint violations onto the package's sentinel errors.
func translate(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgExclusionViolation && pgErr.ConstraintName == constraintPricingOverlap:
			return ErrOverlappingWindow
		case pgErr.Code == pgExclusionViolation: // bookings_no_overlap
			return ErrConflict
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraintBookingCode:
			return ErrDuplicateConfirmationCode
		case pgErr.Code == pgUniqueViolation:
			return ErrAlreadyExists
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// uuids converts string ids for use with = ANY($n).
func uuids(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		u, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", id, err)
		}
		out = append(out, u)
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
