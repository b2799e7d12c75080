package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// BookingRepository handles persistence for guests, bookings and payments.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// activeStatuses is model.ActiveBookingStatuses as plain strings for ANY($n).
func activeStatuses() []string {
	out := make([]string, len(model.ActiveBookingStatuses))
	for i, s := range model.ActiveBookingStatuses {
		out[i] = string(s)
	}
	return out
}

const bookingColumns = `id, guest_id, room_id, number_of_adults, number_of_children, special_requests,
	price_per_night, total_price, status, confirmation_code, check_in_date, check_out_date,
	created_at, updated_at`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.GuestID, &b.RoomID, &b.Adults, &b.Children, &b.SpecialRequests,
		&b.PricePerNight, &b.TotalPrice, &b.Status, &b.ConfirmationCode, &b.CheckInDate, &b.CheckOutDate,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// ActiveBookingsOverlapping returns CONFIRMED and CHECKED_IN bookings on the
// given rooms that intersect the stay.
func (r *BookingRepository) ActiveBookingsOverlapping(ctx context.Context, roomIDs []string, stay calendar.Range) ([]model.Booking, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	ids, err := uuids(roomIDs)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE room_id = ANY($1)
		   AND status = ANY($2)
		   AND check_in_date < $4
		   AND check_out_date > $3`,
		ids, activeStatuses(), stay.Start, stay.End,
	)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// ConfirmationCodeExists reports whether a booking already uses code.
func (r *BookingRepository) ConfirmationCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE confirmation_code = $1)`,
		code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check confirmation code: %w", err)
	}
	return exists, nil
}

// CommitReservation writes guest, booking and payment in one transaction.
//
// The room row is locked with SELECT … FOR UPDATE, so concurrent commits for
// the same room queue behind each other; each one re-validates the room
// status, its overrides and its active bookings after acquiring the lock.
// The bookings_no_overlap exclusion constraint is the structural backstop:
// a writer that slips past the re-check is rejected with ErrConflict rather
// than silently double-booking. A taken confirmation code surfaces as
// ErrDuplicateConfirmationCode so the caller can mint a new one.
func (r *BookingRepository) CommitReservation(ctx context.Context, res *Reservation) (err error) {
	b := &res.Booking

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// ── Step 1: lock the room. ────────────────────────────────────────────
	var status model.RoomStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM rooms WHERE id = $1 FOR UPDATE`,
		b.RoomID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock room row: %w", err)
	}
	if status != model.RoomAvailable {
		return ErrConflict
	}

	// ── Step 2: re-validate overrides and active bookings under the lock. ─
	var blocked bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM availability_overrides
		     WHERE room_id = $1 AND start_date < $3 AND end_date > $2
		 ) OR EXISTS (
		     SELECT 1 FROM bookings
		     WHERE room_id = $1 AND status = ANY($4)
		       AND check_in_date < $3 AND check_out_date > $2
		 )`,
		b.RoomID, b.CheckInDate, b.CheckOutDate, activeStatuses(),
	).Scan(&blocked)
	if err != nil {
		return fmt.Errorf("recheck availability: %w", err)
	}
	if blocked {
		return ErrConflict
	}

	// ── Step 3: guest. ────────────────────────────────────────────────────
	g := res.Guest
	_, err = tx.Exec(ctx,
		`INSERT INTO guests (id, first_name, last_name, email, phone_number, address, country, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.FirstName, g.LastName, g.Email, g.PhoneNumber, g.Address, g.Country, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert guest: %w", err)
	}

	// ── Step 4: booking. ──────────────────────────────────────────────────
	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		b.ID, b.GuestID, b.RoomID, b.Adults, b.Children, b.SpecialRequests,
		b.PricePerNight, b.TotalPrice, b.Status, b.ConfirmationCode, b.CheckInDate, b.CheckOutDate,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return translate(err, "insert booking")
	}

	// ── Step 5: payment. ──────────────────────────────────────────────────
	p := res.Payment
	_, err = tx.Exec(ctx,
		`INSERT INTO payments (id, booking_id, amount, payment_method, transaction_id, status,
		                       payment_gateway, notes, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.BookingID, p.Amount, p.Method, nullIfEmpty(p.TransactionID), p.Status,
		p.Gateway, p.Notes, p.CreatedAt, p.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	// ── Step 6: commit. The exclusion constraint is checked here at the latest.
	if err = tx.Commit(ctx); err != nil {
		return translate(err, "commit transaction")
	}
	return nil
}

// GetConfirmation loads the confirmation view of a booking by its code.
func (r *BookingRepository) GetConfirmation(ctx context.Context, code string) (*model.BookingConfirmation, error) {
	var (
		c       model.BookingConfirmation
		g       = &c.Guest
		booking string
	)
	err := r.db.QueryRow(ctx,
		`SELECT b.id, b.confirmation_code, rm.room_number, rt.name,
		        b.check_in_date, b.check_out_date, b.number_of_adults, b.number_of_children,
		        b.special_requests, b.price_per_night, b.total_price, b.status, b.created_at,
		        g.id, g.first_name, g.last_name, g.email, g.phone_number, g.address, g.country, g.created_at
		 FROM bookings b
		 JOIN guests g ON g.id = b.guest_id
		 JOIN rooms rm ON rm.id = b.room_id
		 JOIN room_types rt ON rt.id = rm.room_type_id
		 WHERE b.confirmation_code = $1`,
		code,
	).Scan(&booking, &c.ConfirmationCode, &c.RoomNumber, &c.RoomTypeName,
		&c.CheckInDate, &c.CheckOutDate, &c.Adults, &c.Children,
		&c.SpecialRequests, &c.PricePerNight, &c.TotalPrice, &c.Status, &c.CreatedAt,
		&g.ID, &g.FirstName, &g.LastName, &g.Email, &g.PhoneNumber, &g.Address, &g.Country, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, booking_id, amount, payment_method, COALESCE(transaction_id, ''), status,
		        payment_gateway, notes, created_at, completed_at
		 FROM payments
		 WHERE booking_id = $1
		 ORDER BY created_at DESC`,
		booking,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	c.Payments = []model.Payment{}
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.TransactionID, &p.Status,
			&p.Gateway, &p.Notes, &p.CreatedAt, &p.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		c.Payments = append(c.Payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}
