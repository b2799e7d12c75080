package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/payment"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/repository"
)

// CreateBooking allocates one room of the requested type, takes payment and
// commits guest, booking and payment together.
//
// An attempt moves through validated, room selected, payment authorized and
// committed. Availability is resolved again here rather than trusted from
// an earlier search. Nothing is written unless payment is approved, and the
// commit itself re-validates the room, so a concurrent allocation that wins
// the race makes this one fail with ErrConflict.
func (s *ReservationService) CreateBooking(ctx context.Context, req model.CreateBookingRequest) (*model.BookingConfirmation, error) {
	// ── Validated ────────────────────────────────────────────────────────
	normalize(&req)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.IsValid() {
		return nil, invalid("payment_method", "unsupported payment method %q", req.PaymentMethod)
	}
	stay, err := parseStay(req.CheckInDate, req.CheckOutDate, s.now(), "check_in_date", "check_out_date")
	if err != nil {
		return nil, err
	}
	if err := validateParty(req.Adults, req.Children, "number_of_adults", "number_of_children"); err != nil {
		return nil, err
	}

	rt, err := s.GetRoomType(ctx, req.RoomTypeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("room_type", "unknown room type %q", req.RoomTypeID)
		}
		return nil, err
	}
	if !rt.Fits(req.Adults, req.Children) {
		return nil, invalid("number_of_adults",
			"%s holds at most %d adults and %d children", rt.Name, rt.MaxAdults, rt.MaxChildren)
	}

	// ── Room selected ────────────────────────────────────────────────────
	rooms, err := s.rooms.AvailableRooms(ctx, rt.ID, stay)
	if err != nil {
		return nil, fmt.Errorf("resolve availability: %w", err)
	}
	if len(rooms) == 0 {
		return nil, ErrNoAvailability
	}
	room := rooms[0]

	quote, err := s.prices.Quote(ctx, *rt, stay)
	if err != nil {
		return nil, fmt.Errorf("price stay: %w", err)
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"room_type": rt.Slug,
		"room":      room.RoomNumber,
		"stay":      stay.String(),
		"total":     quote.Total.StringFixed(2),
	}

	// ── Payment authorized ───────────────────────────────────────────────
	auth, err := s.payments.Authorize(ctx, req.PaymentToken, quote.Total)
	if err != nil {
		return nil, fmt.Errorf("authorize payment: %w", err)
	}
	if !auth.Approved {
		s.log.WithFields(fields).WithField("reason", auth.Reason).Info("payment declined")
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, auth.Reason)
	}

	// ── Committed ────────────────────────────────────────────────────────
	now := s.now().UTC()
	res := newReservation(req, room, quote.PricePerNight, auth, code, now, stay.Start, stay.End)

	for attempt := 1; ; attempt++ {
		err = s.store.CommitReservation(ctx, res)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateConfirmationCode) && attempt < maxCodeAttempts {
			code, err = s.uniqueCode(ctx)
			if err == nil {
				res.Booking.ConfirmationCode = code
				continue
			}
		}

		s.voidPayment(auth, fields)
		switch {
		case errors.Is(err, repository.ErrDuplicateConfirmationCode), errors.Is(err, ErrConfirmationCodeExhausted):
			return nil, ErrConfirmationCodeExhausted
		case errors.Is(err, repository.ErrConflict):
			s.log.WithFields(fields).Warn("room taken by a concurrent booking")
			return nil, ErrConflict
		default:
			return nil, fmt.Errorf("commit reservation: %w", err)
		}
	}

	confirmation := &model.BookingConfirmation{
		ConfirmationCode: res.Booking.ConfirmationCode,
		Guest:            res.Guest,
		RoomNumber:       room.RoomNumber,
		RoomTypeName:     rt.Name,
		CheckInDate:      res.Booking.CheckInDate,
		CheckOutDate:     res.Booking.CheckOutDate,
		Adults:           res.Booking.Adults,
		Children:         res.Booking.Children,
		SpecialRequests:  res.Booking.SpecialRequests,
		PricePerNight:    res.Booking.PricePerNight,
		TotalPrice:       res.Booking.TotalPrice,
		Status:           res.Booking.Status,
		Payments:         []model.Payment{res.Payment},
		CreatedAt:        res.Booking.CreatedAt,
	}
	s.log.WithFields(fields).WithField("confirmation_code", confirmation.ConfirmationCode).Info("booking confirmed")

	s.notifyAsync(*confirmation)
	return confirmation, nil
}

func normalize(req *model.CreateBookingRequest) {
	req.Guest.FirstName = strings.TrimSpace(req.Guest.FirstName)
	req.Guest.LastName = strings.TrimSpace(req.Guest.LastName)
	req.Guest.Email = strings.ToLower(strings.TrimSpace(req.Guest.Email))
	req.Guest.PhoneNumber = strings.TrimSpace(req.Guest.PhoneNumber)
	req.RoomTypeID = strings.TrimSpace(req.RoomTypeID)
	req.PaymentMethod = model.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(req.PaymentMethod))))
	req.SpecialRequests = strings.TrimSpace(req.SpecialRequests)
}

// newReservation assembles the rows a successful allocation writes. Every
// booking gets a fresh guest record.
func newReservation(
	req model.CreateBookingRequest,
	room model.Room,
	pricePerNight decimal.Decimal,
	auth payment.Authorization,
	code string,
	now, checkIn, checkOut time.Time,
) *repository.Reservation {
	guest := model.Guest{
		ID:          uuid.New().String(),
		FirstName:   req.Guest.FirstName,
		LastName:    req.Guest.LastName,
		Email:       req.Guest.Email,
		PhoneNumber: req.Guest.PhoneNumber,
		Address:     req.Guest.Address,
		Country:     req.Guest.Country,
		CreatedAt:   now,
	}
	booking := model.Booking{
		ID:               uuid.New().String(),
		GuestID:          guest.ID,
		RoomID:           room.ID,
		Adults:           req.Adults,
		Children:         req.Children,
		SpecialRequests:  req.SpecialRequests,
		PricePerNight:    pricePerNight,
		TotalPrice:       auth.Amount,
		Status:           model.BookingConfirmed,
		ConfirmationCode: code,
		CheckInDate:      checkIn,
		CheckOutDate:     checkOut,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	completed := now
	pay := model.Payment{
		ID:            uuid.New().String(),
		BookingID:     booking.ID,
		Amount:        auth.Amount,
		Method:        req.PaymentMethod,
		TransactionID: auth.TransactionID,
		Status:        model.PaymentCompleted,
		Gateway:       auth.Gateway,
		CreatedAt:     now,
		CompletedAt:   &completed,
	}
	return &repository.Reservation{Guest: guest, Booking: booking, Payment: pay}
}

// uniqueCode mints a confirmation code no stored booking uses yet. The
// commit still enforces uniqueness; this only keeps collisions rare.
func (s *ReservationService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		taken, err := s.store.ConfirmationCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check confirmation code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrConfirmationCodeExhausted
}

// voidPayment releases an approved authorization whose booking was not
// committed. Failures are logged; there is nothing left to roll back.
func (s *ReservationService) voidPayment(auth payment.Authorization, fields logrus.Fields) {
	voider, ok := s.payments.(payment.Voider)
	if !ok {
		s.log.WithFields(fields).WithField("transaction_id", auth.TransactionID).
			Error("commit failed after payment approval; gateway cannot void")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := voider.Void(ctx, auth); err != nil {
		s.log.WithFields(fields).WithField("transaction_id", auth.TransactionID).WithError(err).
			Error("void payment after failed commit")
		return
	}
	s.log.WithFields(fields).WithField("transaction_id", auth.TransactionID).Info("payment voided")
}

// notifyAsync delivers the confirmation in the background. A failing or
// panicking notifier is logged and never affects the booking.
func (s *ReservationService) notifyAsync(c model.BookingConfirmation) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.WithField("confirmation_code", c.ConfirmationCode).Errorf("notifier panic: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, &c); err != nil {
			s.log.WithField("confirmation_code", c.ConfirmationCode).WithError(err).Warn("booking notification failed")
		}
	}()
}
