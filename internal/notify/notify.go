// Package notify tells guests and downstream systems about committed
// bookings. Every notifier is best effort: callers log failures and never
// undo a booking because of them.
package notify

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// Notifier delivers a booking confirmation somewhere.
type Notifier interface {
	Notify(ctx context.Context, c *model.BookingConfirmation) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, c *model.BookingConfirmation) error

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, c *model.BookingConfirmation) error {
	return f(ctx, c)
}

// Multi fans a confirmation out to every notifier and joins their errors.
// One failing notifier does not stop the others.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, c *model.BookingConfirmation) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes the confirmation to the application log. It is the default
// notifier when no SMTP server or broker is configured.
type Log struct {
	log *logrus.Logger
}

// NewLog returns a Log notifier.
func NewLog(log *logrus.Logger) *Log {
	return &Log{log: log}
}

// Notify implements Notifier.
func (l *Log) Notify(_ context.Context, c *model.BookingConfirmation) error {
	l.log.WithFields(logrus.Fields{
		"confirmation_code": c.ConfirmationCode,
		"email":             c.Guest.Email,
		"room":              c.RoomNumber,
		"check_in":          c.CheckInDate.Format(calendar.DateLayout),
		"check_out":         c.CheckOutDate.Format(calendar.DateLayout),
		"total":             c.TotalPrice.StringFixed(2),
	}).Info("booking confirmed")
	return nil
}
