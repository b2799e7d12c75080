package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// BookingConfirmedEvent is the message body published for every booking.
type BookingConfirmedEvent struct {
	ConfirmationCode string `json:"confirmation_code"`
	GuestEmail       string `json:"guest_email"`
	RoomNumber       string `json:"room_number"`
	RoomType         string `json:"room_type"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	Adults           int    `json:"number_of_adults"`
	Children         int    `json:"number_of_children"`
	TotalPrice       string `json:"total_price"`
	ConfirmedAt      string `json:"confirmed_at"`
}

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher emits a BookingConfirmedEvent to a fanout exchange.
type Publisher struct {
	ch       Channel
	exchange string
	closer   func() error
}

// DialPublisher connects to the broker and declares a durable fanout exchange.
func DialPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	p := NewPublisher(ch, exchange)
	p.closer = func() error {
		ch.Close()
		return conn.Close()
	}
	return p, nil
}

// NewPublisher builds a Publisher over an already configured channel.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Notify implements Notifier.
func (p *Publisher) Notify(_ context.Context, c *model.BookingConfirmation) error {
	body, err := json.Marshal(BookingConfirmedEvent{
		ConfirmationCode: c.ConfirmationCode,
		GuestEmail:       c.Guest.Email,
		RoomNumber:       c.RoomNumber,
		RoomType:         c.RoomTypeName,
		CheckIn:          c.CheckInDate.Format(calendar.DateLayout),
		CheckOut:         c.CheckOutDate.Format(calendar.DateLayout),
		Adults:           c.Adults,
		Children:         c.Children,
		TotalPrice:       c.TotalPrice.StringFixed(2),
		ConfirmedAt:      c.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode booking event: %w", err)
	}

	err = p.ch.Publish(p.exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    c.ConfirmationCode,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish booking %s: %w", c.ConfirmationCode, err)
	}
	return nil
}

// Close releases the broker connection when the publisher owns one.
func (p *Publisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
