// Package pricing resolves nightly rates and stay totals for a room type.
//
// A pricing window applies to a night when start_date <= night <= end_date.
// When several windows cover the same night the most recently created one
// wins, with the greater id breaking ties, so the result never depends on
// storage iteration order. Nights covered by no window use the base price.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// Source loads pricing windows for a room type. Implementations may return
// windows outside the stay; they are filtered here.
type Source interface {
	PricingWindows(ctx context.Context, roomTypeID string, stay calendar.Range) ([]model.PricingWindow, error)
}

// Quote is the price of a stay in one room of a type.
type Quote struct {
	Nightly       []model.NightlyRate
	PricePerNight decimal.Decimal // rate of the first night
	Total         decimal.Decimal
}

// NightlyRate returns the rate for one night.
func NightlyRate(rt model.RoomType, windows []model.PricingWindow, night time.Time) decimal.Decimal {
	var best *model.PricingWindow
	for i := range windows {
		w := &windows[i]
		if w.RoomTypeID != "" && w.RoomTypeID != rt.ID {
			continue
		}
		if !calendar.Contains(calendar.Day(w.StartDate), calendar.Day(w.EndDate), night) {
			continue
		}
		if best == nil || newer(w, best) {
			best = w
		}
	}
	if best != nil {
		return best.PricePerNight
	}
	return rt.BasePrice
}

func newer(a, b *model.PricingWindow) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// QuoteStay sums NightlyRate over every night of the stay.
func QuoteStay(rt model.RoomType, windows []model.PricingWindow, stay calendar.Range) Quote {
	q := Quote{Total: decimal.Zero}
	stay.EachNight(func(night time.Time) {
		rate := NightlyRate(rt, windows, night)
		q.Nightly = append(q.Nightly, model.NightlyRate{Date: night, Price: rate})
		q.Total = q.Total.Add(rate)
	})
	if len(q.Nightly) > 0 {
		q.PricePerNight = q.Nightly[0].Price
	}
	return q
}

// Resolver loads windows from a Source and prices stays.
type Resolver struct {
	src Source
}

// NewResolver constructs a Resolver.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// PricePerNight returns the rate of a single night.
func (r *Resolver) PricePerNight(ctx context.Context, rt model.RoomType, night time.Time) (decimal.Decimal, error) {
	night = calendar.Day(night)
	windows, err := r.src.PricingWindows(ctx, rt.ID, calendar.Range{Start: night, End: night.AddDate(0, 0, 1)})
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("load pricing windows: %w", err)
	}
	return NightlyRate(rt, windows, night), nil
}

// TotalPrice returns the price of the whole stay in one room.
func (r *Resolver) TotalPrice(ctx context.Context, rt model.RoomType, stay calendar.Range) (decimal.Decimal, error) {
	q, err := r.Quote(ctx, rt, stay)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return q.Total, nil
}

// Quote prices the stay with a per-night breakdown.
func (r *Resolver) Quote(ctx context.Context, rt model.RoomType, stay calendar.Range) (Quote, error) {
	windows, err := r.src.PricingWindows(ctx, rt.ID, stay)
	if err != nil {
		return Quote{}, fmt.Errorf("load pricing windows: %w", err)
	}
	return QuoteStay(rt, windows, stay), nil
}
