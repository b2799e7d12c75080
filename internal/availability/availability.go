// Package availability decides which rooms can be booked for a stay.
//
// A room is bookable for [checkIn, checkOut) when its status is AVAILABLE,
// no availability override overlaps the stay and no CONFIRMED or CHECKED_IN
// booking on it overlaps the stay. AvailableRooms is defined as this
// predicate applied room by room, so the batched path can never disagree
// with the single-room path.
package availability

import (
	"context"
	"fmt"
	"sort"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// Source is the read side of the inventory needed to resolve availability.
// Filtering by range is an optimisation; the resolver re-applies the overlap
// predicate to whatever it is given.
type Source interface {
	RoomsByType(ctx context.Context, roomTypeID string) ([]model.Room, error)
	OverridesOverlapping(ctx context.Context, roomIDs []string, stay calendar.Range) ([]model.AvailabilityOverride, error)
	ActiveBookingsOverlapping(ctx context.Context, roomIDs []string, stay calendar.Range) ([]model.Booking, error)
}

// IsRoomAvailable is the single-room predicate. overrides and bookings may
// include entries for other rooms; they are ignored.
func IsRoomAvailable(room model.Room, overrides []model.AvailabilityOverride, bookings []model.Booking, stay calendar.Range) bool {
	if room.Status != model.RoomAvailable {
		return false
	}
	for _, o := range overrides {
		if o.RoomID == room.ID && stay.Overlaps(o.StartDate, o.EndDate) {
			return false
		}
	}
	for _, b := range bookings {
		if b.RoomID == room.ID && b.Status.Holds() && stay.Overlaps(b.CheckInDate, b.CheckOutDate) {
			return false
		}
	}
	return true
}

// FilterAvailable returns the rooms for which IsRoomAvailable holds, ordered
// by room number.
func FilterAvailable(rooms []model.Room, overrides []model.AvailabilityOverride, bookings []model.Booking, stay calendar.Range) []model.Room {
	var out []model.Room
	for _, room := range rooms {
		if IsRoomAvailable(room, overrides, bookings, stay) {
			out = append(out, room)
		}
	}
	SortRooms(out)
	return out
}

// SortRooms orders rooms by room number, numerically where the number is
// numeric, then id. This is the allocator's stable selection order.
func SortRooms(rooms []model.Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].RoomNumber != rooms[j].RoomNumber {
			return model.RoomNumberLess(rooms[i].RoomNumber, rooms[j].RoomNumber)
		}
		return rooms[i].ID < rooms[j].ID
	})
}

// Resolver loads inventory from a Source and applies the predicate.
type Resolver struct {
	src Source
}

// NewResolver constructs a Resolver.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// IsRoomAvailable loads the override and booking state of one room and
// evaluates it for the stay.
func (r *Resolver) IsRoomAvailable(ctx context.Context, room model.Room, stay calendar.Range) (bool, error) {
	if room.Status != model.RoomAvailable {
		return false, nil
	}
	ids := []string{room.ID}
	overrides, err := r.src.OverridesOverlapping(ctx, ids, stay)
	if err != nil {
		return false, fmt.Errorf("load overrides: %w", err)
	}
	bookings, err := r.src.ActiveBookingsOverlapping(ctx, ids, stay)
	if err != nil {
		return false, fmt.Errorf("load bookings: %w", err)
	}
	return IsRoomAvailable(room, overrides, bookings, stay), nil
}

// AvailableRooms returns every room of the type that is bookable for the
// stay, ordered by room number.
func (r *Resolver) AvailableRooms(ctx context.Context, roomTypeID string, stay calendar.Range) ([]model.Room, error) {
	rooms, err := r.src.RoomsByType(ctx, roomTypeID)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}

	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		if room.Status == model.RoomAvailable {
			ids = append(ids, room.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	overrides, err := r.src.OverridesOverlapping(ctx, ids, stay)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	bookings, err := r.src.ActiveBookingsOverlapping(ctx, ids, stay)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return FilterAvailable(rooms, overrides, bookings, stay), nil
}
