package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

func day(s string) time.Time {
	t, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func stay(t *testing.T, in, out string) calendar.Range {
	t.Helper()
	r, err := calendar.NewRange(day(in), day(out))
	require.NoError(t, err)
	return r
}

// fakeSource returns everything it holds; the resolver does the filtering.
type fakeSource struct {
	rooms     []model.Room
	overrides []model.AvailabilityOverride
	bookings  []model.Booking
	err       error
}

func (f *fakeSource) RoomsByType(_ context.Context, roomTypeID string) ([]model.Room, error) {
	var out []model.Room
	for _, r := range f.rooms {
		if r.RoomTypeID == roomTypeID {
			out = append(out, r)
		}
	}
	return out, f.err
}

func (f *fakeSource) OverridesOverlapping(context.Context, []string, calendar.Range) ([]model.AvailabilityOverride, error) {
	return f.overrides, f.err
}

func (f *fakeSource) ActiveBookingsOverlapping(context.Context, []string, calendar.Range) ([]model.Booking, error) {
	return f.bookings, f.err
}

func TestIsRoomAvailable(t *testing.T) {
	room := model.Room{ID: "r1", RoomNumber: "101", RoomTypeID: "std", Status: model.RoomAvailable}
	s := stay(t, "2026-06-10", "2026-06-12")

	t.Run("free room", func(t *testing.T) {
		assert.True(t, IsRoomAvailable(room, nil, nil, s))
	})

	t.Run("non-available status always loses", func(t *testing.T) {
		for _, status := range []model.RoomStatus{model.RoomOccupied, model.RoomMaintenance, model.RoomOutOfService} {
			r := room
			r.Status = status
			assert.False(t, IsRoomAvailable(r, nil, nil, s), status)
		}
	})

	t.Run("override matching the stay blocks", func(t *testing.T) {
		o := []model.AvailabilityOverride{{RoomID: "r1", StartDate: day("2026-06-10"), EndDate: day("2026-06-12")}}
		assert.False(t, IsRoomAvailable(room, o, nil, s))
	})

	t.Run("override ending on check-in day does not block", func(t *testing.T) {
		o := []model.AvailabilityOverride{{RoomID: "r1", StartDate: day("2026-06-07"), EndDate: day("2026-06-10")}}
		assert.True(t, IsRoomAvailable(room, o, nil, s))
	})

	t.Run("override on another room is ignored", func(t *testing.T) {
		o := []model.AvailabilityOverride{{RoomID: "r2", StartDate: day("2026-06-10"), EndDate: day("2026-06-12")}}
		assert.True(t, IsRoomAvailable(room, o, nil, s))
	})

	t.Run("active booking overlapping blocks", func(t *testing.T) {
		for _, status := range []model.BookingStatus{model.BookingConfirmed, model.BookingCheckedIn} {
			b := []model.Booking{{RoomID: "r1", Status: status, CheckInDate: day("2026-06-11"), CheckOutDate: day("2026-06-14")}}
			assert.False(t, IsRoomAvailable(room, nil, b, s), status)
		}
	})

	t.Run("inactive bookings do not block", func(t *testing.T) {
		for _, status := range []model.BookingStatus{model.BookingPending, model.BookingCancelled, model.BookingCheckedOut, model.BookingNoShow} {
			b := []model.Booking{{RoomID: "r1", Status: status, CheckInDate: day("2026-06-10"), CheckOutDate: day("2026-06-12")}}
			assert.True(t, IsRoomAvailable(room, nil, b, s), status)
		}
	})

	t.Run("guest checking out on check-in day does not block", func(t *testing.T) {
		b := []model.Booking{{RoomID: "r1", Status: model.BookingConfirmed, CheckInDate: day("2026-06-08"), CheckOutDate: day("2026-06-10")}}
		assert.True(t, IsRoomAvailable(room, nil, b, s))
	})
}

func TestResolverAvailableRoomsMatchesSingleRoomPredicate(t *testing.T) {
	src := &fakeSource{
		rooms: []model.Room{
			{ID: "r3", RoomNumber: "103", RoomTypeID: "std", Status: model.RoomAvailable},
			{ID: "r1", RoomNumber: "101", RoomTypeID: "std", Status: model.RoomAvailable},
			{ID: "r2", RoomNumber: "102", RoomTypeID: "std", Status: model.RoomMaintenance},
			{ID: "r4", RoomNumber: "104", RoomTypeID: "std", Status: model.RoomAvailable},
			{ID: "d1", RoomNumber: "201", RoomTypeID: "dlx", Status: model.RoomAvailable},
		},
		overrides: []model.AvailabilityOverride{
			{RoomID: "r4", StartDate: day("2026-06-11"), EndDate: day("2026-06-13")},
		},
		bookings: []model.Booking{
			{RoomID: "r3", Status: model.BookingConfirmed, CheckInDate: day("2026-06-09"), CheckOutDate: day("2026-06-11")},
		},
	}
	s := stay(t, "2026-06-10", "2026-06-12")
	res := NewResolver(src)

	rooms, err := res.AvailableRooms(context.Background(), "std", s)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "101", rooms[0].RoomNumber)

	for _, room := range src.rooms {
		if room.RoomTypeID != "std" {
			continue
		}
		ok, err := res.IsRoomAvailable(context.Background(), room, s)
		require.NoError(t, err)
		want := false
		for _, r := range rooms {
			if r.ID == room.ID {
				want = true
			}
		}
		assert.Equal(t, want, ok, "room %s", room.RoomNumber)
	}
}

func TestResolverOrdersByRoomNumber(t *testing.T) {
	src := &fakeSource{rooms: []model.Room{
		{ID: "c", RoomNumber: "103", RoomTypeID: "std", Status: model.RoomAvailable},
		{ID: "a", RoomNumber: "101", RoomTypeID: "std", Status: model.RoomAvailable},
		{ID: "b", RoomNumber: "102", RoomTypeID: "std", Status: model.RoomAvailable},
	}}
	rooms, err := NewResolver(src).AvailableRooms(context.Background(), "std", stay(t, "2026-06-10", "2026-06-11"))
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, []string{"101", "102", "103"}, []string{rooms[0].RoomNumber, rooms[1].RoomNumber, rooms[2].RoomNumber})
}

func TestSortRoomsIsNumericAware(t *testing.T) {
	rooms := []model.Room{
		{ID: "e", RoomNumber: "101A"},
		{ID: "d", RoomNumber: "100"},
		{ID: "c", RoomNumber: "99"},
		{ID: "b", RoomNumber: "1001"},
		{ID: "a", RoomNumber: "99"},
		{ID: "f", RoomNumber: "B12"},
	}
	SortRooms(rooms)

	got := make([]string, len(rooms))
	for i, r := range rooms {
		got[i] = r.RoomNumber + "/" + r.ID
	}
	assert.Equal(t, []string{"99/a", "99/c", "100/d", "1001/b", "101A/e", "B12/f"}, got)
}

func TestResolverPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{rooms: []model.Room{{ID: "a", RoomTypeID: "std", Status: model.RoomAvailable}}, err: boom}
	_, err := NewResolver(src).AvailableRooms(context.Background(), "std", stay(t, "2026-06-10", "2026-06-11"))
	assert.ErrorIs(t, err, boom)
}
