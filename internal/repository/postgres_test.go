package repository

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/database"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// postgresStore connects to TEST_DATABASE_URL, applies the schema and
// empties every table. Tests using it are skipped when the variable is unset.
func postgresStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE payments, bookings, guests, availability_overrides,
		pricing_windows, rooms, room_type_amenities, room_types, amenities CASCADE`)
	require.NoError(t, err)

	store := NewStore(pool)
	require.NoError(t, Seed(ctx, store))
	return store
}

func TestPostgresCommitReservation(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	rt, err := s.GetRoomTypeBySlug(ctx, "standard-room")
	require.NoError(t, err)
	assert.Len(t, rt.Amenities, 3)

	rooms, err := s.RoomsByType(ctx, rt.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 3)

	require.NoError(t, s.CommitReservation(ctx, reservation(rooms[0], "PGAA2345", "2026-06-10", "2026-06-12")))

	c, err := s.GetConfirmation(ctx, "PGAA2345")
	require.NoError(t, err)
	assert.Equal(t, "101", c.RoomNumber)
	assert.True(t, c.TotalPrice.Equal(decimal.RequireFromString("200.00")))
	require.Len(t, c.Payments, 1)

	err = s.CommitReservation(ctx, reservation(rooms[0], "PGBB2345", "2026-06-11", "2026-06-13"))
	assert.ErrorIs(t, err, ErrConflict)

	err = s.CommitReservation(ctx, reservation(rooms[1], "PGAA2345", "2026-06-10", "2026-06-12"))
	assert.ErrorIs(t, err, ErrDuplicateConfirmationCode)

	stay, err := calendar.NewRange(day("2026-06-10"), day("2026-06-12"))
	require.NoError(t, err)
	active, err := s.ActiveBookingsOverlapping(ctx, []string{rooms[0].ID, rooms[1].ID}, stay)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = s.GetConfirmation(ctx, "PGBB2345")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresConcurrentCommits(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	rt, err := s.GetRoomTypeBySlug(ctx, "family-suite")
	require.NoError(t, err)
	rooms, err := s.RoomsByType(ctx, rt.ID)
	require.NoError(t, err)

	const writers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := "PGCC" + string(rune('A'+i)) + "234"
			err := s.CommitReservation(ctx, reservation(rooms[0], code, "2026-07-01", "2026-07-05"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				committed++
				return
			}
			assert.ErrorIs(t, err, ErrConflict)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, committed)
}

func TestPostgresPricingWindowOverlapRejected(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	rt, err := s.GetRoomTypeBySlug(ctx, "deluxe-suite")
	require.NoError(t, err)

	require.NoError(t, s.CreatePricingWindow(ctx, &model.PricingWindow{RoomTypeID: rt.ID,
		PricePerNight: decimal.RequireFromString("250.00"), StartDate: day("2026-12-20"), EndDate: day("2026-12-31")}))
	err = s.CreatePricingWindow(ctx, &model.PricingWindow{RoomTypeID: rt.ID,
		PricePerNight: decimal.RequireFromString("220.00"), StartDate: day("2026-12-31"), EndDate: day("2027-01-03")})
	assert.ErrorIs(t, err, ErrOverlappingWindow)
}

func TestPostgresSeedTwice(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, s))

	types, err := s.ListRoomTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 3)
	for _, rt := range types {
		assert.NotEmpty(t, rt.Amenities, rt.Name)
	}
	rt, err := s.GetRoomTypeBySlug(ctx, "standard-room")
	require.NoError(t, err)
	rooms, err := s.RoomsByType(ctx, rt.ID)
	require.NoError(t, err)
	assert.Len(t, rooms, 3)

	err = s.CreateRoom(ctx, &model.Room{RoomNumber: "101", RoomTypeID: rt.ID})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}
