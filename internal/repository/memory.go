package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// MemoryStore keeps the whole inventory in process. CommitReservation holds
// the write lock while it re-validates and writes, which gives the same
// all-or-nothing, no-overlap guarantee as the Postgres transaction.
type MemoryStore struct {
	mu sync.RWMutex

	roomTypes map[string]model.RoomType
	rooms     map[string]model.Room
	windows   []model.PricingWindow
	overrides []model.AvailabilityOverride
	guests    map[string]model.Guest
	bookings  map[string]model.Booking
	codes     map[string]string // confirmation code -> booking id
	payments  map[string][]model.Payment
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		roomTypes: make(map[string]model.RoomType),
		rooms:     make(map[string]model.Room),
		guests:    make(map[string]model.Guest),
		bookings:  make(map[string]model.Booking),
		codes:     make(map[string]string),
		payments:  make(map[string][]model.Payment),
	}
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// ListRoomTypes returns all room types ordered by name, then base price.
func (s *MemoryStore) ListRoomTypes(_ context.Context) ([]model.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]model.RoomType, 0, len(s.roomTypes))
	for _, rt := range s.roomTypes {
		types = append(types, rt)
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].Name != types[j].Name {
			return types[i].Name < types[j].Name
		}
		return types[i].BasePrice.LessThan(types[j].BasePrice)
	})
	return types, nil
}

// GetRoomType returns a single room type or ErrNotFound.
func (s *MemoryStore) GetRoomType(_ context.Context, id string) (*model.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, ok := s.roomTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rt, nil
}

// GetRoomTypeBySlug returns a single room type by slug or ErrNotFound.
func (s *MemoryStore) GetRoomTypeBySlug(_ context.Context, slug string) (*model.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rt := range s.roomTypes {
		if rt.Slug == slug {
			return &rt, nil
		}
	}
	return nil, ErrNotFound
}

// RoomsByType returns every room of a type ordered by room number.
func (s *MemoryStore) RoomsByType(_ context.Context, roomTypeID string) ([]model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rooms []model.Room
	for _, room := range s.rooms {
		if room.RoomTypeID == roomTypeID {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return model.RoomNumberLess(rooms[i].RoomNumber, rooms[j].RoomNumber) })
	return rooms, nil
}

// OverridesOverlapping returns the overrides on the given rooms that
// intersect the stay.
func (s *MemoryStore) OverridesOverlapping(_ context.Context, roomIDs []string, stay calendar.Range) ([]model.AvailabilityOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := set(roomIDs)
	var out []model.AvailabilityOverride
	for _, o := range s.overrides {
		if _, ok := want[o.RoomID]; ok && stay.Overlaps(o.StartDate, o.EndDate) {
			out = append(out, o)
		}
	}
	return out, nil
}

// ActiveBookingsOverlapping returns CONFIRMED and CHECKED_IN bookings on the
// given rooms that intersect the stay.
func (s *MemoryStore) ActiveBookingsOverlapping(_ context.Context, roomIDs []string, stay calendar.Range) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := set(roomIDs)
	var out []model.Booking
	for _, b := range s.bookings {
		if _, ok := want[b.RoomID]; ok && b.Status.Holds() && stay.Overlaps(b.CheckInDate, b.CheckOutDate) {
			out = append(out, b)
		}
	}
	return out, nil
}

// PricingWindows returns the windows of a room type that cover at least one
// night of the stay.
func (s *MemoryStore) PricingWindows(_ context.Context, roomTypeID string, stay calendar.Range) ([]model.PricingWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.PricingWindow
	for _, w := range s.windows {
		if w.RoomTypeID == roomTypeID && w.StartDate.Before(stay.End) && !w.EndDate.Before(stay.Start) {
			out = append(out, w)
		}
	}
	return out, nil
}

// ConfirmationCodeExists reports whether a booking already uses code.
func (s *MemoryStore) ConfirmationCodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.codes[code]
	return ok, nil
}

// GetConfirmation loads the confirmation view of a booking by its code.
func (s *MemoryStore) GetConfirmation(_ context.Context, code string) (*model.BookingConfirmation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.codes[code]
	if !ok {
		return nil, ErrNotFound
	}
	b := s.bookings[id]
	room := s.rooms[b.RoomID]
	rt := s.roomTypes[room.RoomTypeID]

	payments := append([]model.Payment{}, s.payments[id]...)
	sort.Slice(payments, func(i, j int) bool { return payments[i].CreatedAt.After(payments[j].CreatedAt) })

	return &model.BookingConfirmation{
		ConfirmationCode: b.ConfirmationCode,
		Guest:            s.guests[b.GuestID],
		RoomNumber:       room.RoomNumber,
		RoomTypeName:     rt.Name,
		CheckInDate:      b.CheckInDate,
		CheckOutDate:     b.CheckOutDate,
		Adults:           b.Adults,
		Children:         b.Children,
		SpecialRequests:  b.SpecialRequests,
		PricePerNight:    b.PricePerNight,
		TotalPrice:       b.TotalPrice,
		Status:           b.Status,
		Payments:         payments,
		CreatedAt:        b.CreatedAt,
	}, nil
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// CommitReservation writes guest, booking and payment atomically. It fails
// with ErrConflict if the room is not bookable for the stay at commit time
// and with ErrDuplicateConfirmationCode if the code is taken.
func (s *MemoryStore) CommitReservation(_ context.Context, res *Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := res.Booking
	room, ok := s.rooms[b.RoomID]
	if !ok {
		return ErrNotFound
	}
	if room.Status != model.RoomAvailable {
		return ErrConflict
	}
	for _, o := range s.overrides {
		if o.RoomID == room.ID && calendar.Overlaps(b.CheckInDate, b.CheckOutDate, o.StartDate, o.EndDate) {
			return ErrConflict
		}
	}
	if b.Status.Holds() {
		for _, other := range s.bookings {
			if other.RoomID == room.ID && other.Status.Holds() &&
				calendar.Overlaps(b.CheckInDate, b.CheckOutDate, other.CheckInDate, other.CheckOutDate) {
				return ErrConflict
			}
		}
	}
	if _, taken := s.codes[b.ConfirmationCode]; taken {
		return ErrDuplicateConfirmationCode
	}

	s.guests[res.Guest.ID] = res.Guest
	s.bookings[b.ID] = b
	s.codes[b.ConfirmationCode] = b.ID
	s.payments[b.ID] = append(s.payments[b.ID], res.Payment)
	return nil
}

// CreateAmenity is a no-op beyond id assignment; amenities live on their
// room types in memory.
func (s *MemoryStore) CreateAmenity(_ context.Context, a *model.Amenity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// CreateRoomType stores a room type. Name and slug are unique.
func (s *MemoryStore) CreateRoomType(_ context.Context, rt *model.RoomType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rt.ID == "" {
		rt.ID = uuid.New().String()
	}
	if rt.Slug == "" {
		rt.Slug = Slugify(rt.Name)
	}
	for _, existing := range s.roomTypes {
		if existing.Name == rt.Name || existing.Slug == rt.Slug {
			return ErrAlreadyExists
		}
	}
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = time.Now().UTC()
	}
	s.roomTypes[rt.ID] = *rt
	return nil
}

// CreateRoom stores a room. Room numbers are unique across the hotel.
func (s *MemoryStore) CreateRoom(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rooms {
		if existing.RoomNumber == room.RoomNumber {
			return ErrAlreadyExists
		}
	}
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.Status == "" {
		room.Status = model.RoomAvailable
	}
	s.rooms[room.ID] = *room
	return nil
}

// SetRoomStatus changes the operational status of a room.
func (s *MemoryStore) SetRoomStatus(_ context.Context, roomID string, status model.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	room.Status = status
	s.rooms[roomID] = room
	return nil
}

// CreatePricingWindow stores a pricing window, rejecting windows that
// overlap another window of the same room type.
func (s *MemoryStore) CreatePricingWindow(_ context.Context, w *model.PricingWindow) error {
	if !w.EndDate.After(w.StartDate) {
		return calendar.ErrEmptyRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.windows {
		// inclusive bounds on both windows
		if other.RoomTypeID == w.RoomTypeID && !other.StartDate.After(w.EndDate) && !other.EndDate.Before(w.StartDate) {
			return ErrOverlappingWindow
		}
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	s.windows = append(s.windows, *w)
	return nil
}

// CreateOverride stores an availability override.
func (s *MemoryStore) CreateOverride(_ context.Context, o *model.AvailabilityOverride) error {
	if !o.EndDate.After(o.StartDate) {
		return calendar.ErrEmptyRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	s.overrides = append(s.overrides, *o)
	return nil
}

// PutBooking stores a booking as-is, without availability checks. It loads
// historical or fixture bookings (cancelled, checked-out, …).
func (s *MemoryStore) PutBooking(_ context.Context, b *model.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	s.bookings[b.ID] = *b
	if b.ConfirmationCode != "" {
		s.codes[b.ConfirmationCode] = b.ID
	}
}

// ActiveBookings returns every CONFIRMED or CHECKED_IN booking on a room.
func (s *MemoryStore) ActiveBookings(roomID string) []model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Booking
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.Status.Holds() {
			out = append(out, b)
		}
	}
	return out
}

// Counts reports how many guests, bookings and payments are stored.
func (s *MemoryStore) Counts() (guests, bookings, payments int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payments {
		payments += len(p)
	}
	return len(s.guests), len(s.bookings), payments
}

func set(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// Slugify lower-cases a name and joins its words with dashes.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
