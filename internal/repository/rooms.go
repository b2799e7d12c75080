package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// RoomRepository handles persistence for the room inventory: room types,
// rooms, pricing windows and availability overrides.
type RoomRepository struct {
	db *pgxpool.Pool
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomTypeColumns = `id, name, slug, description, base_price, max_adults, max_children,
	bed_type, bed_count, size, created_at`

func scanRoomType(row pgx.Row) (model.RoomType, error) {
	var rt model.RoomType
	err := row.Scan(&rt.ID, &rt.Name, &rt.Slug, &rt.Description, &rt.BasePrice,
		&rt.MaxAdults, &rt.MaxChildren, &rt.BedType, &rt.BedCount, &rt.Size, &rt.CreatedAt)
	return rt, err
}

// ListRoomTypes returns all room types ordered by name, then base price.
func (r *RoomRepository) ListRoomTypes(ctx context.Context) ([]model.RoomType, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+roomTypeColumns+`
		 FROM room_types
		 ORDER BY name, base_price`,
	)
	if err != nil {
		return nil, fmt.Errorf("list room types: %w", err)
	}
	defer rows.Close()

	var types []model.RoomType
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room type: %w", err)
		}
		types = append(types, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachAmenities(ctx, types); err != nil {
		return nil, err
	}
	return types, nil
}

// GetRoomType returns a single room type or ErrNotFound.
func (r *RoomRepository) GetRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.getRoomType(ctx, `SELECT `+roomTypeColumns+` FROM room_types WHERE id = $1`, id)
}

// GetRoomTypeBySlug returns a single room type by slug or ErrNotFound.
func (r *RoomRepository) GetRoomTypeBySlug(ctx context.Context, slug string) (*model.RoomType, error) {
	return r.getRoomType(ctx, `SELECT `+roomTypeColumns+` FROM room_types WHERE slug = $1`, slug)
}

func (r *RoomRepository) getRoomType(ctx context.Context, query string, arg string) (*model.RoomType, error) {
	rt, err := scanRoomType(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room type: %w", err)
	}
	types := []model.RoomType{rt}
	if err := r.attachAmenities(ctx, types); err != nil {
		return nil, err
	}
	return &types[0], nil
}

func (r *RoomRepository) attachAmenities(ctx context.Context, types []model.RoomType) error {
	if len(types) == 0 {
		return nil
	}
	ids := make([]string, len(types))
	for i, rt := range types {
		ids[i] = rt.ID
	}
	typeIDs, err := uuids(ids)
	if err != nil {
		return err
	}

	rows, err := r.db.Query(ctx,
		`SELECT rta.room_type_id, a.id, a.name, a.description, a.is_premium
		 FROM room_type_amenities rta
		 JOIN amenities a ON a.id = rta.amenity_id
		 WHERE rta.room_type_id = ANY($1)
		 ORDER BY a.name`,
		typeIDs,
	)
	if err != nil {
		return fmt.Errorf("list amenities: %w", err)
	}
	defer rows.Close()

	byType := make(map[string][]model.Amenity)
	for rows.Next() {
		var typeID string
		var a model.Amenity
		if err := rows.Scan(&typeID, &a.ID, &a.Name, &a.Description, &a.IsPremium); err != nil {
			return fmt.Errorf("scan amenity: %w", err)
		}
		byType[typeID] = append(byType[typeID], a)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range types {
		types[i].Amenities = byType[types[i].ID]
	}
	return nil
}

// RoomsByType returns every room of a type ordered by room number.
func (r *RoomRepository) RoomsByType(ctx context.Context, roomTypeID string) ([]model.Room, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, room_number, room_type_id, floor_number, status, notes
		 FROM rooms
		 WHERE room_type_id = $1
		 ORDER BY room_number`,
		roomTypeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.RoomNumber, &room.RoomTypeID, &room.FloorNumber, &room.Status, &room.Notes); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	// Text ordering puts "100" before "99".
	sort.SliceStable(rooms, func(i, j int) bool { return model.RoomNumberLess(rooms[i].RoomNumber, rooms[j].RoomNumber) })
	return rooms, nil
}

// OverridesOverlapping returns the overrides on the given rooms that
// intersect the stay.
func (r *RoomRepository) OverridesOverlapping(ctx context.Context, roomIDs []string, stay calendar.Range) ([]model.AvailabilityOverride, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	ids, err := uuids(roomIDs)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, room_id, start_date, end_date, reason, note
		 FROM availability_overrides
		 WHERE room_id = ANY($1)
		   AND start_date < $3
		   AND end_date > $2
		 ORDER BY start_date`,
		ids, stay.Start, stay.End,
	)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var overrides []model.AvailabilityOverride
	for rows.Next() {
		var o model.AvailabilityOverride
		if err := rows.Scan(&o.ID, &o.RoomID, &o.StartDate, &o.EndDate, &o.Reason, &o.Note); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// PricingWindows returns the windows of a room type that cover at least one
// night of the stay.
func (r *RoomRepository) PricingWindows(ctx context.Context, roomTypeID string, stay calendar.Range) ([]model.PricingWindow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, room_type_id, price_per_night, reason, start_date, end_date, created_at
		 FROM pricing_windows
		 WHERE room_type_id = $1
		   AND start_date < $3
		   AND end_date >= $2
		 ORDER BY start_date`,
		roomTypeID, stay.Start, stay.End,
	)
	if err != nil {
		return nil, fmt.Errorf("list pricing windows: %w", err)
	}
	defer rows.Close()

	var windows []model.PricingWindow
	for rows.Next() {
		var w model.PricingWindow
		if err := rows.Scan(&w.ID, &w.RoomTypeID, &w.PricePerNight, &w.Reason, &w.StartDate, &w.EndDate, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pricing window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// ─── Inventory administration (seeding) ──────────────────────────────────────

// CreateAmenity inserts an amenity, generating its id when empty. An
// amenity with the same name is reused and its id copied into a.
func (r *RoomRepository) CreateAmenity(ctx context.Context, a *model.Amenity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO amenities (id, name, description, is_premium) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		a.ID, a.Name, a.Description, a.IsPremium,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert amenity: %w", err)
	}
	return nil
}

// CreateRoomType inserts a room type and links its amenities in one
// transaction. A taken name or slug is reported as ErrAlreadyExists.
func (r *RoomRepository) CreateRoomType(ctx context.Context, rt *model.RoomType) (err error) {
	if rt.ID == "" {
		rt.ID = uuid.New().String()
	}
	if rt.Slug == "" {
		rt.Slug = Slugify(rt.Name)
	}
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO room_types (id, name, slug, description, base_price, max_adults, max_children,
		                         bed_type, bed_count, size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rt.ID, rt.Name, rt.Slug, rt.Description, rt.BasePrice, rt.MaxAdults, rt.MaxChildren,
		rt.BedType, rt.BedCount, rt.Size, rt.CreatedAt,
	)
	if err != nil {
		return translate(err, "insert room type")
	}
	for _, a := range rt.Amenities {
		_, err = tx.Exec(ctx,
			`INSERT INTO room_type_amenities (room_type_id, amenity_id) VALUES ($1, $2)`,
			rt.ID, a.ID,
		)
		if err != nil {
			return fmt.Errorf("link amenity %s: %w", a.Name, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateRoom inserts a room. A taken room number is reported as
// ErrAlreadyExists.
func (r *RoomRepository) CreateRoom(ctx context.Context, room *model.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.Status == "" {
		room.Status = model.RoomAvailable
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO rooms (id, room_number, room_type_id, floor_number, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		room.ID, room.RoomNumber, room.RoomTypeID, room.FloorNumber, room.Status, room.Notes,
	)
	if err != nil {
		return translate(err, "insert room")
	}
	return nil
}

// CreatePricingWindow inserts a pricing window. Overlapping windows for the
// same room type are rejected with ErrOverlappingWindow.
func (r *RoomRepository) CreatePricingWindow(ctx context.Context, w *model.PricingWindow) error {
	if !w.EndDate.After(w.StartDate) {
		return calendar.ErrEmptyRange
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO pricing_windows (id, room_type_id, price_per_night, reason, start_date, end_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.RoomTypeID, w.PricePerNight, w.Reason, w.StartDate, w.EndDate, w.CreatedAt,
	)
	if err != nil {
		return translate(err, "insert pricing window")
	}
	return nil
}

// CreateOverride inserts an availability override.
func (r *RoomRepository) CreateOverride(ctx context.Context, o *model.AvailabilityOverride) error {
	if !o.EndDate.After(o.StartDate) {
		return calendar.ErrEmptyRange
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO availability_overrides (id, room_id, start_date, end_date, reason, note)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.RoomID, o.StartDate, o.EndDate, o.Reason, o.Note,
	)
	if err != nil {
		return fmt.Errorf("insert override: %w", err)
	}
	return nil
}
