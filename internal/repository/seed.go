package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

// InventoryWriter is implemented by both the Postgres RoomRepository and
// MemoryStore.
type InventoryWriter interface {
	CreateAmenity(ctx context.Context, a *model.Amenity) error
	CreateRoomType(ctx context.Context, rt *model.RoomType) error
	CreateRoom(ctx context.Context, room *model.Room) error
	GetRoomTypeBySlug(ctx context.Context, slug string) (*model.RoomType, error)
}

// Seed loads the demo inventory: three room types, seven rooms. Records
// that already exist are kept as they are, so seeding twice is harmless.
func Seed(ctx context.Context, w InventoryWriter) error {
	wifi := &model.Amenity{Name: "WiFi", Description: "High-speed internet"}
	tv := &model.Amenity{Name: "TV", Description: "Flat screen TV"}
	minibar := &model.Amenity{Name: "Mini Bar", Description: "Stocked mini bar", IsPremium: true}
	ac := &model.Amenity{Name: "Air Conditioning", Description: "Climate control"}
	balcony := &model.Amenity{Name: "Balcony", Description: "Private balcony", IsPremium: true}

	for _, a := range []*model.Amenity{wifi, tv, minibar, ac, balcony} {
		if err := w.CreateAmenity(ctx, a); err != nil {
			return fmt.Errorf("seed amenity %s: %w", a.Name, err)
		}
	}

	standard := &model.RoomType{
		Name:        "Standard Room",
		Description: "Comfortable room with essential amenities",
		BasePrice:   decimal.RequireFromString("100.00"),
		MaxAdults:   2,
		MaxChildren: 1,
		BedType:     model.BedDouble,
		BedCount:    1,
		Size:        250,
		Amenities:   []model.Amenity{*wifi, *tv, *ac},
	}
	deluxe := &model.RoomType{
		Name:        "Deluxe Suite",
		Description: "Spacious suite with premium amenities",
		BasePrice:   decimal.RequireFromString("200.00"),
		MaxAdults:   3,
		MaxChildren: 2,
		BedType:     model.BedKing,
		BedCount:    1,
		Size:        400,
		Amenities:   []model.Amenity{*wifi, *tv, *ac, *minibar, *balcony},
	}
	family := &model.RoomType{
		Name:        "Family Suite",
		Description: "Large suite perfect for families",
		BasePrice:   decimal.RequireFromString("300.00"),
		MaxAdults:   4,
		MaxChildren: 3,
		BedType:     model.BedKing,
		BedCount:    2,
		Size:        600,
		Amenities:   []model.Amenity{*wifi, *tv, *ac, *minibar, *balcony},
	}

	for _, rt := range []*model.RoomType{standard, deluxe, family} {
		rt.Slug = Slugify(rt.Name)
		err := w.CreateRoomType(ctx, rt)
		if errors.Is(err, ErrAlreadyExists) {
			existing, lookupErr := w.GetRoomTypeBySlug(ctx, rt.Slug)
			if lookupErr != nil {
				return fmt.Errorf("seed room type %s: %w", rt.Name, lookupErr)
			}
			*rt = *existing
			continue
		}
		if err != nil {
			return fmt.Errorf("seed room type %s: %w", rt.Name, err)
		}
	}

	rooms := []struct {
		number string
		rt     *model.RoomType
		floor  int
	}{
		{"101", standard, 1},
		{"102", standard, 1},
		{"103", standard, 1},
		{"201", deluxe, 2},
		{"202", deluxe, 2},
		{"301", family, 3},
		{"302", family, 3},
	}
	for _, r := range rooms {
		room := &model.Room{
			RoomNumber:  r.number,
			RoomTypeID:  r.rt.ID,
			FloorNumber: r.floor,
			Status:      model.RoomAvailable,
		}
		if err := w.CreateRoom(ctx, room); err != nil && !errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("seed room %s: %w", r.number, err)
		}
	}
	return nil
}
