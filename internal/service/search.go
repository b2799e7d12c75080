package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/planner"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/pricing"
)

// SearchAvailability lists the room types that can hold the whole party for
// the stay. When none can, it returns ranked multi-room plans instead.
//
// Room types are resolved concurrently; every lookup is read-only.
func (s *ReservationService) SearchAvailability(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	stay, err := parseStay(req.CheckInDate, req.CheckOutDate, s.now(), "check_in", "check_out")
	if err != nil {
		return nil, err
	}
	if err := validateParty(req.Adults, req.Children, "adults", "children"); err != nil {
		return nil, err
	}

	types, err := s.store.ListRoomTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list room types: %w", err)
	}

	candidates := make([]planner.Candidate, len(types))
	quotes := make([]pricing.Quote, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, rt := range types {
		i, rt := i, rt
		g.Go(func() error {
			rooms, err := s.rooms.AvailableRooms(gctx, rt.ID, stay)
			if err != nil {
				return fmt.Errorf("room type %s: %w", rt.Name, err)
			}
			candidates[i] = planner.Candidate{RoomType: rt, Available: len(rooms)}
			if len(rooms) == 0 {
				return nil
			}
			q, err := s.prices.Quote(gctx, rt, stay)
			if err != nil {
				return fmt.Errorf("room type %s: %w", rt.Name, err)
			}
			quotes[i] = q
			candidates[i].StayPrice = q.Total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search availability: %w", err)
	}

	result := &model.SearchResult{
		CheckInDate:       stay.Start,
		CheckOutDate:      stay.End,
		Nights:            stay.Nights(),
		Adults:            req.Adults,
		Children:          req.Children,
		MatchingRoomTypes: []model.RoomTypeMatch{},
	}
	for i, c := range candidates {
		if c.Available == 0 || !c.RoomType.Fits(req.Adults, req.Children) {
			continue
		}
		result.MatchingRoomTypes = append(result.MatchingRoomTypes, model.RoomTypeMatch{
			RoomType:       c.RoomType,
			AvailableRooms: c.Available,
			PricePerNight:  quotes[i].PricePerNight,
			TotalPrice:     quotes[i].Total,
			Nightly:        quotes[i].Nightly,
		})
	}
	if len(result.MatchingRoomTypes) > 0 {
		return result, nil
	}

	plan := planner.Generate(req.Adults, req.Children, candidates, s.planOptions)
	if plan.Plans.BudgetFriendly == nil {
		plan.Plans.BudgetFriendly = []model.BookingPlan{}
	}
	if plan.Plans.Convenience == nil {
		plan.Plans.Convenience = []model.BookingPlan{}
	}
	result.Plans = &plan.Plans

	entry := s.log.WithFields(logrus.Fields{
		"stay":      stay.String(),
		"adults":    req.Adults,
		"children":  req.Children,
		"sequences": plan.Sequences,
		"feasible":  plan.Feasible,
	})
	if plan.Truncated {
		entry.Warn("plan search hit its expansion budget, plans may be incomplete")
	} else {
		entry.Debug("no single room type fits party, generated plans")
	}
	return result, nil
}
