package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"dispatchBack/internal/cache"
	"dispatchBack/internal/lifecycle"
	"dispatchBack/internal/models"
)

// LocationService relays live positions between the two parties of a
// request. Entries are keyed by (request, role) and overwritten on every
// push. Any caller who knows a request id may write either role's position;
// the relay is a trusted surface between the two participants.
type LocationService struct {
	Cache       cache.LocationCache
	RequestRepo RequestStore
}

func (s *LocationService) Push(ctx context.Context, requestID, role string, lat, lng float64) error {
	if role != models.RoleRequester && role != models.RoleProvider {
		return fmt.Errorf("%w: unknown role %q", models.ErrValidation, role)
	}
	if !validCoordinate(lat, 90) || !validCoordinate(lng, 180) {
		return fmt.Errorf("%w: coordinates out of range", models.ErrValidation)
	}

	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if lifecycle.IsTerminal(req.Status) {
		return models.ErrInvalidTransition
	}

	return s.Cache.Set(ctx, requestID, role, models.LiveLocation{
		Lat:       lat,
		Lng:       lng,
		UpdatedAt: time.Now(),
	})
}

// Locations returns both entries for a request, either possibly nil. No
// freshness filtering is applied; callers judge staleness by updated_at.
func (s *LocationService) Locations(ctx context.Context, requestID string) (models.RequestLocations, error) {
	return s.Cache.Get(ctx, requestID)
}

func validCoordinate(v, bound float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= bound
}
