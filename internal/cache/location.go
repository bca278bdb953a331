// Package cache holds the live-location stores backing the location relay.
// Entries are volatile by contract: clients re-push every few seconds, so a
// lost store simply refills itself.
package cache

import (
	"context"

	"dispatchBack/internal/models"
)

// LocationCache keeps the latest reported position per (request, role) key.
// Writes are last-write-wins; reads apply no staleness filtering.
type LocationCache interface {
	Set(ctx context.Context, requestID, role string, loc models.LiveLocation) error
	Get(ctx context.Context, requestID string) (models.RequestLocations, error)
}
