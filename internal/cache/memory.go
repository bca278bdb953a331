package cache

import (
	"context"
	"sync"

	"dispatchBack/internal/models"
)

// MemoryLocationCache is the default single-instance store. Process restart
// loses all entries, which the relay contract allows.
type MemoryLocationCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]models.LiveLocation
}

func NewMemoryLocationCache() *MemoryLocationCache {
	return &MemoryLocationCache{entries: make(map[string]map[string]models.LiveLocation)}
}

func (c *MemoryLocationCache) Set(_ context.Context, requestID, role string, loc models.LiveLocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	byRole, ok := c.entries[requestID]
	if !ok {
		byRole = make(map[string]models.LiveLocation, 2)
		c.entries[requestID] = byRole
	}
	byRole[role] = loc
	return nil
}

func (c *MemoryLocationCache) Get(_ context.Context, requestID string) (models.RequestLocations, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out models.RequestLocations
	byRole, ok := c.entries[requestID]
	if !ok {
		return out, nil
	}
	if loc, ok := byRole[models.RoleRequester]; ok {
		entry := loc
		out.Requester = &entry
	}
	if loc, ok := byRole[models.RoleProvider]; ok {
		entry := loc
		out.Provider = &entry
	}
	return out, nil
}
