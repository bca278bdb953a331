package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dispatchBack/internal/models"
)

// Entries outlive any realistic polling interval but do not pile up forever
// after a request goes terminal.
const locationTTL = 24 * time.Hour

// RedisLocationCache shares live positions across instances. One hash per
// request, one field per role.
type RedisLocationCache struct {
	rdb *redis.Client
}

func NewRedisLocationCache(rdb *redis.Client) *RedisLocationCache {
	return &RedisLocationCache{rdb: rdb}
}

func locationKey(requestID string) string {
	return fmt.Sprintf("live_location:%s", requestID)
}

func (c *RedisLocationCache) Set(ctx context.Context, requestID, role string, loc models.LiveLocation) error {
	payload, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	key := locationKey(requestID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, role, payload)
	pipe.Expire(ctx, key, locationTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisLocationCache) Get(ctx context.Context, requestID string) (models.RequestLocations, error) {
	var out models.RequestLocations
	fields, err := c.rdb.HGetAll(ctx, locationKey(requestID)).Result()
	if err != nil {
		return out, err
	}
	for role, raw := range fields {
		var loc models.LiveLocation
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			continue
		}
		switch role {
		case models.RoleRequester:
			entry := loc
			out.Requester = &entry
		case models.RoleProvider:
			entry := loc
			out.Provider = &entry
		}
	}
	return out, nil
}
