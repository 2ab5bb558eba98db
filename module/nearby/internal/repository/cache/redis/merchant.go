package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/cache"
)

var _ cache.MerchantCache = (*MerchantCache)(nil)

const keyPrefix = "merchants:area"

type client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

type MerchantCache struct {
	client client
	ttl    time.Duration
}

func NewMerchantCache(c *goredis.Client, ttl time.Duration) *MerchantCache {
	return &MerchantCache{client: c, ttl: ttl}
}

func (c *MerchantCache) Get(ctx context.Context, area domain.Area) ([]domain.Merchant, bool, error) {
	raw, err := c.client.Get(ctx, areaKey(area)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var merchants []domain.Merchant
	if err := json.Unmarshal(raw, &merchants); err != nil {
		return nil, false, fmt.Errorf("decode cached merchants: %w", err)
	}
	return merchants, true, nil
}

func (c *MerchantCache) Set(ctx context.Context, area domain.Area, merchants []domain.Merchant) error {
	if merchants == nil {
		merchants = []domain.Merchant{}
	}
	body, err := json.Marshal(merchants)
	if err != nil {
		return fmt.Errorf("encode merchants: %w", err)
	}
	if err := c.client.Set(ctx, areaKey(area), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// areaKey rounds the center to ~11m so nearby session openings share an entry.
func areaKey(area domain.Area) string {
	return fmt.Sprintf("%s:%.4f:%.4f:%.0f", keyPrefix, area.Center.Lat, area.Center.Lon, area.RadiusMeters)
}
