package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/salonworks/booking-api/internal/models"
)

const couponTTL = 5 * time.Minute

// CouponCache is a read-through cache of coupons keyed by code. A nil
// cache is valid and disables caching, so callers never branch on it.
type CouponCache struct {
	client *redis.Client
}

func NewCouponCache(client *redis.Client) *CouponCache {
	return &CouponCache{client: client}
}

func key(code string) string {
	return "coupon:code:" + code
}

// Get returns the cached coupon for a code, or nil on miss or error.
// Cache failures are never surfaced; the caller falls back to the DB.
func (c *CouponCache) Get(ctx context.Context, code string) *models.Coupon {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := c.client.Get(ctx, key(code)).Bytes()
	if err != nil {
		return nil
	}

	var coupon models.Coupon
	if err := json.Unmarshal(raw, &coupon); err != nil {
		return nil
	}
	return &coupon
}

func (c *CouponCache) Set(ctx context.Context, coupon *models.Coupon) {
	if c == nil || c.client == nil || coupon == nil {
		return
	}

	raw, err := json.Marshal(coupon)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(coupon.Code), raw, couponTTL)
}

// Invalidate drops a code after any coupon mutation.
func (c *CouponCache) Invalidate(ctx context.Context, code string) {
	if c == nil || c.client == nil || code == "" {
		return
	}
	c.client.Del(ctx, key(code))
}
