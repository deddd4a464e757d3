package subscriptions

import (
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/patrickmn/go-cache"
)

const planListKey = "plans:all"

// planCache holds the immutable plan catalog for a short TTL. A zero TTL disables it.
type planCache struct {
	store *cache.Cache
}

func newPlanCache(ttl time.Duration) *planCache {
	if ttl <= 0 {
		return &planCache{}
	}
	return &planCache{store: cache.New(ttl, 2*ttl)}
}

func (c *planCache) get() ([]models.SubscriptionPlan, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	raw, ok := c.store.Get(planListKey)
	if !ok {
		return nil, false
	}
	plans, ok := raw.([]models.SubscriptionPlan)
	if !ok {
		return nil, false
	}
	return append([]models.SubscriptionPlan(nil), plans...), true
}

func (c *planCache) set(plans []models.SubscriptionPlan) {
	if c == nil || c.store == nil {
		return
	}
	c.store.SetDefault(planListKey, append([]models.SubscriptionPlan(nil), plans...))
}
