package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const currentPercentageKey = "rollout:current_percentage"

// RolloutCacheRepository keeps the current rollout percentage close to the
// bucketer. Entries expire after the configured TTL and are invalidated on
// every phase transition.
type RolloutCacheRepository struct {
	cache *cache.Cache
}

func NewRolloutCacheRepository(ttl time.Duration) *RolloutCacheRepository {
	c := cache.New(ttl, 2*ttl)
	return &RolloutCacheRepository{
		cache: c,
	}
}

func (r *RolloutCacheRepository) SavePercentage(pct int) {
	r.cache.Set(currentPercentageKey, pct, cache.DefaultExpiration)
}

func (r *RolloutCacheRepository) GetPercentage() (int, bool) {
	if x, found := r.cache.Get(currentPercentageKey); found {
		return x.(int), true
	}
	return 0, false
}

func (r *RolloutCacheRepository) Invalidate() {
	r.cache.Delete(currentPercentageKey)
}
