package usecase

import (
	"context"
	"time"

	deviceDomain "github.com/hdtickets/admission/internal/device/domain"
	"github.com/hdtickets/admission/internal/store"
)

// reputationCacheTTL bounds how long a provider verdict is reused.
const reputationCacheTTL = time.Hour

// NeutralIPReputation treats every address as clean. Used when no external
// reputation feed is configured.
type NeutralIPReputation struct{}

func (NeutralIPReputation) IsMalicious(_ context.Context, _ string) bool {
	return false
}

// NeutralGeolocator reports every location as unknown, which disables the
// location anomaly signal.
type NeutralGeolocator struct{}

func (NeutralGeolocator) Locate(_ context.Context, _ string) *deviceDomain.GeoPoint {
	return nil
}

// CachedIPReputation caches an inner provider's verdicts in the shared store
// so repeated lookups for the same address within the TTL hit the cache.
// Cache failures fall through to the provider.
type CachedIPReputation struct {
	inner IPReputation
	store store.Store
}

// IsMalicious returns the cached verdict for the address, consulting the
// inner provider on a miss.
func (c *CachedIPReputation) IsMalicious(ctx context.Context, ip string) bool {
	key := "ip_reputation:" + ip

	cached, found, err := c.store.Get(ctx, key)
	if err == nil && found {
		return cached == "malicious"
	}

	malicious := c.inner.IsMalicious(ctx, ip)
	verdict := "clean"
	if malicious {
		verdict = "malicious"
	}
	_ = c.store.Put(ctx, key, verdict, reputationCacheTTL)

	return malicious
}

// NewCachedIPReputation wraps a reputation provider with store-backed caching.
func NewCachedIPReputation(inner IPReputation, s store.Store) *CachedIPReputation {
	return &CachedIPReputation{inner: inner, store: s}
}
