// Package cache provides read-through caching for backend listings.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"autogest/internal/domain/session"
	"autogest/internal/infrastructure/backend"
	"autogest/internal/metrics"
	"autogest/pkg/logger"
)

// Catalog is the backend listing surface the cache sits in front of.
type Catalog interface {
	ListVehicles(ctx context.Context) ([]backend.Vehicle, error)
	ListReservations(ctx context.Context) ([]backend.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]backend.Reservation, error)
}

// CatalogCache caches the vehicle listing for a short TTL. Entries belong to
// the session token they were fetched with; a different token (or no session)
// never sees them. Reservation listings pass straight through.
type CatalogCache struct {
	Catalog

	store session.Store
	ttl   time.Duration
	now   func() time.Time

	flight singleflight.Group

	mu       sync.RWMutex
	token    string
	vehicles []backend.Vehicle
	fetched  time.Time
}

// NewCatalogCache wraps src. A non-positive ttl disables caching.
func NewCatalogCache(src Catalog, store session.Store, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		Catalog: src,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
	}
}

// ListVehicles returns the cached listing when it is fresh and was fetched
// under the current session token, otherwise it asks the backend.
func (c *CatalogCache) ListVehicles(ctx context.Context) ([]backend.Vehicle, error) {
	token := c.currentToken()
	if c.ttl <= 0 || token == "" {
		return c.Catalog.ListVehicles(ctx)
	}

	if vehicles, ok := c.lookup(token); ok {
		metrics.RecordCacheLookup(true)
		return vehicles, nil
	}
	metrics.RecordCacheLookup(false)

	v, err, _ := c.flight.Do(token, func() (any, error) {
		vehicles, err := c.Catalog.ListVehicles(ctx)
		if err != nil {
			return nil, err
		}
		c.fill(token, vehicles)
		return vehicles, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]backend.Vehicle)), nil
}

// Invalidate drops any cached listing.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	had := c.vehicles != nil
	c.token = ""
	c.vehicles = nil
	c.fetched = time.Time{}
	c.mu.Unlock()

	if had {
		logger.Debug(ctx, "catalog cache invalidated")
	}
}

func (c *CatalogCache) lookup(token string) ([]backend.Vehicle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.vehicles == nil || c.token != token || c.now().Sub(c.fetched) >= c.ttl {
		return nil, false
	}
	return slices.Clone(c.vehicles), true
}

// fill stores a listing only if the session that requested it is still current.
func (c *CatalogCache) fill(token string, vehicles []backend.Vehicle) {
	if c.currentToken() != token {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.vehicles = slices.Clone(vehicles)
	if c.vehicles == nil {
		c.vehicles = []backend.Vehicle{}
	}
	c.fetched = c.now()
}

func (c *CatalogCache) currentToken() string {
	if s := c.store.Current(); s != nil {
		return s.Token
	}
	return ""
}
