package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stocklens/catalog-api/internal/models"
)

// taxonomyTTL bounds how long a resolved name→code mapping is trusted.
// Codes are immutable once assigned, so a generous TTL is safe; the TTL
// only bounds memory for names that stop being used.
const taxonomyTTL = 12 * time.Hour

// TaxonomyCache caches display-name → code resolutions so repeated
// approvals of drafts naming the same category/brand/line skip the
// database lookup. It is strictly read-through: misses and Redis errors
// fall back to the store.
type TaxonomyCache struct {
	redis *RedisClient
}

// NewTaxonomyCache creates a new TaxonomyCache.
func NewTaxonomyCache(redis *RedisClient) *TaxonomyCache {
	return &TaxonomyCache{redis: redis}
}

func (c *TaxonomyCache) key(kind models.TaxonomyKind, name string) string {
	return fmt.Sprintf("taxonomy:%s:%s", kind, name)
}

// GetCode returns the cached code for a display name, or "" on miss.
func (c *TaxonomyCache) GetCode(ctx context.Context, kind models.TaxonomyKind, name string) string {
	if c == nil || c.redis == nil {
		return ""
	}
	code, err := c.redis.Get(ctx, c.key(kind, name))
	if err != nil {
		if !IsNil(err) {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("taxonomy cache read failed")
		}
		return ""
	}
	return code
}

// PutCode stores a resolved name→code mapping. Failures are logged and
// ignored; the cache is an optimization, not a source of truth.
func (c *TaxonomyCache) PutCode(ctx context.Context, kind models.TaxonomyKind, name, code string) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, c.key(kind, name), code, taxonomyTTL); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("taxonomy cache write failed")
	}
}

// Invalidate drops a cached mapping, used when an entry's display name
// is renamed through the taxonomy admin endpoints.
func (c *TaxonomyCache) Invalidate(ctx context.Context, kind models.TaxonomyKind, name string) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, c.key(kind, name)); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("taxonomy cache invalidate failed")
	}
}
