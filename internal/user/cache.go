package user

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cachedRepo wraps a Repo with a bounded TTL cache keyed by user_id.
// Reads populate the cache, Upsert writes through, flag mutations
// invalidate (they can target a user whose row is being edited by an
// admin while cached for the user's own traffic). Entries are cloned
// on every boundary crossing: callers run concurrently and must never
// mutate a struct the cache still holds.
type cachedRepo struct {
	inner Repo
	cache *expirable.LRU[int64, *Data]
}

func NewCachedRepo(inner Repo, maxSize int, ttl time.Duration) Repo {
	return &cachedRepo{
		inner: inner,
		cache: expirable.NewLRU[int64, *Data](maxSize, nil, ttl),
	}
}

func (c *cachedRepo) Get(ctx context.Context, userID int64) (*Data, error) {
	if d, ok := c.cache.Get(userID); ok {
		return d.Clone(), nil
	}
	d, err := c.inner.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if d != nil {
		c.cache.Add(userID, d.Clone())
	}
	return d, nil
}

// GetByUsername is not cached: username lookups are rare admin commands.
func (c *cachedRepo) GetByUsername(ctx context.Context, userName string) (*Data, error) {
	return c.inner.GetByUsername(ctx, userName)
}

func (c *cachedRepo) Upsert(ctx context.Context, data *Data) error {
	if err := c.inner.Upsert(ctx, data); err != nil {
		return err
	}
	c.cache.Add(data.UserID, data.Clone())
	return nil
}

func (c *cachedRepo) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	if err := c.inner.SetAdmin(ctx, userID, isAdmin); err != nil {
		return err
	}
	c.cache.Remove(userID)
	return nil
}

func (c *cachedRepo) SetWhitelist(ctx context.Context, userID int64, isWhitelisted bool) error {
	if err := c.inner.SetWhitelist(ctx, userID, isWhitelisted); err != nil {
		return err
	}
	c.cache.Remove(userID)
	return nil
}

func (c *cachedRepo) SetBlacklist(ctx context.Context, userID int64, isBlacklisted bool) error {
	if err := c.inner.SetBlacklist(ctx, userID, isBlacklisted); err != nil {
		return err
	}
	c.cache.Remove(userID)
	return nil
}

func (c *cachedRepo) ListIDs(ctx context.Context) ([]int64, error) {
	return c.inner.ListIDs(ctx)
}

func (c *cachedRepo) ListAdminIDs(ctx context.Context) ([]int64, error) {
	return c.inner.ListAdminIDs(ctx)
}

func (c *cachedRepo) Count(ctx context.Context) (int, error) {
	return c.inner.Count(ctx)
}
