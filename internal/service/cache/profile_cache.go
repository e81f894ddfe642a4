package cache

import (
	"context"
	"errors"
	"time"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
	pkgcache "GigCredit/pkg/cache"
	applogger "GigCredit/pkg/logger"
)

const defaultProfileTTL = 10 * time.Minute

// ProfileCache is a cache-aside layer for repaired credit profiles. Backend
// failures are logged and reported as misses.
type ProfileCache struct {
	svc pkgcache.Service
	ttl time.Duration
	log *applogger.Logger
}

var _ domrepo.ProfileCache = (*ProfileCache)(nil)

func NewProfileCache(svc pkgcache.Service, ttl time.Duration, log *applogger.Logger) *ProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	if log == nil {
		log = applogger.NewNop()
	}
	return &ProfileCache{svc: svc, ttl: ttl, log: log}
}

func profileKey(userID string) string {
	return pkgcache.Key("profile", userID)
}

func (c *ProfileCache) Get(ctx context.Context, userID string) (*models.CreditProfile, bool) {
	var p models.CreditProfile
	err := c.svc.Get(ctx, profileKey(userID), &p)
	if err != nil {
		if !errors.Is(err, pkgcache.ErrCacheMiss) {
			c.log.Warn("profile cache get", applogger.String("user_id", userID), applogger.Error(err))
		}
		return nil, false
	}
	return &p, true
}

func (c *ProfileCache) Set(ctx context.Context, p *models.CreditProfile) error {
	return c.svc.Set(ctx, profileKey(p.UserID), p, c.ttl)
}

func (c *ProfileCache) Fill(ctx context.Context, p *models.CreditProfile) error {
	_, err := c.svc.SetNX(ctx, profileKey(p.UserID), p, c.ttl)
	return err
}

func (c *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	return c.svc.Delete(ctx, profileKey(userID))
}
