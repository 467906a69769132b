package generation

import (
	"context"
	"errors"
	"time"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/cache"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

const replyNamespace = "reply"

// CachedGenerator serves repeated requests from a cache. Cache failures are
// logged and treated as misses.
type CachedGenerator struct {
	next   Generator
	cache  cache.Client
	ttl    time.Duration
	scope  string
	logger *observability.Logger
}

// NewCachedGenerator wraps next. scope separates entries produced by
// different models or settings.
func NewCachedGenerator(next Generator, c cache.Client, ttl time.Duration, scope string, logger *observability.Logger) *CachedGenerator {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &CachedGenerator{
		next:   next,
		cache:  c,
		ttl:    ttl,
		scope:  scope,
		logger: logger,
	}
}

// Generate returns a cached reply or delegates and stores the result.
func (g *CachedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	key := requestKey(g.scope, req)

	cached, err := g.cache.Get(ctx, key)
	switch {
	case err == nil:
		g.logger.WithContext(ctx).Debug().Str("key", key).Msg("Reply cache hit")
		return string(cached), nil
	case !errors.Is(err, cache.ErrCacheMiss):
		g.logger.WithContext(ctx).Warn().Err(err).Msg("Reply cache read failed")
	}

	reply, err := g.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	if err := g.cache.Set(ctx, key, []byte(reply), g.ttl); err != nil {
		g.logger.WithContext(ctx).Warn().Err(err).Msg("Reply cache write failed")
	}
	return reply, nil
}

func requestKey(scope string, req Request) string {
	parts := make([]string, 0, 4+2*len(req.History))
	parts = append(parts, scope, req.System, req.Context)
	for _, m := range req.History {
		parts = append(parts, m.Role, m.Content)
	}
	parts = append(parts, req.Message)
	return cache.HashKey(replyNamespace, parts...)
}
