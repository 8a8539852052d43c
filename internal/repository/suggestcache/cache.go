package suggestcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/archivex/facetd/internal/db"
	"github.com/archivex/facetd/internal/domain/facet"
)

const cacheKeyPrefix = "facetd:suggest_cache:"

// suggester is the inner contract being decorated.
type suggester interface {
	Suggest(ctx context.Context, state facet.State, facetName, typed string, limit int) ([]facet.Suggestion, error)
}

// store is the consumer interface for the suggestion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSuggester caches suggestion lists in a key-value store. Cache
// failures degrade to the inner suggester, never to the caller.
type CachedSuggester struct {
	inner      suggester
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner suggester,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSuggester {
	return &CachedSuggester{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Suggest returns a cached suggestion list or calls the inner suggester.
func (c *CachedSuggester) Suggest(
	ctx context.Context, state facet.State, facetName, typed string, limit int,
) ([]facet.Suggestion, error) {
	key := c.cacheKey(state, facetName, typed, limit)

	if cached, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return cached, nil
	}

	c.incCache("miss")

	suggestions, err := c.inner.Suggest(ctx, state, facetName, typed, limit)
	if err != nil {
		return nil, err
	}

	c.putToCache(ctx, key, suggestions)
	return suggestions, nil
}

func (c *CachedSuggester) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the full request fingerprint: the facet, the typed
// prefix, the limit, and every active filter. State iteration order
// must not change the key, so entries are folded in sorted key order.
func (c *CachedSuggester) cacheKey(state facet.State, facetName, typed string, limit int) string {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(facetName)
	b.WriteByte('\x00')
	b.WriteString(typed)
	b.WriteByte('\x00')
	b.WriteString(strconv.Itoa(limit))
	for _, k := range keys {
		entry := state[k]
		b.WriteByte('\x00')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(entryFingerprint(entry))
	}

	h := sha256.Sum256([]byte(b.String()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func entryFingerprint(e facet.Entry) string {
	spec := e.Spec()
	switch spec.Kind() {
	case facet.KindTerms:
		return fmt.Sprintf("terms:%s:%s", spec.Field(), strings.Join(e.Terms(), "\x1f"))
	case facet.KindDates:
		r := e.Dates()
		return fmt.Sprintf("dates:%s:%s..%s", spec.Field(), r.Min, r.Max)
	case facet.KindQuery:
		return fmt.Sprintf("query:%s:%s", spec.Field(), e.Query())
	default:
		return string(spec.Kind()) + ":" + spec.Field()
	}
}

func (c *CachedSuggester) getFromCache(ctx context.Context, key string) ([]facet.Suggestion, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached suggestions", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var suggestions []facet.Suggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		c.logger.Warn("Failed to parse cached suggestions", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return suggestions, true
}

func (c *CachedSuggester) putToCache(ctx context.Context, key string, suggestions []facet.Suggestion) {
	data, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache suggestions", zap.String("key", key), zap.Error(err))
	}
}
