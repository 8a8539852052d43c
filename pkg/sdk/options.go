package facetd

import (
	"log/slog"
	"time"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	engineURL string
	index     string
	timeout   time.Duration

	waitReady        bool
	readinessTimeout time.Duration

	facets map[string]FacetDef

	defaultPageSize int
	maxPageSize     int

	logger *slog.Logger
}

// WithEngine sets the search engine base URL and index. Required.
func WithEngine(baseURL, index string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engineURL = baseURL
		c.index = index
	})
}

// WithTimeout sets the per-request engine timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithWaitReady makes New block until the engine answers, up to the
// given timeout.
func WithWaitReady(timeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.waitReady = true
		c.readinessTimeout = timeout
	})
}

// WithFacet declares one filterable facet. At least one is required.
func WithFacet(name string, def FacetDef) Option {
	return optionFunc(func(c *clientConfig) {
		if c.facets == nil {
			c.facets = make(map[string]FacetDef)
		}
		c.facets[name] = def
	})
}

// WithFacets declares filterable facets in bulk.
func WithFacets(facets map[string]FacetDef) Option {
	return optionFunc(func(c *clientConfig) {
		if c.facets == nil {
			c.facets = make(map[string]FacetDef, len(facets))
		}
		for name, def := range facets {
			c.facets[name] = def
		}
	})
}

// WithPagination overrides the default and maximum page sizes.
// Defaults: 20 and 100.
func WithPagination(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
