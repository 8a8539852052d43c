package facetd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/archivex/facetd/internal/compile"
	"github.com/archivex/facetd/internal/domain"
	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/es"
	searchrepo "github.com/archivex/facetd/internal/repository/search"
	healthuc "github.com/archivex/facetd/internal/usecase/health"
	searchuc "github.com/archivex/facetd/internal/usecase/search"
	suggestuc "github.com/archivex/facetd/internal/usecase/suggest"
)

// Client is the facetd SDK entry point.
type Client struct {
	registry   facet.Registry
	searchSvc  *searchuc.Service
	suggestSvc *suggestuc.Service
	healthSvc  *healthuc.Service
	logger     *slog.Logger
}

// New creates a facetd Client. The provided context is used for the
// optional initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.engineURL == "" || cfg.index == "" {
		return nil, errors.New("facetd: engine url and index are required, use WithEngine")
	}
	if len(cfg.facets) == 0 {
		return nil, errors.New("facetd: at least one facet is required, use WithFacet")
	}

	registry, err := buildRegistry(cfg.facets)
	if err != nil {
		return nil, err
	}

	engine, err := es.NewClient(es.Config{
		BaseURL: cfg.engineURL,
		Index:   cfg.index,
		Timeout: cfg.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("facetd: create engine client: %w", err)
	}

	if cfg.waitReady {
		timeout := cfg.readinessTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		if err := engine.WaitForReady(ctx, timeout); err != nil {
			return nil, fmt.Errorf("facetd: engine not ready: %w", err)
		}
	}

	compiler := compile.New(registry)
	repo := searchrepo.New(engine)

	return &Client{
		registry:   registry,
		searchSvc:  searchuc.New(compiler, repo).WithPagination(cfg.defaultPageSize, cfg.maxPageSize),
		suggestSvc: suggestuc.New(compiler, repo),
		healthSvc:  healthuc.New(engine, nil),
		logger:     cfg.logger,
	}, nil
}

// Search runs a faceted search and returns one page of hits.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	query, err := c.toQuery(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := c.searchSvc.Search(ctx, query)
	c.log(ctx, "search", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, len(page.Documents))
	for i := range page.Documents {
		d := &page.Documents[i]
		docs[i] = Document{
			ID:         d.ID(),
			Score:      d.Score(),
			Source:     d.Source(),
			Highlights: d.Highlights(),
		}
	}
	return &SearchResult{Documents: docs, Total: page.Total}, nil
}

// Suggest lists the distinct values available for a facet under the
// request's filters, consistent with every filter except the facet's
// own.
func (c *Client) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	state, err := c.toState(req.Filters)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	got, err := c.suggestSvc.Suggest(ctx, state, req.Facet, req.Typed, req.Limit)
	c.log(ctx, "suggest", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, len(got))
	for i, s := range got {
		out[i] = Suggestion{Term: s.Term, Count: s.Count}
	}
	return out, nil
}

// ExportCSV streams every document matching the query as CSV rows. The
// query compiles through the same path as Search, so exported rows
// always agree with on-screen results.
func (c *Client) ExportCSV(ctx context.Context, q SearchQuery, columns []string, w io.Writer) error {
	query, err := c.toQuery(q)
	if err != nil {
		return err
	}

	start := time.Now()
	err = c.searchSvc.Export(ctx, query, columns, w)
	c.log(ctx, "export", time.Since(start), err)
	return err
}

// Health checks engine connectivity.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// Facets lists the configured facet names.
func (c *Client) Facets() []string {
	return c.registry.Names()
}

func (c *Client) toQuery(q SearchQuery) (searchuc.Query, error) {
	state, err := c.toState(q.Filters)
	if err != nil {
		return searchuc.Query{}, err
	}
	sorts := make([]es.Sort, len(q.Sort))
	for i, s := range q.Sort {
		sorts[i] = es.Sort{Field: s.Field, Desc: s.Desc}
	}
	return searchuc.Query{Filters: state, Sort: sorts, From: q.From, Size: q.Size}, nil
}

func (c *Client) toState(filters Filters) (facet.State, error) {
	state := make(facet.State, len(filters))
	for name, f := range filters {
		spec, ok := c.registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFacet, name)
		}

		var (
			entry facet.Entry
			err   error
		)
		switch {
		case f.Terms != nil:
			entry, err = facet.NewTermsEntry(spec, f.Terms)
		case f.Dates != nil:
			entry, err = facet.NewDatesEntry(spec, facet.DateRange{Min: f.Dates.Min, Max: f.Dates.Max})
		case f.Query != "":
			entry, err = facet.NewQueryEntry(spec, f.Query)
		default:
			return nil, fmt.Errorf("%w: facet %q has no filter value", domain.ErrInvalidFilter, name)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
		}
		state[name] = entry
	}
	return state, nil
}

func (c *Client) log(ctx context.Context, op string, took time.Duration, err error) {
	if c.logger == nil {
		return
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "facetd operation failed",
			slog.String("op", op), slog.Duration("took", took), slog.Any("error", err))
		return
	}
	c.logger.DebugContext(ctx, "facetd operation",
		slog.String("op", op), slog.Duration("took", took))
}

// buildRegistry converts public facet definitions into domain specs.
func buildRegistry(defs map[string]FacetDef) (facet.Registry, error) {
	specs := make(map[string]facet.Spec, len(defs))
	for name, def := range defs {
		var extra es.Clause
		switch {
		case def.ExtraTerm != nil:
			extra = es.Term{Field: def.ExtraTerm.Field, Value: def.ExtraTerm.Value}
		case def.ExtraRange != nil:
			extra = es.Range{
				Field:  def.ExtraRange.Field,
				GTE:    def.ExtraRange.GTE,
				LTE:    def.ExtraRange.LTE,
				Format: def.ExtraRange.Format,
			}
		}
		spec, err := facet.NewSpec(def.Field, facet.Kind(def.Kind), facet.Order(def.Order), extra)
		if err != nil {
			return facet.Registry{}, fmt.Errorf("facetd: facet %q: %w", name, err)
		}
		specs[name] = spec
	}
	return facet.NewRegistry(specs), nil
}

func wildcardEncode(substring string) string {
	return facet.EncodeWildcard(substring)
}
