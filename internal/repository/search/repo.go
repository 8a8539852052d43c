package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/archivex/facetd/internal/compile"
	"github.com/archivex/facetd/internal/domain"
	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/domain/result"
	"github.com/archivex/facetd/internal/es"
	"github.com/archivex/facetd/internal/metrics"
)

// engine is the consumer interface for query execution (ISP).
type engine interface {
	Search(ctx context.Context, body *es.SearchBody) (*es.Response, error)
}

// Repo executes compiled search bodies and parses engine responses.
type Repo struct {
	engine engine
}

// New creates a search repository.
func New(e engine) *Repo {
	return &Repo{engine: e}
}

// Search runs a document search and returns the hits with the total
// matching count.
func (r *Repo) Search(ctx context.Context, body *es.SearchBody) ([]result.Document, int64, error) {
	resp, err := r.execute(ctx, body, "search")
	if err != nil {
		return nil, 0, fmt.Errorf("execute search: %w", err)
	}

	docs := make([]result.Document, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		doc, err := parseHit(hit)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}

	return docs, resp.Hits.Total.Value, nil
}

// Suggest runs a suggestion aggregation and returns the term buckets.
// nestedPath names the nested aggregation layer to reach through, empty
// for flat facets. Buckets whose effective count drops to zero after
// extra-clause narrowing are filtered out.
func (r *Repo) Suggest(ctx context.Context, body *es.SearchBody, nestedPath string) ([]facet.Suggestion, error) {
	resp, err := r.execute(ctx, body, "suggest")
	if err != nil {
		return nil, fmt.Errorf("execute suggestion query: %w", err)
	}

	buckets, err := unwrapBuckets(resp.Aggregations, nestedPath)
	if err != nil {
		return nil, err
	}

	suggestions := make([]facet.Suggestion, 0, len(buckets))
	for _, b := range buckets {
		count := b.DocCount
		if b.Extra != nil {
			count = b.Extra.DocCount
		}
		if count == 0 {
			continue
		}
		suggestions = append(suggestions, facet.Suggestion{Term: b.Key, Count: count})
	}
	return suggestions, nil
}

// execute runs one engine request, recording its duration and mapping
// transport-level failures to the engine-unavailable sentinel.
func (r *Repo) execute(ctx context.Context, body *es.SearchBody, op string) (*es.Response, error) {
	start := time.Now()
	resp, err := r.engine.Search(ctx, body)
	metrics.EngineRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, engineErr(err)
	}
	return resp, nil
}

// engineErr marks connection failures and engine-side 5xx responses as
// unavailability so the transport can answer 502 instead of 500.
func engineErr(err error) error {
	var ee *es.Error
	if errors.As(err, &ee) && (ee.Status == 0 || ee.Status >= 500) {
		return fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	return err
}

// bucket mirrors one terms aggregation bucket, including the optional
// extra-clause sub-aggregation count.
type bucket struct {
	Key      string `json:"key"`
	DocCount int64  `json:"doc_count"`
	Extra    *struct {
		DocCount int64 `json:"doc_count"`
	} `json:"extra"`
}

type termsAggResult struct {
	Buckets []bucket `json:"buckets"`
}

// unwrapBuckets reads aggregations.values.buckets, or
// aggregations.<nestedPath>.values.buckets for nested facets. The
// nested layer mirrors the nested wrapping the compiler applied on the
// way in.
func unwrapBuckets(aggs map[string]json.RawMessage, nestedPath string) ([]bucket, error) {
	raw, ok := aggs[compile.SuggestionAggName]
	if nestedPath != "" {
		outer, found := aggs[nestedPath]
		if !found {
			return nil, fmt.Errorf("missing nested aggregation %q", nestedPath)
		}
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(outer, &inner); err != nil {
			return nil, fmt.Errorf("parse nested aggregation %q: %w", nestedPath, err)
		}
		raw, ok = inner[compile.SuggestionAggName]
	}
	if !ok {
		return nil, fmt.Errorf("missing aggregation %q", compile.SuggestionAggName)
	}

	var parsed termsAggResult
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse aggregation buckets: %w", err)
	}
	return parsed.Buckets, nil
}

// parseHit converts an engine hit into a domain document.
func parseHit(hit es.Hit) (result.Document, error) {
	source := make(map[string]any)
	if len(hit.Source) > 0 {
		if err := json.Unmarshal(hit.Source, &source); err != nil {
			return result.Document{}, fmt.Errorf("parse hit %s: %w", hit.ID, err)
		}
	}
	return result.New(hit.ID, hit.Score, source, hit.Highlight), nil
}
