package suggest

import (
	"context"
	"fmt"

	"github.com/archivex/facetd/internal/compile"
	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/metrics"
)

// Service answers autocomplete requests for facet widgets.
type Service struct {
	compiler *compile.Compiler
	repo     Repository
}

// New creates a suggestion service.
func New(compiler *compile.Compiler, repo Repository) *Service {
	return &Service{compiler: compiler, repo: repo}
}

// Suggest lists the distinct values available for a facet, consistent
// with every active filter except the facet's own, optionally narrowed
// by the user's typed substring.
func (s *Service) Suggest(
	ctx context.Context, state facet.State, facetName, typed string, limit int,
) ([]facet.Suggestion, error) {
	body, err := s.compiler.SuggestionQuery(state, facetName, typed, limit)
	if err != nil {
		// Unknown facet names are user input; keep them out of label values.
		metrics.SuggestRequestsTotal.WithLabelValues("unknown", "error").Inc()
		return nil, fmt.Errorf("build suggestion query: %w", err)
	}

	// Present in the registry, SuggestionQuery checked it.
	spec, _ := s.compiler.Registry().Get(facetName)

	suggestions, err := s.repo.Suggest(ctx, body, spec.NestedPath())
	if err != nil {
		metrics.SuggestRequestsTotal.WithLabelValues(facetName, "error").Inc()
		return nil, fmt.Errorf("suggest %s: %w", facetName, err)
	}
	metrics.SuggestRequestsTotal.WithLabelValues(facetName, "ok").Inc()
	return suggestions, nil
}
