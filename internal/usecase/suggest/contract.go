package suggest

import (
	"context"

	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/es"
)

// Repository executes suggestion aggregations against the engine.
type Repository interface {
	Suggest(ctx context.Context, body *es.SearchBody, nestedPath string) ([]facet.Suggestion, error)
}
