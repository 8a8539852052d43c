package search

import (
	"context"

	"github.com/archivex/facetd/internal/domain/result"
	"github.com/archivex/facetd/internal/es"
)

// Repository executes compiled search bodies against the engine.
type Repository interface {
	Search(ctx context.Context, body *es.SearchBody) ([]result.Document, int64, error)
}
