package facetd

import "github.com/archivex/facetd/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnknownFacet      = domain.ErrUnknownFacet
	ErrInvalidFilter     = domain.ErrInvalidFilter
	ErrEngineUnavailable = domain.ErrEngineUnavailable
)
