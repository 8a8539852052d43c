package domain

import "errors"

var (
	// ErrUnknownFacet signals a filter or suggestion request for a facet
	// that is not in the registry.
	ErrUnknownFacet = errors.New("unknown facet")
	// ErrInvalidFilter signals a filter value whose shape does not match
	// the facet's configured kind.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrEngineUnavailable signals that the search engine could not be
	// reached.
	ErrEngineUnavailable = errors.New("search engine unavailable")
)
