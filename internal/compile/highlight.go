package compile

import (
	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/es"
)

// Fragment policy for free-text excerpts.
const (
	highlightFragmentSize = 50
	highlightFragments    = 2
)

// Highlight derives the excerpt-highlighting spec from the filter
// state: one entry per query-kind facet, nothing for terms or dates.
// Returns nil when no free-text facet is active.
func (c *Compiler) Highlight(state facet.State) *es.Highlight {
	fields := make(map[string]es.HighlightField)
	for _, entry := range state {
		if entry.Spec().Kind() != facet.KindQuery {
			continue
		}
		fields[entry.Spec().Field()] = es.HighlightField{
			FragmentSize:      highlightFragmentSize,
			NumberOfFragments: highlightFragments,
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &es.Highlight{Fields: fields}
}
