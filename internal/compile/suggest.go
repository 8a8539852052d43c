package compile

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/archivex/facetd/internal/domain"
	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/es"
)

const (
	// DefaultSuggestionLimit caps the bucket count when the caller does
	// not ask for a specific limit.
	DefaultSuggestionLimit = 15

	// SuggestionAggName is the terms aggregation name; response
	// unwrapping reads buckets from aggregations.<name>.buckets, or
	// aggregations.<nestedPath>.<name>.buckets for nested facets.
	SuggestionAggName = "values"

	// ExtraAggName is the sub-aggregation counting only values that
	// also satisfy the facet's extra clause.
	ExtraAggName = "extra"
)

// SuggestionQuery builds the aggregation request listing the distinct
// values available for one facet, consistent with every other active
// filter. The target facet's own entry is excluded from the base query
// so it never constrains its own suggestion list. When typed is
// non-empty, a synthetic wildcard filter for the facet narrows the base
// query and a case-insensitive include pattern narrows the buckets
// server-side.
func (c *Compiler) SuggestionQuery(
	state facet.State, facetName, typed string, limit int,
) (*es.SearchBody, error) {
	spec, ok := c.reg.Get(facetName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFacet, facetName)
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	var override *facet.Entry
	if typed != "" {
		entry, err := facet.NewTermsEntry(spec, []string{facet.EncodeWildcard(typed)})
		if err != nil {
			return nil, fmt.Errorf("suggestion override: %w", err)
		}
		override = &entry
	}

	base, err := c.compileExcluding(state, spec, override)
	if err != nil {
		return nil, err
	}

	terms := &es.TermsAgg{
		Field: rawField(spec.Field()),
		Size:  limit,
		Order: aggOrder(spec.Order()),
	}
	if typed != "" {
		terms.Include = containsPattern(typed)
	}

	agg := es.Agg{Terms: terms}
	if extra := spec.Extra(); extra != nil {
		agg.Aggs = map[string]es.Agg{ExtraAggName: {Filter: extra}}
	}

	aggs := map[string]es.Agg{SuggestionAggName: agg}
	if spec.IsNested() {
		aggs = map[string]es.Agg{
			spec.NestedPath(): {
				Nested: &es.NestedAgg{Path: spec.NestedPath()},
				Aggs:   aggs,
			},
		}
	}

	return &es.SearchBody{
		Query: base,
		Size:  es.SizePtr(0),
		Aggs:  aggs,
	}, nil
}

// compileExcluding compiles the state with every entry for the target
// facet removed. The override (when present) re-introduces the facet as
// a synthetic wildcard constraint.
func (c *Compiler) compileExcluding(
	state facet.State, spec facet.Spec, override *facet.Entry,
) (es.Clause, error) {
	trimmed := make(facet.State, len(state))
	for key, entry := range state {
		if entry.Spec().Field() == spec.Field() {
			continue
		}
		trimmed[key] = entry
	}
	return c.Compile(trimmed, override)
}

// aggOrder maps the facet's configured ordering onto the terms
// aggregation order parameter.
func aggOrder(o facet.Order) map[string]string {
	if o == facet.OrderKeyAsc {
		return map[string]string{"_key": "asc"}
	}
	return map[string]string{"_count": "desc"}
}

// containsPattern builds the include regex for a case-insensitive
// "contains" test: every cased rune expands to a two-case character
// class (a -> [aA]) so the filter works without case-folding support in
// the value storage; other runes are regex-quoted.
func containsPattern(typed string) string {
	var b strings.Builder
	b.WriteString(".*")
	for _, r := range typed {
		lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
		if lower != upper {
			b.WriteByte('[')
			b.WriteRune(lower)
			b.WriteRune(upper)
			b.WriteByte(']')
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	b.WriteString(".*")
	return b.String()
}
