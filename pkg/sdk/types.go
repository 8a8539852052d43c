package facetd

// FacetKind classifies how a facet filters documents.
type FacetKind string

// Facet kind constants.
const (
	KindTerms FacetKind = "terms"
	KindDates FacetKind = "dates"
	KindQuery FacetKind = "query"
)

// FacetOrder selects suggestion bucket ordering.
type FacetOrder string

// Facet order constants.
const (
	OrderKeyAsc    FacetOrder = "key_asc"
	OrderCountDesc FacetOrder = "count_desc"
)

// FacetDef declares one filterable field. A dot in Field marks it as
// living inside a nested object.
type FacetDef struct {
	Field string
	Kind  FacetKind
	Order FacetOrder

	// ExtraTerm narrows the facet with a fixed exact-match condition,
	// e.g. persons.role = "author" for a person-name facet.
	ExtraTerm *TermCondition
	// ExtraRange narrows the facet with a fixed range condition.
	ExtraRange *RangeCondition
}

// TermCondition is a fixed exact-match narrowing condition.
type TermCondition struct {
	Field string
	Value string
}

// RangeCondition is a fixed range narrowing condition.
type RangeCondition struct {
	Field  string
	GTE    string
	LTE    string
	Format string
}

// DateRange bounds a dates facet at year granularity. Either bound may
// be left empty.
type DateRange struct {
	Min string
	Max string
}

// Filter is one active filter value. Exactly one member must be set,
// matching the facet's kind.
type Filter struct {
	Terms []string
	Dates *DateRange
	Query string
}

// Filters maps facet names to their active filter values.
type Filters map[string]Filter

// Wildcard tags a terms value as a case-insensitive substring match
// instead of an exact selection.
func Wildcard(substring string) string {
	return wildcardEncode(substring)
}

// Sort orders search results by a field.
type Sort struct {
	Field string
	Desc  bool
}

// SearchQuery is one search request.
type SearchQuery struct {
	Filters Filters
	Sort    []Sort
	From    int
	Size    int
}

// Document is one search hit.
type Document struct {
	ID         string
	Score      float64
	Source     map[string]any
	Highlights map[string][]string
}

// SearchResult is one page of hits with the exact total.
type SearchResult struct {
	Documents []Document
	Total     int64
}

// SuggestRequest asks for the distinct values available for a facet
// under the given filters.
type SuggestRequest struct {
	Facet   string
	Typed   string
	Limit   int
	Filters Filters
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Term  string
	Count int64
}

// HealthStatus represents engine connectivity.
type HealthStatus struct {
	Status string            // "ok", "degraded"
	Checks map[string]string // component -> "ok"/"error"
}
