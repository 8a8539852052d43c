package facet

import "fmt"

// DateRange bounds a dates facet at year granularity. Either bound may
// be empty, leaving that side of the range open.
type DateRange struct {
	Min string
	Max string
}

// Entry pairs a facet spec with the user's active filter value for it.
// Constructors reject a value whose shape does not match the spec's
// kind, so a built Entry is always internally consistent.
type Entry struct {
	spec  Spec
	terms []string
	dates DateRange
	query string
}

// NewTermsEntry creates a terms selection. Each value is either a
// literal term or a wildcard-encoded substring.
func NewTermsEntry(spec Spec, values []string) (Entry, error) {
	if spec.Kind() != KindTerms {
		return Entry{}, fmt.Errorf("facet %q has kind %q, not %q", spec.Field(), spec.Kind(), KindTerms)
	}
	terms := make([]string, len(values))
	copy(terms, values)
	return Entry{spec: spec, terms: terms}, nil
}

// NewDatesEntry creates a date range filter. An absent bound is a
// valid open range, not an error.
func NewDatesEntry(spec Spec, r DateRange) (Entry, error) {
	if spec.Kind() != KindDates {
		return Entry{}, fmt.Errorf("facet %q has kind %q, not %q", spec.Field(), spec.Kind(), KindDates)
	}
	return Entry{spec: spec, dates: r}, nil
}

// NewQueryEntry creates a free-text filter.
func NewQueryEntry(spec Spec, query string) (Entry, error) {
	if spec.Kind() != KindQuery {
		return Entry{}, fmt.Errorf("facet %q has kind %q, not %q", spec.Field(), spec.Kind(), KindQuery)
	}
	return Entry{spec: spec, query: query}, nil
}

// Spec returns the facet descriptor this entry filters on.
func (e Entry) Spec() Spec { return e.spec }

// Terms returns the selected values for a terms entry.
func (e Entry) Terms() []string { return e.terms }

// Dates returns the date range for a dates entry.
func (e Entry) Dates() DateRange { return e.dates }

// Query returns the free-text value for a query entry.
func (e Entry) Query() string { return e.query }

// State maps an opaque filter key to its active entry. A State with no
// entries is valid and compiles to "match everything". The compiler
// never retains or mutates it.
type State map[string]Entry

// Suggestion is one autocomplete candidate for a facet.
type Suggestion struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}
