package facet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/archivex/facetd/internal/es"
)

// Kind classifies how a facet filters documents.
type Kind string

const (
	// KindTerms selects documents by exact (or wildcard-encoded) values.
	KindTerms Kind = "terms"
	// KindDates bounds documents by a year-granularity date range.
	KindDates Kind = "dates"
	// KindQuery matches documents by free-text relevance.
	KindQuery Kind = "query"
)

// IsValid reports whether the kind is a known value.
func (k Kind) IsValid() bool {
	switch k {
	case KindTerms, KindDates, KindQuery:
		return true
	}
	return false
}

// Order selects how suggestion buckets for a facet are sorted.
type Order string

const (
	// OrderKeyAsc sorts suggestion values alphabetically.
	OrderKeyAsc Order = "key_asc"
	// OrderCountDesc sorts suggestion values by document count, highest first.
	OrderCountDesc Order = "count_desc"
)

// IsValid reports whether the order is a known value.
func (o Order) IsValid() bool {
	return o == OrderKeyAsc || o == OrderCountDesc
}

// Spec is the immutable descriptor of one filterable field. A dot in
// the field name is the sole signal that the field lives inside a
// nested object; this is a deliberate naming convention, not inference.
type Spec struct {
	field string
	kind  Kind
	order Order
	extra es.Clause
}

// NewSpec validates and creates a facet Spec. order defaults to
// count_desc; extra may be nil.
func NewSpec(field string, kind Kind, order Order, extra es.Clause) (Spec, error) {
	if field == "" {
		return Spec{}, fmt.Errorf("facet field is required")
	}
	if !kind.IsValid() {
		return Spec{}, fmt.Errorf("invalid facet kind %q for field %q", kind, field)
	}
	if order == "" {
		order = OrderCountDesc
	}
	if !order.IsValid() {
		return Spec{}, fmt.Errorf("invalid facet order %q for field %q", order, field)
	}
	return Spec{field: field, kind: kind, order: order, extra: extra}, nil
}

// Field returns the underlying engine field name.
func (s Spec) Field() string { return s.field }

// Kind returns the facet kind.
func (s Spec) Kind() Kind { return s.kind }

// Order returns the suggestion ordering.
func (s Spec) Order() Order { return s.order }

// Extra returns the fixed narrowing clause, or nil.
func (s Spec) Extra() es.Clause { return s.extra }

// IsNested reports whether the field addresses a nested object.
func (s Spec) IsNested() bool { return strings.Contains(s.field, ".") }

// NestedPath returns the nested object path: the prefix before the
// first dot. Empty for flat fields.
func (s Spec) NestedPath() string {
	path, _, ok := strings.Cut(s.field, ".")
	if !ok {
		return ""
	}
	return path
}

// Registry holds the named facet specs, defined once at startup and
// consumed read-only.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry creates a registry from named specs.
func NewRegistry(specs map[string]Spec) Registry {
	copied := make(map[string]Spec, len(specs))
	for name, s := range specs {
		copied[name] = s
	}
	return Registry{specs: copied}
}

// Get returns the spec registered under name.
func (r Registry) Get(name string) (Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Names returns the registered facet names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered facets.
func (r Registry) Len() int { return len(r.specs) }
