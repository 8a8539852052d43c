// Package compile turns a declarative per-facet filter state into the
// engine-native structured query, and builds the companion suggestion
// aggregations. All operations are pure transformations with no shared
// state; a Compiler is safe for concurrent use.
package compile

import (
	"fmt"
	"sort"

	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/es"
)

// rawSuffix addresses the untokenized representation of a field, used
// for exact term matching and wildcard matching alike.
const rawSuffix = ".raw"

// Compiler compiles filter states against a fixed facet registry.
type Compiler struct {
	reg facet.Registry
}

// New creates a compiler over the given registry.
func New(reg facet.Registry) *Compiler {
	return &Compiler{reg: reg}
}

// Registry returns the facet registry the compiler was built with.
func (c *Compiler) Registry() facet.Registry { return c.reg }

// Compile produces one structured query expressing the conjunction of
// every active filter. When override is non-nil it contributes an
// additional AND term while every state entry for the same facet field
// is skipped, so a facet never constrains its own suggestion list.
//
// Zero clauses yield match_all; a single clause is returned unwrapped;
// two or more are combined under bool.must. AND is commutative, so
// iteration order never changes semantics; keys are still walked in
// sorted order to keep the serialized query deterministic.
func (c *Compiler) Compile(state facet.State, override *facet.Entry) (es.Clause, error) {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]es.Clause, 0, len(state)+1)
	for _, key := range keys {
		entry := state[key]
		if override != nil && entry.Spec().Field() == override.Spec().Field() {
			continue
		}
		clause, err := compileEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", key, err)
		}
		clauses = append(clauses, clause)
	}

	if override != nil {
		clause, err := compileEntry(*override)
		if err != nil {
			return nil, fmt.Errorf("override for %q: %w", override.Spec().Field(), err)
		}
		clauses = append(clauses, clause)
	}

	switch len(clauses) {
	case 0:
		return es.MatchAll{}, nil
	case 1:
		return clauses[0], nil
	default:
		return es.Bool{Must: clauses}, nil
	}
}

// compileEntry builds the clause for a single filter entry: the
// kind-specific clause, intersected with the spec's extra clause when
// configured, then wrapped in a nested scope when the field is dotted.
// The wrapping order matters: the extra clause must land inside the
// nested scope.
func compileEntry(entry facet.Entry) (es.Clause, error) {
	spec := entry.Spec()

	var clause es.Clause
	var err error
	switch spec.Kind() {
	case facet.KindTerms:
		clause, err = compileTerms(spec, entry.Terms())
	case facet.KindDates:
		clause = compileDates(spec, entry.Dates())
	case facet.KindQuery:
		clause = es.SimpleString{Query: entry.Query(), Fields: []string{spec.Field()}}
	default:
		return nil, fmt.Errorf("unknown facet kind %q", spec.Kind())
	}
	if err != nil {
		return nil, err
	}

	if extra := spec.Extra(); extra != nil {
		clause = es.Bool{Must: []es.Clause{clause, extra}}
	}

	if spec.IsNested() {
		clause = es.Nested{Path: spec.NestedPath(), Query: clause}
	}

	return clause, nil
}

// compileTerms builds a disjunction over the selected values. A
// wildcard-encoded value becomes a case-insensitive substring clause;
// anything else an exact term clause, both against the raw field. An
// empty selection compiles to an explicit match_none so the engine's
// treatment of an empty should never leaks in.
func compileTerms(spec facet.Spec, values []string) (es.Clause, error) {
	if len(values) == 0 {
		return es.MatchNone{}, nil
	}

	branches := make([]es.Clause, 0, len(values))
	for _, v := range values {
		if facet.IsWildcard(v) {
			substring, err := facet.DecodeWildcard(v)
			if err != nil {
				return nil, err
			}
			branches = append(branches, es.Wildcard{
				Field:           rawField(spec.Field()),
				Pattern:         "*" + substring + "*",
				CaseInsensitive: true,
			})
			continue
		}
		branches = append(branches, es.Term{Field: rawField(spec.Field()), Value: v})
	}
	return es.Bool{Should: branches}, nil
}

// compileDates builds a year-granularity range clause. Absent bounds
// are omitted, not sent as null.
func compileDates(spec facet.Spec, r facet.DateRange) es.Clause {
	return es.Range{
		Field:  spec.Field(),
		GTE:    r.Min,
		LTE:    r.Max,
		Format: "yyyy",
	}
}

func rawField(field string) string { return field + rawSuffix }
