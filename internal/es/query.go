package es

import "encoding/json"

// Clause is a single engine query fragment. The variant set is closed:
// the compiler builds and combines clauses, this package serializes
// them into the engine's JSON form, and nothing ever inspects a clause
// it did not build.
type Clause interface {
	json.Marshaler
	isClause()
}

// MatchAll matches every document.
type MatchAll struct{}

func (MatchAll) isClause() {}

// MarshalJSON implements json.Marshaler.
func (MatchAll) MarshalJSON() ([]byte, error) {
	return []byte(`{"match_all":{}}`), nil
}

// MatchNone matches no document.
type MatchNone struct{}

func (MatchNone) isClause() {}

// MarshalJSON implements json.Marshaler.
func (MatchNone) MarshalJSON() ([]byte, error) {
	return []byte(`{"match_none":{}}`), nil
}

// Term is an exact match against an untokenized field.
type Term struct {
	Field string
	Value string
}

func (Term) isClause() {}

// MarshalJSON implements json.Marshaler.
func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"term": map[string]string{t.Field: t.Value},
	})
}

// Wildcard is a pattern match against an untokenized field.
type Wildcard struct {
	Field           string
	Pattern         string
	CaseInsensitive bool
}

func (Wildcard) isClause() {}

// MarshalJSON implements json.Marshaler.
func (w Wildcard) MarshalJSON() ([]byte, error) {
	body := map[string]any{"value": w.Pattern}
	if w.CaseInsensitive {
		body["case_insensitive"] = true
	}
	return json.Marshal(map[string]any{
		"wildcard": map[string]any{w.Field: body},
	})
}

// Range bounds a field between GTE and LTE. An empty bound is omitted
// from the serialized clause, never sent as null.
type Range struct {
	Field  string
	GTE    string
	LTE    string
	Format string
}

func (Range) isClause() {}

// MarshalJSON implements json.Marshaler.
func (r Range) MarshalJSON() ([]byte, error) {
	body := make(map[string]string, 3)
	if r.GTE != "" {
		body["gte"] = r.GTE
	}
	if r.LTE != "" {
		body["lte"] = r.LTE
	}
	if r.Format != "" {
		body["format"] = r.Format
	}
	return json.Marshal(map[string]any{
		"range": map[string]any{r.Field: body},
	})
}

// SimpleString is a free-text relevance clause over the given fields.
type SimpleString struct {
	Query  string
	Fields []string
}

func (SimpleString) isClause() {}

// MarshalJSON implements json.Marshaler.
func (s SimpleString) MarshalJSON() ([]byte, error) {
	body := map[string]any{"query": s.Query}
	if len(s.Fields) > 0 {
		body["fields"] = s.Fields
	}
	return json.Marshal(map[string]any{"simple_query_string": body})
}

// Bool combines clauses with must/should/must_not semantics.
type Bool struct {
	Must    []Clause
	Should  []Clause
	MustNot []Clause
}

func (Bool) isClause() {}

// MarshalJSON implements json.Marshaler.
func (b Bool) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 3)
	if len(b.Must) > 0 {
		body["must"] = b.Must
	}
	if len(b.Should) > 0 {
		body["should"] = b.Should
	}
	if len(b.MustNot) > 0 {
		body["must_not"] = b.MustNot
	}
	return json.Marshal(map[string]any{"bool": body})
}

// Nested scopes a clause to a nested object path.
type Nested struct {
	Path  string
	Query Clause
}

func (Nested) isClause() {}

// MarshalJSON implements json.Marshaler.
func (n Nested) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"nested": map[string]any{
			"path":  n.Path,
			"query": n.Query,
		},
	})
}
