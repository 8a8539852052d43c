package es

import "encoding/json"

// Sort orders results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// MarshalJSON implements json.Marshaler.
func (s Sort) MarshalJSON() ([]byte, error) {
	order := "asc"
	if s.Desc {
		order = "desc"
	}
	return json.Marshal(map[string]any{
		s.Field: map[string]string{"order": order},
	})
}

// HighlightField configures excerpt extraction for one field.
type HighlightField struct {
	FragmentSize      int `json:"fragment_size"`
	NumberOfFragments int `json:"number_of_fragments"`
}

// Highlight requests excerpt highlighting per field.
type Highlight struct {
	Fields map[string]HighlightField `json:"fields"`
}

// TermsAgg counts distinct values of a field.
type TermsAgg struct {
	Field   string            `json:"field"`
	Size    int               `json:"size"`
	Order   map[string]string `json:"order,omitempty"`
	Include string            `json:"include,omitempty"`
}

// NestedAgg scopes a sub-aggregation to a nested object path.
type NestedAgg struct {
	Path string `json:"path"`
}

// Agg is one aggregation node. Exactly one of Terms/Filter/Nested is
// set; Aggs carries sub-aggregations.
type Agg struct {
	Terms  *TermsAgg      `json:"terms,omitempty"`
	Filter Clause         `json:"filter,omitempty"`
	Nested *NestedAgg     `json:"nested,omitempty"`
	Aggs   map[string]Agg `json:"aggs,omitempty"`
}

// SearchBody is the JSON body POSTed to the engine's _search endpoint.
type SearchBody struct {
	Query          Clause         `json:"query"`
	Sort           []Sort         `json:"sort,omitempty"`
	Size           *int           `json:"size,omitempty"`
	From           int            `json:"from,omitempty"`
	TrackTotalHits bool           `json:"track_total_hits,omitempty"`
	Highlight      *Highlight     `json:"highlight,omitempty"`
	Aggs           map[string]Agg `json:"aggs,omitempty"`
}

// SizePtr is a helper for SearchBody.Size, which must distinguish
// "unset" from the aggregation-only size of 0.
func SizePtr(n int) *int { return &n }

// Hit is a single search hit as returned by the engine.
type Hit struct {
	ID        string              `json:"_id"`
	Score     float64             `json:"_score"`
	Source    json.RawMessage     `json:"_source"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// HitsEnvelope wraps the hit list and total count.
type HitsEnvelope struct {
	Total struct {
		Value int64 `json:"value"`
	} `json:"total"`
	Hits []Hit `json:"hits"`
}

// Response is the engine's _search response. Aggregations stay raw;
// unwrapping them is the caller's concern.
type Response struct {
	Took         int                        `json:"took"`
	Hits         HitsEnvelope               `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
}
