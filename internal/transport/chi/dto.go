package chi

import (
	"fmt"

	"github.com/archivex/facetd/internal/domain"
	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/es"
)

// filterValue is the wire shape of one active filter. Exactly one of
// the three members must be set, matching the facet's configured kind.
type filterValue struct {
	Terms []string      `json:"terms,omitempty"`
	Dates *dateRangeDTO `json:"dates,omitempty"`
	Query *string       `json:"query,omitempty"`
}

type dateRangeDTO struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

type sortDTO struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

type searchRequest struct {
	Filters map[string]filterValue `json:"filters"`
	Sort    []sortDTO              `json:"sort,omitempty"`
	From    int                    `json:"from,omitempty"`
	Size    int                    `json:"size,omitempty"`
}

type suggestRequest struct {
	Facet   string                 `json:"facet"`
	Typed   string                 `json:"typed,omitempty"`
	Limit   int                    `json:"limit,omitempty"`
	Filters map[string]filterValue `json:"filters,omitempty"`
}

type exportRequest struct {
	Filters map[string]filterValue `json:"filters,omitempty"`
	Sort    []sortDTO              `json:"sort,omitempty"`
	Columns []string               `json:"columns,omitempty"`
}

type documentDTO struct {
	ID         string              `json:"id"`
	Score      float64             `json:"score"`
	Source     map[string]any      `json:"source"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}

type searchResponse struct {
	Items []documentDTO `json:"items"`
	Total int64         `json:"total"`
	From  int           `json:"from"`
	Size  int           `json:"size"`
}

type suggestResponse struct {
	Items []facet.Suggestion `json:"items"`
}

// stateFromDTO resolves wire filters against the registry into a
// validated filter state. The facet name on the wire is the registry
// key; a name the registry does not know is a client error, not a
// pass-through.
func stateFromDTO(reg facet.Registry, filters map[string]filterValue) (facet.State, error) {
	state := make(facet.State, len(filters))
	for name, fv := range filters {
		spec, ok := reg.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFacet, name)
		}
		entry, err := entryFromDTO(spec, name, fv)
		if err != nil {
			return nil, err
		}
		state[name] = entry
	}
	return state, nil
}

func entryFromDTO(spec facet.Spec, name string, fv filterValue) (facet.Entry, error) {
	set := 0
	if fv.Terms != nil {
		set++
	}
	if fv.Dates != nil {
		set++
	}
	if fv.Query != nil {
		set++
	}
	if set != 1 {
		return facet.Entry{}, fmt.Errorf(
			"%w: facet %q needs exactly one of terms, dates, query", domain.ErrInvalidFilter, name)
	}

	var (
		entry facet.Entry
		err   error
	)
	switch {
	case fv.Terms != nil:
		entry, err = facet.NewTermsEntry(spec, fv.Terms)
	case fv.Dates != nil:
		entry, err = facet.NewDatesEntry(spec, facet.DateRange{Min: fv.Dates.Min, Max: fv.Dates.Max})
	default:
		entry, err = facet.NewQueryEntry(spec, *fv.Query)
	}
	if err != nil {
		return facet.Entry{}, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}
	return entry, nil
}

func sortFromDTO(sorts []sortDTO) ([]es.Sort, error) {
	if len(sorts) == 0 {
		return nil, nil
	}
	out := make([]es.Sort, len(sorts))
	for i, s := range sorts {
		if s.Field == "" {
			return nil, fmt.Errorf("%w: sort field is required", domain.ErrInvalidFilter)
		}
		out[i] = es.Sort{Field: s.Field, Desc: s.Desc}
	}
	return out, nil
}
