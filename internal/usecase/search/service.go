package search

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/archivex/facetd/internal/compile"
	"github.com/archivex/facetd/internal/domain/facet"
	"github.com/archivex/facetd/internal/domain/result"
	"github.com/archivex/facetd/internal/es"
)

// Pagination limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	exportBatchSize = 500
)

// Query is one user-driven search: the active filter state plus result
// shaping.
type Query struct {
	Filters facet.State
	Sort    []es.Sort
	From    int
	Size    int
}

// Page holds one page of search hits with the total matching count.
type Page struct {
	Documents []result.Document
	Total     int64
}

// Service handles document search and CSV export over the same
// compiled query.
type Service struct {
	compiler        *compile.Compiler
	repo            Repository
	defaultPageSize int
	maxPageSize     int
}

// New creates a search service.
func New(compiler *compile.Compiler, repo Repository) *Service {
	return &Service{
		compiler:        compiler,
		repo:            repo,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
	}
}

// WithPagination overrides the default and maximum page sizes.
func (s *Service) WithPagination(defaultSize, maxSize int) *Service {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// Search compiles the filter state and returns one page of matching
// documents with highlight fragments for free-text facets.
func (s *Service) Search(ctx context.Context, q Query) (*Page, error) {
	body, err := s.buildBody(q, s.clampSize(q.Size), q.From)
	if err != nil {
		return nil, err
	}
	body.Highlight = s.compiler.Highlight(q.Filters)

	docs, total, err := s.repo.Search(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &Page{Documents: docs, Total: total}, nil
}

// Export streams every matching document as CSV rows. The query goes
// through the same compile path as Search, so the export and the
// on-screen results always agree.
func (s *Service) Export(ctx context.Context, q Query, columns []string, w io.Writer) error {
	if len(columns) == 0 {
		return fmt.Errorf("at least one export column is required")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	from := 0
	for {
		body, err := s.buildBody(q, exportBatchSize, from)
		if err != nil {
			return err
		}

		docs, total, err := s.repo.Search(ctx, body)
		if err != nil {
			return fmt.Errorf("export page at %d: %w", from, err)
		}

		for i := range docs {
			row := make([]string, len(columns))
			for j, col := range columns {
				row[j] = formatCell(docs[i].Field(col))
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}

		from += len(docs)
		if len(docs) == 0 || int64(from) >= total {
			break
		}
	}

	cw.Flush()
	return cw.Error()
}

// buildBody compiles the filter state into a full search body.
func (s *Service) buildBody(q Query, size, from int) (*es.SearchBody, error) {
	clause, err := s.compiler.Compile(q.Filters, nil)
	if err != nil {
		return nil, fmt.Errorf("compile filters: %w", err)
	}
	return &es.SearchBody{
		Query:          clause,
		Sort:           q.Sort,
		Size:           es.SizePtr(size),
		From:           from,
		TrackTotalHits: true,
	}, nil
}

func (s *Service) clampSize(size int) int {
	if size <= 0 {
		return s.defaultPageSize
	}
	if size > s.maxPageSize {
		return s.maxPageSize
	}
	return size
}

// formatCell renders one source value as a CSV cell. Scalar lists are
// joined; nested objects and missing fields render empty.
func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if _, nested := item.(map[string]any); nested {
				continue
			}
			parts = append(parts, formatCell(item))
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
