package facetd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testEngine(t *testing.T, respond func(body map[string]any) string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode engine request: %v", err)
		}
		bodies = append(bodies, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(respond(body)))
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func newTestClient(t *testing.T, engineURL string) *Client {
	t.Helper()
	client, err := New(context.Background(),
		WithEngine(engineURL, "documents"),
		WithFacet("keyword", FacetDef{Field: "keywords", Kind: KindTerms}),
		WithFacet("year", FacetDef{Field: "year", Kind: KindDates}),
		WithFacet("person", FacetDef{
			Field: "persons.name", Kind: KindTerms, Order: OrderKeyAsc,
			ExtraTerm: &TermCondition{Field: "persons.role", Value: "author"},
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()

	if _, err := New(ctx); err == nil {
		t.Error("expected error without engine")
	}
	if _, err := New(ctx, WithEngine("http://localhost:9200", "docs")); err == nil {
		t.Error("expected error without facets")
	}
	_, err := New(ctx,
		WithEngine("http://localhost:9200", "docs"),
		WithFacet("bad", FacetDef{Field: "f", Kind: "fuzzy"}),
	)
	if err == nil {
		t.Error("expected error for invalid facet kind")
	}
}

func TestClient_Search(t *testing.T) {
	srv, bodies := testEngine(t, func(map[string]any) string {
		return `{"hits":{"total":{"value":7},"hits":[
			{"_id":"a","_score":1.0,"_source":{"title":"First","year":1999}}]}}`
	})
	client := newTestClient(t, srv.URL)

	res, err := client.Search(context.Background(), SearchQuery{
		Filters: Filters{
			"keyword": {Terms: []string{"go", Wildcard("sea")}},
			"year":    {Dates: &DateRange{Min: "1990", Max: "2000"}},
		},
		Sort: []Sort{{Field: "year", Desc: true}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 7 || len(res.Documents) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Documents[0].ID != "a" || res.Documents[0].Source["title"] != "First" {
		t.Errorf("unexpected document: %+v", res.Documents[0])
	}

	sent, err := json.Marshal((*bodies)[0]["query"])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, fragment := range []string{`"wildcard"`, `"*sea*"`, `"gte":"1990"`, `"format":"yyyy"`} {
		if !strings.Contains(string(sent), fragment) {
			t.Errorf("compiled query missing %s: %s", fragment, sent)
		}
	}
}

func TestClient_Suggest(t *testing.T) {
	srv, bodies := testEngine(t, func(map[string]any) string {
		return `{"hits":{"total":{"value":0},"hits":[]},
			"aggregations":{"persons":{"values":{"buckets":[
				{"key":"Doe, Jane","doc_count":9,"extra":{"doc_count":4}},
				{"key":"Shadow","doc_count":2,"extra":{"doc_count":0}}
			]}}}}`
	})
	client := newTestClient(t, srv.URL)

	got, err := client.Suggest(context.Background(), SuggestRequest{
		Facet: "person",
		Typed: "do",
		Filters: Filters{
			"year": {Dates: &DateRange{Min: "1990"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("zero-count bucket must be dropped, got %+v", got)
	}
	if got[0].Term != "Doe, Jane" || got[0].Count != 4 {
		t.Errorf("unexpected suggestion: %+v", got[0])
	}

	sent, err := json.Marshal((*bodies)[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, fragment := range []string{`"aggs"`, `"nested"`, `".*[dD][oO].*"`, `"size":0`} {
		if !strings.Contains(string(sent), fragment) {
			t.Errorf("suggestion body missing %s: %s", fragment, sent)
		}
	}
}

func TestClient_SuggestUnknownFacet(t *testing.T) {
	srv, _ := testEngine(t, func(map[string]any) string { return `{}` })
	client := newTestClient(t, srv.URL)

	_, err := client.Suggest(context.Background(), SuggestRequest{Facet: "genre"})
	if !errors.Is(err, ErrUnknownFacet) {
		t.Fatalf("expected ErrUnknownFacet, got %v", err)
	}
}

func TestClient_ExportCSV(t *testing.T) {
	srv, _ := testEngine(t, func(map[string]any) string {
		return `{"hits":{"total":{"value":1},"hits":[
			{"_id":"a","_score":1.0,"_source":{"title":"First","year":1999}}]}}`
	})
	client := newTestClient(t, srv.URL)

	var buf bytes.Buffer
	err := client.ExportCSV(context.Background(), SearchQuery{}, []string{"title", "year"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "title,year\nFirst,1999\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestClient_Health(t *testing.T) {
	srv, _ := testEngine(t, func(map[string]any) string { return `{}` })
	client := newTestClient(t, srv.URL)

	status := client.Health(context.Background())
	if status.Status != "ok" || status.Checks["engine"] != "ok" {
		t.Errorf("unexpected health: %+v", status)
	}
}

func TestClient_Facets(t *testing.T) {
	srv, _ := testEngine(t, func(map[string]any) string { return `{}` })
	client := newTestClient(t, srv.URL)

	got := client.Facets()
	if len(got) != 3 || got[0] != "keyword" || got[1] != "person" || got[2] != "year" {
		t.Errorf("unexpected facets: %v", got)
	}
}

func TestClient_InvalidFilterValue(t *testing.T) {
	srv, _ := testEngine(t, func(map[string]any) string { return `{}` })
	client := newTestClient(t, srv.URL)

	_, err := client.Search(context.Background(), SearchQuery{
		Filters: Filters{"keyword": {}},
	})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}
