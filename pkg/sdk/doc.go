// Package facetd provides an embeddable Go client for faceted document
// search against an Elasticsearch-compatible engine. It wires the same
// filter compiler the facetd service uses, so a Go program can run
// searches, autocomplete facet values, and export CSV without going
// through the HTTP API.
//
//	client, _ := facetd.New(ctx,
//	    facetd.WithEngine("http://localhost:9200", "documents"),
//	    facetd.WithFacet("keyword", facetd.FacetDef{Field: "keywords", Kind: facetd.KindTerms}),
//	    facetd.WithFacet("year", facetd.FacetDef{Field: "year", Kind: facetd.KindDates}),
//	)
//
//	page, _ := client.Search(ctx, facetd.SearchQuery{
//	    Filters: facetd.Filters{
//	        "keyword": {Terms: []string{"go"}},
//	        "year":    {Dates: &facetd.DateRange{Min: "1990", Max: "2000"}},
//	    },
//	})
//
//	suggestions, _ := client.Suggest(ctx, facetd.SuggestRequest{
//	    Facet: "keyword",
//	    Typed: "se",
//	})
package facetd
