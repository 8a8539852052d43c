package result

import "strings"

// Document is a single search hit.
type Document struct {
	id         string
	score      float64
	source     map[string]any
	highlights map[string][]string
}

// New creates a search hit.
func New(id string, score float64, source map[string]any, highlights map[string][]string) Document {
	return Document{id: id, score: score, source: source, highlights: highlights}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Score returns the relevance score.
func (d *Document) Score() float64 { return d.score }

// Source returns the document body.
func (d *Document) Source() map[string]any { return d.source }

// Highlights returns excerpt fragments per highlighted field.
func (d *Document) Highlights() map[string][]string { return d.highlights }

// Field resolves a dotted path inside the document body. Returns nil
// when any segment is missing or not an object.
func (d *Document) Field(path string) any {
	var current any = d.source
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = obj[part]
		if !ok {
			return nil
		}
	}
	return current
}
