package search

import "strconv"

// Document is a single knowledge base entry. Content is fixed once the
// corpus is loaded.
type Document struct {
	ID             string `json:"id" yaml:"id"`
	Category       string `json:"category" yaml:"category"`
	Content        string `json:"content" yaml:"content"`
	SourceDocument string `json:"sourceDocument" yaml:"sourceDocument"`
	PageNumber     int    `json:"pageNumber" yaml:"pageNumber"`
}

// ScoredDocument is a Document returned by a query together with its
// cosine similarity to that query.
type ScoredDocument struct {
	Document
	ConfidenceScore float64 `json:"confidence_score"`
}

// Citation formats the document's origin the way answers cite it.
func (d Document) Citation() string {
	return d.SourceDocument + " (Page " + strconv.Itoa(d.PageNumber) + ")"
}
