package search

import (
	"strings"
)

// Document is the searchable projection of a content record
type Document struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Body     string `json:"body,omitempty"`
	Category string `json:"category"`
	Image    string `json:"image,omitempty"`
	Visible  bool   `json:"visible"`
	Featured bool   `json:"featured"`
}

// Hit is one search result
type Hit struct {
	Kind     string `json:"kind"`
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
	Image    string `json:"image,omitempty"`
}

// HitFrom builds a hit from a document
func HitFrom(kind string, doc Document) Hit {
	return Hit{
		Kind:     kind,
		ID:       doc.ID,
		Title:    doc.Title,
		Summary:  doc.Summary,
		Category: doc.Category,
		Image:    doc.Image,
	}
}

// Indexer keeps a full-text index of content. Implementations only return
// visible documents from Search.
type Indexer interface {
	Enabled() bool
	Upsert(kind string, doc Document) error
	Remove(kind string, id uint) error
	Search(kind, query string, limit int) ([]Hit, error)
}

// NoopIndexer is used when no search server is configured
type NoopIndexer struct{}

func (NoopIndexer) Enabled() bool {
	return false
}

func (NoopIndexer) Upsert(kind string, doc Document) error {
	return nil
}

func (NoopIndexer) Remove(kind string, id uint) error {
	return nil
}

func (NoopIndexer) Search(kind, query string, limit int) ([]Hit, error) {
	return []Hit{}, nil
}

// Summarize trims text to at most n runes on a word boundary
func Summarize(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
