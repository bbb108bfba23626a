// Package metadata defines the bibliographic record model shared across subsystems.
package metadata

import (
	"time"
)

// Identifier namespaces recognized in Record.Identifiers.
const (
	IDYes24 = "yes24"
	IDISBN  = "isbn"
)

// Record is one bibliographic result produced by a detail-page worker.
type Record struct {
	Title       string            `json:"title"`
	Authors     []string          `json:"authors"`
	Series      string            `json:"series,omitempty"`
	SeriesIndex float64           `json:"series_index,omitempty"`
	Publisher   string            `json:"publisher,omitempty"`
	PubDate     *time.Time        `json:"pubdate,omitempty"`
	Comments    string            `json:"comments,omitempty"`
	Language    string            `json:"language"`
	Identifiers map[string]string `json:"identifiers"`
	CoverURL    string            `json:"cover_url,omitempty"`

	// Relevance orders results: lower sorts earlier. It starts as the
	// candidate's position in the search listing.
	Relevance int `json:"relevance"`
}

// NewRecord builds a Record with the mandatory fields set.
func NewRecord(title string, authors []string) *Record {
	return &Record{
		Title:       title,
		Authors:     authors,
		Identifiers: make(map[string]string),
	}
}

// SetIdentifier records an identifier under the given namespace.
func (r *Record) SetIdentifier(ns, value string) {
	if r.Identifiers == nil {
		r.Identifiers = make(map[string]string)
	}
	r.Identifiers[ns] = value
}

// Identifier returns the identifier for a namespace, or "".
func (r *Record) Identifier(ns string) string {
	return r.Identifiers[ns]
}

// Complete reports whether the record carries the mandatory fields
// (title, at least one author, and a yes24 id).
func (r *Record) Complete() bool {
	return r.Title != "" && len(r.Authors) > 0 && r.Identifier(IDYes24) != ""
}
