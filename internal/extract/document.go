package extract

import (
	"github.com/google/uuid"
)

// Document is one ingested statement: raw text plus a source identifier.
// Immutable once created.
type Document struct {
	ID     string
	Source string
	Text   string
}

// NewDocument wraps statement text for extraction. Source is a
// human-meaningful origin such as a file name or upload name.
func NewDocument(source, text string) *Document {
	return &Document{
		ID:     uuid.NewString(),
		Source: source,
		Text:   text,
	}
}
