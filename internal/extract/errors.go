package extract

import (
	"github.com/cockroachdb/errors"

	"github.com/insightdelivered/statement-extractor/internal/coerce"
)

// Sentinel errors for the extraction failure taxonomy. Callers distinguish
// them with errors.Is; wrapped variants carry document source and block
// text for diagnostics.
var (
	// ErrUnrecognizedDocument means no configured document type matched.
	// Fatal for the document; no items are produced.
	ErrUnrecognizedDocument = errors.New("unrecognized document")

	// ErrMissingContext means a required document-scoped context key was
	// never populated (e.g. statement currency). Fatal for the document.
	ErrMissingContext = errors.New("missing document context")

	// ErrNoMatch means a block's section tree produced no full match.
	// Fatal only for that block; extraction continues.
	ErrNoMatch = errors.New("no pattern matched")

	// ErrCoercion means a matched capture could not be converted to its
	// typed value. Fatal only for that block.
	ErrCoercion = coerce.ErrCoercion
)
