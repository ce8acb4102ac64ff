package extract

import (
	"regexp"
	"strings"
)

// Config describes one institution: how its documents are recognized and
// how their text decomposes into transactions. New institutions are added
// by authoring a Config value, not by writing engine code.
type Config struct {
	// Name is the institution label, e.g. "Questrade, Inc.".
	Name string

	// Identifiers are plain substrings; a document belongs to this
	// institution when any of them appears in its text. Empty means the
	// document types alone decide.
	Identifiers []string

	// Types are evaluated in declaration order; the first whose marker
	// matches governs the document.
	Types []*DocumentType
}

// DocumentType is one statement layout: an identifying pattern, optional
// document-wide context extraction, and the block definitions that carve
// the text into transactions.
type DocumentType struct {
	Marker  *regexp.Regexp
	Context []*ContextRule
	Blocks  []*BlockDef
}

// ContextRule populates one or more document-scope context entries from
// the full document text. If Assign is nil, every named capture of the
// first match is stored under its group name. A rule that does not match
// simply leaves its keys unset; whether that is fatal depends on whether
// a later section requires them.
type ContextRule struct {
	Pattern *regexp.Regexp
	Assign  func(ctx *Context, v Values) error
}

// BlockDef bounds one kind of transaction block: a start-line pattern, an
// optional end-line pattern, and the builder run over each region.
type BlockDef struct {
	Start *regexp.Regexp
	End   *regexp.Regexp
	Build *Builder
}

// Pattern compiles an institution pattern in multi-line mode, so ^ and $
// anchor individual statement lines when matched against block or
// document text.
func Pattern(expr string) *regexp.Regexp {
	return regexp.MustCompile("(?m)" + expr)
}

// matches reports whether the document text belongs to this institution.
func (c *Config) matches(text string) bool {
	if len(c.Identifiers) == 0 {
		return true
	}
	for _, id := range c.Identifiers {
		if strings.Contains(text, id) {
			return true
		}
	}
	return false
}

// applyContext runs the rules against the document text, populating ctx.
func (t *DocumentType) applyContext(ctx *Context, text string) error {
	for _, rule := range t.Context {
		v, ok := captureNamed(rule.Pattern, text)
		if !ok {
			continue
		}
		if rule.Assign != nil {
			if err := rule.Assign(ctx, v); err != nil {
				return err
			}
			continue
		}
		for k, val := range v {
			if err := ctx.Put(k, val); err != nil {
				return err
			}
		}
	}
	return nil
}

// requiredContext collects every context key demanded by the block
// builders of this document type.
func (t *DocumentType) requiredContext() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, b := range t.Blocks {
		for _, step := range b.Build.Steps {
			for _, k := range step.contextKeys() {
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
	}
	return keys
}
