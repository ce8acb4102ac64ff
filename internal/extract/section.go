package extract

import (
	"regexp"

	"github.com/cockroachdb/errors"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Values is the raw field map threaded through one in-progress
// transaction: field name to unparsed captured string.
type Values map[string]string

// AssignFunc reads raw captures plus accessible context values and writes
// typed results onto the in-progress transaction.
type AssignFunc func(t *models.Transaction, v Values) error

// Step is one unit of a builder's declared sequence: a Section or an
// Alternation.
type Step interface {
	run(st *buildState) error
	contextKeys() []string
}

// Section is one ordered group of patterns bound to an assignment.
// Patterns are alternatives tried in declaration order; the first whose
// match carries all required attributes wins and the rest are not
// evaluated.
type Section struct {
	// Attributes are capture-group names that must all be present in a
	// match for it to count.
	Attributes []string

	// Context lists document-context keys copied into the value map
	// before assignment (e.g. "currency").
	Context []string

	// Patterns are the ordered alternatives. Compile them with Pattern
	// so ^ and $ anchor individual lines of the block text.
	Patterns []*regexp.Regexp

	// Assign commits the matched values onto the transaction.
	Assign AssignFunc

	// Optional sections that fail to match are skipped instead of
	// failing the block.
	Optional bool
}

func (s *Section) contextKeys() []string { return s.Context }

func (s *Section) run(st *buildState) error {
	v, ok := s.match(st.block.Text)
	if !ok {
		if s.Optional {
			return nil
		}
		return errors.Wrapf(ErrNoMatch, "section with attributes %v", s.Attributes)
	}
	return s.commit(st, v)
}

// match scans the block text with each pattern in turn. Within one
// pattern, matches are considered in text order and the first carrying
// every required attribute is used. Declaration order is authoritative:
// iteration never depends on map order.
func (s *Section) match(text string) (Values, bool) {
	for _, p := range s.Patterns {
		names := p.SubexpNames()
		for _, idx := range p.FindAllStringSubmatchIndex(text, -1) {
			v := valuesFromMatch(text, names, idx)
			if hasAll(v, s.Attributes) {
				return v, true
			}
		}
	}
	return nil, false
}

func (s *Section) commit(st *buildState, v Values) error {
	for _, key := range s.Context {
		val, ok := st.ctx.Get(key)
		if !ok {
			return errors.Wrapf(ErrMissingContext, "key %q", key)
		}
		v[key] = val
	}
	for k, val := range v {
		st.values[k] = val
	}
	if s.Assign == nil {
		return nil
	}
	return s.Assign(st.tx, v)
}

// Alternation groups several complete sections; the first that matches
// commits its assignment and later sections are skipped. Used when a
// transaction's layout varies across statements from one institution.
type Alternation struct {
	Sections []*Section
}

// OneOf builds an alternation over the given sections.
func OneOf(sections ...*Section) *Alternation {
	return &Alternation{Sections: sections}
}

func (a *Alternation) contextKeys() []string {
	var keys []string
	for _, s := range a.Sections {
		keys = append(keys, s.Context...)
	}
	return keys
}

func (a *Alternation) run(st *buildState) error {
	for _, s := range a.Sections {
		v, ok := s.match(st.block.Text)
		if !ok {
			continue
		}
		// Committed: an assignment failure past this point fails the
		// block rather than falling through to a later section.
		return s.commit(st, v)
	}
	return errors.Wrapf(ErrNoMatch, "no alternative of %d sections matched", len(a.Sections))
}

// captureNamed returns the named captures of the first match of p in
// text, or ok=false when p does not match.
func captureNamed(p *regexp.Regexp, text string) (Values, bool) {
	idx := p.FindStringSubmatchIndex(text)
	if idx == nil {
		return nil, false
	}
	return valuesFromMatch(text, p.SubexpNames(), idx), true
}

// valuesFromMatch extracts the named groups that participated in a match.
// A group that did not participate is absent from the result, which is
// what required-attribute checks rely on.
func valuesFromMatch(text string, names []string, idx []int) Values {
	v := make(Values, len(names))
	for i, name := range names {
		if name == "" || 2*i >= len(idx) || idx[2*i] < 0 {
			continue
		}
		v[name] = text[idx[2*i]:idx[2*i+1]]
	}
	return v
}

func hasAll(v Values, attrs []string) bool {
	for _, a := range attrs {
		if _, ok := v[a]; !ok {
			return false
		}
	}
	return true
}
