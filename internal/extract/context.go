package extract

import (
	"github.com/cockroachdb/errors"
)

// Context is the scoped key/value store carrying cross-cutting values
// (e.g. statement currency) from document scope down into block scope.
// A key is immutable once set within a scope; a child scope may shadow a
// key without mutating the parent.
type Context struct {
	parent *Context
	values map[string]string
}

// NewContext returns an empty document-scope context.
func NewContext() *Context {
	return &Context{values: make(map[string]string)}
}

// Child returns a narrower scope that sees all parent entries and may
// shadow them locally.
func (c *Context) Child() *Context {
	return &Context{parent: c, values: make(map[string]string)}
}

// Put sets a key in this scope. Setting a key already present in the
// same scope is an error; shadowing a parent entry is allowed.
func (c *Context) Put(key, value string) error {
	if _, ok := c.values[key]; ok {
		return errors.Newf("context key %q already set in this scope", key)
	}
	c.values[key] = value
	return nil
}

// Get looks a key up in this scope, then in enclosing scopes.
func (c *Context) Get(key string) (string, bool) {
	for s := c; s != nil; s = s.parent {
		if v, ok := s.values[key]; ok {
			return v, true
		}
	}
	return "", false
}
