package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextPutGet(t *testing.T) {
	ctx := NewContext()
	require.NoError(t, ctx.Put("currency", "USD"))

	v, ok := ctx.Get("currency")
	assert.True(t, ok)
	assert.Equal(t, "USD", v)

	_, ok = ctx.Get("missing")
	assert.False(t, ok)
}

func TestContextImmutableOnceSet(t *testing.T) {
	ctx := NewContext()
	require.NoError(t, ctx.Put("currency", "USD"))
	assert.Error(t, ctx.Put("currency", "CAD"), "a key must not be overwritten within its scope")

	v, _ := ctx.Get("currency")
	assert.Equal(t, "USD", v, "the first assignment wins")
}

func TestContextChildShadowing(t *testing.T) {
	doc := NewContext()
	require.NoError(t, doc.Put("currency", "USD"))

	blk := doc.Child()
	v, ok := blk.Get("currency")
	require.True(t, ok, "child scope sees parent entries")
	assert.Equal(t, "USD", v)

	// Shadowing in the child leaves the parent untouched.
	require.NoError(t, blk.Put("currency", "CAD"))
	v, _ = blk.Get("currency")
	assert.Equal(t, "CAD", v)
	v, _ = doc.Get("currency")
	assert.Equal(t, "USD", v)
}
