package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(`
header
01-01-2025 Buy first
detail one
01-02-2025 Buy second
detail two
footer`), "\n")

	def := &BlockDef{Start: Pattern(`.* Buy .*`)}
	blocks := segment(lines, def)

	require.Len(t, blocks, 2)
	assert.Equal(t, 1, blocks[0].StartLine)
	assert.Equal(t, "01-01-2025 Buy first\ndetail one", blocks[0].Text,
		"block runs up to but not including the next start match")
	assert.Equal(t, 3, blocks[1].StartLine)
	assert.Equal(t, "01-02-2025 Buy second\ndetail two\nfooter", blocks[1].Text,
		"last block extends to end of document")
}

func TestSegmentWithEndPattern(t *testing.T) {
	lines := []string{
		"START a",
		"body",
		"END",
		"trailing",
	}
	def := &BlockDef{Start: Pattern(`^START`), End: Pattern(`^END$`)}
	blocks := segment(lines, def)

	require.Len(t, blocks, 1)
	assert.Equal(t, "START a\nbody", blocks[0].Text, "end-matching line is excluded")
}

func TestSegmentEndPatternNeverMatches(t *testing.T) {
	lines := []string{"START a", "body", "more"}
	def := &BlockDef{Start: Pattern(`^START`), End: Pattern(`^NEVER$`)}
	blocks := segment(lines, def)

	require.Len(t, blocks, 1)
	assert.Equal(t, "START a\nbody\nmore", blocks[0].Text,
		"unmatched end pattern extends the block to end-of-document")
}

func TestSegmentNoMatches(t *testing.T) {
	lines := []string{"nothing", "relevant", "here"}
	def := &BlockDef{Start: Pattern(`.* Buy .*`)}
	assert.Empty(t, segment(lines, def), "zero matches yield zero blocks, not an error")
}

func TestSegmentBlocksNeverOverlap(t *testing.T) {
	lines := []string{"START", "START", "START"}
	def := &BlockDef{Start: Pattern(`^START$`)}
	blocks := segment(lines, def)

	require.Len(t, blocks, 3)
	for i, blk := range blocks {
		assert.Equal(t, i, blk.StartLine)
		assert.Len(t, blk.Lines, 1)
	}
}
