package extract

import (
	"strings"
)

// Block is a contiguous span of document text identified by a block
// definition's start pattern. Its text is never mutated; all matching is
// read-only over it.
type Block struct {
	StartLine int // zero-based index of the start line in the document
	Lines     []string
	Text      string
}

// segment partitions document lines into blocks for one definition. Each
// block spans from a matched start line up to, but not including, the
// next start match or the end match, whichever comes first. An end
// pattern that never matches extends the block to end-of-document. Zero
// start matches yield zero blocks.
func segment(lines []string, def *BlockDef) []*Block {
	var starts []int
	for i, line := range lines {
		if def.Start.MatchString(line) {
			starts = append(starts, i)
		}
	}

	blocks := make([]*Block, 0, len(starts))
	for n, start := range starts {
		stop := len(lines)
		if n+1 < len(starts) {
			stop = starts[n+1]
		}
		if def.End != nil {
			for i := start + 1; i < stop; i++ {
				if def.End.MatchString(lines[i]) {
					stop = i
					break
				}
			}
		}
		span := lines[start:stop]
		blocks = append(blocks, &Block{
			StartLine: start,
			Lines:     span,
			Text:      strings.Join(span, "\n"),
		})
	}
	return blocks
}
