package extract

import (
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Item is the unit of output, produced exactly once per matched block:
// either a completed transaction with zero or more warnings, or a failure
// carrying the reason and the offending block text.
type Item struct {
	Transaction *models.Transaction
	Warnings    []string
	Err         error
	BlockText   string
}

// Failed reports whether this item records a block-level failure.
func (it *Item) Failed() bool { return it.Err != nil }

func failedItem(err error, blk *Block) *Item {
	return &Item{Err: err, BlockText: blk.Text}
}
