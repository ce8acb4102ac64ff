package extract

import (
	"github.com/cockroachdb/errors"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// feeTolerance is how far, in minor units, a net amount may drift from
// gross plus/minus fee before a reconciliation warning is attached.
const feeTolerance = 1

// Builder assembles one typed transaction from a block. Subject produces
// the empty shell with its discriminant preset ("this block is always a
// BUY"); Steps run in declared order, threading the raw field map and the
// context store. Any step failure fails the whole block; no partially
// populated transaction is ever exposed as successful.
type Builder struct {
	Subject func() *models.Transaction
	Steps   []Step
}

type buildState struct {
	block    *Block
	ctx      *Context
	tx       *models.Transaction
	values   Values
	warnings []string
}

// Build runs the step sequence over the block and wraps the outcome into
// an item: the finished transaction with any warnings, or the failure
// with the offending block text.
func (b *Builder) Build(blk *Block, ctx *Context) *Item {
	st := &buildState{
		block:  blk,
		ctx:    ctx,
		tx:     b.Subject(),
		values: make(Values),
	}

	for _, step := range b.Steps {
		if err := step.run(st); err != nil {
			return failedItem(err, blk)
		}
	}

	if w := reconcileFee(st.tx); w != "" {
		st.warnings = append(st.warnings, w)
	}

	if err := st.tx.Validate(); err != nil {
		return failedItem(errors.Wrap(err, "assembled transaction is invalid"), blk)
	}
	return &Item{Transaction: st.tx, Warnings: st.warnings}
}

// reconcileFee cross-checks net against gross and fee when a section
// captured all three. Money leaving the account (buys) pays the fee on
// top of gross; money arriving (sells, income) has it deducted. A
// mismatch beyond the tolerance yields a warning, not a failure.
func reconcileFee(t *models.Transaction) string {
	if t.Gross == 0 || t.Fee == 0 {
		return ""
	}
	expected := t.Gross - t.Fee
	if t.Type == models.Buy || t.Type == models.Deposit {
		expected = t.Gross + t.Fee
	}
	diff := t.Amount - expected
	if diff < 0 {
		diff = -diff
	}
	if diff <= feeTolerance {
		return ""
	}
	return "net " + models.FormatMinor(t.Amount) + " does not reconcile with gross " +
		models.FormatMinor(t.Gross) + " and fee " + models.FormatMinor(t.Fee)
}
