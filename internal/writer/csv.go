package writer

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/insightdelivered/statement-extractor/internal/extract"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// CSVWriter writes extracted items to CSV format. Failed items become
// rows in a trailing failures section when IncludeFailures is set, so a
// statement with one bad block still produces a reviewable file.
type CSVWriter struct {
	IncludeFailures bool
}

// WriteToFile writes the item sequence to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, items []*extract.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create output file %q", path)
	}
	defer f.Close()

	return w.Write(f, items)
}

// Write writes the item sequence in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, items []*extract.Item) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	header := []string{"Date", "Type", "Ticker", "Security", "Shares", "Amount", "Currency", "Fee", "Note", "Warnings"}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write CSV header")
	}

	var failed []*extract.Item
	for _, item := range items {
		if item.Failed() {
			failed = append(failed, item)
			continue
		}
		if err := cw.Write(transactionRow(item)); err != nil {
			return errors.Wrap(err, "write CSV row")
		}
	}

	if w.IncludeFailures && len(failed) > 0 {
		cw.Write([]string{})
		cw.Write([]string{"# Failed blocks", "Reason", "Text"})
		for _, item := range failed {
			if err := cw.Write([]string{"", item.Err.Error(), item.BlockText}); err != nil {
				return errors.Wrap(err, "write failure row")
			}
		}
	}

	return nil
}

func transactionRow(item *extract.Item) []string {
	t := item.Transaction
	ticker, name := "", ""
	if t.Security != nil {
		ticker, name = t.Security.Ticker, t.Security.Name
	}
	shares := ""
	if t.Shares != 0 {
		shares = models.FormatShares(t.Shares)
	}
	fee := ""
	if t.Fee != 0 {
		fee = models.FormatMinor(t.Fee)
	}
	warnings := ""
	for i, w := range item.Warnings {
		if i > 0 {
			warnings += "; "
		}
		warnings += w
	}
	return []string{
		t.Date.Format("2006-01-02"),
		string(t.Type),
		ticker,
		name,
		shares,
		models.FormatMinor(t.Amount),
		t.Currency,
		fee,
		t.Note,
		warnings,
	}
}
