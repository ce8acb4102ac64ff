package extract

import (
	"context"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/coerce"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// testbankConfig is a minimal single-institution config used to exercise
// the engine without the real catalog. Layout:
//
//	TESTBANK STATEMENT
//	Currency: USD
//	04-09-2025 DEP 100.00
func testbankConfig() *Config {
	p := coerce.Params{Locale: coerce.EnCA, DateLayouts: []string{"01-02-2006"}}
	deposit := &BlockDef{
		Start: Pattern(`^\d{2}-\d{2}-\d{4} DEP .*`),
		Build: &Builder{
			Subject: func() *models.Transaction {
				return &models.Transaction{Type: models.Deposit}
			},
			Steps: []Step{
				&Section{
					Attributes: []string{"date", "amount"},
					Context:    []string{"currency"},
					Patterns: []*regexp.Regexp{
						Pattern(`^(?P<date>\d{2}-\d{2}-\d{4}) DEP (?P<amount>[\d,.]+)$`),
					},
					Assign: func(t *models.Transaction, v Values) error {
						date, err := p.Date(v["date"])
						if err != nil {
							return err
						}
						amount, err := p.Amount(v["amount"])
						if err != nil {
							return err
						}
						t.Date = date
						t.Amount = amount
						t.Currency = v["currency"]
						return nil
					},
				},
			},
		},
	}
	return &Config{
		Name:        "Testbank",
		Identifiers: []string{"TESTBANK"},
		Types: []*DocumentType{{
			Marker: Pattern(`TESTBANK STATEMENT`),
			Context: []*ContextRule{{
				Pattern: Pattern(`^Currency: (?P<currency>\w{3})$`),
			}},
			Blocks: []*BlockDef{deposit},
		}},
	}
}

const testbankDoc = `TESTBANK STATEMENT
Currency: USD
04-09-2025 DEP 100.00
04-10-2025 DEP 250.50
`

func TestEngineExtract(t *testing.T) {
	e := New([]*Config{testbankConfig()})
	items, err := e.Extract(NewDocument("stmt.txt", testbankDoc))
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	require.False(t, first.Failed())
	assert.Equal(t, models.Deposit, first.Transaction.Type)
	assert.Equal(t, time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC), first.Transaction.Date)
	assert.Equal(t, int64(10000), first.Transaction.Amount)
	assert.Equal(t, "USD", first.Transaction.Currency)

	second := items[1]
	require.False(t, second.Failed())
	assert.Equal(t, int64(25050), second.Transaction.Amount)
}

func TestEngineUnrecognizedDocument(t *testing.T) {
	e := New([]*Config{testbankConfig()})
	_, err := e.Extract(NewDocument("other.txt", "SOME OTHER BANK\nwhatever\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedDocument))
	assert.Contains(t, err.Error(), "other.txt", "the failure names the document source")
}

func TestEngineMissingContext(t *testing.T) {
	// Marker matches but the currency line is absent, so a context key a
	// section requires was never populated. Fatal for the document: no
	// items at all.
	e := New([]*Config{testbankConfig()})
	doc := NewDocument("stmt.txt", "TESTBANK STATEMENT\n04-09-2025 DEP 100.00\n")
	items, err := e.Extract(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingContext))
	assert.Nil(t, items)
}

func TestEngineBlockFailureIsIsolated(t *testing.T) {
	// The middle line matches the block start pattern but its amount is
	// not parseable; that block fails while its neighbors succeed.
	doc := NewDocument("stmt.txt", `TESTBANK STATEMENT
Currency: USD
04-09-2025 DEP 100.00
04-10-2025 DEP garbage
04-11-2025 DEP 300.00
`)
	e := New([]*Config{testbankConfig()})
	items, err := e.Extract(doc)
	require.NoError(t, err, "block failures never escape the document boundary")
	require.Len(t, items, 3)

	assert.False(t, items[0].Failed())
	require.True(t, items[1].Failed())
	assert.Equal(t, "04-10-2025 DEP garbage", items[1].BlockText)
	assert.False(t, items[2].Failed())
	assert.Equal(t, int64(30000), items[2].Transaction.Amount)
}

func TestEngineClassificationOrder(t *testing.T) {
	// Two configs could both claim the document; the first registered
	// governs.
	first := testbankConfig()
	second := testbankConfig()
	second.Name = "Shadowbank"

	e := New([]*Config{first, second})
	cls, err := e.Classify(NewDocument("stmt.txt", testbankDoc))
	require.NoError(t, err)
	assert.Equal(t, "Testbank", cls.Config.Name)
}

func TestEngineIdempotence(t *testing.T) {
	e := New([]*Config{testbankConfig()})
	doc := NewDocument("stmt.txt", testbankDoc)

	a, err := e.Extract(doc)
	require.NoError(t, err)
	b, err := e.Extract(doc)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Transaction, b[i].Transaction)
		assert.Equal(t, a[i].Warnings, b[i].Warnings)
	}
}

func TestExtractAll(t *testing.T) {
	e := New([]*Config{testbankConfig()})
	docs := []*Document{
		NewDocument("a.txt", testbankDoc),
		NewDocument("bad.txt", "UNKNOWN\n"),
		NewDocument("c.txt", testbankDoc),
	}

	results, err := e.ExtractAll(context.Background(), docs, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Results come back in input order, and one failing document does
	// not disturb its neighbors.
	assert.Equal(t, "a.txt", results[0].Doc.Source)
	assert.Len(t, results[0].Items, 2)
	assert.True(t, errors.Is(results[1].Err, ErrUnrecognizedDocument))
	assert.Len(t, results[2].Items, 2)
}

func TestExtractAllRespectsCancellation(t *testing.T) {
	e := New([]*Config{testbankConfig()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var docs []*Document
	for i := 0; i < 32; i++ {
		docs = append(docs, NewDocument("stmt.txt", testbankDoc))
	}
	_, err := e.ExtractAll(ctx, docs, 2)
	assert.Error(t, err)
}

func TestExtractAllBoundsWorkers(t *testing.T) {
	cfg := testbankConfig()
	var inFlight, peak atomic.Int32
	// Wrap the assign step to observe concurrency.
	section := cfg.Types[0].Blocks[0].Build.Steps[0].(*Section)
	inner := section.Assign
	section.Assign = func(tx *models.Transaction, v Values) error {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return inner(tx, v)
	}

	e := New([]*Config{cfg})
	var docs []*Document
	for i := 0; i < 16; i++ {
		docs = append(docs, NewDocument("stmt.txt", testbankDoc))
	}
	_, err := e.ExtractAll(context.Background(), docs, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
