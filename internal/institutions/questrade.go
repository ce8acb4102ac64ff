package institutions

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/coerce"
	"github.com/insightdelivered/statement-extractor/internal/extract"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/securities"
)

// Questrade returns the extraction config for Questrade, Inc. account
// statements. Activity lines use mm-dd-yyyy dates, en-CA amounts, and
// unqualified tickers defaulting to the Toronto exchange.
func Questrade(reg securities.Registry) *extract.Config {
	p := coerce.Params{
		Locale:          coerce.EnCA,
		DateLayouts:     []string{"01-02-2006"},
		DefaultExchange: ".TO",
	}

	activity := &extract.DocumentType{
		Marker: extract.Pattern(`04\. ACTIVITY DETAILS`),
		Context: []*extract.ContextRule{
			{
				// e.g. "Combined in USD"
				Pattern: extract.Pattern(`.*Combined in (?P<currency>\w{3})$`),
				Assign: func(ctx *extract.Context, v extract.Values) error {
					code, err := coerce.Currency(v["currency"])
					if err != nil {
						return err
					}
					return ctx.Put("currency", code)
				},
			},
		},
		Blocks: []*extract.BlockDef{
			questradeDeposit(p),
			questradeBuy(p, reg),
			questradeDividend(p, reg),
		},
	}

	return &extract.Config{
		Name:        "Questrade, Inc.",
		Identifiers: []string{"Questrade, Inc.", "Questrade Inc", "questrade.com"},
		Types:       []*extract.DocumentType{activity},
	}
}

// questradeDeposit handles contribution lines like:
// 04-09-2025 04-09-2025 Contribution CONT 6263984218 - - - - 10,000.00 - - - -
func questradeDeposit(p coerce.Params) *extract.BlockDef {
	return &extract.BlockDef{
		Start: extract.Pattern(`.* Contribution .*`),
		Build: &extract.Builder{
			Subject: func() *models.Transaction {
				return &models.Transaction{Type: models.Deposit}
			},
			Steps: []extract.Step{
				&extract.Section{
					Attributes: []string{"date", "amount"},
					Context:    []string{"currency"},
					Patterns: []*regexp.Regexp{
						extract.Pattern(`^(?P<date>\d{2}-\d{2}-\d{4}) \d{2}-\d{2}-\d{4} Contribution .* (?P<amount>[.,\d]+).*$`),
					},
					Assign: func(t *models.Transaction, v extract.Values) error {
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
						t.Note = "Contribution"
						return nil
					},
				},
			},
		},
	}
}

// questradeBuy handles purchases whose security and settlement layouts
// vary across statement vintages, e.g.:
// 04-10-2025 04-11-2025 Buy .VEQT VANGUARD ALL-EQUITY ETF  PORTFOLIO
// 01-17-2023 01-19-2023 Buy .XEQT UNITS|WE ACTED AS AGENT|AVG PRICE - ASK 19 25.320 (481.08) - (481.08) - - - -
// UNIT|WE ACTED AS AGENT 50.0000 40.930 (2,046.50) (0.10) (2,046.60) - - - -
func questradeBuy(p coerce.Params, reg securities.Registry) *extract.BlockDef {
	setSecurity := func(t *models.Transaction, ticker, name, currency string) error {
		ref, err := reg.GetOrCreate(p.Ticker(ticker), strings.TrimSpace(name))
		if err != nil {
			return err
		}
		t.Security = &ref
		t.Currency = currency
		return nil
	}
	setAmounts := func(t *models.Transaction, v extract.Values) error {
		shares, err := p.Shares(v["shares"])
		if err != nil {
			return err
		}
		amount, err := p.Amount(v["amount"])
		if err != nil {
			return err
		}
		gross, err := p.Amount(v["gross"])
		if err != nil {
			return err
		}
		t.Shares = shares
		t.Amount = amount
		t.Gross = gross
		return nil
	}

	return &extract.BlockDef{
		Start: extract.Pattern(`.* Buy .*`),
		Build: &extract.Builder{
			Subject: func() *models.Transaction {
				return &models.Transaction{Type: models.Buy}
			},
			Steps: []extract.Step{
				&extract.Section{
					Attributes: []string{"date"},
					Patterns: []*regexp.Regexp{
						extract.Pattern(`^(?P<date>\d{2}-\d{2}-\d{4}) \d{2}-\d{2}-\d{4} Buy .*`),
					},
					Assign: func(t *models.Transaction, v extract.Values) error {
						date, err := p.Date(v["date"])
						if err != nil {
							return err
						}
						t.Date = date
						return nil
					},
				},

				extract.OneOf(
					// Inline agent note, no security name on the line.
					&extract.Section{
						Attributes: []string{"tickerSymbol"},
						Context:    []string{"currency"},
						Patterns: []*regexp.Regexp{
							extract.Pattern(`^.* Buy \.(?P<tickerSymbol>\S+) UNITS\|WE ACTED AS AGENT\|AVG PRICE - ASK .*$`),
						},
						Assign: func(t *models.Transaction, v extract.Values) error {
							return setSecurity(t, v["tickerSymbol"], "", v["currency"])
						},
					},
					// Ticker followed by the security display name.
					&extract.Section{
						Attributes: []string{"tickerSymbol", "name"},
						Context:    []string{"currency"},
						Patterns: []*regexp.Regexp{
							extract.Pattern(`^.* Buy \.(?P<tickerSymbol>\S+) (?P<name>.*?)$`),
						},
						Assign: func(t *models.Transaction, v extract.Values) error {
							return setSecurity(t, v["tickerSymbol"], v["name"], v["currency"])
						},
					},
				),

				extract.OneOf(
					// Settlement without a commission column:
					// ETF UNIT  WE ACTED AS AGENT 50.0000 40.930 (2,046.50) - (2,046.50) - - - -
					&extract.Section{
						Attributes: []string{"shares", "gross", "amount"},
						Patterns: []*regexp.Regexp{
							extract.Pattern(`^.*\s?UNITS?\s+WE ACTED AS AGENT (?P<shares>[\d.,]+) (?P<price>[\d.,]+) \((?P<gross>[\d,.\-]+)\) - \((?P<amount>[\d,.\-]+)\) .*$`),
						},
						Assign: setAmounts,
					},
					// Settlement with a commission column:
					// UNIT|WE ACTED AS AGENT 50.0000 40.930 (2,046.50) (0.10) (2,046.60) - - - -
					&extract.Section{
						Attributes: []string{"shares", "gross", "fee", "amount"},
						Context:    []string{"currency"},
						Patterns: []*regexp.Regexp{
							extract.Pattern(`^UNITS?(\||  )WE ACTED AS AGENT (?P<shares>[\d.,]+) (?P<price>[\d.,]+) \((?P<gross>[\d,.\-]+)\) \((?P<fee>[\d,.\-]+)\) \((?P<amount>[\d,.\-]+)\) .*$`),
						},
						Assign: func(t *models.Transaction, v extract.Values) error {
							if err := setAmounts(t, v); err != nil {
								return err
							}
							fee, err := p.Amount(v["fee"])
							if err != nil {
								return err
							}
							t.Fee = fee
							return nil
						},
					},
					// Average-price settlement folded onto the buy line:
					// ... UNITS|WE ACTED AS AGENT|AVG PRICE - ASK 19 25.320 (481.08) - (481.08) - - - -
					&extract.Section{
						Attributes: []string{"shares", "gross", "amount"},
						Patterns: []*regexp.Regexp{
							extract.Pattern(`^.+ UNITS\|WE ACTED AS AGENT\|AVG PRICE - ASK (?P<shares>[\d.,]+) (?P<price>[\d.,]+) \((?P<gross>[\d,.\-]+)\) - \((?P<amount>[\d,.\-]+)\) .*$`),
						},
						Assign: setAmounts,
					},
				),
			},
		},
	}
}

// questradeDividend handles distribution lines like:
// 01-07-2025 01-07-2025    .VEQT UNIT DIST      ON      29 SHS REC 12/30/24 PAY - - - - 20.69 - - - -
func questradeDividend(p coerce.Params, reg securities.Registry) *extract.BlockDef {
	return &extract.BlockDef{
		Start: extract.Pattern(`.* UNITS?( |\|)DIST .*`),
		Build: &extract.Builder{
			Subject: func() *models.Transaction {
				return &models.Transaction{Type: models.Dividend}
			},
			Steps: []extract.Step{
				&extract.Section{
					Attributes: []string{"date", "tickerSymbol", "shares", "amount", "recNote"},
					Context:    []string{"currency"},
					Patterns: []*regexp.Regexp{
						extract.Pattern(`^(?P<date>\d{2}-\d{2}-\d{4}) \d{2}-\d{2}-\d{4}\s+\.(?P<tickerSymbol>\S+) UNITS?( |\|)DIST\s+ON\s+(?P<shares>[\d,.]+) SHS( |\|)(?P<recNote>REC \d{2}/\d{2}/\d{2})( PAY)? (- ){4}(?P<amount>[\d,.]+).*$`),
					},
					Assign: func(t *models.Transaction, v extract.Values) error {
						date, err := p.Date(v["date"])
						if err != nil {
							return err
						}
						shares, err := p.Shares(v["shares"])
						if err != nil {
							return err
						}
						amount, err := p.Amount(v["amount"])
						if err != nil {
							return err
						}
						ref, err := reg.GetOrCreate(p.Ticker(v["tickerSymbol"]), "")
						if err != nil {
							return err
						}
						t.Date = date
						t.Shares = shares
						t.Amount = amount
						t.Currency = v["currency"]
						t.Note = v["recNote"]
						t.Security = &ref
						return nil
					},
				},
			},
		},
	}
}
