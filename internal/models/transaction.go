package models

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/insightdelivered/statement-extractor/internal/securities"
)

// Type discriminates the transaction variants produced by extraction.
type Type string

const (
	Deposit  Type = "DEPOSIT"
	Buy      Type = "BUY"
	Sell     Type = "SELL"
	Dividend Type = "DIVIDEND"
)

// SharesScale is the fixed-point scale for share quantities: 4 decimal
// places, so 29 shares is stored as 290000.
const SharesScale = 10000

// Transaction is a single extracted statement transaction. Amount, Fee and
// Gross are in minor currency units (cents). Shares is fixed-point at
// SharesScale; zero means not applicable.
type Transaction struct {
	Type     Type            `json:"type"`
	Date     time.Time       `json:"date"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Shares   int64           `json:"shares,omitempty"`
	Fee      int64           `json:"fee,omitempty"`
	Gross    int64           `json:"gross,omitempty"`
	Security *securities.Ref `json:"security,omitempty"`
	Note     string          `json:"note,omitempty"`
}

// Validate checks the invariants a transaction must satisfy before it is
// handed to callers: date and currency are always required, the amount is
// never negative, and a share count, when present, is strictly positive
// for buy/sell and dividend records.
func (t *Transaction) Validate() error {
	switch t.Type {
	case Deposit, Buy, Sell, Dividend:
	default:
		return errors.Newf("unknown transaction type %q", t.Type)
	}
	if t.Date.IsZero() {
		return errors.New("transaction date is required")
	}
	if t.Amount < 0 {
		return errors.Newf("transaction amount must not be negative, got %d", t.Amount)
	}
	if t.Currency == "" {
		return errors.New("transaction currency is required")
	}
	if t.Shares < 0 {
		return errors.Newf("share count must not be negative, got %d", t.Shares)
	}
	if t.Type != Deposit && t.Security != nil && t.Shares == 0 {
		return errors.Newf("%s with security %s has no share count", t.Type, t.Security.Ticker)
	}
	return nil
}

// FormatMinor renders a minor-unit amount as a decimal string,
// e.g. 1000000 -> "10000.00".
func FormatMinor(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v/100, 10) + "." + pad(v%100, 2)
	if neg {
		return "-" + s
	}
	return s
}

// FormatShares renders a fixed-point share count with trailing zeros
// trimmed: 290000 -> "29", 125000 -> "12.5".
func FormatShares(v int64) string {
	whole := v / SharesScale
	frac := v % SharesScale
	if frac == 0 {
		return strconv.FormatInt(whole, 10)
	}
	s := pad(frac, 4)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return strconv.FormatInt(whole, 10) + "." + s
}

func pad(v int64, width int) string {
	s := strconv.FormatInt(v, 10)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
