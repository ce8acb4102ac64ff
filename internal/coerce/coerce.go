// Package coerce converts raw captured statement text into typed values.
// Every function is pure: the same input string and parameters always
// yield the same value or the same error. Numeric parsing is exact
// fixed-point; float arithmetic is never used on monetary values.
package coerce

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrCoercion marks every failure produced by this package. Callers check
// it with errors.Is to distinguish bad captured values from engine bugs.
var ErrCoercion = errors.New("coercion failed")

// Locale describes how an institution writes decimal numbers.
type Locale struct {
	Decimal rune // decimal separator, e.g. '.'
	Group   rune // grouping separator, e.g. ','; 0 disables grouping
}

// EnCA is the en-CA/en-US numeric locale: "2,046.50".
var EnCA = Locale{Decimal: '.', Group: ','}

// DeDE is the German numeric locale: "2.046,50".
var DeDE = Locale{Decimal: ',', Group: '.'}

// Params carries the per-institution coercion configuration: numeric
// locale, accepted date layouts in priority order, and the exchange
// suffix appended to unqualified ticker symbols.
type Params struct {
	Locale          Locale
	DateLayouts     []string
	DefaultExchange string
}

// Amount parses a decimal amount into minor currency units. Parenthesized
// values denote negative amounts: "(2,046.50)" -> -204650. Any
// non-numeric residue is an error.
func (p Params) Amount(s string) (int64, error) {
	return parseFixed(s, 2, p.Locale)
}

// FormatAmount renders minor units back under the same locale, without
// grouping: 204650 -> "2046.50". Amount(FormatAmount(v)) == v for all v.
func (p Params) FormatAmount(v int64) string {
	return formatFixed(v, 2, p.Locale)
}

// Shares parses a share quantity into fixed-point at sharesScale (1e4).
// The quantity must be strictly positive.
func (p Params) Shares(s string) (int64, error) {
	v, err := parseFixed(s, 4, p.Locale)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.Wrapf(ErrCoercion, "share count %q must be strictly positive", s)
	}
	return v, nil
}

// Date parses a date under the configured layouts, tried in order.
// Invalid calendar dates (e.g. 31-02-2025) are rejected.
func (p Params) Date(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range p.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrCoercion, "date %q matches none of the configured layouts", s)
}

// Ticker normalizes a ticker symbol. A symbol without an exchange
// qualifier (no '.') gets the institution's default exchange suffix
// appended; an already-qualified symbol passes through unchanged.
func (p Params) Ticker(s string) string {
	s = strings.TrimSpace(s)
	if p.DefaultExchange != "" && !strings.ContainsRune(s, '.') {
		return s + p.DefaultExchange
	}
	return s
}

// Currency validates an ISO-4217-like currency code: exactly three
// ASCII letters, returned upper-cased.
func Currency(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return "", errors.Wrapf(ErrCoercion, "currency code %q is not three letters", s)
	}
	up := strings.ToUpper(s)
	for _, r := range up {
		if r < 'A' || r > 'Z' {
			return "", errors.Wrapf(ErrCoercion, "currency code %q contains non-letter", s)
		}
	}
	return up, nil
}

// parseFixed parses a decimal string into an integer scaled by
// 10^decimals, exactly. Grouping separators are stripped, the decimal
// separator is locale-dependent, and surrounding parentheses negate.
func parseFixed(s string, decimals int, loc Locale) (int64, error) {
	raw := s
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	if loc.Group != 0 {
		s = strings.ReplaceAll(s, string(loc.Group), "")
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexRune(s, loc.Decimal); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, errors.Wrapf(ErrCoercion, "empty number %q", raw)
	}
	if len(fracPart) > decimals {
		return 0, errors.Wrapf(ErrCoercion, "number %q has more than %d decimal places", raw, decimals)
	}
	for len(fracPart) < decimals {
		fracPart += "0"
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseUint(intPart, 10, 63)
	if err != nil {
		return 0, errors.Wrapf(ErrCoercion, "bad integer part in %q", raw)
	}
	var frac uint64
	if decimals > 0 {
		frac, err = strconv.ParseUint(fracPart, 10, 63)
		if err != nil {
			return 0, errors.Wrapf(ErrCoercion, "bad fractional part in %q", raw)
		}
	}

	scale := uint64(1)
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	if whole > (1<<62)/scale {
		return 0, errors.Wrapf(ErrCoercion, "number %q overflows", raw)
	}
	v := int64(whole*scale + frac)
	if neg {
		v = -v
	}
	return v, nil
}

func formatFixed(v int64, decimals int, loc Locale) string {
	neg := v < 0
	if neg {
		v = -v
	}
	scale := int64(1)
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	frac := strconv.FormatInt(v%scale, 10)
	for len(frac) < decimals {
		frac = "0" + frac
	}
	out := strconv.FormatInt(v/scale, 10) + string(loc.Decimal) + frac
	if neg {
		out = "-" + out
	}
	return out
}
