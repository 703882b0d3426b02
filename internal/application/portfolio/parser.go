package portfolio

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Upload file format: one holding per line, three pipe-delimited fields in
// the order amount|symbol|initialBuyPrice. Numbers use the invariant
// convention ("." decimal separator, no grouping). The symbol field is taken
// verbatim; surrounding whitespace stays part of the symbol.

// ParsedHolding is one successfully parsed upload line.
type ParsedHolding struct {
	Coin            string
	Amount          decimal.Decimal
	InitialBuyPrice decimal.Decimal
}

// ParseError tags a line-level parse failure with its reason. Lines that
// fail to parse are skipped, never the whole batch.
type ParseError struct {
	Reason error // ErrLineFormat, ErrInvalidAmount or ErrInvalidPrice
	Line   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Line)
}

func (e *ParseError) Unwrap() error {
	return e.Reason
}

// ParseLine parses a single upload line into a ParsedHolding.
func ParseLine(line string) (ParsedHolding, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 3 {
		return ParsedHolding{}, &ParseError{Reason: ErrLineFormat, Line: line}
	}

	amount, err := parseInvariantDecimal(parts[0])
	if err != nil || amount.IsNegative() {
		return ParsedHolding{}, &ParseError{Reason: ErrInvalidAmount, Line: line}
	}

	price, err := parseInvariantDecimal(parts[2])
	if err != nil || price.IsNegative() {
		return ParsedHolding{}, &ParseError{Reason: ErrInvalidPrice, Line: line}
	}

	return ParsedHolding{
		Coin:            parts[1],
		Amount:          amount,
		InitialBuyPrice: price,
	}, nil
}

// parseInvariantDecimal rejects grouping separators and exponent notation so
// "1,000" and "1e3" fail the same way on every machine locale.
func parseInvariantDecimal(s string) (decimal.Decimal, error) {
	if strings.ContainsAny(s, ",eE ") {
		return decimal.Decimal{}, fmt.Errorf("not an invariant decimal: %q", s)
	}
	return decimal.NewFromString(s)
}

// SplitLines breaks raw upload text into lines, tolerating both \n and \r\n
// endings. Blank lines (including trailing newline artifacts) are dropped so
// they never surface as parse errors.
func SplitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(normalized, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
