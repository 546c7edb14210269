// Package types provides the value types shared across Folio.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value in the smallest currency unit.
// Arithmetic between Money values is integer-only; conversion to and from
// major units goes through decimal.Decimal, never float64.
//
// Examples:
//   - ZAR(23000) = R230.00 (23000 cents)
//   - USD(4900) = $49.00 (4900 cents)
type Money struct {
	Amount   int64  `json:"amount"`   // Smallest unit (cents, pence, etc)
	Currency string `json:"currency"` // ISO 4217 lowercase: "zar", "usd", "eur"
}

// ZAR creates a Money value in South African Rand (cents).
func ZAR(cents int64) Money { return Money{Amount: cents, Currency: "zar"} }

// USD creates a Money value in US Dollars (cents).
func USD(cents int64) Money { return Money{Amount: cents, Currency: "usd"} }

// EUR creates a Money value in Euros (cents).
func EUR(cents int64) Money { return Money{Amount: cents, Currency: "eur"} }

// GBP creates a Money value in British Pounds (pence).
func GBP(pence int64) Money { return Money{Amount: pence, Currency: "gbp"} }

// JPY creates a Money value in Japanese Yen (no decimal).
func JPY(yen int64) Money { return Money{Amount: yen, Currency: "jpy"} }

// Zero returns a zero Money value in the specified currency.
func Zero(currency string) Money { return Money{Amount: 0, Currency: strings.ToLower(currency)} }

// FromDecimal converts an amount in major units to Money, rounding half away
// from zero to the currency's minor unit.
func FromDecimal(d decimal.Decimal, currency string) Money {
	currency = strings.ToLower(currency)
	places := int32(currencyDecimals(currency))
	return Money{
		Amount:   d.Round(places).Shift(places).IntPart(),
		Currency: currency,
	}
}

// Parse parses a major-unit string such as "230.00" into Money.
func Parse(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return FromDecimal(d, currency), nil
}

// MustParse is like Parse but panics on error. Use for literals in tests and fixtures.
func MustParse(s, currency string) Money {
	m, err := Parse(s, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the value in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -int32(currencyDecimals(m.Currency)))
}

// WithCurrency returns the same amount tagged with currency.
func (m Money) WithCurrency(currency string) Money {
	return Money{Amount: m.Amount, Currency: strings.ToLower(currency)}
}

// Arithmetic operations

// Add adds two Money values. Panics if currencies don't match.
// A zero value with no currency adopts the other operand's currency.
func (m Money) Add(other Money) Money {
	cur := m.assertSameCurrency(other)
	return Money{Amount: m.Amount + other.Amount, Currency: cur}
}

// Subtract subtracts another Money value. Panics if currencies don't match.
func (m Money) Subtract(other Money) Money {
	cur := m.assertSameCurrency(other)
	return Money{Amount: m.Amount - other.Amount, Currency: cur}
}

// Multiply multiplies the Money by an integer quantity.
func (m Money) Multiply(qty int64) Money {
	return Money{Amount: m.Amount * qty, Currency: m.Currency}
}

// Negate returns the negative of the Money value.
func (m Money) Negate() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m.Amount < 0 {
		return Money{Amount: -m.Amount, Currency: m.Currency}
	}
	return m
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Amount > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.Amount < 0 }

// Equal returns true if both Money values are equal (same amount and currency).
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.Currency == other.Currency
}

// LessThan returns true if this Money is less than other. Panics if currencies don't match.
func (m Money) LessThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount < other.Amount
}

// GreaterThan returns true if this Money is greater than other. Panics if currencies don't match.
func (m Money) GreaterThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount > other.Amount
}

// Formatting methods

// FormatMajor returns the major unit string without currency symbol.
// For currencies with 2 decimal places: "49.00" for USD(4900).
// For currencies with 0 decimal places (JPY): "100" for JPY(100).
func (m Money) FormatMajor() string {
	return m.Decimal().StringFixed(int32(currencyDecimals(m.Currency)))
}

// FormatGrouped is FormatMajor with thousands separators: "1,234.56".
func (m Money) FormatGrouped() string {
	s := m.FormatMajor()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

// Display formats the value with an explicit symbol, e.g. Display("R") = "R1,234.56".
// An empty symbol falls back to the currency's default symbol.
func (m Money) Display(symbol string) string {
	if symbol == "" {
		symbol = currencySymbol(m.Currency)
	}
	if m.Amount < 0 {
		return "-" + symbol + m.Abs().FormatGrouped()
	}
	return symbol + m.FormatGrouped()
}

// String returns a human-readable string with currency symbol.
// Examples: "R230.00", "$49.00", "€199.00", "¥100"
func (m Money) String() string {
	symbol := currencySymbol(m.Currency)
	return symbol + m.FormatMajor()
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}{
		Amount:   m.Amount,
		Currency: m.Currency,
		Display:  m.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. It accepts the object form
// produced by MarshalJSON, or a bare major-unit number or string such as
// 230.5 or "230.50" (currency is then left empty for the caller to fill).
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var raw struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*m = Money{Amount: raw.Amount, Currency: strings.ToLower(raw.Currency)}
		return nil
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = FromDecimal(d, "")
	return nil
}

// Helper functions

// assertSameCurrency panics if currencies don't match and returns the
// currency of the result.
func (m Money) assertSameCurrency(other Money) string {
	switch {
	case m.Currency == other.Currency:
		return m.Currency
	case m.Currency == "" && m.Amount == 0:
		return other.Currency
	case other.Currency == "" && other.Amount == 0:
		return m.Currency
	}
	panic(fmt.Sprintf("money: currency mismatch: %s != %s", m.Currency, other.Currency))
}

// currencySymbol returns the symbol for a currency code.
func currencySymbol(currency string) string {
	symbols := map[string]string{
		"zar": "R",
		"usd": "$",
		"eur": "€",
		"gbp": "£",
		"jpy": "¥",
		"cad": "C$",
		"aud": "A$",
		"nzd": "NZ$",
		"chf": "CHF ",
		"bwp": "P",
		"nad": "N$",
	}
	if sym, ok := symbols[strings.ToLower(currency)]; ok {
		return sym
	}
	return strings.ToUpper(currency) + " "
}

// currencyDecimals returns the number of decimal places for a currency.
func currencyDecimals(currency string) int {
	zeroDecimal := map[string]bool{
		"jpy": true,
		"krw": true,
		"vnd": true,
		"clp": true,
		"pyg": true,
		"idr": true,
	}
	if zeroDecimal[strings.ToLower(currency)] {
		return 0
	}
	return 2
}

// Sum calculates the sum of multiple Money values in currency.
func Sum(currency string, values ...Money) Money {
	result := Zero(currency)
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
