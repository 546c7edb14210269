package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/xraph/folio/types"
)

// LineAmounts is the unrounded breakdown of a single line item.
type LineAmounts struct {
	Subtotal decimal.Decimal // quantity × unit price
	Tax      decimal.Decimal // subtotal × rate / 100
}

// Total is Subtotal + Tax, unrounded.
func (a LineAmounts) Total() decimal.Decimal {
	return a.Subtotal.Add(a.Tax)
}

// Breakdown computes the exact amounts of li without rounding.
func Breakdown(li LineItem) LineAmounts {
	subtotal := li.Quantity.Mul(li.UnitPrice.Decimal())
	return LineAmounts{
		Subtotal: subtotal,
		Tax:      subtotal.Mul(li.TaxRate).Shift(-2),
	}
}

// CalculateLine sets li.LineTotal to the line's total rounded to the
// currency's minor unit and returns the unrounded breakdown.
func CalculateLine(li *LineItem, currency string) LineAmounts {
	a := Breakdown(*li)
	li.LineTotal = types.FromDecimal(a.Total(), currency)
	return a
}

// ComputeTotals recalculates every line total and the invoice's Subtotal,
// TaxAmount and Total.
//
// Subtotal and TaxAmount are rounded from the unrounded sums, so the sum of
// the rounded line totals can differ from Total by the per-line rounding
// residue (at most half a minor unit per line).
func ComputeTotals(inv *Invoice) {
	subtotal, tax := decimal.Zero, decimal.Zero
	for i := range inv.LineItems {
		a := CalculateLine(&inv.LineItems[i], inv.Currency)
		subtotal = subtotal.Add(a.Subtotal)
		tax = tax.Add(a.Tax)
	}

	inv.Subtotal = types.FromDecimal(subtotal, inv.Currency)
	inv.TaxAmount = types.FromDecimal(tax, inv.Currency)
	inv.Total = inv.Subtotal.Add(inv.TaxAmount)
}

// SumLineTotals is the sum of the rounded line totals.
func SumLineTotals(inv *Invoice) types.Money {
	sum := types.Zero(inv.Currency)
	for _, li := range inv.LineItems {
		sum = sum.Add(li.LineTotal)
	}
	return sum
}
