package invoice_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/types"
)

func line(qty, price, rate string) invoice.LineItem {
	return invoice.LineItem{
		Description: "item",
		Quantity:    decimal.RequireFromString(qty),
		UnitPrice:   types.MustParse(price, "zar"),
		TaxRate:     decimal.RequireFromString(rate),
	}
}

func TestCalculateLine(t *testing.T) {
	li := line("2", "100.00", "15")
	a := invoice.CalculateLine(&li, "zar")

	assert.Equal(t, "200", a.Subtotal.String())
	assert.Equal(t, "30", a.Tax.String())
	assert.Equal(t, types.ZAR(23000), li.LineTotal)
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name      string
		items     []invoice.LineItem
		subtotal  int64
		tax       int64
		lineTotal []int64
	}{
		{
			name:      "single taxed line",
			items:     []invoice.LineItem{line("2", "100.00", "15")},
			subtotal:  20000,
			tax:       3000,
			lineTotal: []int64{23000},
		},
		{
			name:      "mixed rates",
			items:     []invoice.LineItem{line("1", "50.00", "0"), line("3", "10.00", "15")},
			subtotal:  8000,
			tax:       450,
			lineTotal: []int64{5000, 3450},
		},
		{
			name:      "fractional quantity",
			items:     []invoice.LineItem{line("1.5", "33.33", "15")},
			subtotal:  5000, // 49.995
			tax:       750,  // 7.49925
			lineTotal: []int64{5749},
		},
		{
			name:      "empty",
			items:     nil,
			subtotal:  0,
			tax:       0,
			lineTotal: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &invoice.Invoice{Currency: "zar", LineItems: tt.items}
			invoice.ComputeTotals(inv)

			assert.Equal(t, types.ZAR(tt.subtotal), inv.Subtotal)
			assert.Equal(t, types.ZAR(tt.tax), inv.TaxAmount)
			assert.Equal(t, inv.Subtotal.Add(inv.TaxAmount), inv.Total)
			for i, want := range tt.lineTotal {
				assert.Equal(t, types.ZAR(want), inv.LineItems[i].LineTotal, "line %d", i)
			}
		})
	}
}

// Line totals are rounded one by one while the invoice totals are rounded
// from the exact sums, so the two may disagree by rounding residue.
func TestComputeTotalsRoundingResidue(t *testing.T) {
	inv := &invoice.Invoice{
		Currency: "zar",
		LineItems: []invoice.LineItem{
			line("1", "0.03", "15"), // 0.0345 → 0.03
			line("1", "0.03", "15"),
			line("1", "0.03", "15"),
		},
	}
	invoice.ComputeTotals(inv)

	assert.Equal(t, types.ZAR(9), invoice.SumLineTotals(inv))
	assert.Equal(t, types.ZAR(10), inv.Total) // 0.09 + round(0.0135)=0.01
	assert.LessOrEqual(t, inv.Total.Subtract(invoice.SumLineTotals(inv)).Abs().Amount, int64(len(inv.LineItems)))
}

func TestSubtotalMatchesQuantityTimesPrice(t *testing.T) {
	inv := &invoice.Invoice{
		Currency: "zar",
		LineItems: []invoice.LineItem{
			line("7", "19.99", "15"),
			line("0.25", "400.00", "15"),
			line("12", "3.50", "0"),
		},
	}
	invoice.ComputeTotals(inv)

	// 139.93 + 100.00 + 42.00
	assert.Equal(t, types.ZAR(28193), inv.Subtotal)
	assert.Equal(t, inv.Subtotal.Add(inv.TaxAmount), inv.Total)
}
