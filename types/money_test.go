package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"ZAR", ZAR(23000), 23000, "zar", "R230.00"},
		{"USD", USD(4900), 4900, "usd", "$49.00"},
		{"EUR", EUR(19900), 19900, "eur", "€199.00"},
		{"GBP", GBP(9900), 9900, "gbp", "£99.00"},
		{"JPY", JPY(100), 100, "jpy", "¥100"},
		{"Zero ZAR", Zero("ZAR"), 0, "zar", "R0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return ZAR(100).Add(ZAR(200)) }, ZAR(300)},
		{"Subtract", func() Money { return ZAR(500).Subtract(ZAR(200)) }, ZAR(300)},
		{"Multiply", func() Money { return ZAR(100).Multiply(3) }, ZAR(300)},
		{"Negate", func() Money { return ZAR(100).Negate() }, ZAR(-100)},
		{"Abs negative", func() Money { return ZAR(-100).Abs() }, ZAR(100)},
		{"Untagged zero adopts currency", func() Money { return Money{}.Add(ZAR(250)) }, ZAR(250)},
		{"Subtract into negative", func() Money { return ZAR(50000).Subtract(ZAR(60000)) }, ZAR(-10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	_ = ZAR(100).Add(EUR(100))
}

func TestFromDecimalRounding(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"230", 23000},
		{"0.005", 1},
		{"0.004", 0},
		{"-0.005", -1},
		{"12.345", 1235},
		{"99.999", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := FromDecimal(decimal.RequireFromString(tt.in), "zar")
			if got.Amount != tt.want {
				t.Errorf("FromDecimal(%s): got %d, want %d", tt.in, got.Amount, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	m, err := Parse(" 1234.5 ", "ZAR")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !m.Equal(ZAR(123450)) {
		t.Errorf("Parse: got %v, want %v", m, ZAR(123450))
	}
	if _, err := Parse("abc", "zar"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestMoneyComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Money
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", ZAR(100), ZAR(100), false, false, true},
		{"Less", ZAR(50), ZAR(100), true, false, false},
		{"Greater", ZAR(200), ZAR(100), false, true, false},
		{"Zero equal", ZAR(0), Zero("zar"), false, false, true},
		{"Negative less", ZAR(-100), ZAR(100), true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestMoneyFormatting(t *testing.T) {
	tests := []struct {
		money   Money
		major   string
		grouped string
		display string
	}{
		{ZAR(4900), "49.00", "49.00", "R49.00"},
		{ZAR(1), "0.01", "0.01", "R0.01"},
		{ZAR(0), "0.00", "0.00", "R0.00"},
		{ZAR(-4900), "-49.00", "-49.00", "-R49.00"},
		{ZAR(123456789), "1234567.89", "1,234,567.89", "R1,234,567.89"},
		{ZAR(100000), "1000.00", "1,000.00", "R1,000.00"},
		{JPY(12345), "12345", "12,345", "¥12,345"},
	}

	for _, tt := range tests {
		t.Run(tt.major, func(t *testing.T) {
			if got := tt.money.FormatMajor(); got != tt.major {
				t.Errorf("FormatMajor: got %s, want %s", got, tt.major)
			}
			if got := tt.money.FormatGrouped(); got != tt.grouped {
				t.Errorf("FormatGrouped: got %s, want %s", got, tt.grouped)
			}
			if got := tt.money.Display(""); got != tt.display {
				t.Errorf("Display: got %s, want %s", got, tt.display)
			}
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(ZAR(4900))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	expected := `{"amount":4900,"currency":"zar","display":"R49.00"}`
	if string(data) != expected {
		t.Errorf("JSON: got %s, want %s", string(data), expected)
	}
}

func TestMoneyUnmarshalMajorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{`{"amount":4900,"currency":"ZAR"}`, ZAR(4900)},
		{`"230.50"`, Money{Amount: 23050}},
		{`230.5`, Money{Amount: 23050}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var m Money
			if err := json.Unmarshal([]byte(tt.in), &m); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !m.Equal(tt.want) {
				t.Errorf("got %+v, want %+v", m, tt.want)
			}
		})
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		name     string
		values   []Money
		expected Money
	}{
		{"Empty", []Money{}, Zero("zar")},
		{"Single", []Money{ZAR(100)}, ZAR(100)},
		{"Multiple", []Money{ZAR(100), ZAR(200), ZAR(300)}, ZAR(600)},
		{"With negatives", []Money{ZAR(100), ZAR(-50), ZAR(200)}, ZAR(250)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sum("zar", tt.values...)
			if !result.Equal(tt.expected) {
				t.Errorf("Sum: got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCurrencySymbols(t *testing.T) {
	tests := []struct {
		currency string
		symbol   string
	}{
		{"zar", "R"},
		{"usd", "$"},
		{"eur", "€"},
		{"unknown", "UNKNOWN "},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			got := currencySymbol(tt.currency)
			if got != tt.symbol {
				t.Errorf("Symbol for %s: got %s, want %s", tt.currency, got, tt.symbol)
			}
		})
	}
}

func BenchmarkMoneyAdd(b *testing.B) {
	m1 := ZAR(100)
	m2 := ZAR(200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m1.Add(m2)
	}
}
