package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/folio/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"InvoiceID", id.NewInvoiceID, "inv_"},
		{"LineItemID", id.NewLineItemID, "li_"},
		{"PaymentID", id.NewPaymentID, "pay_"},
		{"ClientID", id.NewClientID, "cli_"},
		{"ProductID", id.NewProductID, "prod_"},
		{"StatementID", id.NewStatementID, "stmt_"},
		{"StatementLineID", id.NewStatementLineID, "stl_"},
		{"EmailLogID", id.NewEmailLogID, "eml_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"InvoiceID", id.NewInvoiceID, id.ParseInvoiceID},
		{"LineItemID", id.NewLineItemID, id.ParseLineItemID},
		{"PaymentID", id.NewPaymentID, id.ParsePaymentID},
		{"ClientID", id.NewClientID, id.ParseClientID},
		{"ProductID", id.NewProductID, id.ParseProductID},
		{"StatementID", id.NewStatementID, id.ParseStatementID},
		{"StatementLineID", id.NewStatementLineID, id.ParseStatementLineID},
		{"EmailLogID", id.NewEmailLogID, id.ParseEmailLogID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
	}{
		{"ParseInvoiceID rejects cli_", id.NewClientID().String(), id.ParseInvoiceID},
		{"ParseClientID rejects inv_", id.NewInvoiceID().String(), id.ParseClientID},
		{"ParsePaymentID rejects li_", id.NewLineItemID().String(), id.ParsePaymentID},
		{"ParseStatementID rejects stl_", id.NewStatementLineID().String(), id.ParseStatementID},
		{"ParseProductID rejects eml_", id.NewEmailLogID().String(), id.ParseProductID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.parseFn(tt.input); err == nil {
				t.Errorf("expected error for cross-type parse of %q, got nil", tt.input)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("expected empty prefix, got %q", i.Prefix())
	}
}

func TestValueScan(t *testing.T) {
	original := id.NewInvoiceID()
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ID
	if scanErr := scanned.Scan(val); scanErr != nil {
		t.Fatalf("Scan failed: %v", scanErr)
	}
	if scanned.String() != original.String() {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	// Optional foreign keys store NULL.
	var nilID id.ID
	val, err = nilID.Value()
	if err != nil {
		t.Fatalf("Value(nil) failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil value for nil ID, got %v", val)
	}

	var scanned2 id.ID
	if err := scanned2.Scan(""); err != nil {
		t.Fatalf("Scan(\"\") failed: %v", err)
	}
	if !scanned2.IsNil() {
		t.Error("expected nil after scan of empty string")
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewInvoiceID()
	b := id.NewInvoiceID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewInvoiceID() calls returned the same ID: %q", a.String())
	}
}
