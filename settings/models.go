// Package settings holds the single-row application settings: company
// profile, currency, invoice numbering, defaults and email templates.
package settings

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Placeholders understood by Expand.
const (
	PlaceholderInvoiceNumber   = "{InvoiceNumber}"
	PlaceholderCompanyName     = "{CompanyName}"
	PlaceholderClientName      = "{ClientName}"
	PlaceholderStatementPeriod = "{StatementPeriod}"
)

// Settings is the application-wide configuration row.
type Settings struct {
	CompanyName      string `json:"company_name"`
	CompanyAddress   string `json:"company_address"`
	CompanyPhone     string `json:"company_phone"`
	CompanyEmail     string `json:"company_email"`
	CompanyVatNumber string `json:"company_vat_number"`

	CurrencySymbol string `json:"currency_symbol"`
	CurrencyCode   string `json:"currency_code"`

	InvoicePrefix     string `json:"invoice_prefix"`
	InvoiceNextNumber int64  `json:"invoice_next_number"`

	DefaultTaxRate      decimal.Decimal `json:"default_tax_rate"`
	DefaultPaymentTerms string          `json:"default_payment_terms"`
	PaymentTermDays     int             `json:"payment_term_days"`
	InvoiceFooter       string          `json:"invoice_footer"`

	EmailFromAddress      string `json:"email_from_address"`
	EmailFromName         string `json:"email_from_name"`
	DefaultEmailSubject   string `json:"default_email_subject"`
	DefaultEmailBody      string `json:"default_email_body"`
	StatementEmailSubject string `json:"statement_email_subject"`
	StatementEmailBody    string `json:"statement_email_body"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Defaults returns the settings row created on first access.
func Defaults() *Settings {
	return &Settings{
		CompanyName:         "Your Company Name",
		CompanyAddress:      "123 Business Street\nCity, State 12345",
		CompanyPhone:        "(555) 123-4567",
		CompanyEmail:        "info@yourcompany.com",
		CurrencySymbol:      "R",
		CurrencyCode:        "ZAR",
		InvoicePrefix:       "INV",
		InvoiceNextNumber:   1001,
		DefaultTaxRate:      decimal.Zero,
		DefaultPaymentTerms: "Payment due within 30 days",
		PaymentTermDays:     30,
		InvoiceFooter:       "Thank you for your business!",
		DefaultEmailSubject: "Invoice #{InvoiceNumber} from {CompanyName}",
		DefaultEmailBody: "Dear {ClientName},\n\nPlease find attached invoice #{InvoiceNumber}.\n\n" +
			"Thank you for your business.\n\nBest regards,\n{CompanyName}",
		StatementEmailSubject: "Statement from {CompanyName}",
		StatementEmailBody: "Dear {ClientName},\n\nPlease find attached your statement for {StatementPeriod}.\n\n" +
			"Best regards,\n{CompanyName}",
		UpdatedAt: time.Now().UTC(),
	}
}

// Currency is the lowercase ISO code used for Money values.
func (s *Settings) Currency() string {
	return strings.ToLower(s.CurrencyCode)
}

// TermDays returns PaymentTermDays, falling back to 30.
func (s *Settings) TermDays() int {
	if s.PaymentTermDays <= 0 {
		return 30
	}
	return s.PaymentTermDays
}

// Clone returns a copy of s.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// Expand replaces each {Key} placeholder in tpl with vars[Key].
// Unknown placeholders are left as they are.
func Expand(tpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
