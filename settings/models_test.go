package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xraph/folio/settings"
)

func TestDefaults(t *testing.T) {
	s := settings.Defaults()

	assert.Equal(t, "INV", s.InvoicePrefix)
	assert.Equal(t, int64(1001), s.InvoiceNextNumber)
	assert.Equal(t, "zar", s.Currency())
	assert.Equal(t, "R", s.CurrencySymbol)
	assert.Equal(t, 30, s.TermDays())
	assert.True(t, s.DefaultTaxRate.IsZero())
}

func TestExpand(t *testing.T) {
	s := settings.Defaults()
	got := settings.Expand(s.DefaultEmailSubject, map[string]string{
		"InvoiceNumber": "INV1001",
		"CompanyName":   "Acme",
	})
	assert.Equal(t, "Invoice #INV1001 from Acme", got)

	got = settings.Expand("Hi {ClientName}, {Unknown}", map[string]string{"ClientName": "Bob"})
	assert.Equal(t, "Hi Bob, {Unknown}", got)
}

func TestTermDaysFallback(t *testing.T) {
	s := &settings.Settings{}
	assert.Equal(t, 30, s.TermDays())
	s.PaymentTermDays = 14
	assert.Equal(t, 14, s.TermDays())
}
