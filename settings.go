package folio

import (
	"context"
	"strings"

	"github.com/xraph/folio/settings"
)

// GetSettings returns the company settings, creating defaults on first use.
func (f *Folio) GetSettings(ctx context.Context) (*settings.Settings, error) {
	return f.store.GetSettings(ctx)
}

// UpdateSettings validates and stores s. A counter lower than the stored
// one is ignored by the store so numbers are never reissued.
func (f *Folio) UpdateSettings(ctx context.Context, s *settings.Settings) error {
	var errs MultiError
	if strings.TrimSpace(s.CompanyName) == "" {
		errs.Add(ValidationError{Field: "company_name", Message: "is required"})
	}
	if len(strings.TrimSpace(s.CurrencyCode)) != 3 {
		errs.Add(ValidationError{Field: "currency_code", Message: "must be a three letter ISO code"})
	}
	if s.InvoiceNextNumber < 1 {
		errs.Add(ValidationError{Field: "invoice_next_number", Message: "must be positive"})
	}
	if s.DefaultTaxRate.IsNegative() {
		errs.Add(ValidationError{Field: "default_tax_rate", Message: "must not be negative"})
	}
	if s.PaymentTermDays < 0 {
		errs.Add(ValidationError{Field: "payment_term_days", Message: "must not be negative"})
	}
	if errs.HasErrors() {
		return errs
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	s.CurrencyCode = strings.ToUpper(strings.TrimSpace(s.CurrencyCode))
	s.UpdatedAt = f.Now()
	if err := f.store.UpdateSettings(ctx, s); err != nil {
		return err
	}
	f.logger.Info().Str("company", s.CompanyName).Msg("settings updated")
	return nil
}
