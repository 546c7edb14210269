package sqlstore

import (
	"context"
	"time"

	"github.com/xraph/folio/settings"
)

const settingsColumns = `company_name, company_address, company_phone, company_email, company_vat_number,
	currency_symbol, currency_code, invoice_prefix, invoice_next_number,
	default_tax_rate, default_payment_terms, payment_term_days, invoice_footer,
	email_from_address, email_from_name, default_email_subject, default_email_body,
	statement_email_subject, statement_email_body, updated_at`

func (s *Store) settingsArgs(cfg *settings.Settings) []any {
	return []any{
		cfg.CompanyName, cfg.CompanyAddress, cfg.CompanyPhone, cfg.CompanyEmail, cfg.CompanyVatNumber,
		cfg.CurrencySymbol, cfg.CurrencyCode, cfg.InvoicePrefix, cfg.InvoiceNextNumber,
		cfg.DefaultTaxRate, cfg.DefaultPaymentTerms, cfg.PaymentTermDays, cfg.InvoiceFooter,
		cfg.EmailFromAddress, cfg.EmailFromName, cfg.DefaultEmailSubject, cfg.DefaultEmailBody,
		cfg.StatementEmailSubject, cfg.StatementEmailBody, s.d.timeArg(cfg.UpdatedAt),
	}
}

// ensureSettings inserts the default row when none exists.
func (s *Store) ensureSettings(ctx context.Context) error {
	args := append([]any{1}, s.settingsArgs(settings.Defaults())...)
	_, err := s.exec(ctx, `INSERT INTO folio_settings (id, `+settingsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`, args...)
	return err
}

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	if err := s.ensureSettings(ctx); err != nil {
		return nil, err
	}
	var (
		cfg       settings.Settings
		updatedAt dbTime
	)
	err := s.queryRow(ctx, `SELECT `+settingsColumns+` FROM folio_settings WHERE id = 1`).Scan(
		&cfg.CompanyName, &cfg.CompanyAddress, &cfg.CompanyPhone, &cfg.CompanyEmail, &cfg.CompanyVatNumber,
		&cfg.CurrencySymbol, &cfg.CurrencyCode, &cfg.InvoicePrefix, &cfg.InvoiceNextNumber,
		&cfg.DefaultTaxRate, &cfg.DefaultPaymentTerms, &cfg.PaymentTermDays, &cfg.InvoiceFooter,
		&cfg.EmailFromAddress, &cfg.EmailFromName, &cfg.DefaultEmailSubject, &cfg.DefaultEmailBody,
		&cfg.StatementEmailSubject, &cfg.StatementEmailBody, &updatedAt)
	if err != nil {
		return nil, err
	}
	cfg.UpdatedAt = updatedAt.Time
	return &cfg, nil
}

func (s *Store) UpdateSettings(ctx context.Context, cfg *settings.Settings) error {
	if err := s.ensureSettings(ctx); err != nil {
		return err
	}
	_, err := s.exec(ctx, `UPDATE folio_settings SET
		company_name = ?, company_address = ?, company_phone = ?, company_email = ?, company_vat_number = ?,
		currency_symbol = ?, currency_code = ?, invoice_prefix = ?,
		invoice_next_number = CASE WHEN ? > invoice_next_number THEN ? ELSE invoice_next_number END,
		default_tax_rate = ?, default_payment_terms = ?, payment_term_days = ?, invoice_footer = ?,
		email_from_address = ?, email_from_name = ?, default_email_subject = ?, default_email_body = ?,
		statement_email_subject = ?, statement_email_body = ?, updated_at = ?
		WHERE id = 1`,
		cfg.CompanyName, cfg.CompanyAddress, cfg.CompanyPhone, cfg.CompanyEmail, cfg.CompanyVatNumber,
		cfg.CurrencySymbol, cfg.CurrencyCode, cfg.InvoicePrefix,
		cfg.InvoiceNextNumber, cfg.InvoiceNextNumber,
		cfg.DefaultTaxRate, cfg.DefaultPaymentTerms, cfg.PaymentTermDays, cfg.InvoiceFooter,
		cfg.EmailFromAddress, cfg.EmailFromName, cfg.DefaultEmailSubject, cfg.DefaultEmailBody,
		cfg.StatementEmailSubject, cfg.StatementEmailBody, s.d.timeArg(time.Now()))
	return err
}

func (s *Store) NextInvoiceNumber(ctx context.Context) (string, int64, error) {
	if err := s.ensureSettings(ctx); err != nil {
		return "", 0, err
	}
	var (
		prefix string
		n      int64
	)
	err := s.queryRow(ctx, `UPDATE folio_settings
		SET invoice_next_number = invoice_next_number + 1
		WHERE id = 1
		RETURNING invoice_prefix, invoice_next_number - 1`).Scan(&prefix, &n)
	return prefix, n, err
}

func (s *Store) PeekInvoiceNumber(ctx context.Context) (string, int64, error) {
	if err := s.ensureSettings(ctx); err != nil {
		return "", 0, err
	}
	var (
		prefix string
		n      int64
	)
	err := s.queryRow(ctx, `SELECT invoice_prefix, invoice_next_number FROM folio_settings WHERE id = 1`).Scan(&prefix, &n)
	return prefix, n, err
}
