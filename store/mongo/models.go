package mongo

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/product"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

// ==================== Invoice models ====================

type invoiceModel struct {
	ID           string         `bson:"_id"`
	Number       string         `bson:"number"`
	ClientID     string         `bson:"client_id"`
	Currency     string         `bson:"currency"`
	InvoiceDate  time.Time      `bson:"invoice_date"`
	DueDate      time.Time      `bson:"due_date"`
	Status       string         `bson:"status"`
	Subtotal     int64          `bson:"subtotal"`
	TaxAmount    int64          `bson:"tax_amount"`
	Total        int64          `bson:"total"`
	LineItems    []lineModel    `bson:"line_items"`
	Payments     []paymentModel `bson:"payments"`
	Notes        string         `bson:"notes"`
	PaymentTerms string         `bson:"payment_terms"`
	SentAt       *time.Time     `bson:"sent_at,omitempty"`
	PaidAt       *time.Time     `bson:"paid_at,omitempty"`
	CreatedAt    time.Time      `bson:"created_at"`
	UpdatedAt    *time.Time     `bson:"updated_at,omitempty"`
}

type lineModel struct {
	ID                string `bson:"id"`
	ProductID         string `bson:"product_id,omitempty"`
	Description       string `bson:"description"`
	Quantity          string `bson:"quantity"`
	UnitPrice         int64  `bson:"unit_price"`
	UnitPriceCurrency string `bson:"unit_price_currency"`
	TaxRate           string `bson:"tax_rate"`
	LineTotal         int64  `bson:"line_total"`
	SortOrder         int    `bson:"sort_order"`
}

type paymentModel struct {
	ID          string    `bson:"id"`
	Amount      int64     `bson:"amount"`
	Currency    string    `bson:"currency"`
	PaymentDate time.Time `bson:"payment_date"`
	Method      string    `bson:"method"`
	Reference   string    `bson:"reference"`
	Notes       string    `bson:"notes"`
	RecordedBy  string    `bson:"recorded_by"`
	CreatedAt   time.Time `bson:"created_at"`
}

func toLineModels(items []invoice.LineItem) []lineModel {
	out := make([]lineModel, len(items))
	for i, li := range items {
		out[i] = lineModel{
			ID:                li.ID.String(),
			ProductID:         li.ProductID.String(),
			Description:       li.Description,
			Quantity:          li.Quantity.String(),
			UnitPrice:         li.UnitPrice.Amount,
			UnitPriceCurrency: li.UnitPrice.Currency,
			TaxRate:           li.TaxRate.String(),
			LineTotal:         li.LineTotal.Amount,
			SortOrder:         li.SortOrder,
		}
	}
	return out
}

func toPaymentModel(p *invoice.Payment) paymentModel {
	return paymentModel{
		ID:          p.ID.String(),
		Amount:      p.Amount.Amount,
		Currency:    p.Amount.Currency,
		PaymentDate: p.PaymentDate.UTC(),
		Method:      string(p.Method),
		Reference:   p.Reference,
		Notes:       p.Notes,
		RecordedBy:  p.RecordedBy,
		CreatedAt:   p.CreatedAt.UTC(),
	}
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	payments := make([]paymentModel, len(inv.Payments))
	for i := range inv.Payments {
		payments[i] = toPaymentModel(&inv.Payments[i])
	}
	return &invoiceModel{
		ID:           inv.ID.String(),
		Number:       inv.Number,
		ClientID:     inv.ClientID.String(),
		Currency:     inv.Currency,
		InvoiceDate:  inv.InvoiceDate.UTC(),
		DueDate:      inv.DueDate.UTC(),
		Status:       string(inv.Status),
		Subtotal:     inv.Subtotal.Amount,
		TaxAmount:    inv.TaxAmount.Amount,
		Total:        inv.Total.Amount,
		LineItems:    toLineModels(inv.LineItems),
		Payments:     payments,
		Notes:        inv.Notes,
		PaymentTerms: inv.PaymentTerms,
		SentAt:       utcPtr(inv.SentAt),
		PaidAt:       utcPtr(inv.PaidAt),
		CreatedAt:    inv.CreatedAt.UTC(),
		UpdatedAt:    utcPtr(inv.UpdatedAt),
	}
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	invID, err := id.ParseInvoiceID(m.ID)
	if err != nil {
		return nil, err
	}
	clientID, err := id.ParseClientID(m.ClientID)
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		Entity:       types.Entity{CreatedAt: m.CreatedAt.UTC(), UpdatedAt: utcPtr(m.UpdatedAt)},
		ID:           invID,
		Number:       m.Number,
		ClientID:     clientID,
		Currency:     m.Currency,
		InvoiceDate:  m.InvoiceDate.UTC(),
		DueDate:      m.DueDate.UTC(),
		Status:       invoice.Status(m.Status),
		Subtotal:     types.Money{Amount: m.Subtotal, Currency: m.Currency},
		TaxAmount:    types.Money{Amount: m.TaxAmount, Currency: m.Currency},
		Total:        types.Money{Amount: m.Total, Currency: m.Currency},
		LineItems:    make([]invoice.LineItem, 0, len(m.LineItems)),
		Notes:        m.Notes,
		PaymentTerms: m.PaymentTerms,
		SentAt:       utcPtr(m.SentAt),
		PaidAt:       utcPtr(m.PaidAt),
	}

	for _, lm := range m.LineItems {
		li := invoice.LineItem{
			InvoiceID:   invID,
			Description: lm.Description,
			UnitPrice:   types.Money{Amount: lm.UnitPrice, Currency: orDefault(lm.UnitPriceCurrency, m.Currency)},
			LineTotal:   types.Money{Amount: lm.LineTotal, Currency: m.Currency},
			SortOrder:   lm.SortOrder,
		}
		if li.ID, err = id.ParseLineItemID(lm.ID); err != nil {
			return nil, err
		}
		if lm.ProductID != "" {
			if li.ProductID, err = id.ParseProductID(lm.ProductID); err != nil {
				return nil, err
			}
		}
		if li.Quantity, err = decimal.NewFromString(lm.Quantity); err != nil {
			return nil, err
		}
		if li.TaxRate, err = decimal.NewFromString(lm.TaxRate); err != nil {
			return nil, err
		}
		inv.LineItems = append(inv.LineItems, li)
	}
	inv.SortLineItems()

	inv.Payments, err = fromPaymentModels(invID, m.Currency, m.Payments)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// fromPaymentModels converts and orders payments by payment date, then
// recording time.
func fromPaymentModels(invID id.InvoiceID, currency string, models []paymentModel) ([]invoice.Payment, error) {
	out := make([]invoice.Payment, 0, len(models))
	for _, pm := range models {
		payID, err := id.ParsePaymentID(pm.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, invoice.Payment{
			ID:          payID,
			InvoiceID:   invID,
			Amount:      types.Money{Amount: pm.Amount, Currency: orDefault(pm.Currency, currency)},
			PaymentDate: pm.PaymentDate.UTC(),
			Method:      invoice.Method(pm.Method),
			Reference:   pm.Reference,
			Notes:       pm.Notes,
			RecordedBy:  pm.RecordedBy,
			CreatedAt:   pm.CreatedAt.UTC(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.Before(out[j].PaymentDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ==================== Client models ====================

type clientModel struct {
	ID             string     `bson:"_id"`
	CompanyName    string     `bson:"company_name"`
	NameKey        string     `bson:"name_key"`
	ContactPerson  string     `bson:"contact_person"`
	Email          string     `bson:"email"`
	Phone          string     `bson:"phone"`
	BillingAddress string     `bson:"billing_address"`
	VatNumber      string     `bson:"vat_number"`
	IsActive       bool       `bson:"is_active"`
	CreatedAt      time.Time  `bson:"created_at"`
	UpdatedAt      *time.Time `bson:"updated_at,omitempty"`
}

func toClientModel(c *client.Client) *clientModel {
	return &clientModel{
		ID:             c.ID.String(),
		CompanyName:    c.CompanyName,
		NameKey:        strings.ToLower(c.CompanyName),
		ContactPerson:  c.ContactPerson,
		Email:          c.Email,
		Phone:          c.Phone,
		BillingAddress: c.BillingAddress,
		VatNumber:      c.VatNumber,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt.UTC(),
		UpdatedAt:      utcPtr(c.UpdatedAt),
	}
}

func fromClientModel(m *clientModel) (*client.Client, error) {
	clientID, err := id.ParseClientID(m.ID)
	if err != nil {
		return nil, err
	}
	return &client.Client{
		Entity:         types.Entity{CreatedAt: m.CreatedAt.UTC(), UpdatedAt: utcPtr(m.UpdatedAt)},
		ID:             clientID,
		CompanyName:    m.CompanyName,
		ContactPerson:  m.ContactPerson,
		Email:          m.Email,
		Phone:          m.Phone,
		BillingAddress: m.BillingAddress,
		VatNumber:      m.VatNumber,
		IsActive:       m.IsActive,
	}, nil
}

// ==================== Product models ====================

type productModel struct {
	ID          string     `bson:"_id"`
	Name        string     `bson:"name"`
	NameKey     string     `bson:"name_key"`
	Description string     `bson:"description"`
	UnitPrice   int64      `bson:"unit_price"`
	Currency    string     `bson:"currency"`
	TaxRate     *string    `bson:"tax_rate,omitempty"`
	SKU         string     `bson:"sku"`
	IsActive    bool       `bson:"is_active"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty"`
}

func toProductModel(p *product.Product) *productModel {
	m := &productModel{
		ID:          p.ID.String(),
		Name:        p.Name,
		NameKey:     strings.ToLower(p.Name),
		Description: p.Description,
		UnitPrice:   p.UnitPrice.Amount,
		Currency:    p.UnitPrice.Currency,
		SKU:         p.SKU,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   utcPtr(p.UpdatedAt),
	}
	if p.TaxRate != nil {
		r := p.TaxRate.String()
		m.TaxRate = &r
	}
	return m
}

func fromProductModel(m *productModel) (*product.Product, error) {
	productID, err := id.ParseProductID(m.ID)
	if err != nil {
		return nil, err
	}
	p := &product.Product{
		Entity:      types.Entity{CreatedAt: m.CreatedAt.UTC(), UpdatedAt: utcPtr(m.UpdatedAt)},
		ID:          productID,
		Name:        m.Name,
		Description: m.Description,
		UnitPrice:   types.Money{Amount: m.UnitPrice, Currency: m.Currency},
		SKU:         m.SKU,
		IsActive:    m.IsActive,
	}
	if m.TaxRate != nil {
		r, err := decimal.NewFromString(*m.TaxRate)
		if err != nil {
			return nil, err
		}
		p.TaxRate = &r
	}
	return p, nil
}

// ==================== Settings model ====================

type settingsModel struct {
	ID                    string    `bson:"_id"`
	CompanyName           string    `bson:"company_name"`
	CompanyAddress        string    `bson:"company_address"`
	CompanyPhone          string    `bson:"company_phone"`
	CompanyEmail          string    `bson:"company_email"`
	CompanyVatNumber      string    `bson:"company_vat_number"`
	CurrencySymbol        string    `bson:"currency_symbol"`
	CurrencyCode          string    `bson:"currency_code"`
	InvoicePrefix         string    `bson:"invoice_prefix"`
	InvoiceNextNumber     int64     `bson:"invoice_next_number"`
	DefaultTaxRate        string    `bson:"default_tax_rate"`
	DefaultPaymentTerms   string    `bson:"default_payment_terms"`
	PaymentTermDays       int       `bson:"payment_term_days"`
	InvoiceFooter         string    `bson:"invoice_footer"`
	EmailFromAddress      string    `bson:"email_from_address"`
	EmailFromName         string    `bson:"email_from_name"`
	DefaultEmailSubject   string    `bson:"default_email_subject"`
	DefaultEmailBody      string    `bson:"default_email_body"`
	StatementEmailSubject string    `bson:"statement_email_subject"`
	StatementEmailBody    string    `bson:"statement_email_body"`
	UpdatedAt             time.Time `bson:"updated_at"`
}

func toSettingsModel(s *settings.Settings) *settingsModel {
	return &settingsModel{
		ID:                    settingsID,
		CompanyName:           s.CompanyName,
		CompanyAddress:        s.CompanyAddress,
		CompanyPhone:          s.CompanyPhone,
		CompanyEmail:          s.CompanyEmail,
		CompanyVatNumber:      s.CompanyVatNumber,
		CurrencySymbol:        s.CurrencySymbol,
		CurrencyCode:          s.CurrencyCode,
		InvoicePrefix:         s.InvoicePrefix,
		InvoiceNextNumber:     s.InvoiceNextNumber,
		DefaultTaxRate:        s.DefaultTaxRate.String(),
		DefaultPaymentTerms:   s.DefaultPaymentTerms,
		PaymentTermDays:       s.PaymentTermDays,
		InvoiceFooter:         s.InvoiceFooter,
		EmailFromAddress:      s.EmailFromAddress,
		EmailFromName:         s.EmailFromName,
		DefaultEmailSubject:   s.DefaultEmailSubject,
		DefaultEmailBody:      s.DefaultEmailBody,
		StatementEmailSubject: s.StatementEmailSubject,
		StatementEmailBody:    s.StatementEmailBody,
		UpdatedAt:             s.UpdatedAt.UTC(),
	}
}

func fromSettingsModel(m *settingsModel) (*settings.Settings, error) {
	rate, err := decimal.NewFromString(orDefault(m.DefaultTaxRate, "0"))
	if err != nil {
		return nil, err
	}
	return &settings.Settings{
		CompanyName:           m.CompanyName,
		CompanyAddress:        m.CompanyAddress,
		CompanyPhone:          m.CompanyPhone,
		CompanyEmail:          m.CompanyEmail,
		CompanyVatNumber:      m.CompanyVatNumber,
		CurrencySymbol:        m.CurrencySymbol,
		CurrencyCode:          m.CurrencyCode,
		InvoicePrefix:         m.InvoicePrefix,
		InvoiceNextNumber:     m.InvoiceNextNumber,
		DefaultTaxRate:        rate,
		DefaultPaymentTerms:   m.DefaultPaymentTerms,
		PaymentTermDays:       m.PaymentTermDays,
		InvoiceFooter:         m.InvoiceFooter,
		EmailFromAddress:      m.EmailFromAddress,
		EmailFromName:         m.EmailFromName,
		DefaultEmailSubject:   m.DefaultEmailSubject,
		DefaultEmailBody:      m.DefaultEmailBody,
		StatementEmailSubject: m.StatementEmailSubject,
		StatementEmailBody:    m.StatementEmailBody,
		UpdatedAt:             m.UpdatedAt.UTC(),
	}, nil
}

// ==================== Statement models ====================

type statementModel struct {
	ID             string               `bson:"_id"`
	ClientID       string               `bson:"client_id"`
	Currency       string               `bson:"currency"`
	StatementDate  time.Time            `bson:"statement_date"`
	StartDate      time.Time            `bson:"start_date"`
	EndDate        time.Time            `bson:"end_date"`
	OpeningBalance int64                `bson:"opening_balance"`
	ClosingBalance int64                `bson:"closing_balance"`
	Lines          []statementLineModel `bson:"lines,omitempty"`
	Notes          string               `bson:"notes"`
	CreatedAt      time.Time            `bson:"created_at"`
}

type statementLineModel struct {
	ID          string    `bson:"id"`
	InvoiceID   string    `bson:"invoice_id,omitempty"`
	Kind        string    `bson:"kind"`
	Date        time.Time `bson:"date"`
	Description string    `bson:"description"`
	Debit       int64     `bson:"debit"`
	Credit      int64     `bson:"credit"`
	Balance     int64     `bson:"balance"`
	SortOrder   int       `bson:"sort_order"`
}

func toStatementModel(st *statement.Statement) *statementModel {
	lines := make([]statementLineModel, len(st.Lines))
	for i, l := range st.Lines {
		lines[i] = statementLineModel{
			ID:          l.ID.String(),
			InvoiceID:   l.InvoiceID.String(),
			Kind:        string(l.Kind),
			Date:        l.Date.UTC(),
			Description: l.Description,
			Debit:       l.Debit.Amount,
			Credit:      l.Credit.Amount,
			Balance:     l.Balance.Amount,
			SortOrder:   l.SortOrder,
		}
	}
	return &statementModel{
		ID:             st.ID.String(),
		ClientID:       st.ClientID.String(),
		Currency:       st.Currency,
		StatementDate:  st.StatementDate.UTC(),
		StartDate:      st.StartDate.UTC(),
		EndDate:        st.EndDate.UTC(),
		OpeningBalance: st.OpeningBalance.Amount,
		ClosingBalance: st.ClosingBalance.Amount,
		Lines:          lines,
		Notes:          st.Notes,
		CreatedAt:      st.CreatedAt.UTC(),
	}
}

func fromStatementModel(m *statementModel) (*statement.Statement, error) {
	stmtID, err := id.ParseStatementID(m.ID)
	if err != nil {
		return nil, err
	}
	clientID, err := id.ParseClientID(m.ClientID)
	if err != nil {
		return nil, err
	}
	money := func(amount int64) types.Money { return types.Money{Amount: amount, Currency: m.Currency} }

	st := &statement.Statement{
		ID:             stmtID,
		ClientID:       clientID,
		Currency:       m.Currency,
		StatementDate:  m.StatementDate.UTC(),
		StartDate:      m.StartDate.UTC(),
		EndDate:        m.EndDate.UTC(),
		OpeningBalance: money(m.OpeningBalance),
		ClosingBalance: money(m.ClosingBalance),
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt.UTC(),
	}
	if m.Lines == nil {
		return st, nil
	}

	st.Lines = make([]statement.Line, 0, len(m.Lines))
	for _, lm := range m.Lines {
		l := statement.Line{
			StatementID: stmtID,
			Kind:        statement.Kind(lm.Kind),
			Date:        lm.Date.UTC(),
			Description: lm.Description,
			Debit:       money(lm.Debit),
			Credit:      money(lm.Credit),
			Balance:     money(lm.Balance),
			SortOrder:   lm.SortOrder,
		}
		if l.ID, err = id.ParseStatementLineID(lm.ID); err != nil {
			return nil, err
		}
		if lm.InvoiceID != "" {
			if l.InvoiceID, err = id.ParseInvoiceID(lm.InvoiceID); err != nil {
				return nil, err
			}
		}
		st.Lines = append(st.Lines, l)
	}
	return st, nil
}

// ==================== Email log model ====================

type emailLogModel struct {
	ID          string    `bson:"_id"`
	InvoiceID   string    `bson:"invoice_id,omitempty"`
	StatementID string    `bson:"statement_id,omitempty"`
	Recipient   string    `bson:"recipient"`
	Subject     string    `bson:"subject"`
	Body        string    `bson:"body"`
	SentAt      time.Time `bson:"sent_at"`
	Success     bool      `bson:"success"`
	Error       string    `bson:"error"`
}

func toEmailLogModel(e *emaillog.Entry) *emailLogModel {
	return &emailLogModel{
		ID:          e.ID.String(),
		InvoiceID:   e.InvoiceID.String(),
		StatementID: e.StatementID.String(),
		Recipient:   e.Recipient,
		Subject:     e.Subject,
		Body:        e.Body,
		SentAt:      e.SentAt.UTC(),
		Success:     e.Success,
		Error:       e.Error,
	}
}

func fromEmailLogModel(m *emailLogModel) (*emaillog.Entry, error) {
	e := &emaillog.Entry{
		Recipient: m.Recipient,
		Subject:   m.Subject,
		Body:      m.Body,
		SentAt:    m.SentAt.UTC(),
		Success:   m.Success,
		Error:     m.Error,
	}
	var err error
	if e.ID, err = id.ParseEmailLogID(m.ID); err != nil {
		return nil, err
	}
	if m.InvoiceID != "" {
		if e.InvoiceID, err = id.ParseInvoiceID(m.InvoiceID); err != nil {
			return nil, err
		}
	}
	if m.StatementID != "" {
		if e.StatementID, err = id.ParseStatementID(m.StatementID); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// ==================== Helpers ====================

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
