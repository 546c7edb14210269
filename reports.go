package folio

import (
	"context"
	"time"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/report"
	"github.com/xraph/folio/types"
)

// ReportOpts scopes Report. Zero values mean "everything".
type ReportOpts struct {
	From     time.Time
	To       time.Time
	ClientID id.ClientID
	TopN     int // top clients to include; default 5
	Months   int // monthly revenue window; default 12
}

// Report bundles the receivables views over one invoice set.
type Report struct {
	GeneratedAt time.Time              `json:"generated_at"`
	From        time.Time              `json:"from,omitempty"`
	To          time.Time              `json:"to,omitempty"`
	Summary     report.Summary         `json:"summary"`
	Aging       []report.Bucket        `json:"aging"`
	TopClients  []report.ClientRevenue `json:"top_clients"`
	Monthly     []report.MonthRevenue  `json:"monthly"`
}

// Dashboard is the headline numbers for the whole book, in the settings
// currency. Invoices in other currencies are only counted.
type Dashboard struct {
	ClientCount        int         `json:"client_count"`
	InvoiceCount       int         `json:"invoice_count"`
	PaidRevenue        types.Money `json:"paid_revenue"`
	Outstanding        types.Money `json:"outstanding"`
	OverdueCount       int         `json:"overdue_count"`
	PendingCount       int         `json:"pending_count"`
	OtherCurrencyCount int         `json:"other_currency_count,omitempty"`
}

// Report loads the invoices matching opts and computes every report over them.
func (f *Folio) Report(ctx context.Context, opts ReportOpts) (*Report, error) {
	if !opts.From.IsZero() && !opts.To.IsZero() && invoice.Today(opts.From).After(invoice.Today(opts.To)) {
		return nil, ErrInvalidDateRange
	}
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.Months <= 0 {
		opts.Months = 12
	}

	cfg, err := f.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	lo := invoice.ListOpts{ClientID: opts.ClientID}
	if !opts.From.IsZero() {
		lo.From = invoice.Today(opts.From)
	}
	if !opts.To.IsZero() {
		lo.To = invoice.Today(opts.To).Add(24*time.Hour - time.Nanosecond)
	}
	invoices, err := f.store.ListInvoices(ctx, lo)
	if err != nil {
		return nil, err
	}

	now := f.Now()
	currency := cfg.Currency()
	top := report.TopClients(invoices, currency, opts.TopN)
	f.nameClients(ctx, top)

	return &Report{
		GeneratedAt: now,
		From:        opts.From,
		To:          opts.To,
		Summary:     report.Summarize(invoices, currency, now),
		Aging:       report.Aging(invoices, currency, now),
		TopClients:  top,
		Monthly:     report.Monthly(invoices, currency, now, opts.Months),
	}, nil
}

// Dashboard summarizes every invoice and counts the active clients.
func (f *Folio) Dashboard(ctx context.Context) (*Dashboard, error) {
	cfg, err := f.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := f.store.ListClients(ctx, client.ListOpts{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	invoices, err := f.store.ListInvoices(ctx, invoice.ListOpts{})
	if err != nil {
		return nil, err
	}

	s := report.Summarize(invoices, cfg.Currency(), f.Now())
	return &Dashboard{
		ClientCount:        len(clients),
		InvoiceCount:       s.InvoiceCount,
		PaidRevenue:        s.PaidRevenue,
		Outstanding:        s.TotalOutstanding,
		OverdueCount:       s.OverdueCount,
		PendingCount:       s.PendingCount,
		OtherCurrencyCount: s.OtherCurrencyCount,
	}, nil
}

// nameClients fills ClientName on report rows. Missing clients keep an empty name.
func (f *Folio) nameClients(ctx context.Context, rows []report.ClientRevenue) {
	for i := range rows {
		c, err := f.store.GetClient(ctx, rows[i].ClientID)
		if err != nil {
			f.logger.Debug().Err(err).Str("client_id", rows[i].ClientID.String()).Msg("report: client lookup")
			continue
		}
		rows[i].ClientName = c.CompanyName
	}
}
