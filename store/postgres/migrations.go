package postgres

import "github.com/xraph/folio/store/internal/sqlstore"

// Migrations is the ordered schema history for PostgreSQL.
var Migrations = []sqlstore.Migration{
	{
		Version: "20250101000001",
		Name:    "create_folio_settings",
		SQL: `
CREATE TABLE IF NOT EXISTS folio_settings (
    id                      SMALLINT PRIMARY KEY CHECK (id = 1),
    company_name            TEXT NOT NULL DEFAULT '',
    company_address         TEXT NOT NULL DEFAULT '',
    company_phone           TEXT NOT NULL DEFAULT '',
    company_email           TEXT NOT NULL DEFAULT '',
    company_vat_number      TEXT NOT NULL DEFAULT '',
    currency_symbol         TEXT NOT NULL DEFAULT 'R',
    currency_code           TEXT NOT NULL DEFAULT 'ZAR',
    invoice_prefix          TEXT NOT NULL DEFAULT 'INV',
    invoice_next_number     BIGINT NOT NULL DEFAULT 1001,
    default_tax_rate        NUMERIC NOT NULL DEFAULT 0,
    default_payment_terms   TEXT NOT NULL DEFAULT '',
    payment_term_days       INTEGER NOT NULL DEFAULT 30,
    invoice_footer          TEXT NOT NULL DEFAULT '',
    email_from_address      TEXT NOT NULL DEFAULT '',
    email_from_name         TEXT NOT NULL DEFAULT '',
    default_email_subject   TEXT NOT NULL DEFAULT '',
    default_email_body      TEXT NOT NULL DEFAULT '',
    statement_email_subject TEXT NOT NULL DEFAULT '',
    statement_email_body    TEXT NOT NULL DEFAULT '',
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	},
	{
		Version: "20250101000002",
		Name:    "create_folio_clients",
		SQL: `
CREATE TABLE IF NOT EXISTS folio_clients (
    id              TEXT PRIMARY KEY,
    company_name    TEXT NOT NULL,
    contact_person  TEXT NOT NULL DEFAULT '',
    email           TEXT NOT NULL DEFAULT '',
    phone           TEXT NOT NULL DEFAULT '',
    billing_address TEXT NOT NULL DEFAULT '',
    vat_number      TEXT NOT NULL DEFAULT '',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_folio_clients_name ON folio_clients (company_name)`,
	},
	{
		Version: "20250101000003",
		Name:    "create_folio_products",
		SQL: `
CREATE TABLE IF NOT EXISTS folio_products (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    unit_price  BIGINT NOT NULL DEFAULT 0,
    currency    TEXT NOT NULL DEFAULT '',
    tax_rate    NUMERIC,
    sku         TEXT NOT NULL DEFAULT '',
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS folio_products_sku_key ON folio_products (sku) WHERE sku <> ''`,
	},
	{
		Version: "20250101000004",
		Name:    "create_folio_invoices",
		SQL: `
CREATE TABLE IF NOT EXISTS folio_invoices (
    id            TEXT PRIMARY KEY,
    number        TEXT NOT NULL,
    client_id     TEXT NOT NULL REFERENCES folio_clients (id),
    currency      TEXT NOT NULL DEFAULT '',
    invoice_date  TIMESTAMPTZ NOT NULL,
    due_date      TIMESTAMPTZ NOT NULL,
    status        TEXT NOT NULL DEFAULT 'draft',
    subtotal      BIGINT NOT NULL DEFAULT 0,
    tax_amount    BIGINT NOT NULL DEFAULT 0,
    total         BIGINT NOT NULL DEFAULT 0,
    notes         TEXT NOT NULL DEFAULT '',
    payment_terms TEXT NOT NULL DEFAULT '',
    sent_at       TIMESTAMPTZ,
    paid_at       TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ,
    CONSTRAINT folio_invoices_number_key UNIQUE (number)
);

CREATE INDEX IF NOT EXISTS idx_folio_invoices_client ON folio_invoices (client_id, invoice_date);
CREATE INDEX IF NOT EXISTS idx_folio_invoices_status ON folio_invoices (status, due_date);

CREATE TABLE IF NOT EXISTS folio_line_items (
    id                  TEXT PRIMARY KEY,
    invoice_id          TEXT NOT NULL REFERENCES folio_invoices (id) ON DELETE CASCADE,
    product_id          TEXT,
    description         TEXT NOT NULL DEFAULT '',
    quantity            NUMERIC NOT NULL DEFAULT 0,
    unit_price          BIGINT NOT NULL DEFAULT 0,
    unit_price_currency TEXT NOT NULL DEFAULT '',
    tax_rate            NUMERIC NOT NULL DEFAULT 0,
    line_total          BIGINT NOT NULL DEFAULT 0,
    sort_order          INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_folio_line_items_invoice ON folio_line_items (invoice_id, sort_order);

CREATE TABLE IF NOT EXISTS folio_payments (
    id           TEXT PRIMARY KEY,
    invoice_id   TEXT NOT NULL REFERENCES folio_invoices (id) ON DELETE CASCADE,
    amount       BIGINT NOT NULL,
    currency     TEXT NOT NULL DEFAULT '',
    payment_date TIMESTAMPTZ NOT NULL,
    method       TEXT NOT NULL DEFAULT '',
    reference    TEXT NOT NULL DEFAULT '',
    notes        TEXT NOT NULL DEFAULT '',
    recorded_by  TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_folio_payments_invoice ON folio_payments (invoice_id, payment_date)`,
	},
	{
		Version: "20250101000005",
		Name:    "create_folio_statements",
		SQL: `
CREATE TABLE IF NOT EXISTS folio_statements (
    id              TEXT PRIMARY KEY,
    client_id       TEXT NOT NULL REFERENCES folio_clients (id),
    currency        TEXT NOT NULL DEFAULT '',
    statement_date  TIMESTAMPTZ NOT NULL,
    start_date      TIMESTAMPTZ NOT NULL,
    end_date        TIMESTAMPTZ NOT NULL,
    opening_balance BIGINT NOT NULL DEFAULT 0,
    closing_balance BIGINT NOT NULL DEFAULT 0,
    notes           TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_folio_statements_client ON folio_statements (client_id, created_at);

CREATE TABLE IF NOT EXISTS folio_statement_lines (
    id           TEXT PRIMARY KEY,
    statement_id TEXT NOT NULL REFERENCES folio_statements (id) ON DELETE CASCADE,
    invoice_id   TEXT,
    kind         TEXT NOT NULL,
    line_date    TIMESTAMPTZ NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    debit        BIGINT NOT NULL DEFAULT 0,
    credit       BIGINT NOT NULL DEFAULT 0,
    balance      BIGINT NOT NULL DEFAULT 0,
    sort_order   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_folio_statement_lines_stmt ON folio_statement_lines (statement_id, sort_order)`,
	},
	{
		Version: "20250101000006",
		Name:    "create_folio_email_logs",
		SQL: `
CREATE TABLE IF NOT EXISTS folio_email_logs (
    id           TEXT PRIMARY KEY,
    invoice_id   TEXT,
    statement_id TEXT,
    recipient    TEXT NOT NULL DEFAULT '',
    subject      TEXT NOT NULL DEFAULT '',
    body         TEXT NOT NULL DEFAULT '',
    sent_at      TIMESTAMPTZ NOT NULL,
    success      BOOLEAN NOT NULL DEFAULT FALSE,
    error        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_folio_email_logs_invoice ON folio_email_logs (invoice_id, sent_at);
CREATE INDEX IF NOT EXISTS idx_folio_email_logs_statement ON folio_email_logs (statement_id, sent_at)`,
	},
}
