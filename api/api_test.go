package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio"
	"github.com/xraph/folio/api"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/mailer"
	"github.com/xraph/folio/observability"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/store/memory"
)

var march10 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	engine *folio.Folio
	mail   *mailer.Memory
}

func newHarness(t *testing.T, withDelivery bool) *harness {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))
	engine := folio.New(memory.New(),
		folio.WithClock(func() time.Time { return march10 }),
		folio.WithPlugin(metrics),
	)

	h := &harness{t: t, engine: engine, mail: mailer.NewMemory()}
	opts := []api.Option{api.WithMetrics(reg)}
	if withDelivery {
		opts = append(opts, api.WithDelivery(delivery.New(engine, h.mail)))
	}
	h.srv = httptest.NewServer(api.NewRouter(api.New(engine, opts...), "/api"))
	t.Cleanup(h.srv.Close)
	return h
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

func (h *harness) do(method, path string, body any) (*http.Response, envelope) {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(h.t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(raw, &env), string(raw))
	} else {
		env.Data = raw
	}
	return resp, env
}

func (h *harness) createClient(email string) *client.Client {
	h.t.Helper()
	resp, env := h.do(http.MethodPost, "/api/clients", map[string]any{
		"company_name": "Acme Trading",
		"email":        email,
	})
	require.Equal(h.t, http.StatusCreated, resp.StatusCode, env.Message)
	var c client.Client
	require.NoError(h.t, json.Unmarshal(env.Data, &c))
	return &c
}

func (h *harness) createInvoice(c *client.Client) *invoice.Invoice {
	h.t.Helper()
	resp, env := h.do(http.MethodPost, "/api/invoices", map[string]any{
		"client_id":    c.ID.String(),
		"invoice_date": "2025-03-01",
		"line_items": []map[string]any{{
			"description": "Consulting",
			"quantity":    "2",
			"unit_price":  "100.00",
			"tax_rate":    "15",
		}},
	})
	require.Equal(h.t, http.StatusCreated, resp.StatusCode, env.Message)
	var inv invoice.Invoice
	require.NoError(h.t, json.Unmarshal(env.Data, &inv))
	return &inv
}

func TestInvoicePaymentFlow(t *testing.T) {
	h := newHarness(t, false)
	c := h.createClient("accounts@acme.test")
	inv := h.createInvoice(c)

	assert.Equal(t, "INV1001", inv.Number)
	assert.Equal(t, int64(23000), inv.Total.Amount)
	assert.Equal(t, invoice.StatusDraft, inv.Status)

	// Overpaying asks for confirmation and records nothing.
	resp, env := h.do(http.MethodPost, "/api/invoices/"+inv.ID.String()+"/payments", map[string]any{
		"amount": "300.00",
		"method": "Cash",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "CONFIRMATION_REQUIRED", env.Code)
	assert.Contains(t, string(env.Details), `"excess"`)

	resp, env = h.do(http.MethodGet, "/api/invoices/"+inv.ID.String()+"/payments", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, []string{"[]", "null"}, string(env.Data))

	resp, env = h.do(http.MethodPost, "/api/invoices/"+inv.ID.String()+"/payments", map[string]any{
		"amount":              "300.00",
		"method":              "Cash",
		"payment_date":        "2025-03-05",
		"confirm_overpayment": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var receipt folio.PaymentReceipt
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, invoice.StatusPaid, receipt.Status)
	assert.Equal(t, int64(7000), receipt.Overpaid.Amount)

	resp, env = h.do(http.MethodGet, "/api/invoices/"+inv.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got invoice.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, invoice.StatusPaid, got.Status)
	require.Len(t, got.Payments, 1)
}

func TestErrorMapping(t *testing.T) {
	h := newHarness(t, false)
	c := h.createClient("")
	h.createInvoice(c)

	resp, env := h.do(http.MethodGet, "/api/invoices/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	resp, env = h.do(http.MethodGet, "/api/invoices/inv_01h455vb4pex5vsknk084sn02q", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)

	resp, env = h.do(http.MethodPost, "/api/invoices", map[string]any{
		"client_id": c.ID.String(),
		"number":    "INV1001",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", env.Code)

	resp, env = h.do(http.MethodPost, "/api/clients", map[string]any{"company_name": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	resp, _ = h.do(http.MethodGet, "/api/invoices?status=void", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(http.MethodGet, "/api/reports/summary?from=2025-03-31&to=2025-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusAndDuplicate(t *testing.T) {
	h := newHarness(t, false)
	inv := h.createInvoice(h.createClient(""))

	resp, env := h.do(http.MethodPut, "/api/invoices/"+inv.ID.String()+"/status", map[string]any{"status": "Sent"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var sent invoice.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.Equal(t, invoice.StatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	resp, env = h.do(http.MethodPost, "/api/invoices/"+inv.ID.String()+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var dup invoice.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &dup))
	assert.Equal(t, "INV1002", dup.Number)
	assert.Equal(t, invoice.StatusDraft, dup.Status)

	resp, env = h.do(http.MethodGet, "/api/invoices/next-number", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"number":"INV1003"}`, string(env.Data))

	resp, _ = h.do(http.MethodDelete, "/api/invoices/"+dup.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestStatementDocuments(t *testing.T) {
	h := newHarness(t, false)
	c := h.createClient("")
	h.createInvoice(c)

	resp, env := h.do(http.MethodPost, "/api/statements", map[string]any{
		"client_id":       c.ID.String(),
		"start_date":      "2025-03-01",
		"end_date":        "2025-03-31",
		"opening_balance": "100.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var st statement.Statement
	require.NoError(t, json.Unmarshal(env.Data, &st))
	require.Len(t, st.Lines, 1)
	assert.Equal(t, int64(33000), st.ClosingBalance.Amount)

	resp, env = h.do(http.MethodGet, "/api/statements/"+st.ID.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(env.Data, []byte("%PDF-")))

	resp, env = h.do(http.MethodGet, "/api/statements/"+st.ID.String()+"/xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Statement_Acme_Trading_20250331.xlsx")
	assert.True(t, bytes.HasPrefix(env.Data, []byte("PK")))

	resp, env = h.do(http.MethodGet, "/api/clients/"+c.ID.String()+"/statements", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []statement.Statement
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestReportsAndDashboard(t *testing.T) {
	h := newHarness(t, false)
	c := h.createClient("")
	h.createInvoice(c)

	resp, env := h.do(http.MethodGet, "/api/reports/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Contains(t, string(env.Data), `"total_revenue"`)

	resp, env = h.do(http.MethodGet, "/api/reports/aging", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buckets []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &buckets))
	assert.NotEmpty(t, buckets)

	resp, env = h.do(http.MethodGet, "/api/reports/xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(env.Data, []byte("PK")))

	resp, env = h.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var d folio.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, 1, d.ClientCount)
	assert.Equal(t, 1, d.InvoiceCount)
}

func TestSettingsPartialUpdate(t *testing.T) {
	h := newHarness(t, false)

	resp, env := h.do(http.MethodPut, "/api/settings", map[string]any{
		"company_name":   "Folio Traders",
		"invoice_prefix": "FT-",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = h.do(http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, "Folio Traders", cfg["company_name"])
	assert.Equal(t, "FT-", cfg["invoice_prefix"])
	assert.Equal(t, "ZAR", cfg["currency_code"])

	resp, env = h.do(http.MethodPut, "/api/settings", map[string]any{"currency_code": "RAND"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestSendInvoice(t *testing.T) {
	h := newHarness(t, true)
	inv := h.createInvoice(h.createClient("accounts@acme.test"))

	resp, env := h.do(http.MethodPost, "/api/invoices/"+inv.ID.String()+"/send", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	require.Len(t, h.mail.Sent(), 1)

	resp, env = h.do(http.MethodGet, "/api/invoices/"+inv.ID.String()+"/emails", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "accounts@acme.test")

	got, err := h.engine.GetInvoice(t.Context(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSent, got.Status)
}

func TestSendWithoutDelivery(t *testing.T) {
	h := newHarness(t, false)
	inv := h.createInvoice(h.createClient("accounts@acme.test"))

	resp, env := h.do(http.MethodPost, "/api/invoices/"+inv.ID.String()+"/send", map[string]any{})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "UNAVAILABLE", env.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, false)
	h.createInvoice(h.createClient(""))

	resp, _ := h.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := h.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "folio_invoice_created_total 1")
}
