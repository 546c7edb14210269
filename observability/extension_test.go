package observability_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/observability"
	"github.com/xraph/folio/store/memory"
)

func TestMetricsFollowInvoiceLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))

	f := folio.New(memory.New(), folio.WithPlugin(metrics))
	ctx := context.Background()
	require.NoError(t, f.Start(ctx))
	defer f.Stop()

	c := &client.Client{CompanyName: "Acme Trading"}
	require.NoError(t, f.CreateClient(ctx, c))

	inv := &invoice.Invoice{
		ClientID: c.ID,
		LineItems: []invoice.LineItem{{
			Description: "Consulting",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   folio.ZAR(50000),
			TaxRate:     decimal.Zero,
		}},
	}
	require.NoError(t, f.CreateInvoice(ctx, inv))

	_, err := f.RecordPayment(ctx, folio.RecordPaymentInput{InvoiceID: inv.ID, Amount: folio.ZAR(20000)})
	require.NoError(t, err)
	_, err = f.RecordPayment(ctx, folio.RecordPaymentInput{InvoiceID: inv.ID, Amount: folio.ZAR(30000)})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ClientCreated.(prometheus.Counter)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InvoiceCreated.(prometheus.Counter)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PaymentRecorded.(prometheus.Counter)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InvoicePaid.(prometheus.Counter)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Overpayments.(prometheus.Counter)))

	n, err := testutil.GatherAndCount(reg, "folio_payment_amount")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrometheusFactoryNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	factory := observability.NewPrometheusFactory(reg)

	c := factory.Counter("folio.email.sent")
	c.Inc()
	c.Add(2)

	// Asking twice yields the same collector.
	assert.Same(t, c, factory.Counter("folio.email.sent"))

	n, err := testutil.GatherAndCount(reg, "folio_email_sent_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3.0, testutil.ToFloat64(c.(prometheus.Counter)))
}

func TestFactoriesShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := observability.NewPrometheusFactory(reg).Counter("folio.invoice.created")
	b := observability.NewPrometheusFactory(reg).Counter("folio.invoice.created")

	a.Inc()
	b.Inc()
	assert.Equal(t, 2.0, testutil.ToFloat64(a.(prometheus.Counter)))
}
