package plugin_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/plugin"
	"github.com/xraph/folio/types"
)

type recorder struct {
	name string
	mu   sync.Mutex
	seen []string
	fail bool
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) add(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, s)
	if r.fail {
		return errors.New("hook failed")
	}
	return nil
}

func (r *recorder) OnInvoiceCreated(_ context.Context, inv *invoice.Invoice) error {
	inv.Number = "mutated"
	return r.add("created")
}

func (r *recorder) OnInvoicePaid(context.Context, *invoice.Invoice) error {
	return r.add("paid")
}

func (r *recorder) OnOverpayment(_ context.Context, _ *invoice.Invoice, excess types.Money) error {
	return r.add("overpaid " + excess.FormatMajor())
}

type slow struct{}

func (slow) Name() string { return "slow" }

func (slow) OnInvoiceDeleted(context.Context, id.InvoiceID) error {
	time.Sleep(time.Second)
	return nil
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(&recorder{name: "a"}))
	assert.Error(t, r.Register(&recorder{name: "a"}))
	assert.Equal(t, 1, r.Count())
	assert.NotNil(t, r.Get("a"))
	assert.Nil(t, r.Get("b"))
}

func TestEmitDispatchesByInterface(t *testing.T) {
	r := plugin.NewRegistry()
	rec := &recorder{name: "rec"}
	require.NoError(t, r.Register(rec))
	require.NoError(t, r.Register(slow{}))

	ctx := context.Background()
	inv := &invoice.Invoice{Number: "INV1001", Currency: "zar"}
	r.EmitInvoiceCreated(ctx, inv)
	r.EmitInvoicePaid(ctx, inv)
	r.EmitOverpayment(ctx, inv, types.ZAR(1050))
	r.EmitStatementGenerated(ctx, nil) // no implementers

	assert.Equal(t, []string{"created", "paid", "overpaid 10.50"}, rec.seen)
	assert.Equal(t, "INV1001", inv.Number, "hooks receive copies")
}

func TestHookFailuresAreSwallowed(t *testing.T) {
	r := plugin.NewRegistry()
	rec := &recorder{name: "rec", fail: true}
	require.NoError(t, r.Register(rec))

	r.EmitInvoicePaid(context.Background(), &invoice.Invoice{})
	assert.Equal(t, []string{"paid"}, rec.seen)
}

func TestHookTimeout(t *testing.T) {
	r := plugin.NewRegistry().WithTimeout(20 * time.Millisecond)
	require.NoError(t, r.Register(slow{}))

	start := time.Now()
	r.EmitInvoiceDeleted(context.Background(), id.NewInvoiceID())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
