package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xraph/folio"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/render"
	"github.com/xraph/folio/types"
)

type lineRequest struct {
	ProductID   id.ProductID     `json:"product_id"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   types.Money      `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
}

type invoiceRequest struct {
	ClientID     id.ClientID    `json:"client_id"`
	Number       string         `json:"number"`
	Currency     string         `json:"currency"`
	InvoiceDate  *date          `json:"invoice_date"`
	DueDate      *date          `json:"due_date"`
	Status       invoice.Status `json:"status"`
	Notes        string         `json:"notes"`
	PaymentTerms string         `json:"payment_terms"`
	LineItems    []lineRequest  `json:"line_items"`
}

// toInvoice builds an invoice from the request. A line that names a product
// and leaves description or price empty is filled from the catalogue.
func (h *Handler) toInvoice(r *http.Request, req invoiceRequest) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{
		ClientID:     req.ClientID,
		Number:       req.Number,
		Currency:     req.Currency,
		InvoiceDate:  req.InvoiceDate.time(),
		DueDate:      req.DueDate.time(),
		Status:       req.Status,
		Notes:        req.Notes,
		PaymentTerms: req.PaymentTerms,
	}
	for _, l := range req.LineItems {
		if !l.ProductID.IsNil() && (l.Description == "" || l.UnitPrice.IsZero()) {
			li, err := h.engine.ProductLine(r.Context(), l.ProductID, l.Quantity)
			if err != nil {
				return nil, err
			}
			if l.Description != "" {
				li.Description = l.Description
			}
			if l.TaxRate != nil {
				li.TaxRate = *l.TaxRate
			}
			inv.LineItems = append(inv.LineItems, li)
			continue
		}
		li := invoice.LineItem{
			ProductID:   l.ProductID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
		if l.TaxRate != nil {
			li.TaxRate = *l.TaxRate
		}
		inv.LineItems = append(inv.LineItems, li)
	}
	return inv, nil
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	opts := invoice.ListOpts{
		ClientID: q.id("client_id", id.PrefixClient),
		From:     q.date("from"),
		To:       q.date("to"),
		Number:   q.str("number"),
		Limit:    q.integer("limit"),
		Offset:   q.integer("offset"),
	}
	if s := q.str("status"); s != "" {
		st, err := invoice.ParseStatus(s)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		opts.Status = st
	}
	if !q.check(w) {
		return
	}

	list, err := h.engine.ListInvoices(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !decode(w, r, &req) {
		return
	}
	inv, err := h.toInvoice(r, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.engine.CreateInvoice(r.Context(), inv); err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, inv)
}

func (h *Handler) listOverdue(w http.ResponseWriter, r *http.Request) {
	list, err := h.engine.ListOverdueInvoices(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

func (h *Handler) peekNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.engine.PeekInvoiceNumber(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"number": n})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	inv, err := h.engine.GetInvoice(r.Context(), invID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, inv)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	var req invoiceRequest
	if !decode(w, r, &req) {
		return
	}
	inv, err := h.toInvoice(r, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inv.ID = invID
	if err := h.engine.UpdateInvoice(r.Context(), inv); err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	if err := h.engine.DeleteInvoice(r.Context(), invID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) duplicateInvoice(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	inv, err := h.engine.DuplicateInvoice(r.Context(), invID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, inv)
}

func (h *Handler) setInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	st, err := invoice.ParseStatus(req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inv, err := h.engine.UpdateInvoiceStatus(r.Context(), invID, st)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, inv)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	list, err := h.engine.ListPayments(r.Context(), invID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

type paymentRequest struct {
	Amount      types.Money    `json:"amount"`
	PaymentDate *date          `json:"payment_date"`
	Method      invoice.Method `json:"method"`
	Reference   string         `json:"reference"`
	Notes       string         `json:"notes"`
	RecordedBy  string         `json:"recorded_by"`
	Confirm     bool           `json:"confirm_overpayment"`
}

// recordPayment answers 422 with the overpayment details when the amount
// exceeds the balance; resubmitting with confirm_overpayment records it.
func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	var req paymentRequest
	if !decode(w, r, &req) {
		return
	}
	receipt, err := h.engine.RecordPayment(r.Context(), folio.RecordPaymentInput{
		InvoiceID:          invID,
		Amount:             req.Amount,
		PaymentDate:        req.PaymentDate.time(),
		Method:             req.Method,
		Reference:          req.Reference,
		Notes:              req.Notes,
		RecordedBy:         req.RecordedBy,
		ConfirmOverpayment: req.Confirm,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, receipt)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	ctx := r.Context()
	inv, err := h.engine.GetInvoice(ctx, invID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.engine.GetClient(ctx, inv.ClientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cfg, err := h.engine.GetSettings(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := render.InvoicePDF(render.InvoiceDoc{Invoice: inv, Client: c, Settings: cfg, Now: h.engine.Now()})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, "application/pdf", render.FileName(inv), data)
}

type sendRequest struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

func (h *Handler) sendInvoice(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	if h.delivery == nil {
		h.fail(w, r, folio.ErrMailerNotConfigured)
		return
	}
	var req sendRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := h.delivery.SendInvoice(r.Context(), invID, req.To, req.Subject, req.Body)
	if err != nil {
		h.failDelivery(w, r, entry, err)
		return
	}
	writeSuccess(w, http.StatusOK, entry)
}

// failDelivery reports a send failure. Once an attempt was logged the
// failure is the mail server's, answered as 502 with the log entry.
func (h *Handler) failDelivery(w http.ResponseWriter, r *http.Request, entry *emaillog.Entry, err error) {
	if entry == nil || folio.Classify(err) != folio.CategoryPersistence {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusBadGateway, apiError{
		Status:  "error",
		Code:    "DELIVERY_FAILED",
		Message: err.Error(),
		Details: entry,
	})
}

func (h *Handler) invoiceEmails(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(w, r, id.PrefixInvoice)
	if !ok {
		return
	}
	list, err := h.engine.ListEmailLogs(r.Context(), emaillog.ListOpts{InvoiceID: invID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}
