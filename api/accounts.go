package api

import (
	"net/http"

	"github.com/xraph/folio/client"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/product"
)

// ──────────────────────────────────────────────────
// Clients
// ──────────────────────────────────────────────────

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	opts := client.ListOpts{
		ActiveOnly: q.boolean("active"),
		Search:     q.str("q"),
		Limit:      q.integer("limit"),
		Offset:     q.integer("offset"),
	}
	if !q.check(w) {
		return
	}
	list, err := h.engine.ListClients(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var c client.Client
	if !decode(w, r, &c) {
		return
	}
	c.ID = id.Nil
	if err := h.engine.CreateClient(r.Context(), &c); err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, &c)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, id.PrefixClient)
	if !ok {
		return
	}
	c, err := h.engine.GetClient(r.Context(), clientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, c)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, id.PrefixClient)
	if !ok {
		return
	}
	var c client.Client
	if !decode(w, r, &c) {
		return
	}
	c.ID = clientID
	if err := h.engine.UpdateClient(r.Context(), &c); err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, &c)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, id.PrefixClient)
	if !ok {
		return
	}
	if err := h.engine.DeleteClient(r.Context(), clientID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clientStatements(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, id.PrefixClient)
	if !ok {
		return
	}
	list, err := h.engine.ListStatements(r.Context(), clientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

// ──────────────────────────────────────────────────
// Products
// ──────────────────────────────────────────────────

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	opts := product.ListOpts{
		ActiveOnly: q.boolean("active"),
		Search:     q.str("q"),
		Limit:      q.integer("limit"),
		Offset:     q.integer("offset"),
	}
	if !q.check(w) {
		return
	}
	list, err := h.engine.ListProducts(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, list)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if !decode(w, r, &p) {
		return
	}
	p.ID = id.Nil
	if err := h.engine.CreateProduct(r.Context(), &p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, &p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, id.PrefixProduct)
	if !ok {
		return
	}
	p, err := h.engine.GetProduct(r.Context(), productID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, id.PrefixProduct)
	if !ok {
		return
	}
	var p product.Product
	if !decode(w, r, &p) {
		return
	}
	p.ID = productID
	if err := h.engine.UpdateProduct(r.Context(), &p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, &p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, id.PrefixProduct)
	if !ok {
		return
	}
	if err := h.engine.DeleteProduct(r.Context(), productID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ──────────────────────────────────────────────────
// Settings
// ──────────────────────────────────────────────────

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.engine.GetSettings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, cfg)
}

// updateSettings merges the body over the stored settings, so a partial
// document changes only the fields it names.
func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.engine.GetSettings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	next := *cfg
	if !decode(w, r, &next) {
		return
	}
	if err := h.engine.UpdateSettings(r.Context(), &next); err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, &next)
}
