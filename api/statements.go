package api

import (
	"net/http"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/render"
	"github.com/xraph/folio/types"
)

type statementRequest struct {
	ClientID       id.ClientID  `json:"client_id"`
	StartDate      *date        `json:"start_date"`
	EndDate        *date        `json:"end_date"`
	OpeningBalance *types.Money `json:"opening_balance"`
	Notes          string       `json:"notes"`
}

func (h *Handler) generateStatement(w http.ResponseWriter, r *http.Request) {
	var req statementRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ClientID.IsNil() || req.StartDate == nil || req.EndDate == nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "client_id, start_date and end_date are required")
		return
	}
	var opening types.Money
	if req.OpeningBalance != nil {
		opening = *req.OpeningBalance
	}
	st, err := h.engine.GenerateStatementWithNotes(r.Context(), req.ClientID,
		req.StartDate.time(), req.EndDate.time(), opening, req.Notes)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, st)
}

func (h *Handler) getStatement(w http.ResponseWriter, r *http.Request) {
	stmtID, ok := pathID(w, r, id.PrefixStatement)
	if !ok {
		return
	}
	st, err := h.engine.GetStatement(r.Context(), stmtID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, st)
}

func (h *Handler) deleteStatement(w http.ResponseWriter, r *http.Request) {
	stmtID, ok := pathID(w, r, id.PrefixStatement)
	if !ok {
		return
	}
	if err := h.engine.DeleteStatement(r.Context(), stmtID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) statementDoc(w http.ResponseWriter, r *http.Request) (render.StatementDoc, bool) {
	stmtID, ok := pathID(w, r, id.PrefixStatement)
	if !ok {
		return render.StatementDoc{}, false
	}
	ctx := r.Context()
	st, err := h.engine.GetStatement(ctx, stmtID)
	if err != nil {
		h.fail(w, r, err)
		return render.StatementDoc{}, false
	}
	c, err := h.engine.GetClient(ctx, st.ClientID)
	if err != nil {
		h.fail(w, r, err)
		return render.StatementDoc{}, false
	}
	cfg, err := h.engine.GetSettings(ctx)
	if err != nil {
		h.fail(w, r, err)
		return render.StatementDoc{}, false
	}
	return render.StatementDoc{Statement: st, Client: c, Settings: cfg}, true
}

func (h *Handler) statementPDF(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.statementDoc(w, r)
	if !ok {
		return
	}
	data, err := render.StatementPDF(doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, "application/pdf", render.StatementFileName(doc.Client, doc.Statement, "pdf"), data)
}

func (h *Handler) statementXLSX(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.statementDoc(w, r)
	if !ok {
		return
	}
	data, err := render.StatementXLSX(doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, xlsxContentType, render.StatementFileName(doc.Client, doc.Statement, "xlsx"), data)
}

func (h *Handler) sendStatement(w http.ResponseWriter, r *http.Request) {
	stmtID, ok := pathID(w, r, id.PrefixStatement)
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
	entry, err := h.delivery.SendStatement(r.Context(), stmtID, req.To, req.Subject, req.Body)
	if err != nil {
		h.failDelivery(w, r, entry, err)
		return
	}
	writeSuccess(w, http.StatusOK, entry)
}
