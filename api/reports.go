package api

import (
	"net/http"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/render"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// report parses from, to, client_id, top and months and runs the report.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) (*folio.Report, bool) {
	q := &query{r: r}
	opts := folio.ReportOpts{
		From:     q.date("from"),
		To:       q.date("to"),
		ClientID: q.id("client_id", id.PrefixClient),
		TopN:     q.integer("top"),
		Months:   q.integer("months"),
	}
	if !q.check(w) {
		return nil, false
	}
	rep, err := h.engine.Report(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return rep, true
}

func (h *Handler) fullReport(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.report(w, r); ok {
		writeSuccess(w, http.StatusOK, rep)
	}
}

func (h *Handler) reportSummary(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.report(w, r); ok {
		writeSuccess(w, http.StatusOK, rep.Summary)
	}
}

func (h *Handler) reportAging(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.report(w, r); ok {
		writeSuccess(w, http.StatusOK, rep.Aging)
	}
}

func (h *Handler) reportXLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	cfg, err := h.engine.GetSettings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := render.ReportXLSX(rep, cfg)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeFile(w, xlsxContentType, "Report_"+rep.GeneratedAt.Format("20060102")+".xlsx", data)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.engine.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, struct {
		*folio.Dashboard
		AsOf time.Time `json:"as_of"`
	}{d, h.engine.Now()})
}
