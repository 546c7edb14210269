// Package api exposes the Folio engine over HTTP as a chi router.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xraph/folio"
	"github.com/xraph/folio/delivery"
)

// Handler serves the Folio HTTP API.
type Handler struct {
	engine   *folio.Folio
	delivery *delivery.Worker
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithDelivery enables the send endpoints. Without it they answer 503.
func WithDelivery(w *delivery.Worker) Option {
	return func(h *Handler) { h.delivery = w }
}

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(h *Handler) { h.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// New creates a Handler over engine.
func New(engine *folio.Folio, opts ...Option) *Handler {
	h := &Handler{engine: engine, logger: engine.Logger()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter mounts h under basePath with request id, recovery and access
// logging middleware.
func NewRouter(h *Handler, basePath string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.recoverer)
	r.Use(h.accessLog)

	r.Get("/healthz", h.health)
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	basePath = "/" + strings.Trim(basePath, "/")
	if basePath == "/" {
		h.Routes(r)
		return r
	}
	r.Route(basePath, h.Routes)
	return r
}

// Routes registers the API on r. Use it to mount Folio into an existing router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.listInvoices)
		r.Post("/", h.createInvoice)
		r.Get("/overdue", h.listOverdue)
		r.Get("/next-number", h.peekNumber)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getInvoice)
			r.Put("/", h.updateInvoice)
			r.Delete("/", h.deleteInvoice)
			r.Post("/duplicate", h.duplicateInvoice)
			r.Put("/status", h.setInvoiceStatus)
			r.Get("/payments", h.listPayments)
			r.Post("/payments", h.recordPayment)
			r.Get("/pdf", h.invoicePDF)
			r.Post("/send", h.sendInvoice)
			r.Get("/emails", h.invoiceEmails)
		})
	})

	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getClient)
			r.Put("/", h.updateClient)
			r.Delete("/", h.deleteClient)
			r.Get("/statements", h.clientStatements)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getProduct)
			r.Put("/", h.updateProduct)
			r.Delete("/", h.deleteProduct)
		})
	})

	r.Route("/statements", func(r chi.Router) {
		r.Post("/", h.generateStatement)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getStatement)
			r.Delete("/", h.deleteStatement)
			r.Get("/pdf", h.statementPDF)
			r.Get("/xlsx", h.statementXLSX)
			r.Post("/send", h.sendStatement)
		})
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.fullReport)
		r.Get("/summary", h.reportSummary)
		r.Get("/aging", h.reportAging)
		r.Get("/xlsx", h.reportXLSX)
	})

	r.Get("/dashboard", h.dashboard)
	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.updateSettings)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Store().Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "store unreachable")
		return
	}
	writeMessage(w, http.StatusOK, "ok")
}

// ──────────────────────────────────────────────────
// Middleware
// ──────────────────────────────────────────────────

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error().
					Interface("panic", rec).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("api: handler panic")
				writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
