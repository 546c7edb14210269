// Package delivery emails invoices and statements from a pool of
// background workers. Every attempt is written to the email log, and a
// delivered Draft invoice moves to Sent.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xraph/folio"
	"github.com/xraph/folio/client"
	"github.com/xraph/folio/emaillog"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/mailer"
	"github.com/xraph/folio/render"
	"github.com/xraph/folio/settings"
)

// ErrStopped is returned by Enqueue once Stop has been called.
var ErrStopped = errors.New("delivery: stopped")

// Kind selects what a Job sends.
type Kind string

const (
	KindInvoice   Kind = "invoice"
	KindStatement Kind = "statement"
)

// Job is one queued delivery. To, Subject and Body override the client's
// email address and the settings templates when set.
type Job struct {
	Kind        Kind
	InvoiceID   id.InvoiceID
	StatementID id.StatementID
	To          []string
	Subject     string
	Body        string
	// Done, if set, is called from the worker with the logged entry.
	Done func(entry *emaillog.Entry, err error)
}

// Worker owns the delivery queue.
type Worker struct {
	engine *folio.Folio
	mailer mailer.Mailer
	logger zerolog.Logger

	workers int
	queue   chan Job

	mu       sync.RWMutex
	started  bool
	stopped  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Worker.
type Option func(*Worker)

// WithWorkers sets the number of concurrent senders. Default 2.
func WithWorkers(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithQueueSize sets the queue capacity. Default 64.
func WithQueueSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.queue = make(chan Job, n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Worker) {
		w.logger = l.With().Str("component", "delivery").Logger()
	}
}

// New creates a Worker that sends through m.
func New(engine *folio.Folio, m mailer.Mailer, opts ...Option) *Worker {
	w := &Worker{
		engine:   engine,
		mailer:   m,
		logger:   zerolog.Nop(),
		workers:  2,
		queue:    make(chan Job, 64),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the workers. ctx is used for every send.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
	w.logger.Info().Int("workers", w.workers).Int("queue", cap(w.queue)).Msg("delivery started")
}

// Stop refuses new jobs, lets the workers drain the queue and waits for them.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.stopChan)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info().Msg("delivery stopped")
}

// Enqueue queues a job without blocking. A full queue returns
// folio.ErrQueueFull.
func (w *Worker) Enqueue(job Job) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}

	select {
	case w.queue <- job:
		return nil
	default:
		return folio.ErrQueueFull
	}
}

// Pending is the number of queued jobs.
func (w *Worker) Pending() int { return len(w.queue) }

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			for {
				select {
				case job := <-w.queue:
					w.process(ctx, job)
				default:
					return
				}
			}
		case job := <-w.queue:
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	var (
		entry *emaillog.Entry
		err   error
	)
	switch job.Kind {
	case KindInvoice:
		entry, err = w.SendInvoice(ctx, job.InvoiceID, job.To, job.Subject, job.Body)
	case KindStatement:
		entry, err = w.SendStatement(ctx, job.StatementID, job.To, job.Subject, job.Body)
	default:
		err = fmt.Errorf("delivery: unknown job kind %q", job.Kind)
	}
	if err != nil {
		w.logger.Error().Err(err).Str("kind", string(job.Kind)).Msg("delivery job failed")
	}
	if job.Done != nil {
		job.Done(entry, err)
	}
}

// SendInvoice renders an invoice PDF and mails it. On success a Draft
// invoice moves to Sent. The attempt is logged either way; the returned
// error is the delivery failure, if any.
func (w *Worker) SendInvoice(ctx context.Context, invID id.InvoiceID, to []string, subject, body string) (*emaillog.Entry, error) {
	inv, err := w.engine.GetInvoice(ctx, invID)
	if err != nil {
		return nil, err
	}
	c, cfg, err := w.lookup(ctx, inv.ClientID)
	if err != nil {
		return nil, err
	}

	vars := map[string]string{
		"InvoiceNumber": inv.Number,
		"CompanyName":   cfg.CompanyName,
		"ClientName":    c.CompanyName,
	}
	msg := mailer.Message{
		To:      recipients(to, c),
		Subject: pick(subject, settings.Expand(cfg.DefaultEmailSubject, vars)),
		Body:    pick(body, settings.Expand(cfg.DefaultEmailBody, vars)),
	}
	entry := &emaillog.Entry{InvoiceID: inv.ID, Recipient: strings.Join(msg.To, ", "), Subject: msg.Subject, Body: msg.Body}

	pdf, err := render.InvoicePDF(render.InvoiceDoc{Invoice: inv, Client: c, Settings: cfg, Now: w.engine.Now()})
	if err == nil {
		msg.Attachments = []mailer.Attachment{{Name: render.FileName(inv), ContentType: "application/pdf", Data: pdf}}
		err = w.send(ctx, msg)
	}
	if logErr := w.engine.RecordEmail(ctx, entry, err); logErr != nil {
		w.logger.Error().Err(logErr).Str("invoice", inv.Number).Msg("email log write failed")
	}
	if err != nil {
		return entry, err
	}

	if _, err := w.engine.MarkSent(ctx, inv.ID); err != nil {
		return entry, err
	}
	return entry, nil
}

// SendStatement renders a statement PDF and mails it to the client.
func (w *Worker) SendStatement(ctx context.Context, stmtID id.StatementID, to []string, subject, body string) (*emaillog.Entry, error) {
	st, err := w.engine.GetStatement(ctx, stmtID)
	if err != nil {
		return nil, err
	}
	c, cfg, err := w.lookup(ctx, st.ClientID)
	if err != nil {
		return nil, err
	}

	doc := render.StatementDoc{Statement: st, Client: c, Settings: cfg}
	vars := map[string]string{
		"CompanyName":     cfg.CompanyName,
		"ClientName":      c.CompanyName,
		"StatementPeriod": doc.Period(),
	}
	msg := mailer.Message{
		To:      recipients(to, c),
		Subject: pick(subject, settings.Expand(cfg.StatementEmailSubject, vars)),
		Body:    pick(body, settings.Expand(cfg.StatementEmailBody, vars)),
	}
	entry := &emaillog.Entry{StatementID: st.ID, Recipient: strings.Join(msg.To, ", "), Subject: msg.Subject, Body: msg.Body}

	pdf, err := render.StatementPDF(doc)
	if err == nil {
		msg.Attachments = []mailer.Attachment{{Name: render.StatementFileName(c, st, "pdf"), ContentType: "application/pdf", Data: pdf}}
		err = w.send(ctx, msg)
	}
	if logErr := w.engine.RecordEmail(ctx, entry, err); logErr != nil {
		w.logger.Error().Err(logErr).Str("statement_id", st.ID.String()).Msg("email log write failed")
	}
	return entry, err
}

func (w *Worker) send(ctx context.Context, msg mailer.Message) error {
	if len(msg.To) == 0 {
		return folio.ErrNoRecipient
	}
	if w.mailer == nil {
		return folio.ErrMailerNotConfigured
	}
	return w.mailer.Send(ctx, msg)
}

func (w *Worker) lookup(ctx context.Context, clientID id.ClientID) (*client.Client, *settings.Settings, error) {
	c, err := w.engine.GetClient(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := w.engine.GetSettings(ctx)
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}

func recipients(to []string, c *client.Client) []string {
	var out []string
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	if len(out) == 0 && strings.TrimSpace(c.Email) != "" {
		out = []string{strings.TrimSpace(c.Email)}
	}
	return out
}

func pick(override, fallback string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return fallback
}
