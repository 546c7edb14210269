package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
)

const dateLayout = "2006-01-02"

type apiError struct {
	Status    string `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status":  "success",
		"message": message,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, apiError{
		Status:    "error",
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeFile(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// fail maps an engine error onto an HTTP status through folio.Classify.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch folio.Classify(err) {
	case folio.CategoryValidation:
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case folio.CategoryNotFound:
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
	case folio.CategoryConflict:
		writeError(w, r, http.StatusConflict, "CONFLICT", err.Error())
	case folio.CategoryWarning:
		resp := apiError{
			Status:    "error",
			Code:      "CONFIRMATION_REQUIRED",
			Message:   err.Error(),
			RequestID: middleware.GetReqID(r.Context()),
		}
		var warn *folio.OverpaymentWarning
		if errors.As(err, &warn) {
			resp.Details = map[string]any{
				"amount":    warn.Amount,
				"remaining": warn.Remaining,
				"excess":    warn.Excess(),
			}
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		if errors.Is(err, folio.ErrMailerNotConfigured) {
			writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error())
			return
		}
		h.logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("api: request failed")
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body: "+err.Error())
		return false
	}
	return true
}

// pathID parses the {id} URL parameter, answering 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, prefix id.Prefix) (id.ID, bool) {
	v, err := id.ParseWithPrefix(chi.URLParam(r, "id"), prefix)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id: "+err.Error())
		return id.Nil, false
	}
	return v, true
}

// query reads the typed query parameters shared by list and report endpoints.
type query struct {
	r   *http.Request
	err error
}

func (q *query) str(key string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(key))
}

func (q *query) integer(key string) int {
	s := q.str(key)
	if s == "" || q.err != nil {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		q.err = fmt.Errorf("%s: %w", key, err)
	}
	return n
}

func (q *query) boolean(key string) bool {
	s := q.str(key)
	if s == "" || q.err != nil {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		q.err = fmt.Errorf("%s: %w", key, err)
	}
	return b
}

func (q *query) date(key string) time.Time {
	s := q.str(key)
	if s == "" || q.err != nil {
		return time.Time{}
	}
	t, err := parseDate(s)
	if err != nil {
		q.err = fmt.Errorf("%s: %w", key, err)
	}
	return t
}

func (q *query) id(key string, prefix id.Prefix) id.ID {
	s := q.str(key)
	if s == "" || q.err != nil {
		return id.Nil
	}
	v, err := id.ParseWithPrefix(s, prefix)
	if err != nil {
		q.err = fmt.Errorf("%s: %w", key, err)
	}
	return v
}

func (q *query) check(w http.ResponseWriter) bool {
	if q.err != nil {
		writeError(w, q.r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid query: "+q.err.Error())
		return false
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// date is a calendar date in JSON bodies: "2025-03-10" or an RFC 3339 timestamp.
type date time.Time

func (d *date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("date: expected string, got %s", b)
	}
	if s == "" {
		*d = date{}
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	*d = date(t)
	return nil
}

func (d *date) time() time.Time {
	if d == nil {
		return time.Time{}
	}
	return time.Time(*d)
}
