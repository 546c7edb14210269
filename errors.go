package folio

import (
	"errors"
	"fmt"

	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/statement"
	"github.com/xraph/folio/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("folio: not found")
	ErrAlreadyExists = errors.New("folio: already exists")
	ErrInvalidInput  = errors.New("folio: invalid input")

	// Invoice errors
	ErrInvoiceNotFound        = errors.New("folio: invoice not found")
	ErrDuplicateInvoiceNumber = errors.New("folio: duplicate invoice number")
	ErrInvalidStatus          = invoice.ErrInvalidStatus

	// Payment errors
	ErrInvalidPaymentAmount = invoice.ErrInvalidPaymentAmount
	ErrOverpayment          = errors.New("folio: payment exceeds amount remaining (warning)")

	// Client errors
	ErrClientNotFound = errors.New("folio: client not found")
	ErrClientInactive = errors.New("folio: client is inactive")

	// Product errors
	ErrProductNotFound = errors.New("folio: product not found")
	ErrDuplicateSKU    = errors.New("folio: duplicate product sku")

	// Statement errors
	ErrStatementNotFound = errors.New("folio: statement not found")
	ErrInvalidDateRange  = statement.ErrInvalidDateRange

	// Delivery errors
	ErrQueueFull           = errors.New("folio: delivery queue full")
	ErrNoRecipient         = errors.New("folio: no recipient email address")
	ErrMailerNotConfigured = errors.New("folio: mailer not configured")

	// Store errors
	ErrStoreNotReady     = errors.New("folio: store not ready")
	ErrStoreClosed       = errors.New("folio: store is closed")
	ErrTransactionFailed = errors.New("folio: transaction failed")
	ErrMigrationFailed   = errors.New("folio: migration failed")
)

// ValidationError represents a validation failure with details.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("folio: validation failed for %s: %s", e.Field, e.Message)
}

// Is reports ValidationError as an ErrInvalidInput.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// OverpaymentWarning is returned when a payment would take an invoice past
// zero remaining and the caller has not confirmed it. Nothing is recorded.
type OverpaymentWarning struct {
	InvoiceNumber string
	Amount        types.Money
	Remaining     types.Money
}

func (w *OverpaymentWarning) Error() string {
	return fmt.Sprintf("folio: payment of %s exceeds %s remaining on invoice %s; confirm to record",
		w.Amount, w.Remaining, w.InvoiceNumber)
}

// Unwrap lets errors.Is match ErrOverpayment.
func (w *OverpaymentWarning) Unwrap() error { return ErrOverpayment }

// Excess is the amount by which the payment overshoots the balance.
func (w *OverpaymentWarning) Excess() types.Money {
	return w.Amount.Subtract(w.Remaining)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "folio: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("folio: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Category groups errors by how a caller should react to them.
type Category string

const (
	CategoryNone        Category = ""
	CategoryValidation  Category = "validation"
	CategoryNotFound    Category = "not_found"
	CategoryWarning     Category = "warning"
	CategoryConflict    Category = "conflict"
	CategoryPersistence Category = "persistence"
)

// Classify maps err onto a Category. Unknown non-nil errors are persistence failures.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case IsWarning(err):
		return CategoryWarning
	case IsValidation(err):
		return CategoryValidation
	case IsNotFound(err):
		return CategoryNotFound
	case IsConflict(err):
		return CategoryConflict
	default:
		return CategoryPersistence
	}
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrStatementNotFound)
}

// IsValidation returns true if the input was rejected before any mutation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidPaymentAmount) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrClientInactive) ||
		errors.Is(err, ErrNoRecipient)
}

// IsWarning returns true for consistency warnings that the caller may
// acknowledge and retry.
func IsWarning(err error) bool {
	return errors.Is(err, ErrOverpayment)
}

// IsConflict returns true for uniqueness violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrDuplicateInvoiceNumber) ||
		errors.Is(err, ErrDuplicateSKU)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrQueueFull) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
