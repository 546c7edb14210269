package audithook

// Action constants for audit events.
const (
	// Invoice actions
	ActionInvoiceCreated       = "invoice.created"
	ActionInvoiceUpdated       = "invoice.updated"
	ActionInvoiceDeleted       = "invoice.deleted"
	ActionInvoiceDuplicated    = "invoice.duplicated"
	ActionInvoiceStatusChanged = "invoice.status_changed"
	ActionInvoicePaid          = "invoice.paid"

	// Payment actions
	ActionPaymentRecorded = "payment.recorded"
	ActionOverpayment     = "payment.overpaid"

	// Statement and client actions
	ActionStatementGenerated = "statement.generated"
	ActionClientCreated      = "client.created"

	// Delivery actions
	ActionEmailSent   = "email.sent"
	ActionEmailFailed = "email.failed"
)

// Resource constants for audit events.
const (
	ResourceInvoice   = "invoice"
	ResourcePayment   = "payment"
	ResourceStatement = "statement"
	ResourceClient    = "client"
	ResourceEmail     = "email"
)

// Category constants for audit events.
const (
	CategoryBilling  = "billing"
	CategoryPayment  = "payment"
	CategoryAccount  = "account"
	CategoryDelivery = "delivery"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
