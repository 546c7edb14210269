package invoice

import "time"

// SetStatus sets the stored status directly. Moving to Sent stamps SentAt
// and moving to Paid stamps PaidAt, each only when not already set, so
// repeating a transition leaves the original timestamp alone.
func SetStatus(inv *Invoice, s Status, now time.Time) error {
	if !s.Valid() {
		return ErrInvalidStatus
	}

	inv.Status = s
	switch s {
	case StatusSent:
		if inv.SentAt == nil {
			t := now.UTC()
			inv.SentAt = &t
		}
	case StatusPaid:
		if inv.PaidAt == nil {
			t := now.UTC()
			inv.PaidAt = &t
		}
	}
	return nil
}

// IsUnpaid reports whether inv still has a balance and has left Draft.
func (inv *Invoice) IsUnpaid() bool {
	return inv.Status != StatusDraft && inv.AmountRemaining().IsPositive()
}
