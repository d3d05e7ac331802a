package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusInitiated     PaymentStatus = "initiated"
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusSuccess       PaymentStatus = "success"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefundPending PaymentStatus = "refund_pending"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

// OpenPaymentStatuses are the states that still expect a gateway update.
var OpenPaymentStatuses = []PaymentStatus{
	PaymentStatusInitiated,
	PaymentStatusPending,
	PaymentStatusRefundPending,
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusInitiated:     {PaymentStatusPending, PaymentStatusSuccess, PaymentStatusFailed},
	PaymentStatusPending:       {PaymentStatusSuccess, PaymentStatusFailed},
	PaymentStatusSuccess:       {PaymentStatusRefundPending, PaymentStatusRefunded},
	PaymentStatusRefundPending: {PaymentStatusRefunded, PaymentStatusSuccess},
	PaymentStatusRefunded:      {PaymentStatusRefundPending},
}

// Payment tracks one attempt to collect money for a purchase through the gateway.
// RefundedMinor includes PendingRefundMinor, the refund still awaiting the gateway.
type Payment struct {
	ID                 int64
	PurchaseID         int64
	MerchantTxnID      string
	GatewayID          string
	Status             PaymentStatus
	AmountMinor        int64
	RefundedMinor      int64
	PendingRefundMinor int64
	Currency           string
	RedirectURL        string
	GatewayStatus      string
	ErrorCode          string
	ErrorMessage       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CanTransition reports whether the payment may move to next.
// Re-applying the current status is always allowed.
func (p *Payment) CanTransition(next PaymentStatus) bool {
	if p.Status == next {
		return true
	}
	for _, allowed := range paymentTransitions[p.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen reports whether the payment still awaits a final gateway answer.
func (p *Payment) IsOpen() bool {
	for _, s := range OpenPaymentStatuses {
		if p.Status == s {
			return true
		}
	}
	return false
}

// RefundableMinor is what is left to refund. Only one refund may be in
// flight, so nothing is refundable while a refund is pending.
func (p *Payment) RefundableMinor() int64 {
	switch p.Status {
	case PaymentStatusSuccess, PaymentStatusRefunded:
		if left := p.AmountMinor - p.RefundedMinor; left > 0 {
			return left
		}
	}
	return 0
}

// SettleRefund marks the pending refund as completed by the gateway.
func (p *Payment) SettleRefund() {
	p.PendingRefundMinor = 0
}

// RejectRefund takes the pending refund back out of the refunded total and
// returns the status the payment falls back to.
func (p *Payment) RejectRefund() PaymentStatus {
	p.RefundedMinor -= p.PendingRefundMinor
	if p.RefundedMinor < 0 {
		p.RefundedMinor = 0
	}
	p.PendingRefundMinor = 0
	if p.RefundedMinor > 0 {
		return PaymentStatusRefunded
	}
	return PaymentStatusSuccess
}

// PurchaseStatusFor maps a payment outcome onto its purchase.
func PurchaseStatusFor(status PaymentStatus, fullyRefunded bool) PurchaseStatus {
	switch status {
	case PaymentStatusSuccess, PaymentStatusRefundPending:
		return PurchaseStatusPaid
	case PaymentStatusFailed:
		return PurchaseStatusFailed
	case PaymentStatusRefunded:
		if fullyRefunded {
			return PurchaseStatusRefunded
		}
		return PurchaseStatusPaid
	default:
		return PurchaseStatusPending
	}
}
