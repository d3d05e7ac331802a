package service

import (
	"context"
	"strings"

	"careerdesk/internal/domain"
	"careerdesk/internal/payment/payglocal"
)

// PaymentGateway is the subset of the gateway client the services use.
type PaymentGateway interface {
	Initiate(ctx context.Context, req payglocal.InitiateRequest) (*payglocal.InitiateResponse, error)
	Status(ctx context.Context, gid string) (*payglocal.StatusResponse, error)
	Refund(ctx context.Context, gid string, req payglocal.RefundRequest) (*payglocal.RefundResponse, error)
	VerifyCallback(token string) (*payglocal.CallbackPayload, error)
}

var _ PaymentGateway = (*payglocal.Client)(nil)

// paymentStatusFromGateway maps a gateway status onto the local lifecycle.
// Unknown values return "" and leave the payment untouched.
func paymentStatusFromGateway(status string) domain.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case payglocal.StatusSentForCapture, payglocal.StatusAuthorized, "CAPTURED", "SUCCESS":
		return domain.PaymentStatusSuccess
	case payglocal.StatusInProgress, "PENDING", "CREATED":
		return domain.PaymentStatusPending
	case payglocal.StatusRequestError, payglocal.StatusDeclined, payglocal.StatusAbandoned,
		"FAILED", "CANCELLED", "EXPIRED", "ISSUER_DECLINE":
		return domain.PaymentStatusFailed
	case payglocal.StatusSentForRefund, "REFUND_INITIATED":
		return domain.PaymentStatusRefundPending
	case payglocal.StatusRefunded, "PARTIALLY_REFUNDED":
		return domain.PaymentStatusRefunded
	default:
		return ""
	}
}

// refundRejected reports whether the gateway turned down a refund request.
// Only these statuses undo a pending refund.
func refundRejected(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case payglocal.StatusRefundFailed, "REFUND_DECLINED", "REFUND_REJECTED":
		return true
	default:
		return false
	}
}

// gatewayFailure records a gateway error on the payment in customer safe form.
func gatewayFailure(payment *domain.Payment, err error) {
	if gwErr, ok := payglocal.AsError(err); ok {
		payment.ErrorCode = gwErr.Code
		payment.ErrorMessage = gwErr.UserMessage()
		return
	}
	payment.ErrorCode = ""
	payment.ErrorMessage = payglocal.GenericMessage
}
