package payglocal

import (
	"errors"
	"fmt"
)

// GenericMessage is shown when the gateway reports a code we do not know.
const GenericMessage = "We could not process your payment right now. Please try again or contact support."

// Gateway error codes documented for merchant integrations.
const (
	CodeAuthenticationFailed = "GL-201-001"
	CodeSessionExpired       = "GL-201-002"
	CodeDuplicateTxn         = "GL-201-003"
	CodeInvalidAmount        = "GL-201-004"
	CodeUnsupportedCurrency  = "GL-201-005"
	CodeDeclined             = "GL-201-006"
	CodeInsufficientFunds    = "GL-201-007"
	CodeCancelledByUser      = "GL-201-008"
	CodeRefundExceeded       = "GL-201-009"
	CodeTxnNotFound          = "GL-404-001"
	CodeServiceUnavailable   = "GL-500-001"
)

var userMessages = map[string]string{
	CodeAuthenticationFailed: "The payment request could not be authenticated. Please try again later.",
	CodeSessionExpired:       "Your payment session has expired. Please start checkout again.",
	CodeDuplicateTxn:         "This payment was already submitted.",
	CodeInvalidAmount:        "The payment amount is invalid.",
	CodeUnsupportedCurrency:  "This currency is not supported for online payment.",
	CodeDeclined:             "Your card was declined by the issuing bank.",
	CodeInsufficientFunds:    "The card has insufficient funds.",
	CodeCancelledByUser:      "The payment was cancelled.",
	CodeRefundExceeded:       "The refund amount exceeds what was captured.",
	CodeTxnNotFound:          "The payment could not be found at the gateway.",
	CodeServiceUnavailable:   "The payment service is temporarily unavailable. Please try again shortly.",
}

// UserMessage maps a gateway error code to text safe to show a customer.
func UserMessage(code string) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return GenericMessage
}

// Error is a failure reported by, or while talking to, the gateway.
type Error struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("payglocal: %s (http %d)", e.Message, e.HTTPStatus)
	}
	return fmt.Sprintf("payglocal: %s: %s (http %d)", e.Code, e.Message, e.HTTPStatus)
}

// UserMessage returns the customer facing text for this error.
func (e *Error) UserMessage() string {
	return UserMessage(e.Code)
}

// AsError extracts a gateway Error from err.
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}
