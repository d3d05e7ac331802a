package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"careerdesk/internal/domain"
	"careerdesk/internal/payment/payglocal"
	"careerdesk/internal/repository"
)

// abandonedMessage is stored on payments whose hosted session never opened.
const abandonedMessage = "Payment session was never opened."

// PaymentService keeps local payments in step with the gateway.
type PaymentService interface {
	HandleCallback(ctx context.Context, token string) (*domain.Payment, error)
	Refresh(ctx context.Context, paymentID int64) (*domain.Payment, error)
	// StatusForUser returns a payment by merchant transaction id if the user
	// owns it (admins see all), refreshing it first while it is still open.
	StatusForUser(ctx context.Context, user *domain.User, merchantTxnID string) (*domain.Payment, error)
	// Refund refunds amountMinor, or everything refundable when amountMinor is 0.
	Refund(ctx context.Context, paymentID, amountMinor int64) (*domain.Payment, error)
	ListStale(ctx context.Context, olderThan time.Duration) ([]domain.Payment, error)
	RefreshStale(ctx context.Context, olderThan time.Duration) (int, error)
	List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Payment], error)
}

type paymentService struct {
	payments  repository.PaymentRepository
	purchases repository.PurchaseRepository
	gateway   PaymentGateway
	logger    *logrus.Logger
	now       func() time.Time
}

// NewPaymentService builds the payment service. gateway may be nil; only
// listing works then.
func NewPaymentService(payments repository.PaymentRepository, purchases repository.PurchaseRepository, gateway PaymentGateway, logger *logrus.Logger) PaymentService {
	return &paymentService{
		payments:  payments,
		purchases: purchases,
		gateway:   gateway,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *paymentService) HandleCallback(ctx context.Context, token string) (*domain.Payment, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	payload, err := s.gateway.VerifyCallback(token)
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByMerchantTxnID(ctx, payload.MerchantTxnID)
	if err != nil {
		return nil, err
	}
	if payment.GatewayID == "" {
		payment.GatewayID = payload.GatewayID
	} else if payload.GatewayID != "" && payload.GatewayID != payment.GatewayID {
		return nil, domain.Invalid("callback gateway id does not match payment")
	}
	if !payment.IsOpen() {
		// Settled payments only change through refunds; a repeated or
		// replayed callback must not move them.
		s.logger.WithFields(logrus.Fields{
			"payment_id":     payment.ID,
			"status":         payment.Status,
			"gateway_status": payload.Status,
		}).Info("ignoring callback for settled payment")
		return payment, nil
	}

	// The callback status is advisory; ask the gateway when it is missing.
	if paymentStatusFromGateway(payload.Status) == "" && !refundRejected(payload.Status) && payment.GatewayID != "" {
		return s.refresh(ctx, payment)
	}
	if err := s.apply(ctx, payment, payload.Status); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) Refresh(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, payment)
}

func (s *paymentService) refresh(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment.GatewayID == "" {
		// Initiate never answered; nothing exists at the gateway to poll.
		if payment.Status == domain.PaymentStatusInitiated {
			payment.ErrorMessage = abandonedMessage
			if err := s.transition(ctx, payment, domain.PaymentStatusFailed, ""); err != nil {
				return nil, err
			}
		}
		return payment, nil
	}

	resp, err := s.gateway.Status(ctx, payment.GatewayID)
	if err != nil {
		return nil, fmt.Errorf("payment status: %w", err)
	}
	if err := s.apply(ctx, payment, resp.Status); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) StatusForUser(ctx context.Context, user *domain.User, merchantTxnID string) (*domain.Payment, error) {
	payment, err := s.payments.GetByMerchantTxnID(ctx, merchantTxnID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		purchase, err := s.purchases.GetByID(ctx, payment.PurchaseID)
		if err != nil {
			return nil, err
		}
		if purchase.UserID != user.ID {
			return nil, domain.ErrNotFound
		}
	}

	if payment.IsOpen() && s.gateway != nil {
		refreshed, err := s.refresh(ctx, payment)
		if err != nil {
			s.logger.WithError(err).WithField("merchant_txn_id", merchantTxnID).Warn("refresh payment status")
			return payment, nil
		}
		return refreshed, nil
	}
	return payment, nil
}

func (s *paymentService) Refund(ctx context.Context, paymentID, amountMinor int64) (*domain.Payment, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	refundable := payment.RefundableMinor()
	if refundable <= 0 {
		return nil, domain.Invalid(fmt.Sprintf("payment in status %s cannot be refunded", payment.Status))
	}
	if amountMinor < 0 {
		return nil, domain.Invalid("refund amount must be positive")
	}
	if amountMinor == 0 {
		amountMinor = refundable
	}
	if amountMinor > refundable {
		return nil, domain.Invalid(fmt.Sprintf("refund of %s exceeds refundable %s",
			domain.FormatAmount(amountMinor), domain.FormatAmount(refundable)))
	}

	full := amountMinor == payment.AmountMinor
	resp, err := s.gateway.Refund(ctx, payment.GatewayID, payglocal.RefundRequest{
		MerchantTxnID: payment.MerchantTxnID,
		Full:          full,
		Amount:        domain.FormatAmount(amountMinor),
		Currency:      payment.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("refund payment: %w", err)
	}
	if refundRejected(resp.Status) {
		return nil, &payglocal.Error{Message: fmt.Sprintf("refund rejected with status %s", resp.Status)}
	}

	next := paymentStatusFromGateway(resp.Status)
	if next != domain.PaymentStatusRefunded {
		next = domain.PaymentStatusRefundPending
	}
	payment.RefundedMinor += amountMinor
	payment.PendingRefundMinor = 0
	if next == domain.PaymentStatusRefundPending {
		payment.PendingRefundMinor = amountMinor
	}
	if err := s.transition(ctx, payment, next, resp.Status); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"amount":     domain.FormatAmount(amountMinor),
		"full":       full,
	}).Info("refund requested")
	return payment, nil
}

func (s *paymentService) ListStale(ctx context.Context, olderThan time.Duration) ([]domain.Payment, error) {
	return s.payments.ListByStatuses(ctx, s.now().Add(-olderThan), domain.OpenPaymentStatuses...)
}

func (s *paymentService) RefreshStale(ctx context.Context, olderThan time.Duration) (int, error) {
	if s.gateway == nil {
		return 0, ErrPaymentsDisabled
	}
	stale, err := s.ListStale(ctx, olderThan)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	var errs []error
	for i := range stale {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.refresh(ctx, &stale[i]); err != nil {
			errs = append(errs, fmt.Errorf("payment %d: %w", stale[i].ID, err))
			continue
		}
		refreshed++
	}
	return refreshed, errors.Join(errs...)
}

func (s *paymentService) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Payment], error) {
	return s.payments.List(ctx, query.Normalize())
}

// apply moves the payment to whatever the gateway status maps to.
func (s *paymentService) apply(ctx context.Context, payment *domain.Payment, gatewayStatus string) error {
	next := paymentStatusFromGateway(gatewayStatus)
	if next == "" && !refundRejected(gatewayStatus) {
		s.logger.WithFields(logrus.Fields{
			"payment_id":     payment.ID,
			"gateway_status": gatewayStatus,
		}).Warn("unknown gateway status")
	}
	if next == "" {
		next = payment.Status
	}
	if payment.Status == domain.PaymentStatusRefundPending {
		switch {
		case refundRejected(gatewayStatus):
			// The money stays captured; only the refund in flight is undone.
			next = payment.RejectRefund()
		case next == domain.PaymentStatusRefunded:
			payment.SettleRefund()
		case next == domain.PaymentStatusSuccess:
			// A capture status says nothing about the refund in flight.
			s.logger.WithFields(logrus.Fields{
				"payment_id":     payment.ID,
				"gateway_status": gatewayStatus,
			}).Debug("refund still pending")
			next = payment.Status
		}
	}
	if next == domain.PaymentStatusFailed && payment.ErrorMessage == "" {
		payment.ErrorMessage = payglocal.UserMessage(payment.ErrorCode)
	}
	return s.transition(ctx, payment, next, gatewayStatus)
}

func (s *paymentService) transition(ctx context.Context, payment *domain.Payment, next domain.PaymentStatus, gatewayStatus string) error {
	log := s.logger.WithFields(logrus.Fields{
		"payment_id":      payment.ID,
		"merchant_txn_id": payment.MerchantTxnID,
		"from":            payment.Status,
		"to":              next,
	})
	if !payment.CanTransition(next) {
		log.Warn("ignoring backwards payment transition")
		return nil
	}

	payment.Status = next
	if gatewayStatus != "" {
		payment.GatewayStatus = gatewayStatus
	}
	if err := s.payments.Update(ctx, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	fullyRefunded := payment.RefundedMinor >= payment.AmountMinor
	if err := s.purchases.UpdateStatus(ctx, payment.PurchaseID, domain.PurchaseStatusFor(next, fullyRefunded)); err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	log.Debug("payment updated")
	return nil
}
