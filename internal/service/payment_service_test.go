package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"careerdesk/internal/domain"
	"careerdesk/internal/payment/payglocal"
)

type paymentFixture struct {
	svc       *paymentService
	payments  *mockPaymentRepo
	purchases *mockPurchaseRepo
	gateway   *mockGateway
}

func newPaymentFixture() paymentFixture {
	f := paymentFixture{
		payments:  new(mockPaymentRepo),
		purchases: new(mockPurchaseRepo),
		gateway:   new(mockGateway),
	}
	f.svc = NewPaymentService(f.payments, f.purchases, f.gateway, testLogger()).(*paymentService)
	return f
}

func pendingPayment() *domain.Payment {
	return &domain.Payment{
		ID:            20,
		PurchaseID:    10,
		MerchantTxnID: "CDTXN1",
		GatewayID:     "gl_1",
		Status:        domain.PaymentStatusPending,
		AmountMinor:   199900,
		Currency:      "INR",
	}
}

func TestHandleCallbackMarksPaid(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.On("VerifyCallback", "tok").Return(&payglocal.CallbackPayload{MerchantTxnID: "CDTXN1", GatewayID: "gl_1", Status: payglocal.StatusSentForCapture}, nil)
	f.payments.On("GetByMerchantTxnID", mock.Anything, "CDTXN1").Return(pendingPayment(), nil)
	f.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusSuccess && p.GatewayStatus == payglocal.StatusSentForCapture
	})).Return(nil)
	f.purchases.On("UpdateStatus", mock.Anything, int64(10), domain.PurchaseStatusPaid).Return(nil)

	payment, err := f.svc.HandleCallback(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, payment.Status)
	f.purchases.AssertExpectations(t)
}

func TestHandleCallbackWithoutStatusPollsGateway(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.On("VerifyCallback", "tok").Return(&payglocal.CallbackPayload{MerchantTxnID: "CDTXN1"}, nil)
	f.gateway.On("Status", mock.Anything, "gl_1").Return(&payglocal.StatusResponse{GatewayID: "gl_1", Status: payglocal.StatusDeclined}, nil)
	f.payments.On("GetByMerchantTxnID", mock.Anything, "CDTXN1").Return(pendingPayment(), nil)
	f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.purchases.On("UpdateStatus", mock.Anything, int64(10), domain.PurchaseStatusFailed).Return(nil)

	payment, err := f.svc.HandleCallback(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, payment.Status)
	assert.Equal(t, payglocal.GenericMessage, payment.ErrorMessage)
}

func TestHandleCallbackRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.On("VerifyCallback", "forged").Return(nil, &payglocal.Error{Code: payglocal.CodeAuthenticationFailed})

	_, err := f.svc.HandleCallback(context.Background(), "forged")
	_, ok := payglocal.AsError(err)
	assert.True(t, ok)
	f.payments.AssertNotCalled(t, "GetByMerchantTxnID", mock.Anything, mock.Anything)
}

func TestBackwardsTransitionIsIgnored(t *testing.T) {
	f := newPaymentFixture()
	paid := pendingPayment()
	paid.Status = domain.PaymentStatusSuccess
	f.payments.On("GetByID", mock.Anything, int64(20)).Return(paid, nil)
	f.gateway.On("Status", mock.Anything, "gl_1").Return(&payglocal.StatusResponse{Status: payglocal.StatusInProgress}, nil)

	payment, err := f.svc.Refresh(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, payment.Status)
	f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRefreshWithoutGatewayIDFailsAbandonedSession(t *testing.T) {
	f := newPaymentFixture()
	initiated := pendingPayment()
	initiated.GatewayID = ""
	initiated.Status = domain.PaymentStatusInitiated
	f.payments.On("GetByID", mock.Anything, int64(20)).Return(initiated, nil)
	f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.purchases.On("UpdateStatus", mock.Anything, int64(10), domain.PurchaseStatusFailed).Return(nil)

	payment, err := f.svc.Refresh(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, payment.Status)
	f.gateway.AssertNotCalled(t, "Status", mock.Anything, mock.Anything)
}

func TestRefundFullAndPartial(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		f := newPaymentFixture()
		paid := pendingPayment()
		paid.Status = domain.PaymentStatusSuccess
		f.payments.On("GetByID", mock.Anything, int64(20)).Return(paid, nil)
		f.gateway.On("Refund", mock.Anything, "gl_1", payglocal.RefundRequest{MerchantTxnID: "CDTXN1", Full: true, Amount: "1999.00", Currency: "INR"}).
			Return(&payglocal.RefundResponse{Status: payglocal.StatusSentForRefund}, nil)
		f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.purchases.On("UpdateStatus", mock.Anything, int64(10), domain.PurchaseStatusPaid).Return(nil)

		payment, err := f.svc.Refund(context.Background(), 20, 0)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusRefundPending, payment.Status)
		assert.Equal(t, int64(199900), payment.RefundedMinor)
		assert.Equal(t, int64(199900), payment.PendingRefundMinor)
	})

	t.Run("partial refunded immediately", func(t *testing.T) {
		f := newPaymentFixture()
		paid := pendingPayment()
		paid.Status = domain.PaymentStatusSuccess
		f.payments.On("GetByID", mock.Anything, int64(20)).Return(paid, nil)
		f.gateway.On("Refund", mock.Anything, "gl_1", payglocal.RefundRequest{MerchantTxnID: "CDTXN1", Amount: "500.00", Currency: "INR"}).
			Return(&payglocal.RefundResponse{Status: payglocal.StatusRefunded}, nil)
		f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.purchases.On("UpdateStatus", mock.Anything, int64(10), domain.PurchaseStatusPaid).Return(nil)

		payment, err := f.svc.Refund(context.Background(), 20, 50000)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusRefunded, payment.Status)
		f.purchases.AssertExpectations(t)
	})
}

func TestRefundRejections(t *testing.T) {
	f := newPaymentFixture()
	paid := pendingPayment()
	paid.Status = domain.PaymentStatusSuccess
	f.payments.On("GetByID", mock.Anything, int64(20)).Return(paid, nil)
	f.payments.On("GetByID", mock.Anything, int64(21)).Return(pendingPayment(), nil)

	_, err := f.svc.Refund(context.Background(), 20, 199901)
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.Refund(context.Background(), 20, -5)
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.Refund(context.Background(), 21, 0)
	assert.True(t, domain.IsValidation(err))
	f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}

func refundPendingPayment(settled, pending int64) *domain.Payment {
	p := pendingPayment()
	p.Status = domain.PaymentStatusRefundPending
	p.RefundedMinor = settled + pending
	p.PendingRefundMinor = pending
	return p
}

func TestPendingRefundGatewayUpdates(t *testing.T) {
	tests := []struct {
		name          string
		payment       *domain.Payment
		gatewayStatus string
		wantStatus    domain.PaymentStatus
		wantRefunded  int64
		wantPending   int64
		wantPurchase  domain.PurchaseStatus
	}{
		{
			name:          "capture status keeps refund pending",
			payment:       refundPendingPayment(0, 199900),
			gatewayStatus: payglocal.StatusSentForCapture,
			wantStatus:    domain.PaymentStatusRefundPending,
			wantRefunded:  199900,
			wantPending:   199900,
			wantPurchase:  domain.PurchaseStatusPaid,
		},
		{
			name:          "authorized keeps refund pending",
			payment:       refundPendingPayment(50000, 100000),
			gatewayStatus: payglocal.StatusAuthorized,
			wantStatus:    domain.PaymentStatusRefundPending,
			wantRefunded:  150000,
			wantPending:   100000,
			wantPurchase:  domain.PurchaseStatusPaid,
		},
		{
			name:          "rejected refund restores capture",
			payment:       refundPendingPayment(0, 199900),
			gatewayStatus: payglocal.StatusRefundFailed,
			wantStatus:    domain.PaymentStatusSuccess,
			wantRefunded:  0,
			wantPending:   0,
			wantPurchase:  domain.PurchaseStatusPaid,
		},
		{
			name:          "rejected refund keeps earlier partial refund",
			payment:       refundPendingPayment(50000, 100000),
			gatewayStatus: "refund_declined",
			wantStatus:    domain.PaymentStatusRefunded,
			wantRefunded:  50000,
			wantPending:   0,
			wantPurchase:  domain.PurchaseStatusPaid,
		},
		{
			name:          "completed refund settles",
			payment:       refundPendingPayment(0, 199900),
			gatewayStatus: payglocal.StatusRefunded,
			wantStatus:    domain.PaymentStatusRefunded,
			wantRefunded:  199900,
			wantPending:   0,
			wantPurchase:  domain.PurchaseStatusRefunded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			f.payments.On("GetByID", mock.Anything, int64(20)).Return(tt.payment, nil)
			f.gateway.On("Status", mock.Anything, "gl_1").Return(&payglocal.StatusResponse{Status: tt.gatewayStatus}, nil)
			f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
			f.purchases.On("UpdateStatus", mock.Anything, int64(10), tt.wantPurchase).Return(nil)

			payment, err := f.svc.Refresh(context.Background(), 20)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, payment.Status)
			assert.Equal(t, tt.wantRefunded, payment.RefundedMinor)
			assert.Equal(t, tt.wantPending, payment.PendingRefundMinor)
			f.purchases.AssertExpectations(t)
		})
	}
}

func TestCaptureStatusCannotReopenRefundedAmount(t *testing.T) {
	f := newPaymentFixture()
	paid := pendingPayment()
	paid.Status = domain.PaymentStatusSuccess
	f.payments.On("GetByID", mock.Anything, int64(20)).Return(paid, nil)
	f.gateway.On("Refund", mock.Anything, "gl_1", mock.Anything).
		Return(&payglocal.RefundResponse{Status: payglocal.StatusSentForRefund}, nil).Once()
	f.gateway.On("Status", mock.Anything, "gl_1").Return(&payglocal.StatusResponse{Status: payglocal.StatusSentForCapture}, nil)
	f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.purchases.On("UpdateStatus", mock.Anything, int64(10), mock.Anything).Return(nil)

	_, err := f.svc.Refund(context.Background(), 20, 0)
	require.NoError(t, err)
	_, err = f.svc.Refresh(context.Background(), 20)
	require.NoError(t, err)

	_, err = f.svc.Refund(context.Background(), 20, 0)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, int64(199900), paid.RefundedMinor)
	f.gateway.AssertNumberOfCalls(t, "Refund", 1)
}

func TestCallbackReplays(t *testing.T) {
	tests := []struct {
		name       string
		payment    *domain.Payment
		status     string
		wantStatus domain.PaymentStatus
		wantUpdate bool
	}{
		{"duplicate capture on paid payment", func() *domain.Payment {
			p := pendingPayment()
			p.Status = domain.PaymentStatusSuccess
			return p
		}(), payglocal.StatusSentForCapture, domain.PaymentStatusSuccess, false},
		{"capture on refunded payment", func() *domain.Payment {
			p := pendingPayment()
			p.Status, p.RefundedMinor = domain.PaymentStatusRefunded, 199900
			return p
		}(), payglocal.StatusSentForCapture, domain.PaymentStatusRefunded, false},
		{"decline on failed payment", func() *domain.Payment {
			p := pendingPayment()
			p.Status = domain.PaymentStatusFailed
			return p
		}(), payglocal.StatusDeclined, domain.PaymentStatusFailed, false},
		{"capture on pending refund", refundPendingPayment(0, 199900),
			payglocal.StatusSentForCapture, domain.PaymentStatusRefundPending, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			refunded := tt.payment.RefundedMinor
			f.gateway.On("VerifyCallback", "old-token").
				Return(&payglocal.CallbackPayload{MerchantTxnID: "CDTXN1", GatewayID: "gl_1", Status: tt.status}, nil)
			f.payments.On("GetByMerchantTxnID", mock.Anything, "CDTXN1").Return(tt.payment, nil)
			f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
			f.purchases.On("UpdateStatus", mock.Anything, int64(10), mock.Anything).Return(nil)

			payment, err := f.svc.HandleCallback(context.Background(), "old-token")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, payment.Status)
			assert.Equal(t, refunded, payment.RefundedMinor)
			if !tt.wantUpdate {
				f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRefundRemainderAfterPartialRefund(t *testing.T) {
	f := newPaymentFixture()
	partly := pendingPayment()
	partly.Status = domain.PaymentStatusRefunded
	partly.RefundedMinor = 50000
	f.payments.On("GetByID", mock.Anything, int64(20)).Return(partly, nil)
	f.gateway.On("Refund", mock.Anything, "gl_1", payglocal.RefundRequest{MerchantTxnID: "CDTXN1", Amount: "1499.00", Currency: "INR"}).
		Return(&payglocal.RefundResponse{Status: payglocal.StatusSentForRefund}, nil).Once()
	f.gateway.On("Status", mock.Anything, "gl_1").Return(&payglocal.StatusResponse{Status: payglocal.StatusRefunded}, nil)
	f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.purchases.On("UpdateStatus", mock.Anything, int64(10), mock.Anything).Return(nil)

	payment, err := f.svc.Refund(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefundPending, payment.Status)
	assert.Equal(t, int64(199900), payment.RefundedMinor)
	assert.Equal(t, int64(149900), payment.PendingRefundMinor)

	// one refund in flight at a time
	_, err = f.svc.Refund(context.Background(), 20, 1000)
	assert.True(t, domain.IsValidation(err))

	payment, err = f.svc.Refresh(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, payment.Status)
	f.purchases.AssertCalled(t, "UpdateStatus", mock.Anything, int64(10), domain.PurchaseStatusRefunded)

	_, err = f.svc.Refund(context.Background(), 20, 0)
	assert.True(t, domain.IsValidation(err))
	f.gateway.AssertNumberOfCalls(t, "Refund", 1)
}

func TestRefundRejectedByGateway(t *testing.T) {
	f := newPaymentFixture()
	paid := pendingPayment()
	paid.Status = domain.PaymentStatusSuccess
	f.payments.On("GetByID", mock.Anything, int64(20)).Return(paid, nil)
	f.gateway.On("Refund", mock.Anything, "gl_1", mock.Anything).
		Return(&payglocal.RefundResponse{Status: payglocal.StatusRefundFailed}, nil)

	_, err := f.svc.Refund(context.Background(), 20, 0)
	_, ok := payglocal.AsError(err)
	assert.True(t, ok)
	assert.Zero(t, paid.RefundedMinor)
	f.payments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRefreshStaleContinuesPastFailures(t *testing.T) {
	f := newPaymentFixture()
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	one := *pendingPayment()
	two := *pendingPayment()
	two.ID, two.GatewayID = 21, "gl_2"
	f.payments.On("ListByStatuses", mock.Anything, fixed.Add(-10*time.Minute), domain.OpenPaymentStatuses).
		Return([]domain.Payment{one, two}, nil)
	f.gateway.On("Status", mock.Anything, "gl_1").Return(nil, errors.New("timeout"))
	f.gateway.On("Status", mock.Anything, "gl_2").Return(&payglocal.StatusResponse{Status: payglocal.StatusSentForCapture}, nil)
	f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.purchases.On("UpdateStatus", mock.Anything, int64(10), domain.PurchaseStatusPaid).Return(nil)

	count, err := f.svc.RefreshStale(context.Background(), 10*time.Minute)
	assert.Equal(t, 1, count)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment 20")
}

func TestStatusForUserHidesOtherUsersPayments(t *testing.T) {
	f := newPaymentFixture()
	f.payments.On("GetByMerchantTxnID", mock.Anything, "CDTXN1").Return(pendingPayment(), nil)
	f.purchases.On("GetByID", mock.Anything, int64(10)).Return(&domain.Purchase{ID: 10, UserID: 99}, nil)

	_, err := f.svc.StatusForUser(context.Background(), &domain.User{ID: 3, Role: domain.RoleUser}, "CDTXN1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentStatusFromGateway(t *testing.T) {
	assert.Equal(t, domain.PaymentStatusSuccess, paymentStatusFromGateway("sent_for_capture"))
	assert.Equal(t, domain.PaymentStatusPending, paymentStatusFromGateway(payglocal.StatusInProgress))
	assert.Equal(t, domain.PaymentStatusFailed, paymentStatusFromGateway(payglocal.StatusAbandoned))
	assert.Equal(t, domain.PaymentStatusRefundPending, paymentStatusFromGateway(payglocal.StatusSentForRefund))
	assert.Equal(t, domain.PaymentStatusRefunded, paymentStatusFromGateway(payglocal.StatusRefunded))
	assert.Equal(t, domain.PaymentStatus(""), paymentStatusFromGateway("SOMETHING_NEW"))
}
