package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"careerdesk/internal/domain"
	"careerdesk/internal/payment/payglocal"
	"careerdesk/internal/repository"
)

// CheckoutResult is what the shopper needs to continue to the hosted payment page.
type CheckoutResult struct {
	Purchase    *domain.Purchase
	Payment     *domain.Payment
	RedirectURL string
}

// OrderService turns carts into purchases and exposes order history.
type OrderService interface {
	Checkout(ctx context.Context, userID int64, lines []CartLine) (*CheckoutResult, error)
	ListMine(ctx context.Context, userID int64) ([]domain.Purchase, error)
	GetMine(ctx context.Context, userID, purchaseID int64) (*domain.Purchase, error)
	List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Purchase], error)
	Get(ctx context.Context, id int64) (*domain.Purchase, error)
}

type OrderConfig struct {
	CallbackURL string
}

type orderService struct {
	purchases repository.PurchaseRepository
	payments  repository.PaymentRepository
	users     repository.UserRepository
	catalog   PackageService
	gateway   PaymentGateway
	cfg       OrderConfig
	logger    *logrus.Logger
	newTxnID  func() string
}

// NewOrderService builds the order service. gateway may be nil, in which
// case checkout reports ErrPaymentsDisabled.
func NewOrderService(
	purchases repository.PurchaseRepository,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	catalog PackageService,
	gateway PaymentGateway,
	cfg OrderConfig,
	logger *logrus.Logger,
) OrderService {
	return &orderService{
		purchases: purchases,
		payments:  payments,
		users:     users,
		catalog:   catalog,
		gateway:   gateway,
		cfg:       cfg,
		logger:    logger,
		newTxnID:  payglocal.GenerateMerchantTxnID,
	}
}

func (s *orderService) Checkout(ctx context.Context, userID int64, lines []CartLine) (*CheckoutResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	quote, err := s.catalog.Quote(ctx, lines)
	if err != nil {
		return nil, err
	}

	purchase := &domain.Purchase{
		UserID:     user.ID,
		Status:     domain.PurchaseStatusPending,
		TotalMinor: quote.TotalMinor,
		Currency:   quote.Currency,
		Items:      make([]domain.PurchaseItem, 0, len(quote.Lines)),
	}
	for _, line := range quote.Lines {
		purchase.Items = append(purchase.Items, domain.PurchaseItem{
			PackageID:      line.Package.ID,
			PackageName:    line.Package.Name,
			UnitPriceMinor: line.Package.PriceMinor,
			Quantity:       line.Quantity,
		})
	}
	payment := &domain.Payment{
		MerchantTxnID: s.newTxnID(),
		Status:        domain.PaymentStatusInitiated,
		AmountMinor:   purchase.TotalMinor,
		Currency:      purchase.Currency,
	}

	if err := s.purchases.CreateWithPayment(ctx, purchase, payment); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"purchase_id":     purchase.ID,
		"payment_id":      payment.ID,
		"merchant_txn_id": payment.MerchantTxnID,
	})

	resp, err := s.gateway.Initiate(ctx, payglocal.InitiateRequest{
		MerchantTxnID: payment.MerchantTxnID,
		Amount:        domain.FormatAmount(payment.AmountMinor),
		Currency:      payment.Currency,
		CallbackURL:   s.cfg.CallbackURL,
		Customer: payglocal.Customer{
			Name:  user.Name,
			Email: user.Email,
			Phone: user.Phone,
		},
	})
	if err != nil {
		log.WithError(err).Warn("initiate payment")
		payment.Status = domain.PaymentStatusFailed
		gatewayFailure(payment, err)
		if updateErr := s.payments.Update(ctx, payment); updateErr != nil {
			log.WithError(updateErr).Error("record failed payment")
		}
		if updateErr := s.purchases.UpdateStatus(ctx, purchase.ID, domain.PurchaseStatusFailed); updateErr != nil {
			log.WithError(updateErr).Error("record failed purchase")
		}
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	payment.GatewayID = resp.GatewayID
	payment.RedirectURL = resp.RedirectURL
	payment.GatewayStatus = resp.Status
	payment.Status = domain.PaymentStatusPending
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("store payment session: %w", err)
	}
	purchase.Payments = []domain.Payment{*payment}

	log.Info("checkout started")
	return &CheckoutResult{Purchase: purchase, Payment: payment, RedirectURL: resp.RedirectURL}, nil
}

func (s *orderService) ListMine(ctx context.Context, userID int64) ([]domain.Purchase, error) {
	return s.purchases.ListByUser(ctx, userID)
}

func (s *orderService) GetMine(ctx context.Context, userID, purchaseID int64) (*domain.Purchase, error) {
	purchase, err := s.purchases.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return purchase, nil
}

func (s *orderService) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Purchase], error) {
	return s.purchases.List(ctx, query.Normalize())
}

func (s *orderService) Get(ctx context.Context, id int64) (*domain.Purchase, error) {
	return s.purchases.GetByID(ctx, id)
}
