package repository

import (
	"context"
	"time"

	"careerdesk/internal/domain"
)

// PurchaseRepository persists purchases with their line items.
type PurchaseRepository interface {
	// CreateWithPayment stores the purchase, its items and the first payment atomically.
	CreateWithPayment(ctx context.Context, purchase *domain.Purchase, payment *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Purchase, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Purchase, error)
	List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Purchase], error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PurchaseStatus) error
}

// PaymentRepository persists gateway payment attempts.
type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByMerchantTxnID(ctx context.Context, merchantTxnID string) (*domain.Payment, error)
	List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Payment], error)
	ListByStatuses(ctx context.Context, updatedBefore time.Time, statuses ...domain.PaymentStatus) ([]domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
}
