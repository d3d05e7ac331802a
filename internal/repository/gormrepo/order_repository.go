package gormrepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"careerdesk/internal/domain"
	"careerdesk/internal/repository"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) repository.PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) CreateWithPayment(ctx context.Context, purchase *domain.Purchase, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := purchaseFromDomain(purchase)
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("insert purchase: %w", translateError(err))
		}

		payment.PurchaseID = model.ID
		pm := paymentFromDomain(payment)
		if err := tx.Create(pm).Error; err != nil {
			return fmt.Errorf("insert payment: %w", translateError(err))
		}

		created := model.toDomain()
		purchase.ID = created.ID
		purchase.CreatedAt = created.CreatedAt
		purchase.UpdatedAt = created.UpdatedAt
		purchase.Items = created.Items

		*payment = *pm.toDomain()
		purchase.Payments = []domain.Payment{*payment}
		return nil
	})
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	var model purchaseModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&model, id).Error
	if err != nil {
		return nil, fmt.Errorf("get purchase %d: %w", id, translateError(err))
	}
	return model.toDomain(), nil
}

func (r *PurchaseRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Purchase, error) {
	var models []purchaseModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("query purchases for user %d: %w", userID, err)
	}
	purchases := make([]domain.Purchase, len(models))
	for i := range models {
		purchases[i] = *models[i].toDomain()
	}
	return purchases, nil
}

func (r *PurchaseRepository) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Purchase], error) {
	var page domain.Page[domain.Purchase]

	filter := func(tx *gorm.DB) *gorm.DB {
		if query.Status != "" {
			tx = tx.Where("status = ?", query.Status)
		}
		if query.UserID > 0 {
			tx = tx.Where("user_id = ?", query.UserID)
		}
		return tx
	}

	if err := r.db.WithContext(ctx).Model(&purchaseModel{}).Scopes(filter).Count(&page.Total).Error; err != nil {
		return page, fmt.Errorf("count purchases: %w", err)
	}
	var models []purchaseModel
	err := r.db.WithContext(ctx).
		Scopes(filter, paginate(query)).
		Preload("Items").
		Preload("Payments").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return page, fmt.Errorf("query purchases: %w", err)
	}
	page.Items = make([]domain.Purchase, len(models))
	for i := range models {
		page.Items[i] = *models[i].toDomain()
	}
	return page, nil
}

func (r *PurchaseRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&purchaseModel{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count purchases for user %d: %w", userID, err)
	}
	return count, nil
}

func (r *PurchaseRepository) UpdateStatus(ctx context.Context, id int64, status domain.PurchaseStatus) error {
	res := r.db.WithContext(ctx).Model(&purchaseModel{ID: id}).Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("update purchase status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update purchase %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var model paymentModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, translateError(err))
	}
	return model.toDomain(), nil
}

func (r *PaymentRepository) GetByMerchantTxnID(ctx context.Context, merchantTxnID string) (*domain.Payment, error) {
	var model paymentModel
	if err := r.db.WithContext(ctx).Where("merchant_txn_id = ?", merchantTxnID).First(&model).Error; err != nil {
		return nil, fmt.Errorf("get payment %q: %w", merchantTxnID, translateError(err))
	}
	return model.toDomain(), nil
}

func (r *PaymentRepository) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Payment], error) {
	var page domain.Page[domain.Payment]

	filter := func(tx *gorm.DB) *gorm.DB {
		if query.Status != "" {
			tx = tx.Where("status = ?", query.Status)
		}
		if query.Search != "" {
			pattern := likePattern(query.Search)
			tx = tx.Where("LOWER(merchant_txn_id) LIKE ? OR LOWER(gateway_id) LIKE ?", pattern, pattern)
		}
		return tx
	}

	if err := r.db.WithContext(ctx).Model(&paymentModel{}).Scopes(filter).Count(&page.Total).Error; err != nil {
		return page, fmt.Errorf("count payments: %w", err)
	}
	var models []paymentModel
	if err := r.db.WithContext(ctx).Scopes(filter, paginate(query)).Order("id DESC").Find(&models).Error; err != nil {
		return page, fmt.Errorf("query payments: %w", err)
	}
	page.Items = make([]domain.Payment, len(models))
	for i := range models {
		page.Items[i] = *models[i].toDomain()
	}
	return page, nil
}

func (r *PaymentRepository) ListByStatuses(ctx context.Context, updatedBefore time.Time, statuses ...domain.PaymentStatus) ([]domain.Payment, error) {
	if len(statuses) == 0 {
		return []domain.Payment{}, nil
	}
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}

	var models []paymentModel
	err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", values, updatedBefore.UTC()).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("query payments by status: %w", err)
	}
	payments := make([]domain.Payment, len(models))
	for i := range models {
		payments[i] = *models[i].toDomain()
	}
	return payments, nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	model := paymentFromDomain(payment)
	res := r.db.WithContext(ctx).
		Model(&paymentModel{ID: payment.ID}).
		Select("*").
		Omit("id", "purchase_id", "merchant_txn_id", "created_at").
		Updates(model)
	if res.Error != nil {
		return fmt.Errorf("update payment: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update payment %d: %w", payment.ID, domain.ErrNotFound)
	}
	return nil
}
