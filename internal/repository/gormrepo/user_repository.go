package gormrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"careerdesk/internal/domain"
	"careerdesk/internal/repository"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	model := userFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("insert user: %w", translateError(err))
	}
	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model userModel
	if err := r.db.WithContext(ctx).Where("email = ?", domain.NormalizeEmail(email)).First(&model).Error; err != nil {
		return nil, fmt.Errorf("get user by email: %w", translateError(err))
	}
	return model.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var model userModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, translateError(err))
	}
	return model.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.User], error) {
	var page domain.Page[domain.User]

	filter := func(tx *gorm.DB) *gorm.DB {
		if query.Search != "" {
			pattern := likePattern(query.Search)
			tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
		}
		if query.Status != "" {
			tx = tx.Where("role = ?", query.Status)
		}
		return tx
	}

	if err := r.db.WithContext(ctx).Model(&userModel{}).Scopes(filter).Count(&page.Total).Error; err != nil {
		return page, fmt.Errorf("count users: %w", err)
	}

	var models []userModel
	if err := r.db.WithContext(ctx).Scopes(filter, paginate(query)).Order("id DESC").Find(&models).Error; err != nil {
		return page, fmt.Errorf("query users: %w", err)
	}
	page.Items = make([]domain.User, len(models))
	for i := range models {
		page.Items[i] = *models[i].toDomain()
	}
	return page, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	model := userFromDomain(user)
	res := r.db.WithContext(ctx).Model(&userModel{ID: user.ID}).Updates(map[string]any{
		"name":          model.Name,
		"email":         model.Email,
		"phone":         model.Phone,
		"password_hash": model.PasswordHash,
	})
	if res.Error != nil {
		return fmt.Errorf("update user: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update user %d: %w", user.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	res := r.db.WithContext(ctx).Model(&userModel{ID: id}).Update("role", string(role))
	if res.Error != nil {
		return fmt.Errorf("update user role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update user role %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&userModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
