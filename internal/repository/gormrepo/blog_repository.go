package gormrepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"careerdesk/internal/domain"
	"careerdesk/internal/repository"
)

type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) repository.BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Create(ctx context.Context, blog *domain.Blog) error {
	model := blogFromDomain(blog)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("insert blog: %w", translateError(err))
	}
	blog.ID = model.ID
	blog.CreatedAt = model.CreatedAt
	return nil
}

func (r *BlogRepository) Update(ctx context.Context, blog *domain.Blog) error {
	blog.UpdatedAt = time.Now().UTC()
	model := blogFromDomain(blog)
	res := r.db.WithContext(ctx).Model(&blogModel{ID: blog.ID}).Select("*").Omit("id", "created_at").Updates(model)
	if res.Error != nil {
		return fmt.Errorf("update blog: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update blog %d: %w", blog.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&blogModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete blog: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete blog %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *BlogRepository) GetByID(ctx context.Context, id int64) (*domain.Blog, error) {
	var model blogModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, fmt.Errorf("get blog %d: %w", id, translateError(err))
	}
	return model.toDomain(), nil
}

func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*domain.Blog, error) {
	var model blogModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		return nil, fmt.Errorf("get blog %q: %w", slug, translateError(err))
	}
	return model.toDomain(), nil
}

func (r *BlogRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&blogModel{}).Where("slug = ? AND id <> ?", slug, excludeID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check blog slug: %w", err)
	}
	return count > 0, nil
}

func (r *BlogRepository) List(ctx context.Context, query domain.ListQuery, publishedOnly bool) (domain.Page[domain.Blog], error) {
	var page domain.Page[domain.Blog]

	filter := func(tx *gorm.DB) *gorm.DB {
		if publishedOnly {
			tx = tx.Where("published = ?", true)
		}
		if query.Category != "" {
			tx = tx.Where("category = ?", query.Category)
		}
		if query.Search != "" {
			pattern := likePattern(query.Search)
			tx = tx.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ?", pattern, pattern)
		}
		switch query.Status {
		case "published":
			tx = tx.Where("published = ?", true)
		case "draft":
			tx = tx.Where("published = ?", false)
		}
		return tx
	}

	if err := r.db.WithContext(ctx).Model(&blogModel{}).Scopes(filter).Count(&page.Total).Error; err != nil {
		return page, fmt.Errorf("count blogs: %w", err)
	}

	order := "created_at DESC, id DESC"
	if publishedOnly {
		order = "published_at DESC, id DESC"
	}

	var models []blogModel
	if err := r.db.WithContext(ctx).Scopes(filter, paginate(query)).Order(order).Find(&models).Error; err != nil {
		return page, fmt.Errorf("query blogs: %w", err)
	}
	page.Items = make([]domain.Blog, len(models))
	for i := range models {
		page.Items[i] = *models[i].toDomain()
	}
	return page, nil
}
