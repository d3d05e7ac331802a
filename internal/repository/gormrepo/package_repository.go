package gormrepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"careerdesk/internal/domain"
	"careerdesk/internal/repository"
)

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) repository.PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) Create(ctx context.Context, pkg *domain.Package) error {
	model := packageFromDomain(pkg)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("insert package: %w", translateError(err))
	}
	pkg.ID = model.ID
	pkg.CreatedAt = model.CreatedAt
	return nil
}

func (r *PackageRepository) Update(ctx context.Context, pkg *domain.Package) error {
	pkg.UpdatedAt = time.Now().UTC()
	model := packageFromDomain(pkg)
	res := r.db.WithContext(ctx).Model(&packageModel{ID: pkg.ID}).Select("*").Omit("id", "created_at").Updates(model)
	if res.Error != nil {
		return fmt.Errorf("update package: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update package %d: %w", pkg.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *PackageRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&packageModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete package: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete package %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*domain.Package, error) {
	var model packageModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, fmt.Errorf("get package %d: %w", id, translateError(err))
	}
	return model.toDomain(), nil
}

func (r *PackageRepository) GetBySlug(ctx context.Context, slug string) (*domain.Package, error) {
	var model packageModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		return nil, fmt.Errorf("get package %q: %w", slug, translateError(err))
	}
	return model.toDomain(), nil
}

func (r *PackageRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Package, error) {
	if len(ids) == 0 {
		return []domain.Package{}, nil
	}
	var models []packageModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("query packages by id: %w", err)
	}
	pkgs := make([]domain.Package, len(models))
	for i := range models {
		pkgs[i] = *models[i].toDomain()
	}
	return pkgs, nil
}

func (r *PackageRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&packageModel{}).Where("slug = ? AND id <> ?", slug, excludeID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check package slug: %w", err)
	}
	return count > 0, nil
}

func (r *PackageRepository) List(ctx context.Context, query domain.ListQuery, activeOnly bool) (domain.Page[domain.Package], error) {
	var page domain.Page[domain.Package]

	filter := func(tx *gorm.DB) *gorm.DB {
		if activeOnly {
			tx = tx.Where("active = ?", true)
		}
		if query.Category != "" {
			tx = tx.Where("category = ?", query.Category)
		}
		if query.Search != "" {
			pattern := likePattern(query.Search)
			tx = tx.Where("LOWER(name) LIKE ? OR LOWER(summary) LIKE ?", pattern, pattern)
		}
		return tx
	}

	if err := r.db.WithContext(ctx).Model(&packageModel{}).Scopes(filter).Count(&page.Total).Error; err != nil {
		return page, fmt.Errorf("count packages: %w", err)
	}

	var models []packageModel
	if err := r.db.WithContext(ctx).Scopes(filter, paginate(query)).Order("sort_order ASC, id ASC").Find(&models).Error; err != nil {
		return page, fmt.Errorf("query packages: %w", err)
	}
	page.Items = make([]domain.Package, len(models))
	for i := range models {
		page.Items[i] = *models[i].toDomain()
	}
	return page, nil
}
