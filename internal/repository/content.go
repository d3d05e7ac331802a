package repository

import (
	"context"

	"careerdesk/internal/domain"
)

// BlogRepository persists marketing articles.
type BlogRepository interface {
	Create(ctx context.Context, blog *domain.Blog) error
	Update(ctx context.Context, blog *domain.Blog) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Blog, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	List(ctx context.Context, query domain.ListQuery, publishedOnly bool) (domain.Page[domain.Blog], error)
}

// PackageRepository persists the product catalog.
type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.Package) error
	Update(ctx context.Context, pkg *domain.Package) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Package, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Package, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Package, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	List(ctx context.Context, query domain.ListQuery, activeOnly bool) (domain.Page[domain.Package], error)
}

// MessageRepository persists contact inquiries.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Message], error)
	UpdateStatus(ctx context.Context, id int64, status domain.MessageStatus) error
	Delete(ctx context.Context, id int64) error
}

// TopicSuggestionRepository persists visitor topic ideas.
type TopicSuggestionRepository interface {
	Create(ctx context.Context, topic *domain.TopicSuggestion) error
	List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.TopicSuggestion], error)
	Delete(ctx context.Context, id int64) error
}
