package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"careerdesk/internal/domain"
	"careerdesk/internal/repository"
	"careerdesk/internal/storage"
)

type BlogInput struct {
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	Category  string
	Tags      []string
	Author    string
	Published bool
}

// BlogService manages marketing articles.
type BlogService interface {
	ListPublished(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Blog], error)
	GetPublished(ctx context.Context, slug string) (*domain.Blog, error)
	List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Blog], error)
	Get(ctx context.Context, id int64) (*domain.Blog, error)
	Create(ctx context.Context, in BlogInput) (*domain.Blog, error)
	Update(ctx context.Context, id int64, in BlogInput) (*domain.Blog, error)
	Delete(ctx context.Context, id int64) error
	AttachCover(ctx context.Context, id int64, up Upload) (*domain.Blog, error)
}

type blogService struct {
	blogs  repository.BlogRepository
	store  storage.Service
	logger *logrus.Logger
	now    func() time.Time
}

// NewBlogService builds the blog service. store may be nil when uploads are disabled.
func NewBlogService(blogs repository.BlogRepository, store storage.Service, logger *logrus.Logger) BlogService {
	return &blogService{
		blogs:  blogs,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *blogService) ListPublished(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Blog], error) {
	return s.blogs.List(ctx, query.Normalize(), true)
}

func (s *blogService) GetPublished(ctx context.Context, slug string) (*domain.Blog, error) {
	blog, err := s.blogs.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if !blog.Published {
		return nil, domain.ErrNotFound
	}
	return blog, nil
}

func (s *blogService) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Blog], error) {
	return s.blogs.List(ctx, query.Normalize(), false)
}

func (s *blogService) Get(ctx context.Context, id int64) (*domain.Blog, error) {
	return s.blogs.GetByID(ctx, id)
}

func (s *blogService) Create(ctx context.Context, in BlogInput) (*domain.Blog, error) {
	blog := &domain.Blog{}
	if err := s.apply(ctx, blog, in); err != nil {
		return nil, err
	}
	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"blog_id": blog.ID, "slug": blog.Slug}).Info("blog created")
	return blog, nil
}

func (s *blogService) Update(ctx context.Context, id int64, in BlogInput) (*domain.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, blog, in); err != nil {
		return nil, err
	}
	if err := s.blogs.Update(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *blogService) Delete(ctx context.Context, id int64) error {
	if _, err := s.blogs.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.blogs.Delete(ctx, id); err != nil {
		return err
	}
	removeRecordObjects(ctx, s.store, s.logger, "blogs", id)
	s.logger.WithField("blog_id", id).Info("blog deleted")
	return nil
}

func (s *blogService) AttachCover(ctx context.Context, id int64, up Upload) (*domain.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	key, err := storeUpload(ctx, s.store, "blogs", id, "cover", up, imageTypes)
	if err != nil {
		return nil, err
	}

	previous := blog.CoverImageKey
	blog.CoverImageKey = key
	if err := s.blogs.Update(ctx, blog); err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	s.removeObject(ctx, previous)
	return blog, nil
}

func (s *blogService) apply(ctx context.Context, blog *domain.Blog, in BlogInput) error {
	slugSource := in.Slug
	if strings.TrimSpace(slugSource) == "" && blog.Slug != "" {
		slugSource = blog.Slug
	}
	slug, err := uniqueSlug(ctx, slugSource, in.Title, blog.ID, s.blogs.SlugExists)
	if err != nil {
		return err
	}

	blog.Title = strings.TrimSpace(in.Title)
	blog.Slug = slug
	blog.Excerpt = strings.TrimSpace(in.Excerpt)
	blog.Content = in.Content
	blog.Category = strings.TrimSpace(in.Category)
	blog.Tags = cleanList(in.Tags)
	blog.Author = strings.TrimSpace(in.Author)
	if in.Published {
		blog.Publish(s.now())
	} else {
		blog.Unpublish()
	}
	return blog.Validate()
}

func (s *blogService) removeObject(ctx context.Context, key string) {
	if key == "" || s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("delete stored object")
	}
}
