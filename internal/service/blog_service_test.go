package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"careerdesk/internal/domain"
)

func TestCreateBlogPublishes(t *testing.T) {
	repo := new(mockBlogRepo)
	repo.On("SlugExists", mock.Anything, "resume-tips-for-2025", int64(0)).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewBlogService(repo, nil, testLogger()).(*blogService)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	blog, err := svc.Create(context.Background(), BlogInput{
		Title:     "Résumé Tips for 2025",
		Content:   "body",
		Tags:      []string{"resume", "Resume", "career"},
		Published: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "resume-tips-for-2025", blog.Slug)
	assert.Equal(t, []string{"resume", "career"}, blog.Tags)
	require.NotNil(t, blog.PublishedAt)
	assert.Equal(t, fixed, *blog.PublishedAt)
}

func TestUpdateBlogKeepsSlugAndFirstPublishTime(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &domain.Blog{ID: 4, Title: "Old", Slug: "old", Content: "x", Published: true, PublishedAt: &first}

	repo := new(mockBlogRepo)
	repo.On("GetByID", mock.Anything, int64(4)).Return(existing, nil)
	repo.On("SlugExists", mock.Anything, "old", int64(4)).Return(false, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := NewBlogService(repo, nil, testLogger())
	blog, err := svc.Update(context.Background(), 4, BlogInput{Title: "New Title", Content: "y", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "old", blog.Slug)
	assert.Equal(t, first, *blog.PublishedAt)
}

func TestGetPublishedHidesDrafts(t *testing.T) {
	repo := new(mockBlogRepo)
	repo.On("GetBySlug", mock.Anything, "draft").Return(&domain.Blog{Slug: "draft"}, nil)

	_, err := NewBlogService(repo, nil, testLogger()).GetPublished(context.Background(), "draft")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttachCoverReplacesPreviousObject(t *testing.T) {
	repo := new(mockBlogRepo)
	repo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Blog{ID: 7, Title: "T", Slug: "t", Content: "c", CoverImageKey: "test/blogs/7/old.png"}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Blog) bool {
		return strings.HasPrefix(b.CoverImageKey, "test/blogs/7/hero-") && strings.HasSuffix(b.CoverImageKey, ".jpg")
	})).Return(nil)

	store := new(mockStorage)
	store.On("Put", mock.Anything, mock.Anything, "image/jpeg", int64(4)).Return(nil)
	store.On("Delete", mock.Anything, "test/blogs/7/old.png").Return(nil)

	svc := NewBlogService(repo, store, testLogger())
	blog, err := svc.AttachCover(context.Background(), 7, Upload{Filename: "Hero.JPG", ContentType: "image/jpeg", Size: 4, Body: strings.NewReader("jpeg")})
	require.NoError(t, err)
	assert.NotEqual(t, "test/blogs/7/old.png", blog.CoverImageKey)
	store.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestAttachCoverRejectsUnsupportedType(t *testing.T) {
	repo := new(mockBlogRepo)
	repo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Blog{ID: 7}, nil)

	svc := NewBlogService(repo, new(mockStorage), testLogger())
	_, err := svc.AttachCover(context.Background(), 7, Upload{Filename: "x.exe", ContentType: "application/octet-stream", Size: 4, Body: strings.NewReader("bin!")})
	assert.True(t, domain.IsValidation(err))
}

func TestDeleteBlogIgnoresStorageFailure(t *testing.T) {
	repo := new(mockBlogRepo)
	repo.On("GetByID", mock.Anything, int64(2)).Return(&domain.Blog{ID: 2, CoverImageKey: "test/blogs/2/a.png"}, nil)
	repo.On("Delete", mock.Anything, int64(2)).Return(nil)
	store := new(mockStorage)
	store.On("DeletePrefix", mock.Anything, "test/blogs/2/").Return(errors.New("boom"))

	err := NewBlogService(repo, store, testLogger()).Delete(context.Background(), 2)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}
