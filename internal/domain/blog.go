package domain

import "time"

// Blog is an article shown on the marketing site.
type Blog struct {
	ID            int64
	Title         string `validate:"required,max=200"`
	Slug          string `validate:"required,max=220"`
	Excerpt       string `validate:"max=500"`
	Content       string `validate:"required"`
	Category      string `validate:"max=80"`
	Tags          []string
	Author        string `validate:"max=120"`
	CoverImageKey string
	Published     bool
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (b *Blog) Validate() error {
	return validateStruct(b)
}

// Publish flips the article to published, keeping the first publish time.
func (b *Blog) Publish(now time.Time) {
	b.Published = true
	if b.PublishedAt == nil {
		t := now.UTC()
		b.PublishedAt = &t
	}
}

// Unpublish hides the article without forgetting when it first went live.
func (b *Blog) Unpublish() {
	b.Published = false
}
