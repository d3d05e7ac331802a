package gormrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"careerdesk/internal/domain"
	"careerdesk/internal/repository"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	model := &messageModel{
		Name:    msg.Name,
		Email:   msg.Email,
		Phone:   msg.Phone,
		Subject: msg.Subject,
		Body:    msg.Body,
		Status:  string(msg.Status),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	msg.ID = model.ID
	msg.CreatedAt = model.CreatedAt
	msg.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	var model messageModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, fmt.Errorf("get message %d: %w", id, translateError(err))
	}
	return model.toDomain(), nil
}

func (r *MessageRepository) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Message], error) {
	var page domain.Page[domain.Message]

	filter := func(tx *gorm.DB) *gorm.DB {
		if query.Status != "" {
			tx = tx.Where("status = ?", query.Status)
		}
		if query.Search != "" {
			pattern := likePattern(query.Search)
			tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ?", pattern, pattern, pattern)
		}
		return tx
	}

	if err := r.db.WithContext(ctx).Model(&messageModel{}).Scopes(filter).Count(&page.Total).Error; err != nil {
		return page, fmt.Errorf("count messages: %w", err)
	}
	var models []messageModel
	if err := r.db.WithContext(ctx).Scopes(filter, paginate(query)).Order("id DESC").Find(&models).Error; err != nil {
		return page, fmt.Errorf("query messages: %w", err)
	}
	page.Items = make([]domain.Message, len(models))
	for i := range models {
		page.Items[i] = *models[i].toDomain()
	}
	return page, nil
}

func (r *MessageRepository) UpdateStatus(ctx context.Context, id int64, status domain.MessageStatus) error {
	res := r.db.WithContext(ctx).Model(&messageModel{ID: id}).Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("update message status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update message %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&messageModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete message %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

type TopicSuggestionRepository struct {
	db *gorm.DB
}

func NewTopicSuggestionRepository(db *gorm.DB) repository.TopicSuggestionRepository {
	return &TopicSuggestionRepository{db: db}
}

func (r *TopicSuggestionRepository) Create(ctx context.Context, topic *domain.TopicSuggestion) error {
	model := &topicSuggestionModel{
		Name:    topic.Name,
		Email:   topic.Email,
		Topic:   topic.Topic,
		Details: topic.Details,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("insert topic suggestion: %w", err)
	}
	topic.ID = model.ID
	topic.CreatedAt = model.CreatedAt
	return nil
}

func (r *TopicSuggestionRepository) List(ctx context.Context, query domain.ListQuery) (domain.Page[domain.TopicSuggestion], error) {
	var page domain.Page[domain.TopicSuggestion]

	filter := func(tx *gorm.DB) *gorm.DB {
		if query.Search != "" {
			tx = tx.Where("LOWER(topic) LIKE ?", likePattern(query.Search))
		}
		return tx
	}

	if err := r.db.WithContext(ctx).Model(&topicSuggestionModel{}).Scopes(filter).Count(&page.Total).Error; err != nil {
		return page, fmt.Errorf("count topic suggestions: %w", err)
	}
	var models []topicSuggestionModel
	if err := r.db.WithContext(ctx).Scopes(filter, paginate(query)).Order("id DESC").Find(&models).Error; err != nil {
		return page, fmt.Errorf("query topic suggestions: %w", err)
	}
	page.Items = make([]domain.TopicSuggestion, len(models))
	for i := range models {
		page.Items[i] = *models[i].toDomain()
	}
	return page, nil
}

func (r *TopicSuggestionRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&topicSuggestionModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete topic suggestion: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete topic suggestion %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
