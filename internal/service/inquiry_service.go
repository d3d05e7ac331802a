package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"careerdesk/internal/domain"
	"careerdesk/internal/repository"
)

type MessageInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Body    string
}

type TopicInput struct {
	Name    string
	Email   string
	Topic   string
	Details string
}

// InquiryService handles contact messages and topic suggestions.
type InquiryService interface {
	SubmitMessage(ctx context.Context, in MessageInput) (*domain.Message, error)
	ListMessages(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Message], error)
	UpdateMessageStatus(ctx context.Context, id int64, status domain.MessageStatus) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
	SubmitTopic(ctx context.Context, in TopicInput) (*domain.TopicSuggestion, error)
	ListTopics(ctx context.Context, query domain.ListQuery) (domain.Page[domain.TopicSuggestion], error)
	DeleteTopic(ctx context.Context, id int64) error
}

type inquiryService struct {
	messages repository.MessageRepository
	topics   repository.TopicSuggestionRepository
	logger   *logrus.Logger
}

func NewInquiryService(messages repository.MessageRepository, topics repository.TopicSuggestionRepository, logger *logrus.Logger) InquiryService {
	return &inquiryService{messages: messages, topics: topics, logger: logger}
}

func (s *inquiryService) SubmitMessage(ctx context.Context, in MessageInput) (*domain.Message, error) {
	msg := &domain.Message{
		Name:    strings.TrimSpace(in.Name),
		Email:   domain.NormalizeEmail(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Body:    strings.TrimSpace(in.Body),
		Status:  domain.MessageStatusNew,
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.logger.WithField("message_id", msg.ID).Info("contact message received")
	return msg, nil
}

func (s *inquiryService) ListMessages(ctx context.Context, query domain.ListQuery) (domain.Page[domain.Message], error) {
	return s.messages.List(ctx, query.Normalize())
}

func (s *inquiryService) UpdateMessageStatus(ctx context.Context, id int64, status domain.MessageStatus) (*domain.Message, error) {
	if !status.Valid() {
		return nil, domain.Invalid(fmt.Sprintf("unknown message status %q", status))
	}
	if err := s.messages.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.messages.GetByID(ctx, id)
}

func (s *inquiryService) DeleteMessage(ctx context.Context, id int64) error {
	return s.messages.Delete(ctx, id)
}

func (s *inquiryService) SubmitTopic(ctx context.Context, in TopicInput) (*domain.TopicSuggestion, error) {
	topic := &domain.TopicSuggestion{
		Name:    strings.TrimSpace(in.Name),
		Email:   domain.NormalizeEmail(in.Email),
		Topic:   strings.TrimSpace(in.Topic),
		Details: strings.TrimSpace(in.Details),
	}
	if err := topic.Validate(); err != nil {
		return nil, err
	}
	if err := s.topics.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *inquiryService) ListTopics(ctx context.Context, query domain.ListQuery) (domain.Page[domain.TopicSuggestion], error) {
	return s.topics.List(ctx, query.Normalize())
}

func (s *inquiryService) DeleteTopic(ctx context.Context, id int64) error {
	return s.topics.Delete(ctx, id)
}
