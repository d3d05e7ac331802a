package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerdesk/internal/config"
	"careerdesk/internal/domain"
	"careerdesk/internal/repository/gormrepo"
)

func newInquiryService(t *testing.T) InquiryService {
	t.Helper()
	db, err := gormrepo.Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, testLogger())
	require.NoError(t, err)
	require.NoError(t, gormrepo.Migrate(db))
	t.Cleanup(func() { _ = gormrepo.Close(db) })
	return NewInquiryService(gormrepo.NewMessageRepository(db), gormrepo.NewTopicSuggestionRepository(db), testLogger())
}

func TestInquiryMessages(t *testing.T) {
	svc := newInquiryService(t)
	ctx := context.Background()

	msg, err := svc.SubmitMessage(ctx, MessageInput{
		Name:  "  Nikhil ",
		Email: "Nikhil@Example.COM",
		Body:  "Can you help with a career switch into data?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nikhil", msg.Name)
	assert.Equal(t, "nikhil@example.com", msg.Email)
	assert.Equal(t, domain.MessageStatusNew, msg.Status)

	_, err = svc.SubmitMessage(ctx, MessageInput{Name: "No body", Email: "x@example.com"})
	assert.True(t, domain.IsValidation(err))

	updated, err := svc.UpdateMessageStatus(ctx, msg.ID, domain.MessageStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageStatusResolved, updated.Status)

	_, err = svc.UpdateMessageStatus(ctx, msg.ID, "archived")
	assert.True(t, domain.IsValidation(err))

	page, err := svc.ListMessages(ctx, domain.ListQuery{Status: string(domain.MessageStatusResolved)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, svc.DeleteMessage(ctx, msg.ID))
	assert.ErrorIs(t, svc.DeleteMessage(ctx, msg.ID), domain.ErrNotFound)
}

func TestInquiryTopics(t *testing.T) {
	svc := newInquiryService(t)
	ctx := context.Background()

	topic, err := svc.SubmitTopic(ctx, TopicInput{Topic: "Negotiating a remote offer"})
	require.NoError(t, err)
	assert.NotZero(t, topic.ID)

	_, err = svc.SubmitTopic(ctx, TopicInput{Email: "not-an-email", Topic: "x"})
	assert.True(t, domain.IsValidation(err))

	page, err := svc.ListTopics(ctx, domain.ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Negotiating a remote offer", page.Items[0].Topic)

	require.NoError(t, svc.DeleteTopic(ctx, topic.ID))
	page, err = svc.ListTopics(ctx, domain.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
