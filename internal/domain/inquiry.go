package domain

import "time"

type MessageStatus string

const (
	MessageStatusNew      MessageStatus = "new"
	MessageStatusRead     MessageStatus = "read"
	MessageStatusResolved MessageStatus = "resolved"
)

// Valid reports whether s is a known message status.
func (s MessageStatus) Valid() bool {
	switch s {
	case MessageStatusNew, MessageStatusRead, MessageStatusResolved:
		return true
	}
	return false
}

// Message is a contact form inquiry.
type Message struct {
	ID        int64
	Name      string        `validate:"required,max=120"`
	Email     string        `validate:"required,email,max=255"`
	Phone     string        `validate:"omitempty,max=32"`
	Subject   string        `validate:"max=200"`
	Body      string        `validate:"required,max=5000"`
	Status    MessageStatus `validate:"required"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *Message) Validate() error {
	return validateStruct(m)
}

// TopicSuggestion is a visitor-proposed subject for a future article or webinar.
type TopicSuggestion struct {
	ID        int64
	Name      string `validate:"max=120"`
	Email     string `validate:"omitempty,email,max=255"`
	Topic     string `validate:"required,max=200"`
	Details   string `validate:"max=2000"`
	CreatedAt time.Time
}

func (t *TopicSuggestion) Validate() error {
	return validateStruct(t)
}
