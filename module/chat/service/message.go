package service

import (
	"context"
	"time"

	"chat-relay/logger"
	"chat-relay/module/chat/model"
	"chat-relay/module/chat/store"
	"chat-relay/tools/errs"
)

// EventPublisher pushes a persisted message onto the durable log. The relay
// implements it; tests substitute a fake.
type EventPublisher interface {
	PublishMessage(ctx context.Context, m *model.Message) error
}

type MessageService struct {
	messages  store.MessageStore
	publisher EventPublisher
}

func NewMessageService(messages store.MessageStore, publisher EventPublisher) *MessageService {
	return &MessageService{messages: messages, publisher: publisher}
}

// Submit validates, persists, then publishes. Persistence is the durability
// boundary: once the insert succeeds the message counts as sent. The publish
// is best-effort — a broker outage costs the live push, never the message.
func (s *MessageService) Submit(ctx context.Context, sender, text, roomID string) (*model.Message, error) {
	if sender == "" {
		return nil, errs.ErrArgs.WithDetail("sender is required")
	}
	if text == "" {
		return nil, errs.ErrArgs.WithDetail("text is required")
	}
	if roomID == "" {
		roomID = model.GeneralRoomID
	}

	m := &model.Message{
		SenderUsername: sender,
		Text:           text,
		RoomID:         roomID,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, m); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishMessage(ctx, m); err != nil {
		// Deliberately not retried: the message is durable and retrievable
		// via history, only the real-time notification is lost.
		logger.Errorf("[message] relay publish failed id=%s room=%s: %v", m.ID.Hex(), m.RoomID, err)
	}
	return m, nil
}

// History returns a room's messages in ascending timestamp order; a
// positive limit keeps the newest limit entries.
func (s *MessageService) History(ctx context.Context, roomID string, limit int64) ([]model.Message, error) {
	if roomID == "" {
		roomID = model.GeneralRoomID
	}
	return s.messages.ListByRoom(ctx, roomID, limit)
}

// ClearAll removes every message. Testing aid; no correctness guarantees.
func (s *MessageService) ClearAll(ctx context.Context) error {
	return s.messages.Clear(ctx)
}
