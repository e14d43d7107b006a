package services

import (
	"context"
	"fmt"
	"time"

	"casr-tracker/internal/chat"
	"casr-tracker/internal/models"
)

const DefaultMessageLimit = 100

// ChatStore is implemented by repositories.ChatRepo.
type ChatStore interface {
	SaveMessage(ctx context.Context, tenant string, m *models.ChatMessage) error
	ListMessages(ctx context.Context, tenant, roomID string, limit int) ([]models.ChatMessage, error)
	ScanMessages(ctx context.Context, tenant, roomID string, fn func(models.ChatMessage) error) error
	AddReader(ctx context.Context, tenant string, m models.ChatMessage, userID string) error
	TouchPresence(ctx context.Context, tenant, userID string, at time.Time) error
	GetPresence(ctx context.Context, tenant, userID string) (models.Presence, error)
}

// ActivityLogger is satisfied by *ActivityService.
type ActivityLogger interface {
	Log(ctx context.Context, entry models.ActivityLog)
}

type ChatService struct {
	store    ChatStore
	policy   chat.PresencePolicy
	activity ActivityLogger
	now      func() time.Time
}

// NewChatService builds the service; activity may be nil.
func NewChatService(store ChatStore, policy chat.PresencePolicy, activity ActivityLogger) *ChatService {
	return &ChatService{store: store, policy: policy, activity: activity, now: time.Now}
}

// Send stores a message. Sending also counts as being seen.
func (s *ChatService) Send(ctx context.Context, tenant, senderID, roomID, text string) (models.ChatMessage, error) {
	m := models.ChatMessage{RoomID: roomID, SenderID: senderID, Text: text, ReadBy: []string{}}
	if err := s.store.SaveMessage(ctx, tenant, &m); err != nil {
		return models.ChatMessage{}, err
	}
	if err := s.store.TouchPresence(ctx, tenant, senderID, s.now().UTC()); err != nil {
		return m, err
	}
	if s.activity != nil {
		s.activity.Log(ctx, models.ActivityLog{
			TenantID:     tenant,
			Collection:   "chat_rooms",
			ActivityType: models.ActivitySendMessage,
			Actor:        senderID,
			Details:      fmt.Sprintf("message in room %s", roomID),
		})
	}
	return m, nil
}

func (s *ChatService) Messages(ctx context.Context, tenant, roomID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = DefaultMessageLimit
	}
	return s.store.ListMessages(ctx, tenant, roomID, limit)
}

// MarkRoomRead marks every message of the room read by userID and returns
// how many changed. Calling it twice changes nothing the second time.
func (s *ChatService) MarkRoomRead(ctx context.Context, tenant, roomID, userID string) (int, error) {
	marked := 0
	err := s.store.ScanMessages(ctx, tenant, roomID, func(m models.ChatMessage) error {
		if _, changed := chat.MarkRead(m, userID); !changed {
			return nil
		}
		if err := s.store.AddReader(ctx, tenant, m, userID); err != nil {
			return err
		}
		marked++
		return nil
	})
	return marked, err
}

// Unread lists the ids of every message in the room userID has not read,
// newest first.
func (s *ChatService) Unread(ctx context.Context, tenant, roomID, userID string) ([]string, error) {
	var msgs []models.ChatMessage
	err := s.store.ScanMessages(ctx, tenant, roomID, func(m models.ChatMessage) error {
		msgs = append(msgs, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ids := chat.Unread(msgs, userID)
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Heartbeat records that userID is active now.
func (s *ChatService) Heartbeat(ctx context.Context, tenant, userID string) (models.PresenceView, error) {
	now := s.now().UTC()
	if err := s.store.TouchPresence(ctx, tenant, userID, now); err != nil {
		return models.PresenceView{}, err
	}
	return s.policy.View(models.Presence{UserID: userID, LastSeen: now}, now), nil
}

func (s *ChatService) Presence(ctx context.Context, tenant, userID string) (models.PresenceView, error) {
	pr, err := s.store.GetPresence(ctx, tenant, userID)
	if err != nil {
		return models.PresenceView{}, err
	}
	return s.policy.View(pr, s.now().UTC()), nil
}
