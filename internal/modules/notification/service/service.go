package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"anoa.com/cpquest/internal/entity"
	notifRepo "anoa.com/cpquest/internal/modules/notification/repository"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

const BroadcastChannel = "broadcast_notifications"

// NotificationService stores notifications and fans them out over Redis.
// Delivery is best effort: a failed publish never fails the call.
type NotificationService interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, data map[string]any) error
	Broadcast(ctx context.Context, notifType, title, body string, data map[string]any) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	policy      *bluemonday.Policy
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		policy:      bluemonday.StrictPolicy(),
	}
}

// UserChannel is the Redis channel a user's notifications are published on.
func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, data map[string]any) error {
	n, err := s.build(&userID, notifType, title, body, data)
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.publish(ctx, UserChannel(userID), n)
	return nil
}

func (s *notificationService) Broadcast(ctx context.Context, notifType, title, body string, data map[string]any) error {
	n, err := s.build(nil, notifType, title, body, data)
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.publish(ctx, BroadcastChannel, n)
	return nil
}

func (s *notificationService) build(userID *uuid.UUID, notifType, title, body string, data map[string]any) (*entity.Notification, error) {
	n := &entity.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  s.policy.Sanitize(title),
		Body:   s.policy.Sanitize(body),
	}
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal notification data: %w", err)
		}
		n.Data = datatypes.JSON(raw)
	}
	return n, nil
}

func (s *notificationService) publish(ctx context.Context, channel string, n *entity.Notification) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := s.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("⚠️ [Notification] publish to %s failed: %v", channel, err)
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
