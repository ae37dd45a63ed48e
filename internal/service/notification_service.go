package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/gperojohn83-art/Construction/internal/models"
	"github.com/gperojohn83-art/Construction/internal/queue"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type NotificationService struct {
	notifications NotificationStore
	members       MemberStore
}

func NewNotificationService(notifications NotificationStore, members MemberStore) *NotificationService {
	return &NotificationService{notifications: notifications, members: members}
}

func (s *NotificationService) List(ctx context.Context, session models.Session, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	return s.notifications.ListLatest(ctx, session.UserID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, session models.Session, id string) error {
	return s.notifications.MarkRead(ctx, session.UserID, id)
}

// Deliver writes the notification rows for a queued notify task. Row ids are
// derived from the task and recipient, so redelivery of the same stream
// entry does not duplicate notifications.
func (s *NotificationService) Deliver(ctx context.Context, task queue.Task) (int, error) {
	recipients := []string{}
	switch {
	case task.UserID != "":
		recipients = append(recipients, task.UserID)
	case task.OrganizationID != "":
		admins, err := s.members.AdminIDs(ctx, task.OrganizationID)
		if err != nil {
			return 0, fmt.Errorf("load admins: %w", err)
		}
		recipients = admins
	default:
		return 0, fmt.Errorf("notify task %s has no recipient", task.ID)
	}

	kind := task.Kind
	if kind == "" {
		kind = "info"
	}

	for _, userID := range recipients {
		n := models.Notification{
			ID:     notificationID(task.ID, userID),
			UserID: userID,
			Title:  task.Title,
			Body:   task.Body,
			Type:   kind,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return 0, fmt.Errorf("create notification: %w", err)
		}
	}
	return len(recipients), nil
}

func notificationID(taskID, userID string) string {
	sum := sha256.Sum256([]byte(taskID + "/" + userID))
	return "ntf_" + hex.EncodeToString(sum[:12])
}
