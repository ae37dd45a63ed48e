package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/queue"
)

// notifyAdmins queues a notification for the organization's admins. It never
// fails the calling operation.
func notifyAdmins(ctx context.Context, tasks TaskEnqueuer, log zerolog.Logger, organizationID, kind, title, body string) {
	if tasks == nil {
		return
	}
	err := tasks.Enqueue(ctx, queue.Task{
		Type:           queue.TaskNotify,
		OrganizationID: organizationID,
		Kind:           kind,
		Title:          title,
		Body:           body,
	})
	if err != nil {
		log.Warn().Err(err).Str("organization_id", organizationID).Str("kind", kind).Msg("enqueue notification failed")
	}
}
