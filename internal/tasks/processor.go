package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/queue"
)

type Maintenance interface {
	MarkOverdueInvoices(ctx context.Context) (int64, error)
	ExpirePlans(ctx context.Context, taskID string) (int, error)
	PurgeSessions(ctx context.Context) (int64, error)
	ExpireInvitations(ctx context.Context) (int64, error)
}

type Notifier interface {
	Deliver(ctx context.Context, task queue.Task) (int, error)
}

// Processor dispatches stream tasks to the maintenance and notification
// services. Every handler is safe to run more than once for the same task.
type Processor struct {
	maintenance Maintenance
	notifier    Notifier
	logger      zerolog.Logger
}

func NewProcessor(maintenance Maintenance, notifier Notifier, logger zerolog.Logger) *Processor {
	return &Processor{
		maintenance: maintenance,
		notifier:    notifier,
		logger:      logger,
	}
}

func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	start := time.Now()
	log := p.logger.With().Str("task_id", task.ID).Str("type", string(task.Type)).Logger()

	var (
		affected int64
		err      error
	)
	switch task.Type {
	case queue.TaskInvoicesOverdue:
		affected, err = p.maintenance.MarkOverdueInvoices(ctx)
	case queue.TaskPlansExpire:
		var n int
		n, err = p.maintenance.ExpirePlans(ctx, task.ID)
		affected = int64(n)
	case queue.TaskSessionsPurge:
		affected, err = p.maintenance.PurgeSessions(ctx)
	case queue.TaskInvitationsExpire:
		affected, err = p.maintenance.ExpireInvitations(ctx)
	case queue.TaskNotify:
		var n int
		n, err = p.notifier.Deliver(ctx, task)
		affected = int64(n)
	default:
		log.Warn().Msg("unknown task type")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", task.Type, err)
	}

	log.Info().Int64("affected", affected).Dur("took", time.Since(start)).Msg("task done")
	return nil
}
