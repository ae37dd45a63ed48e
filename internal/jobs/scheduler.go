package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/gperojohn83-art/Construction/internal/queue"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// Schedule binds a six-field cron spec (seconds first) to a task type.
type Schedule struct {
	Spec string
	Type queue.TaskType
}

func DefaultSchedules() []Schedule {
	return []Schedule{
		{Spec: "0 0 * * * *", Type: queue.TaskPlansExpire},
		{Spec: "0 0 1 * * *", Type: queue.TaskInvoicesOverdue},
		{Spec: "0 0 3 * * *", Type: queue.TaskSessionsPurge},
		{Spec: "0 30 3 * * *", Type: queue.TaskInvitationsExpire},
	}
}

type Scheduler struct {
	cron      *cron.Cron
	queue     Enqueuer
	schedules []Schedule
	log       zerolog.Logger
}

func NewScheduler(queue Enqueuer, loc *time.Location, schedules []Schedule, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		queue:     queue,
		schedules: schedules,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	for _, sc := range s.schedules {
		typ := sc.Type
		if _, err := s.cron.AddFunc(sc.Spec, func() { s.enqueue(typ) }); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) enqueue(typ queue.TaskType) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.queue.Enqueue(ctx, queue.Task{Type: typ}); err != nil {
		s.log.Error().Err(err).Str("type", string(typ)).Msg("enqueue scheduled task failed")
		return
	}
	s.log.Debug().Str("type", string(typ)).Msg("scheduled task enqueued")
}
