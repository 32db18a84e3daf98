package jobs

import (
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// usageResetSpec fires at midnight UTC, matching the calendar-day semantics
// of the credential last_reset field.
const usageResetSpec = "0 0 * * *"

// Scheduler registers the recurring usage reset with the queue.
type Scheduler struct {
	inner *asynq.Scheduler
	log   *slog.Logger
}

func NewScheduler(redisOpt asynq.RedisConnOpt, log *slog.Logger) *Scheduler {
	return &Scheduler{
		inner: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC}),
		log:   log,
	}
}

func (s *Scheduler) RegisterTasks() error {
	// The scheduled payload carries no day; the handler resolves "today"
	// when the task actually runs.
	task, err := NewUsageResetTask("")
	if err != nil {
		return err
	}

	entryID, err := s.inner.Register(usageResetSpec, task)
	if err != nil {
		return err
	}

	if s.log != nil {
		s.log.Info("scheduled usage reset", slog.String("entry_id", entryID), slog.String("spec", usageResetSpec))
	}

	return nil
}

func (s *Scheduler) Run() {
	if s.log != nil {
		s.log.Info("scheduler started")
	}

	go func() {
		if err := s.inner.Run(); err != nil && s.log != nil {
			s.log.Error("scheduler stopped", slog.Any("error", err))
		}
	}()
}

func (s *Scheduler) Shutdown() {
	if s.log != nil {
		s.log.Info("scheduler stopping")
	}

	s.inner.Shutdown()
}
