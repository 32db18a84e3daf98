package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Manager enqueues one-off tasks, such as the boot-time usage reset.
type Manager struct {
	client *asynq.Client
	log    *slog.Logger
}

func NewManager(redisOpt asynq.RedisConnOpt, log *slog.Logger) *Manager {
	return &Manager{client: asynq.NewClient(redisOpt), log: log}
}

func (m *Manager) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	info, err := m.client.EnqueueContext(ctx, task, opts...)
	if err == nil && m.log != nil {
		m.log.Info("task enqueued", slog.String("type", task.Type()), slog.String("queue", info.Queue))
	}

	return info, err
}

func (m *Manager) Close() error {
	return m.client.Close()
}
