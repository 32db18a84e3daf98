package jobs

import (
	"log/slog"

	"github.com/hibiken/asynq"
)

// Worker processes queued maintenance tasks. Concurrency stays low: the only
// workload is the daily usage reset, which iterates the whole credential set
// and should not compete with itself.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *slog.Logger
}

func NewWorker(redisOpt asynq.RedisConnOpt, queues map[string]int, log *slog.Logger) *Worker {
	return &Worker{
		server: asynq.NewServer(redisOpt, asynq.Config{
			Queues:      queues,
			Concurrency: 2,
		}),
		mux: asynq.NewServeMux(),
		log: log,
	}
}

func (w *Worker) RegisterHandler(taskType string, handler asynq.Handler) {
	w.mux.Handle(taskType, handler)
}

// Run blocks until Shutdown is called.
func (w *Worker) Run() error {
	if w.log != nil {
		w.log.Info("jobs worker started")
	}

	return w.server.Run(w.mux)
}

func (w *Worker) Shutdown() {
	if w.log != nil {
		w.log.Info("jobs worker stopping")
	}

	w.server.Shutdown()
}
