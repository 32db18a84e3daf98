// Package jobs runs scheduled maintenance against the credential store.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeUsageReset = "credentials:usage_reset"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// UsageResetPayload parametrizes a usage reset run. Day is the YYYY-MM-DD
// date the run resets counters to; duplicate runs for the same day are no-ops.
type UsageResetPayload struct {
	Day string `json:"day"`
}

func NewUsageResetTask(day string) (*asynq.Task, error) {
	payload, err := json.Marshal(UsageResetPayload{Day: day})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeUsageReset, payload, asynq.Queue(QueueLow)), nil
}
