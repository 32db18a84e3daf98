package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/medinet/credgate/internal/domain"
	"github.com/medinet/credgate/internal/jobs"
	"github.com/medinet/credgate/internal/repository"
)

// UsageResetHandler zeroes the usage counter of every credential whose
// last_reset predates the run's day. Records already reset today are left
// untouched, so a redelivered task changes nothing.
type UsageResetHandler struct {
	creds repository.CredentialRepository
	now   func() time.Time
	log   *slog.Logger
}

func NewUsageResetHandler(creds repository.CredentialRepository, log *slog.Logger) *UsageResetHandler {
	return &UsageResetHandler{
		creds: creds,
		now:   time.Now,
		log:   log,
	}
}

func (h *UsageResetHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.UsageResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "usage reset: failed to decode payload", slog.String("task_type", t.Type()), slog.Any("error", err))
		}
		return err
	}

	day := payload.Day
	if day == "" {
		day = h.now().UTC().Format(domain.ResetDateLayout)
	}

	creds, err := h.creds.All(ctx)
	if err != nil {
		return err
	}

	reset := 0
	for id, cred := range creds {
		if cred.LastReset == day {
			continue
		}

		err := h.creds.Patch(ctx, id, map[string]any{
			"usage":      0,
			"last_reset": day,
		})
		if err != nil {
			// Returning the error lets asynq retry the whole run; records
			// reset so far are skipped on the next pass.
			return err
		}
		reset++
	}

	if h.log != nil {
		h.log.InfoContext(ctx, "usage counters reset",
			slog.String("day", day),
			slog.Int("credentials_total", len(creds)),
			slog.Int("credentials_reset", reset),
		)
	}

	return nil
}
