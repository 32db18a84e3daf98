package middleware

import (
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers.
func Metrics(next telebot.HandlerFunc) telebot.HandlerFunc {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(commandName(c), status, time.Since(start))

		return err
	}
}

func commandName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Unique != "" {
		return cb.Unique
	}

	if text := c.Text(); text != "" {
		return text
	}

	return "unknown"
}
