package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/bot/handlers"
	errs "github.com/medinet/credgate/internal/errors"
)

const genericUserMessage = "⚠️ Something went wrong. Please try again later."

// RecoveryMiddleware converts handler panics into a logged error and an
// apology to the user. The update is considered handled afterwards.
func RecoveryMiddleware(log *slog.Logger, errHandler *errs.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				log.Error("panic recovered in handler",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)

				notifyUser(c, errHandler, fmt.Errorf("panic recovered: %v", r), log)
				err = nil
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware is the single place handler errors surface: it
// reports them and replies with the user-facing message, so handlers can
// just return errors.
func ErrorHandlingMiddleware(errHandler *errs.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if err := next(c); err != nil {
				notifyUser(c, errHandler, err, nil)
			}

			return nil
		}
	}
}

func notifyUser(c telebot.Context, errHandler *errs.Handler, cause error, log *slog.Logger) {
	msg := genericUserMessage
	if errHandler != nil {
		if m, _ := errHandler.Handle(context.Background(), cause); m != "" {
			msg = m
		}
	}

	if c == nil {
		return
	}

	if sendErr := c.Send(msg); sendErr != nil && log != nil {
		log.Error("failed to notify user", slog.Any("error", sendErr))
	}
}

// LoggingMiddleware logs each update before and after handling with the
// acting user and elapsed time.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			userID, action := describeUpdate(c)

			log.Info("handling update", slog.Int64("user_id", userID), slog.String("action", action))

			err := next(c)

			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

func describeUpdate(c telebot.Context) (userID int64, action string) {
	if c == nil {
		return 0, ""
	}

	if sender := c.Sender(); sender != nil {
		userID = sender.ID
	}

	if cb := c.Callback(); cb != nil {
		return userID, cb.Data
	}

	return userID, c.Text()
}
