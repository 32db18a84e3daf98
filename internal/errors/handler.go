package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/medinet/credgate/pkg/logger"
)

const fallbackUserMessage = "Something went wrong. Please try again later."

// Handler turns errors into log entries, optional sentry events, and a safe
// message for the end user.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	return &Handler{log: log, sentryEnabled: sentryEnabled}
}

// Handle reports err and returns the message to show the user plus whether
// the operation is worth retrying.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var appErr *AppError
	if !errors.As(err, &appErr) || appErr == nil {
		h.report(ctx, "unknown error", err, SeverityHigh, false,
			slog.String("message", err.Error()))
		return fallbackUserMessage, false
	}

	h.report(ctx, "application error", err, appErr.Severity,
		appErr.Severity == SeverityCritical || appErr.Severity == SeverityHigh,
		slog.String("code", appErr.Code),
		slog.String("message", appErr.Message),
		slog.Bool("retryable", appErr.Retryable),
	)

	msg := appErr.UserMessage
	if msg == "" {
		msg = fallbackUserMessage
	}

	return msg, appErr.Retryable
}

func (h *Handler) report(ctx context.Context, summary string, err error, severity Severity, toSentry bool, attrs ...slog.Attr) {
	log := h.log
	if log == nil {
		log = slog.Default()
	}

	args := make([]any, 0, len(attrs)+2)
	for _, attr := range attrs {
		args = append(args, attr)
	}
	args = append(args, slog.String("severity", string(severity)))
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		args = append(args, slog.String("correlation_id", id))
	}

	log.Error(summary, args...)

	if h.sentryEnabled && toSentry {
		captureException(err)
	}
}

func captureException(err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			if appErr.Code != "" {
				scope.SetTag("code", appErr.Code)
			}
			if appErr.Severity != "" {
				scope.SetTag("severity", string(appErr.Severity))
			}
		}

		sentry.CaptureException(err)
	})
}
