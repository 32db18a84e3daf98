// Package notify delivers referral congratulation messages to referrers.
// Delivery is best-effort: a blocked bot or closed chat never affects the
// ledger write that produced the event.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	errs "github.com/medinet/credgate/internal/errors"
	"github.com/medinet/credgate/internal/referral"
	"github.com/medinet/credgate/pkg/metrics"
)

// Sender is the messaging surface the notifier depends on.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Notifier consumes referral events and messages the referrer.
type Notifier struct {
	sender Sender
	events <-chan referral.Event
	log    *slog.Logger
}

// New constructs a Notifier reading from the given event channel.
func New(sender Sender, events <-chan referral.Event, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}

	return &Notifier{
		sender: sender,
		events: events,
		log:    log,
	}
}

// Run consumes events until the context is cancelled or the channel closes.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-n.events:
			if !ok {
				return
			}
			n.deliver(ctx, event)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, event referral.Event) {
	referrerID, err := strconv.ParseInt(event.ReferrerID, 10, 64)
	if err != nil {
		n.log.Warn("referral event carries non-numeric referrer id", slog.String("referrer_id", event.ReferrerID))
		metrics.RecordReferralNotification("invalid")
		return
	}

	text := fmt.Sprintf(
		"🎉 *New referral!* %s joined using your link.\n📊 Referrals: %d/%d",
		event.ReferredName, event.Count, event.Required,
	)

	err = errs.WithRetry(ctx, func() error {
		_, sendErr := n.sender.Send(telebot.ChatID(referrerID), text, telebot.ModeMarkdown)
		if sendErr != nil {
			// Wrapped as retryable: a flaky telegram call gets another chance
			// before the event is given up on.
			return errs.NewNotificationError(sendErr)
		}
		return nil
	})
	if err != nil {
		n.log.Warn("referral notification dropped",
			slog.String("referrer_id", event.ReferrerID),
			slog.Any("error", err),
		)
		metrics.RecordReferralNotification("failed")
		return
	}

	metrics.RecordReferralNotification("sent")
}
