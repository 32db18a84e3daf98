package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/eligibility"
	"github.com/medinet/credgate/internal/repository"
)

// NewStatusHandler returns the /status handler showing both task states and
// the referral link as a plain text summary.
func NewStatusHandler(
	users repository.UserRepository,
	gate *eligibility.Gate,
	renderer *Renderer,
	log *slog.Logger,
) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()
		tid := strconv.FormatInt(sender.ID, 10)

		user, err := users.Find(ctx, tid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.Send("Use /start first!")
			}
			return err
		}

		status := gate.Check(ctx, user, sender.ID)

		channelLine := "❌ Not Joined"
		if status.ChannelJoined {
			channelLine = "✅ Joined"
		}

		credsLine := "⏳ Pending"
		if user.CredentialsIssued {
			credsLine = "✅ Generated"
		}

		return c.Send(fmt.Sprintf(
			"📊 *Your Status*\n\n"+
				"📢 Channel: %s\n"+
				"👥 Referrals: %s %d/%d\n"+
				"🎫 Credentials: %s\n\n"+
				"📎 *Referral Link:*\n`%s`",
			channelLine,
			checkmark(status.ReferralsOK()), status.ReferralCount, status.Required,
			credsLine,
			renderer.RefLink(tid),
		), telebot.ModeMarkdown)
	}
}
