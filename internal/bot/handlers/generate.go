package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/eligibility"
	errs "github.com/medinet/credgate/internal/errors"
	"github.com/medinet/credgate/internal/issuer"
)

// NewGenerateHandler returns the callback handler behind "Get My Credentials".
// All precondition checks live in the issuer; this handler only translates
// its outcomes into chat messages.
func NewGenerateHandler(iss *issuer.Issuer, renderer *Renderer, dailyLimit int, log *slog.Logger) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		_ = c.Respond()

		ctx := context.Background()
		tid := strconv.FormatInt(sender.ID, 10)

		issued, err := iss.Issue(ctx, tid, sender.ID)
		if err != nil {
			return handleIssueError(c, err, renderer, tid, log)
		}

		if issued.Reused {
			return c.Edit(fmt.Sprintf(
				"✅ Already generated!\n\n🆔 *User ID:* `%s`",
				issued.ID,
			), telebot.ModeMarkdown)
		}

		return c.Edit(fmt.Sprintf(
			"🎉 *Credentials Generated Successfully!*\n\n"+
				"🆔 *User ID:* `%s`\n"+
				"🔑 *Password:* `%s`\n\n"+
				"⚠️ *SAVE YOUR PASSWORD NOW!*\n"+
				"It is encrypted and *cannot be recovered*.\n\n"+
				"📊 Daily Limit: %d",
			issued.ID, issued.Secret, dailyLimit,
		), telebot.ModeMarkdown)
	}
}

func handleIssueError(c telebot.Context, err error, renderer *Renderer, tid string, log *slog.Logger) error {
	if errors.Is(err, errs.ErrNotRegistered) {
		return c.Edit(useStartFirst)
	}

	var notEligible *issuer.NotEligibleError
	if errors.As(err, &notEligible) {
		switch notEligible.Reason {
		case eligibility.ReasonReferrals:
			return c.Edit(fmt.Sprintf(
				"❌ You still need *%d* more referral(s)!\n\n"+
					"📎 Share your link:\n`%s`",
				notEligible.Remaining, renderer.RefLink(tid),
			), renderer.Keyboards().CheckAgain(), telebot.ModeMarkdown)
		default:
			// Channel task missing, alone or together with referrals.
			return c.Edit(fmt.Sprintf(
				"❌ You haven't joined *%s* yet!\n"+
					"Join the channel first, then tap Check Again.",
				renderer.Channel(),
			), renderer.Keyboards().JoinRequired(), telebot.ModeMarkdown)
		}
	}

	var appErr *errs.AppError
	if errors.As(err, &appErr) && appErr.UserMessage != "" {
		log.Error("issuance failed", slog.String("telegram_id", tid), slog.Any("error", err))
		return c.Edit(appErr.UserMessage)
	}

	log.Error("issuance failed", slog.String("telegram_id", tid), slog.Any("error", err))
	return c.Edit("❌ Failed to save credentials. Please try again or contact admin.")
}
