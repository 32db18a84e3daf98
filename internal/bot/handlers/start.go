package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/domain"
	"github.com/medinet/credgate/internal/eligibility"
	"github.com/medinet/credgate/internal/progress"
	"github.com/medinet/credgate/internal/referral"
	"github.com/medinet/credgate/internal/repository"
)

// NewStartHandler returns the /start handler. First contact registers the
// user and credits the referrer named in the deep-link payload; later calls
// only refresh the progress view. Referrals are credited exclusively here,
// so an existing user re-opening someone's link changes nothing.
func NewStartHandler(
	users repository.UserRepository,
	ledger *referral.Ledger,
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
		switch {
		case errors.Is(err, repository.ErrNotFound):
			user = domain.NewBotUser(tid, displayName(sender), time.Now())
			if err := users.Create(ctx, tid, user); err != nil {
				return err
			}
			progress.RecordTransition(progress.StateUnregistered, progress.StateRegistered)
			log.Info("registered new user", slog.String("telegram_id", tid))

			if referrerID, ok := referral.ParseCode(c.Message().Payload); ok {
				if _, _, err := ledger.Record(ctx, referrerID, tid, displayName(sender)); err != nil {
					// Crediting is best-effort: the new user's own flow proceeds.
					log.Warn("failed to credit referrer",
						slog.String("referrer_id", referrerID),
						slog.String("referred_id", tid),
						slog.Any("error", err),
					)
				}
			}
		case err != nil:
			return err
		}

		if user.CredentialsIssued {
			return c.Send(fmt.Sprintf(
				"✅ You already have your credentials!\n\n"+
					"🆔 *User ID:* `%s`\n"+
					"🔑 *Password:* shown once at generation time\n\n"+
					"Use /mycreds to view your User ID and usage.",
				user.IssuedCredentialID,
			), telebot.ModeMarkdown)
		}

		status := gate.Check(ctx, user, sender.ID)
		text, markup := renderer.ProgressMessage(sender.FirstName, tid, status)
		return c.Send(text, markup, telebot.ModeMarkdown)
	}
}

func displayName(sender *telebot.User) string {
	if sender.Username != "" {
		return sender.Username
	}
	return sender.FirstName
}
