package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/repository"
)

// NewMyCredsHandler returns the /mycreds handler. The secret is never shown
// again; only the id, usage counters and reset date are available.
func NewMyCredsHandler(
	users repository.UserRepository,
	creds repository.CredentialRepository,
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
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if user == nil || !user.CredentialsIssued {
			return c.Send("❌ You don't have credentials yet.\nUse /start to begin.")
		}

		cred, err := creds.Find(ctx, user.IssuedCredentialID)
		if err != nil {
			log.Warn("failed to fetch credential usage",
				slog.String("credential_id", user.IssuedCredentialID),
				slog.Any("error", err),
			)
			return c.Send(fmt.Sprintf(
				"🆔 *User ID:* `%s`\n⚠️ Could not fetch usage info.",
				user.IssuedCredentialID,
			), telebot.ModeMarkdown)
		}

		return c.Send(fmt.Sprintf(
			"📋 *Your Credentials*\n\n"+
				"🆔 *User ID:* `%s`\n"+
				"🔑 *Password:* Hidden (SHA-256 encrypted)\n\n"+
				"📊 *Usage:* %d/%d\n"+
				"📅 *Last Reset:* %s",
			user.IssuedCredentialID, cred.UsageCount, cred.DailyLimit, cred.LastReset,
		), telebot.ModeMarkdown)
	}
}
