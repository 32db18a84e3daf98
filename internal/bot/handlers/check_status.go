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

const useStartFirst = "⚠️ Please use /start first."

// NewCheckStatusHandler returns the callback handler behind the
// "Check Status" / "Check Again" buttons. It re-evaluates both tasks and
// edits the originating message in place.
func NewCheckStatusHandler(
	users repository.UserRepository,
	gate *eligibility.Gate,
	renderer *Renderer,
	log *slog.Logger,
) CallbackHandler {
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

		user, err := users.Find(ctx, tid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.Edit(useStartFirst)
			}
			return err
		}

		if user.CredentialsIssued {
			return c.Edit(fmt.Sprintf(
				"✅ Your credentials are already generated!\n\n"+
					"🆔 *User ID:* `%s`\n\nUse /mycreds for details.",
				user.IssuedCredentialID,
			), telebot.ModeMarkdown)
		}

		status := gate.Check(ctx, user, sender.ID)
		text, markup := renderer.ProgressMessage(sender.FirstName, tid, status)
		return c.Edit(text, markup, telebot.ModeMarkdown)
	}
}
