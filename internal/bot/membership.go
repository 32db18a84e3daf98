package bot

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	errs "github.com/medinet/credgate/internal/errors"
)

// channelRecipient lets a bare "@channel" handle be used wherever telebot
// expects a Recipient.
type channelRecipient string

func (r channelRecipient) Recipient() string { return string(r) }

// Membership answers channel membership questions against the Telegram API.
type Membership struct {
	bot *telebot.Bot
	log *slog.Logger
}

// NewMembership constructs a Membership checker backed by the bot API.
func NewMembership(bot *telebot.Bot, log *slog.Logger) *Membership {
	if log == nil {
		log = slog.Default()
	}

	return &Membership{
		bot: bot,
		log: log,
	}
}

// IsMember reports whether the user currently belongs to the channel.
// Creator and administrator count as members.
func (m *Membership) IsMember(_ context.Context, channel string, telegramID int64) (bool, error) {
	member, err := m.bot.ChatMemberOf(channelRecipient(channel), &telebot.User{ID: telegramID})
	if err != nil {
		m.log.Warn("chat member lookup failed",
			slog.String("channel", channel),
			slog.Int64("telegram_id", telegramID),
			slog.Any("error", err),
		)
		return false, errs.NewMembershipCheckError(err)
	}

	switch member.Role {
	case telebot.Creator, telebot.Administrator, telebot.Member:
		return true, nil
	default:
		return false, nil
	}
}
