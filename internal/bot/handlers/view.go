package handlers

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/bot/keyboard"
	"github.com/medinet/credgate/internal/eligibility"
)

// Renderer builds the user-facing progress texts shared by the start command,
// the status command and the check-status callback.
type Renderer struct {
	kb          *keyboard.Builder
	channel     string
	botUsername string
}

// NewRenderer constructs a Renderer for the given channel and bot account.
func NewRenderer(kb *keyboard.Builder, channel, botUsername string) *Renderer {
	return &Renderer{
		kb:          kb,
		channel:     channel,
		botUsername: botUsername,
	}
}

// RefLink formats the deep link that credits referrals to the given user.
func (r *Renderer) RefLink(telegramID string) string {
	return fmt.Sprintf("https://t.me/%s?start=ref_%s", r.botUsername, telegramID)
}

// ProgressMessage renders the welcome/status text with task checkmarks.
func (r *Renderer) ProgressMessage(firstName, telegramID string, status eligibility.Status) (string, *telebot.ReplyMarkup) {
	text := fmt.Sprintf(
		"👋 Welcome *%s*!\n\n"+
			"🎯 Complete these steps to get your *FREE* credentials:\n\n"+
			"%s  Join %s\n"+
			"%s  Refer %d friends (%d/%d)\n\n"+
			"📎 *Your Referral Link:*\n`%s`\n\n"+
			"Share this link with friends. Once both tasks are done, tap *Get My Credentials*!",
		firstName,
		checkmark(status.ChannelJoined),
		r.channel,
		checkmark(status.ReferralsOK()),
		status.Required,
		status.ReferralCount,
		status.Required,
		r.RefLink(telegramID),
	)

	return text, r.kb.Progress()
}

// Keyboards exposes the underlying keyboard builder.
func (r *Renderer) Keyboards() *keyboard.Builder {
	return r.kb
}

// Channel returns the gated channel handle, including the @ prefix.
func (r *Renderer) Channel() string {
	return r.channel
}

func checkmark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}
