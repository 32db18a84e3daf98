package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/bot/keyboard"
)

// NewBuyHandler returns the /buy handler, a static redirect to the admin.
func NewBuyHandler(kb *keyboard.Builder) Handler {
	return func(c telebot.Context) error {
		return c.Send(
			"💎 *Upgrade to Full Version*\n\n"+
				"🔓 Unlimited daily usage\n"+
				"⚡ Priority support\n"+
				"🔑 Custom credentials\n\n"+
				"Tap the button below to contact the admin and purchase credits!",
			kb.BuyContact(), telebot.ModeMarkdown,
		)
	}
}
