package handlers

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/bot/keyboard"
)

// NewHelpHandler returns the /help handler.
func NewHelpHandler(kb *keyboard.Builder, channel string, required int) Handler {
	return func(c telebot.Context) error {
		return c.Send(fmt.Sprintf(
			"🤖 *Credential Bot — Commands*\n\n"+
				"/start  — Start & get your referral link\n"+
				"/status — Check your progress\n"+
				"/mycreds — View your credentials & usage\n"+
				"/help   — Show this message\n\n"+
				"*How it works:*\n"+
				"1️⃣ Join %s\n"+
				"2️⃣ Refer %d friends using your unique link\n"+
				"3️⃣ Tap *Get My Credentials* to receive your free ID & password 🎉",
			channel, required,
		), kb.ContactAdmin(), telebot.ModeMarkdown)
	}
}
