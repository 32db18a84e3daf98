package keyboard

import (
	"strings"

	telebot "gopkg.in/telebot.v3"
)

const (
	checkStatusData = "check_status"
	generateData    = "generate_creds"
)

// Builder creates the inline keyboards shown throughout the credential flow.
type Builder struct {
	channelURL string
	adminURL   string
}

// NewBuilder returns a Builder bound to the configured channel and admin contact.
func NewBuilder(channel, adminURL string) *Builder {
	return &Builder{
		channelURL: "https://t.me/" + strings.TrimPrefix(channel, "@"),
		adminURL:   adminURL,
	}
}

// Progress builds the main welcome/status menu with all task buttons.
func (b *Builder) Progress() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "📢 Join Channel", URL: b.channelURL}).
		AddRow(InlineButton{Text: "🔄 Check Status", Data: checkStatusData}).
		AddRow(InlineButton{Text: "🎁 Get My Credentials", Data: generateData}).
		AddRow(InlineButton{Text: "📩 Contact Admin", URL: b.adminURL}).
		Build()
}

// JoinRequired builds the keyboard shown when the channel task is unmet.
func (b *Builder) JoinRequired() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "📢 Join Channel", URL: b.channelURL}).
		AddRow(InlineButton{Text: "🔄 Check Again", Data: checkStatusData}).
		AddRow(InlineButton{Text: "📩 Contact Admin", URL: b.adminURL}).
		Build()
}

// CheckAgain builds the keyboard shown when only referrals are missing.
func (b *Builder) CheckAgain() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "🔄 Check Again", Data: checkStatusData}).
		AddRow(InlineButton{Text: "📩 Contact Admin", URL: b.adminURL}).
		Build()
}

// ContactAdmin builds a single admin contact button.
func (b *Builder) ContactAdmin() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "📩 Contact Admin", URL: b.adminURL}).
		Build()
}

// BuyContact builds the purchase redirect button.
func (b *Builder) BuyContact() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "💎 Contact Admin to Buy", URL: b.adminURL}).
		Build()
}
