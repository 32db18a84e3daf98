package keyboard

import (
	telebot "gopkg.in/telebot.v3"
)

// InlineButton describes one button: Data fires a callback, URL opens a link.
// The two are mutually exclusive.
type InlineButton struct {
	Text string
	Data string
	URL  string
}

// InlineKeyboardBuilder accumulates button rows and renders telebot markup.
type InlineKeyboardBuilder struct {
	rows [][]InlineButton
}

func NewInlineKeyboard() *InlineKeyboardBuilder {
	return &InlineKeyboardBuilder{}
}

func (b *InlineKeyboardBuilder) AddRow(buttons ...InlineButton) *InlineKeyboardBuilder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, append([]InlineButton(nil), buttons...))
	}

	return b
}

func (b *InlineKeyboardBuilder) Build() *telebot.ReplyMarkup {
	keyboard := make([][]telebot.InlineButton, 0, len(b.rows))
	for _, row := range b.rows {
		rendered := make([]telebot.InlineButton, 0, len(row))
		for _, btn := range row {
			rendered = append(rendered, telebot.InlineButton{Text: btn.Text, Data: btn.Data, URL: btn.URL})
		}
		keyboard = append(keyboard, rendered)
	}

	return &telebot.ReplyMarkup{InlineKeyboard: keyboard}
}
