package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineKeyboardBuilder(t *testing.T) {
	markup := NewInlineKeyboard().
		AddRow(InlineButton{Text: "A", Data: "a"}, InlineButton{Text: "B", Data: "b"}).
		AddRow(InlineButton{Text: "C", URL: "https://example.com"}).
		AddRow().
		Build()

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "a", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "B", markup.InlineKeyboard[0][1].Text)
	assert.Equal(t, "https://example.com", markup.InlineKeyboard[1][0].URL)
}

func TestBuilder_Progress(t *testing.T) {
	b := NewBuilder("@medinetwork", "https://t.me/Contira")

	markup := b.Progress()
	require.Len(t, markup.InlineKeyboard, 4)

	assert.Equal(t, "https://t.me/medinetwork", markup.InlineKeyboard[0][0].URL)
	assert.Equal(t, checkStatusData, markup.InlineKeyboard[1][0].Data)
	assert.Equal(t, generateData, markup.InlineKeyboard[2][0].Data)
	assert.Equal(t, "https://t.me/Contira", markup.InlineKeyboard[3][0].URL)
}

func TestBuilder_JoinRequired_NoGenerateButton(t *testing.T) {
	b := NewBuilder("medinetwork", "https://t.me/Contira")

	markup := b.JoinRequired()
	require.Len(t, markup.InlineKeyboard, 3)

	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			assert.NotEqual(t, generateData, btn.Data)
		}
	}
}
