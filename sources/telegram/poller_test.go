package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewOfDropsSenderlessUpdates(t *testing.T) {
	poller := &Poller{}

	assert.Nil(t, poller.viewOf(tgbotapi.Update{}))
	assert.Nil(t, poller.viewOf(tgbotapi.Update{
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "channel post"},
	}))
	assert.Nil(t, poller.viewOf(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{ID: "cbq", Data: "file:1"},
	}))

	upd := poller.viewOf(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cbq",
			From: &tgbotapi.User{ID: 9},
			Data: "file:1",
		},
	})
	require.NotNil(t, upd)
	assert.Equal(t, int64(9), upd.Identity)
}
