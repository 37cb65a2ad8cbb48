package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredChannelDisplay(t *testing.T) {
	assert.Equal(t, "@lingvo_news", RequiredChannel{ChannelID: -100123, Username: "lingvo_news", Title: "Lingvo News"}.Display())
	assert.Equal(t, "Lingvo News", RequiredChannel{ChannelID: -100123, Title: "Lingvo News"}.Display())
	assert.Equal(t, "Channel -100123", RequiredChannel{ChannelID: -100123}.Display())
}

func TestRequiredChannelJoinURL(t *testing.T) {
	assert.Equal(t, "https://t.me/+abc",
		RequiredChannel{ChannelID: -1001234, Username: "lingvo_news", InviteLink: "https://t.me/+abc"}.JoinURL())
	assert.Equal(t, "https://t.me/lingvo_news",
		RequiredChannel{ChannelID: -1001234, Username: "lingvo_news"}.JoinURL())
	assert.Equal(t, "https://t.me/c/1234/1",
		RequiredChannel{ChannelID: -1001234}.JoinURL())
}
