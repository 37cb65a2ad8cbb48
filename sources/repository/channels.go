package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"lingvovault/sources/tracing"
)

var ErrChannelExists = errors.New("channel already required")
var ErrChannelNotFound = errors.New("channel not found")

// RequiredChannel is one entry of the mandatory-subscription list. The list
// is persisted as a JSON array in the settings store so the admin panel and
// the bot share one source of truth; order is insertion order.
type RequiredChannel struct {
	ChannelID  int64  `json:"channel_id"`
	Username   string `json:"channel_username,omitempty"`
	Title      string `json:"channel_title,omitempty"`
	InviteLink string `json:"invite_link,omitempty"`
}

// Display returns the human-facing name used in denial messages and buttons.
func (c RequiredChannel) Display() string {
	if c.Username != "" {
		return "@" + c.Username
	}
	if c.Title != "" {
		return c.Title
	}
	return fmt.Sprintf("Channel %d", c.ChannelID)
}

// JoinURL returns the link a user can follow to join the channel.
func (c RequiredChannel) JoinURL() string {
	if c.InviteLink != "" {
		return c.InviteLink
	}
	if c.Username != "" {
		return "https://t.me/" + c.Username
	}
	raw := strings.TrimPrefix(fmt.Sprintf("%d", c.ChannelID), "-100")
	return fmt.Sprintf("https://t.me/c/%s/1", raw)
}

type ChannelsRepository struct {
	settings *SettingsRepository
}

func NewChannelsRepository(settings *SettingsRepository) *ChannelsRepository {
	return &ChannelsRepository{settings: settings}
}

// List reads the channel list from the settings store. Callers must not cache
// the result across gate evaluations: admin changes have to be visible on the
// very next update.
func (x *ChannelsRepository) List(logger *tracing.Logger) ([]RequiredChannel, error) {
	defer tracing.ProfilePoint(logger, "Channels list completed", "repository.channels.list")()

	raw, err := x.settings.Get(logger, SettingRequiredChannels)
	if err != nil {
		return nil, err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	var channels []RequiredChannel
	if err := json.Unmarshal([]byte(*raw), &channels); err != nil {
		logger.E("Failed to unmarshal required channels", tracing.InnerError, err)
		return nil, err
	}

	return channels, nil
}

func (x *ChannelsRepository) Add(logger *tracing.Logger, channel RequiredChannel) error {
	defer tracing.ProfilePoint(logger, "Channels add completed", "repository.channels.add", tracing.ChannelId, channel.ChannelID)()

	channels, err := x.List(logger)
	if err != nil {
		return err
	}

	if slices.ContainsFunc(channels, func(c RequiredChannel) bool { return c.ChannelID == channel.ChannelID }) {
		logger.W("Channel already in the required list", tracing.ChannelId, channel.ChannelID)
		return ErrChannelExists
	}

	channels = append(channels, channel)
	return x.store(logger, channels)
}

func (x *ChannelsRepository) Remove(logger *tracing.Logger, channelID int64) error {
	defer tracing.ProfilePoint(logger, "Channels remove completed", "repository.channels.remove", tracing.ChannelId, channelID)()

	channels, err := x.List(logger)
	if err != nil {
		return err
	}

	filtered := slices.DeleteFunc(channels, func(c RequiredChannel) bool { return c.ChannelID == channelID })
	if len(filtered) == len(channels) {
		logger.W("Channel not in the required list", tracing.ChannelId, channelID)
		return ErrChannelNotFound
	}

	return x.store(logger, filtered)
}

func (x *ChannelsRepository) store(logger *tracing.Logger, channels []RequiredChannel) error {
	data, err := json.Marshal(channels)
	if err != nil {
		logger.E("Failed to marshal required channels", tracing.InnerError, err)
		return err
	}

	return x.settings.Set(logger, SettingRequiredChannels, string(data))
}
