package telegram

import (
	"errors"
	"strconv"
	"strings"

	"lingvovault/sources/gate"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (x *TelegramHandler) FsubCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	var cmd FsubCmd
	kctx, err := x.ParseCmd(&cmd, upd.CommandArguments())
	if err != nil {
		x.reply(log, upd, passport, "MsgFsubAddPrompt")
		return
	}

	if strings.Fields(kctx.Command())[0] == "add" {
		state := repository.NewConvState(repository.StepFsubChannel, repository.FlowStructured)
		if err := x.conv.SetState(log, upd.Identity, state); err != nil {
			x.reply(log, upd, passport, "MsgTryAgain")
			return
		}
		x.reply(log, upd, passport, "MsgFsubAddPrompt")
		return
	}

	channels, err := x.channels.List(log)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	if len(channels) == 0 {
		x.reply(log, upd, passport, "MsgFsubListEmpty")
		return
	}

	text := x.localization.LocalizeTd(passport.Language, "MsgFsubList", map[string]interface{}{
		"Channels": channelLines(channels),
	})
	x.diplomat.ReplyWithMarkup(log, upd, text, fsubAdminKeyboard(channels))
}

// FsubChannelStep resolves the channel the admin pointed at, either by a
// forwarded post or by @username / numeric id, and appends it to the
// requirement list. The flow stays open on a bad reference so the admin can
// retry without restarting.
func (x *TelegramHandler) FsubChannelStep(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	channel, ok := x.resolveChannel(log, upd)
	if !ok {
		x.reply(log, upd, passport, "MsgFsubInvalid")
		return
	}

	err := x.channels.Add(log, channel)
	if errors.Is(err, repository.ErrChannelExists) {
		_ = x.conv.ClearState(log, upd.Identity)
		x.reply(log, upd, passport, "MsgFsubExists")
		return
	}
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	_ = x.conv.ClearState(log, upd.Identity)
	x.replyTd(log, upd, passport, "MsgFsubAdded", map[string]interface{}{"Title": channel.Display()})
}

func (x *TelegramHandler) resolveChannel(log *tracing.Logger, upd *gate.Update) (repository.RequiredChannel, bool) {
	if upd.Message != nil && upd.Message.ForwardFromChat != nil {
		source := upd.Message.ForwardFromChat
		return repository.RequiredChannel{
			ChannelID:  source.ID,
			Username:   source.UserName,
			Title:      source.Title,
			InviteLink: source.InviteLink,
		}, true
	}

	reference := strings.TrimSpace(upd.Text)
	if reference == "" {
		return repository.RequiredChannel{}, false
	}

	var config tgbotapi.ChatInfoConfig
	if id, err := strconv.ParseInt(reference, 10, 64); err == nil {
		config.ChatConfig = tgbotapi.ChatConfig{ChatID: id}
	} else {
		config.ChatConfig = tgbotapi.ChatConfig{SuperGroupUsername: "@" + strings.TrimPrefix(reference, "@")}
	}

	chat, err := x.diplomat.ResolveChat(config)
	if err != nil {
		log.W("Channel reference did not resolve", tracing.InnerError, err)
		return repository.RequiredChannel{}, false
	}

	return repository.RequiredChannel{
		ChannelID:  chat.ID,
		Username:   chat.UserName,
		Title:      chat.Title,
		InviteLink: chat.InviteLink,
	}, true
}

func (x *TelegramHandler) RemoveFsubCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	channelID, err := strconv.ParseInt(strings.TrimPrefix(upd.Data, "remove_fsub:"), 10, 64)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	err = x.channels.Remove(log, channelID)
	if errors.Is(err, repository.ErrChannelNotFound) {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	if upd.Callback != nil && upd.Callback.Message != nil {
		x.diplomat.RemoveMarkup(log, upd.ChatID, upd.Callback.Message.MessageID)
	}
	x.reply(log, upd, passport, "MsgFsubRemoved")
}

// ConfirmJoinedCallback re-runs the membership check the subscription gate
// performs, so pressing the button right after joining lets the user straight
// back in without waiting for anything to expire.
func (x *TelegramHandler) ConfirmJoinedCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	required, err := x.chain.RequiredChannels(log)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	missing, unverifiable := x.chain.Inspect(log, upd.Identity, required)

	if len(missing) > 0 {
		text := x.localization.LocalizeTd(passport.Language, "MsgFsubStillMissing", map[string]interface{}{
			"Channels": channelLines(missing),
		})
		x.diplomat.ReplyWithMarkup(log, upd, text, joinKeyboard(x.localization, passport.Language, missing))
		return
	}
	if len(unverifiable) > 0 {
		x.reply(log, upd, passport, "MsgFsubUnverifiable")
		return
	}

	if upd.Callback != nil && upd.Callback.Message != nil {
		x.diplomat.RemoveMarkup(log, upd.ChatID, upd.Callback.Message.MessageID)
	}
	x.diplomat.ReplyWithMarkup(log, upd,
		x.localization.Localize(passport.Language, "MsgFsubSatisfied"),
		mainMenuKeyboard(x.localization, passport.Language))
}
