package telegram

import (
	"strings"
	"time"

	"lingvovault/sources/features"
	"lingvovault/sources/gate"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"
)

// broadcastPace keeps the fan-out under the Bot API flood limits.
const broadcastPace = 50 * time.Millisecond

func (x *TelegramHandler) BroadcastCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	if !x.features.IsEnabledDefault(features.FeatureBroadcast, true) {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	state := repository.NewConvState(repository.StepBroadcastText, repository.FlowFreeText)
	if err := x.conv.SetState(log, upd.Identity, state); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.reply(log, upd, passport, "MsgBroadcastPrompt")
}

// BroadcastTextStep stores the drafted text and shows the confirmation
// preview. Sending another message before confirming replaces the draft.
func (x *TelegramHandler) BroadcastTextStep(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	text := strings.TrimSpace(upd.Text)
	if text == "" {
		x.reply(log, upd, passport, "MsgAwaitingText")
		return
	}

	state, err := x.conv.GetState(log, upd.Identity)
	if err != nil || state == nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	state.WithField("text", text)
	if err := x.conv.SetState(log, upd.Identity, state); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	recipients, err := x.users.ListReachableIDs(log)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	preview := x.localization.LocalizeTd(passport.Language, "MsgBroadcastPreview", map[string]interface{}{
		"Recipients": len(recipients),
	})
	x.diplomat.ReplyWithMarkup(log, upd, text+"\n\n"+preview, broadcastConfirmKeyboard(x.localization, passport.Language))
}

func (x *TelegramHandler) BroadcastSendCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	state, err := x.conv.GetState(log, upd.Identity)
	if err != nil || state == nil || state.Fields["text"] == "" {
		x.reply(log, upd, passport, "MsgBroadcastCancelled")
		return
	}
	text := state.Fields["text"]
	_ = x.conv.ClearState(log, upd.Identity)

	if upd.Callback != nil && upd.Callback.Message != nil {
		x.diplomat.RemoveMarkup(log, upd.ChatID, upd.Callback.Message.MessageID)
	}

	record, err := x.broadcast.CreateBroadcast(log, passport.User.ID, text)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	recipients, err := x.users.ListReachableIDs(log)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	x.reply(log, upd, passport, "MsgBroadcastStarted")

	var sent, failed int64
	for i, chatID := range recipients {
		if i > 0 {
			time.Sleep(broadcastPace)
		}
		if err := x.diplomat.SendBroadcastMessage(log, chatID, text); err != nil {
			failed++
			x.metrics.RecordBroadcastDelivery("error")
			continue
		}
		sent++
		x.metrics.RecordBroadcastDelivery("success")
	}

	if err := x.broadcast.FinishBroadcast(log, record.ID, sent, failed); err != nil {
		log.W("Failed to finalize broadcast record", tracing.InnerError, err)
	}

	x.replyTd(log, upd, passport, "MsgBroadcastDone", map[string]interface{}{
		"Sent":   sent,
		"Failed": failed,
	})
}

func (x *TelegramHandler) BroadcastCancelCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	_ = x.conv.ClearState(log, upd.Identity)
	if upd.Callback != nil && upd.Callback.Message != nil {
		x.diplomat.RemoveMarkup(log, upd.ChatID, upd.Callback.Message.MessageID)
	}
	x.reply(log, upd, passport, "MsgBroadcastCancelled")
}
