package telegram

import (
	"strings"

	"lingvovault/sources/gate"
	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"
)

func (x *TelegramHandler) StartCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	x.publishCommandMenu(log, upd.ChatID, passport.Language, x.isPrivileged(upd, passport))
	x.diplomat.ReplyWithMarkup(log, upd,
		x.localization.Localize(passport.Language, "MsgWelcome"),
		mainMenuKeyboard(x.localization, passport.Language))
}

func (x *TelegramHandler) HelpCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	x.reply(log, upd, passport, "MsgHelpText")
}

func (x *TelegramHandler) LanguageCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	x.diplomat.ReplyWithMarkup(log, upd,
		x.localization.Localize(passport.Language, "MsgChooseLanguage"),
		languageKeyboard())
}

func (x *TelegramHandler) LanguageCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	lang := strings.TrimPrefix(upd.Data, "lang:")
	if !x.supportedLanguage(lang) {
		log.W("Unknown language selected", tracing.CallbackData, upd.Data)
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	if err := x.users.SetLanguage(log, passport.User, lang); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	selected := platform.Language(lang)
	x.publishCommandMenu(log, upd.ChatID, selected, x.isPrivileged(upd, passport))
	x.diplomat.ReplyWithMarkup(log, upd,
		x.localization.Localize(selected, "MsgLanguageSelected"),
		mainMenuKeyboard(x.localization, selected))
}

func (x *TelegramHandler) CancelCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	state, err := x.conv.GetState(log, upd.Identity)
	if err != nil || state == nil {
		x.reply(log, upd, passport, "MsgNothingToCancel")
		return
	}

	_ = x.conv.ClearState(log, upd.Identity)
	x.reply(log, upd, passport, "MsgCancelled")
}

func (x *TelegramHandler) MenuFallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	x.diplomat.ReplyWithMarkup(log, upd,
		x.localization.Localize(passport.Language, "MsgMenuFallback"),
		mainMenuKeyboard(x.localization, passport.Language))
}

func (x *TelegramHandler) supportedLanguage(lang string) bool {
	for _, candidate := range x.config.Localization.SupportedLanguages {
		if candidate == lang {
			return true
		}
	}
	return false
}
