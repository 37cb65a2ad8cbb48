package telegram

import (
	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// publishCommandMenu installs the per-chat command list. Admin chats see the
// administrative commands; everyone else only the public set.
func (x *TelegramHandler) publishCommandMenu(log *tracing.Logger, chatID int64, lang platform.Language, admin bool) {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: x.localization.Localize(lang, "BtnHelp")},
		{Command: "search", Description: x.localization.Localize(lang, "BtnSearch")},
		{Command: "saved", Description: x.localization.Localize(lang, "BtnMyFiles")},
		{Command: "lang", Description: x.localization.Localize(lang, "BtnLanguage")},
		{Command: "cancel", Description: x.localization.Localize(lang, "BtnCancel")},
	}

	if admin {
		commands = append(commands,
			tgbotapi.BotCommand{Command: "upload", Description: "Add a file to the vault"},
			tgbotapi.BotCommand{Command: "delete", Description: "Delete a file from the vault"},
			tgbotapi.BotCommand{Command: "fsub", Description: "Manage required channels"},
			tgbotapi.BotCommand{Command: "broadcast", Description: "Send a broadcast"},
			tgbotapi.BotCommand{Command: "stats", Description: "Vault statistics"},
			tgbotapi.BotCommand{Command: "users", Description: "Manage users"},
		)
	}

	x.diplomat.PublishCommands(log, chatID, commands)
}
