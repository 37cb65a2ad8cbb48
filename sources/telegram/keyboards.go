package telegram

import (
	"fmt"
	"strconv"

	"lingvovault/sources/localization"
	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/platform"
	"lingvovault/sources/repository"
	"lingvovault/sources/texting/format"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainMenuKeyboard(loc *localization.LocalizationManager, lang platform.Language) tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.Localize(lang, "BtnSearch")),
			tgbotapi.NewKeyboardButton(loc.Localize(lang, "BtnMyFiles")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.Localize(lang, "BtnHelp")),
			tgbotapi.NewKeyboardButton(loc.Localize(lang, "BtnLanguage")),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("O'zbekcha", "lang:uz"),
			tgbotapi.NewInlineKeyboardButtonData("English", "lang:en"),
			tgbotapi.NewInlineKeyboardButtonData("Русский", "lang:ru"),
		),
	)
}

// joinKeyboard renders one join link per missing channel plus the retry
// button bound to the subscription gate's confirmation action.
func joinKeyboard(loc *localization.LocalizationManager, lang platform.Language, missing []repository.RequiredChannel) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(missing)+1)
	for _, channel := range missing {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(channel.Display(), channel.JoinURL()),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(loc.Localize(lang, "BtnConfirmJoined"), "fsub_confirm"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func searchResultsKeyboard(files []entities.File) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(files))
	for _, file := range files {
		label := fmt.Sprintf("%s (%s)", file.Title, format.FileSize(file.FileSize))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "file:"+file.ID.String()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func fileActionsKeyboard(loc *localization.LocalizationManager, lang platform.Language, fileID string, saved bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(loc.Localize(lang, "BtnDownload"), "download:"+fileID),
	}
	if saved {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(loc.Localize(lang, "BtnRemove"), "unsave:"+fileID))
	} else {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(loc.Localize(lang, "BtnSave"), "save:"+fileID))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

func savedListKeyboard(loc *localization.LocalizationManager, lang platform.Language, saved []entities.SavedFile, page int, hasNext bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(saved)+1)
	for _, entry := range saved {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(entry.File.Title, "file:"+entry.File.ID.String()),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(loc.Localize(lang, "BtnPrev"), "saved_page:"+strconv.Itoa(page-1)))
	}
	if hasNext {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(loc.Localize(lang, "BtnNext"), "saved_page:"+strconv.Itoa(page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(nav...))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func fsubAdminKeyboard(channels []repository.RequiredChannel) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels))
	for _, channel := range channels {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+channel.Display(), fmt.Sprintf("remove_fsub:%d", channel.ChannelID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func broadcastConfirmKeyboard(loc *localization.LocalizationManager, lang platform.Language) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(loc.Localize(lang, "BtnSend"), "broadcast_send"),
			tgbotapi.NewInlineKeyboardButtonData(loc.Localize(lang, "BtnCancel"), "broadcast_cancel"),
		),
	)
}
