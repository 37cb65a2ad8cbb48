package telegram

import (
	"errors"
	"strings"

	"lingvovault/sources/features"
	"lingvovault/sources/gate"
	"lingvovault/sources/repository"
	"lingvovault/sources/texting/format"
	"lingvovault/sources/tracing"

	"github.com/google/uuid"
)

const searchResultsLimit = 10

// SearchCommand answers inline when the query came with the command, otherwise
// opens a free-text prompt for it.
func (x *TelegramHandler) SearchCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	query := strings.TrimSpace(upd.CommandArguments())
	if query != "" {
		x.runSearch(log, upd, passport, query)
		return
	}

	state := repository.NewConvState(repository.StepSearchQuery, repository.FlowFreeText)
	if err := x.conv.SetState(log, upd.Identity, state); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.reply(log, upd, passport, "MsgSearchPrompt")
}

func (x *TelegramHandler) SearchQueryStep(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	if x.features.IsEnabledDefault(features.FeatureThrottler, true) && !x.throttler.IsAllowed(upd.Identity) {
		x.reply(log, upd, passport, "MsgThrottled")
		return
	}

	_ = x.conv.ClearState(log, upd.Identity)
	x.runSearch(log, upd, passport, strings.TrimSpace(upd.Text))
}

func (x *TelegramHandler) runSearch(log *tracing.Logger, upd *gate.Update, passport *gate.Passport, query string) {
	found, err := x.files.SearchFiles(log, query, searchResultsLimit)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	if len(found) == 0 {
		x.replyTd(log, upd, passport, "MsgSearchNoResults", map[string]interface{}{"Query": query})
		return
	}

	text := x.localization.LocalizeTd(passport.Language, "MsgSearchResults", map[string]interface{}{
		"Count": len(found),
		"Query": query,
	})
	x.diplomat.ReplyWithMarkup(log, upd, text, searchResultsKeyboard(found))
}

// FileCallback renders the file card with its context-sensitive action row.
func (x *TelegramHandler) FileCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	fileID, err := uuid.Parse(strings.TrimPrefix(upd.Data, "file:"))
	if err != nil {
		log.W("Malformed file callback", tracing.CallbackData, upd.Data)
		x.reply(log, upd, passport, "MsgFileNotFound")
		return
	}

	file, err := x.files.GetFileByID(log, fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		x.reply(log, upd, passport, "MsgFileNotFound")
		return
	}
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	saved, err := x.saved.IsSaved(log, passport.User.ID, file.ID)
	if err != nil {
		saved = false
	}

	tags := ""
	if file.Tags != nil {
		tags = *file.Tags
	}

	text := x.localization.LocalizeTd(passport.Language, "MsgFileCard", map[string]interface{}{
		"Title":     file.Title,
		"Size":      format.FileSize(file.FileSize),
		"Downloads": file.DownloadCount,
		"Tags":      tags,
	})
	x.diplomat.ReplyWithMarkup(log, upd, text, fileActionsKeyboard(x.localization, passport.Language, file.ID.String(), saved))
}
