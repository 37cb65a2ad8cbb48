package telegram

import (
	"errors"
	"strconv"
	"strings"

	"lingvovault/sources/features"
	"lingvovault/sources/gate"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"

	"github.com/google/uuid"
)

const savedPageSize = 10

func (x *TelegramHandler) DownloadCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	fileID, err := uuid.Parse(strings.TrimPrefix(upd.Data, "download:"))
	if err != nil {
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

	if err := x.diplomat.SendFile(log, upd.ChatID, file.Kind, file.TelegramID, file.Title); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	// Delivery succeeded; the counters are best-effort after that.
	if err := x.files.IncrementDownloadCount(log, file.ID); err != nil {
		log.W("Failed to bump download count", tracing.InnerError, err, "file_id", file.ID)
	}
	if err := x.downloads.RecordDownload(log, passport.User.ID, file.ID); err != nil {
		log.W("Failed to record download", tracing.InnerError, err, "file_id", file.ID)
	}
	x.metrics.RecordFileDownloaded()
}

func (x *TelegramHandler) SaveCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	fileID, err := uuid.Parse(strings.TrimPrefix(upd.Data, "save:"))
	if err != nil {
		x.reply(log, upd, passport, "MsgFileNotFound")
		return
	}

	if _, err := x.files.GetFileByID(log, fileID); err != nil {
		x.reply(log, upd, passport, "MsgFileNotFound")
		return
	}

	if err := x.saved.SaveForUser(log, passport.User.ID, fileID); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.reply(log, upd, passport, "MsgFileSaved")
}

func (x *TelegramHandler) UnsaveCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	fileID, err := uuid.Parse(strings.TrimPrefix(upd.Data, "unsave:"))
	if err != nil {
		x.reply(log, upd, passport, "MsgFileNotFound")
		return
	}

	if err := x.saved.RemoveForUser(log, passport.User.ID, fileID); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.reply(log, upd, passport, "MsgFileRemovedFromSaved")
}

func (x *TelegramHandler) SavedCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	if !x.features.IsEnabledDefault(features.FeatureSavedList, true) {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.renderSavedPage(log, upd, passport, 0)
}

func (x *TelegramHandler) SavedPageCallback(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	page, err := strconv.Atoi(strings.TrimPrefix(upd.Data, "saved_page:"))
	if err != nil || page < 0 {
		page = 0
	}
	x.renderSavedPage(log, upd, passport, page)
}

func (x *TelegramHandler) renderSavedPage(log *tracing.Logger, upd *gate.Update, passport *gate.Passport, page int) {
	total, err := x.saved.CountForUser(log, passport.User.ID)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	if total == 0 {
		x.reply(log, upd, passport, "MsgSavedEmpty")
		return
	}

	entries, err := x.saved.ListForUser(log, passport.User.ID, page*savedPageSize, savedPageSize)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	hasNext := int64((page+1)*savedPageSize) < total
	text := x.localization.LocalizeTd(passport.Language, "MsgSavedHeader", map[string]interface{}{"Count": total})
	x.diplomat.ReplyWithMarkup(log, upd, text, savedListKeyboard(x.localization, passport.Language, entries, page, hasNext))
}
