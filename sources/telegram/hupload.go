package telegram

import (
	"errors"
	"strconv"
	"strings"

	"lingvovault/sources/features"
	"lingvovault/sources/gate"
	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/platform"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"
)

func (x *TelegramHandler) UploadCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	if !x.features.IsEnabledDefault(features.FeatureUploads, true) {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	state := repository.NewConvState(repository.StepUploadFile, repository.FlowStructured)
	if err := x.conv.SetState(log, upd.Identity, state); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.reply(log, upd, passport, "MsgUploadPromptFile")
}

// UploadFileStep captures the attachment's transport identity and advances the
// flow to the title prompt.
func (x *TelegramHandler) UploadFileStep(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	state, err := x.conv.GetState(log, upd.Identity)
	if err != nil || state == nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	fileID, fileName, fileSize := attachmentOf(upd)
	if fileID == "" {
		x.reply(log, upd, passport, "MsgAwaitingFile")
		return
	}

	state.Step = repository.StepUploadTitle
	state.WithField("file_id", fileID).
		WithField("kind", string(upd.Content)).
		WithField("file_name", fileName).
		WithField("file_size", strconv.FormatInt(fileSize, 10))

	if err := x.conv.SetState(log, upd.Identity, state); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.reply(log, upd, passport, "MsgUploadPromptTitle")
}

func (x *TelegramHandler) UploadTitleStep(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	state, err := x.conv.GetState(log, upd.Identity)
	if err != nil || state == nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	title := strings.TrimSpace(upd.Text)
	if title == "" {
		x.reply(log, upd, passport, "MsgAwaitingText")
		return
	}

	state.Step = repository.StepUploadTags
	state.WithField("title", title)

	if err := x.conv.SetState(log, upd.Identity, state); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.reply(log, upd, passport, "MsgUploadPromptTags")
}

// UploadTagsStep completes the flow. A lone dash or /skip leaves tags empty.
func (x *TelegramHandler) UploadTagsStep(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	state, err := x.conv.GetState(log, upd.Identity)
	if err != nil || state == nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	var tags *string
	if raw := strings.TrimSpace(upd.Text); raw != "" && raw != "-" && raw != "/skip" {
		tags = platform.StrPtr(raw)
	}

	size, _ := strconv.ParseInt(state.Fields["file_size"], 10, 64)
	file := &entities.File{
		TelegramID: state.Fields["file_id"],
		Title:      state.Fields["title"],
		Kind:       state.Fields["kind"],
		Tags:       tags,
		FileSize:   size,
		CreatedBy:  &passport.User.ID,
	}
	if name := state.Fields["file_name"]; name != "" {
		file.FileName = platform.StrPtr(name)
	}

	created, err := x.files.CreateFile(log, file)
	if errors.Is(err, repository.ErrFileExists) {
		_ = x.conv.ClearState(log, upd.Identity)
		x.reply(log, upd, passport, "MsgUploadDuplicate")
		return
	}
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	_ = x.conv.ClearState(log, upd.Identity)
	x.replyTd(log, upd, passport, "MsgUploadDone", map[string]interface{}{"Title": created.Title})
}

func attachmentOf(upd *gate.Update) (fileID string, fileName string, fileSize int64) {
	msg := upd.Message
	if msg == nil {
		return "", "", 0
	}

	switch {
	case msg.Document != nil:
		return msg.Document.FileID, msg.Document.FileName, int64(msg.Document.FileSize)
	case msg.Audio != nil:
		return msg.Audio.FileID, msg.Audio.FileName, int64(msg.Audio.FileSize)
	case msg.Video != nil:
		return msg.Video.FileID, msg.Video.FileName, int64(msg.Video.FileSize)
	}
	return "", "", 0
}
