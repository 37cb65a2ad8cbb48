package telegram

import (
	"errors"
	"strings"

	"lingvovault/sources/gate"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"

	"github.com/google/uuid"
)

func (x *TelegramHandler) StatsCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	users, err := x.users.GetTotalUsersCount(log)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	blocked, err := x.users.GetBlockedUsersCount(log)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	files, err := x.files.GetTotalFilesCount(log)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	downloads, err := x.downloads.GetTotalDownloadsCount(log)
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	x.replyTd(log, upd, passport, "MsgStats", map[string]interface{}{
		"Users":     users,
		"Blocked":   blocked,
		"Files":     files,
		"Downloads": downloads,
	})
}

func (x *TelegramHandler) DeleteCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	fileID, err := uuid.Parse(strings.TrimSpace(upd.CommandArguments()))
	if err != nil {
		x.reply(log, upd, passport, "MsgDeleteUsage")
		return
	}

	err = x.files.DeleteFile(log, fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		x.reply(log, upd, passport, "MsgFileNotFound")
		return
	}
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	x.reply(log, upd, passport, "MsgFileDeleted")
}

func (x *TelegramHandler) UsersCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	var cmd UsersCmd
	kctx, err := x.ParseCmd(&cmd, upd.CommandArguments())
	if err != nil {
		x.reply(log, upd, passport, "MsgUsersUsage")
		return
	}

	action := strings.Fields(kctx.Command())[0]
	log = log.With(tracing.InternalCommand, action)

	var username, capability string
	switch action {
	case "block":
		username = cmd.Block.Username
	case "unblock":
		username = cmd.Unblock.Username
	case "promote":
		username = cmd.Promote.Username
	case "demote":
		username = cmd.Demote.Username
	case "grant":
		username, capability = cmd.Grant.Username, cmd.Grant.Capability
	case "revoke":
		username, capability = cmd.Revoke.Username, cmd.Revoke.Capability
	default:
		x.reply(log, upd, passport, "MsgUsersUsage")
		return
	}

	target, err := x.users.GetUserByName(log, strings.TrimPrefix(username, "@"))
	if errors.Is(err, repository.ErrUserNotFound) {
		x.reply(log, upd, passport, "MsgUserNotFound")
		return
	}
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	switch action {
	case "block":
		err = x.users.SetBlocked(log, target, true)
	case "unblock":
		err = x.users.SetBlocked(log, target, false)
	case "promote":
		err = x.users.SetAdmin(log, target, true)
	case "demote":
		err = x.users.SetAdmin(log, target, false)
	case "grant":
		_, err = x.rights.GrantCapability(log, target, capability)
	case "revoke":
		_, err = x.rights.RevokeCapability(log, target, capability)
	}

	if errors.Is(err, repository.ErrNothingChanged) {
		x.reply(log, upd, passport, "MsgNothingChanged")
		return
	}
	if errors.Is(err, repository.ErrCapabilityNotFound) {
		x.reply(log, upd, passport, "MsgUsersUsage")
		return
	}
	if err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}

	x.reply(log, upd, passport, "MsgUserUpdated")
}

// SetThumbCommand stores the transport file id served as the default cover
// for delivered files.
func (x *TelegramHandler) SetThumbCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	reference := strings.TrimSpace(upd.CommandArguments())
	if reference == "" {
		x.reply(log, upd, passport, "MsgThumbUsage")
		return
	}

	if err := x.settings.Set(log, repository.SettingDefaultThumbnail, reference); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.reply(log, upd, passport, "MsgThumbSet")
}

func (x *TelegramHandler) DelThumbCommand(log *tracing.Logger, upd *gate.Update, passport *gate.Passport) {
	if err := x.settings.Delete(log, repository.SettingDefaultThumbnail); err != nil {
		x.reply(log, upd, passport, "MsgTryAgain")
		return
	}
	x.reply(log, upd, passport, "MsgThumbCleared")
}
