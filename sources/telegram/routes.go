package telegram

import (
	"lingvovault/sources/gate"
	"lingvovault/sources/localization"
	"lingvovault/sources/metrics"
	"lingvovault/sources/platform"
	"lingvovault/sources/repository"
)

// BuildRouter binds every route to its handler. Command registration order is
// match order; the capability column is what the permission stage checks after
// the route matches.
func BuildRouter(
	chain *gate.Chain,
	conv *repository.ConvStateRepository,
	diplomat *Diplomat,
	loc *localization.LocalizationManager,
	metrics *metrics.MetricsService,
	handler *TelegramHandler,
) *Router {
	router := NewRouter(chain, conv, diplomat, loc, metrics)

	router.Command("start", "", "", handler.StartCommand)
	router.Command("help", "BtnHelp", "", handler.HelpCommand)
	router.Command("search", "BtnSearch", "", handler.SearchCommand)
	router.Command("saved", "BtnMyFiles", "", handler.SavedCommand)
	router.Command("lang", "BtnLanguage", "", handler.LanguageCommand)
	router.Command("cancel", "", "", handler.CancelCommand)

	router.Command("upload", "", repository.CapabilityManageFiles, handler.UploadCommand)
	router.Command("delete", "", repository.CapabilityManageFiles, handler.DeleteCommand)
	router.Command("setthumb", "", repository.CapabilityManageFiles, handler.SetThumbCommand)
	router.Command("delthumb", "", repository.CapabilityManageFiles, handler.DelThumbCommand)
	router.Command("stats", "", repository.CapabilityViewStats, handler.StatsCommand)
	router.Command("users", "", repository.CapabilityManageUsers, handler.UsersCommand)
	router.Command("fsub", "", repository.CapabilityManageChannels, handler.FsubCommand)
	router.Command("broadcast", "", repository.CapabilityManageBroadcast, handler.BroadcastCommand)

	router.State(repository.StepSearchQuery,
		[]platform.ContentKind{platform.ContentText}, "MsgAwaitingText", handler.SearchQueryStep)
	router.State(repository.StepUploadFile,
		[]platform.ContentKind{platform.ContentDocument, platform.ContentAudio, platform.ContentVideo}, "MsgAwaitingFile", handler.UploadFileStep)
	router.State(repository.StepUploadTitle,
		[]platform.ContentKind{platform.ContentText}, "MsgAwaitingText", handler.UploadTitleStep)
	router.State(repository.StepUploadTags,
		[]platform.ContentKind{platform.ContentText}, "MsgAwaitingText", handler.UploadTagsStep)
	router.State(repository.StepFsubChannel,
		[]platform.ContentKind{platform.ContentText, platform.ContentForward}, "MsgFsubAddPrompt", handler.FsubChannelStep)
	router.State(repository.StepBroadcastText,
		[]platform.ContentKind{platform.ContentText}, "MsgAwaitingText", handler.BroadcastTextStep)

	router.Callback(gate.ConfirmJoinedAction, "", handler.ConfirmJoinedCallback)
	router.Callback("lang", "", handler.LanguageCallback)
	router.Callback("file", "", handler.FileCallback)
	router.Callback("download", "", handler.DownloadCallback)
	router.Callback("save", "", handler.SaveCallback)
	router.Callback("unsave", "", handler.UnsaveCallback)
	router.Callback("saved_page", "", handler.SavedPageCallback)
	router.Callback("remove_fsub", repository.CapabilityManageChannels, handler.RemoveFsubCallback)
	router.Callback("broadcast_send", repository.CapabilityManageBroadcast, handler.BroadcastSendCallback)
	router.Callback("broadcast_cancel", repository.CapabilityManageBroadcast, handler.BroadcastCancelCallback)

	router.Fallback(handler.MenuFallback)

	return router
}
