package telegram

import (
	"lingvovault/sources/configuration"
	"lingvovault/sources/gate"
	"lingvovault/sources/metrics"
	"lingvovault/sources/texting/transform"
	"lingvovault/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Diplomat owns every outbound interaction with the transport: text replies,
// file delivery, callback acknowledgements. Long texts go out in chunks.
type Diplomat struct {
	bot     *tgbotapi.BotAPI
	config  *configuration.Config
	metrics *metrics.MetricsService
}

func NewDiplomat(bot *tgbotapi.BotAPI, config *configuration.Config, metrics *metrics.MetricsService) *Diplomat {
	return &Diplomat{bot: bot, config: config, metrics: metrics}
}

func (x *Diplomat) Reply(logger *tracing.Logger, upd *gate.Update, text string) {
	defer tracing.ProfilePoint(logger, "Diplomat reply completed", "diplomat.reply")()

	for _, chunk := range transform.Chunks(text, x.config.Telegram.DiplomatChunkSize) {
		chattable := tgbotapi.NewMessage(upd.ChatID, chunk)
		if upd.Message != nil {
			chattable.ReplyToMessageID = upd.Message.MessageID
		}

		if _, err := x.bot.Send(chattable); err != nil {
			logger.E("Message chunk sending error", tracing.InnerError, err)
			x.metrics.RecordMessageSent("error")
			return
		}
		x.metrics.RecordMessageSent("success")
	}
}

func (x *Diplomat) ReplyWithMarkup(logger *tracing.Logger, upd *gate.Update, text string, markup interface{}) {
	defer tracing.ProfilePoint(logger, "Diplomat reply with markup completed", "diplomat.reply_markup")()

	chunks := transform.Chunks(text, x.config.Telegram.DiplomatChunkSize)
	for i, chunk := range chunks {
		chattable := tgbotapi.NewMessage(upd.ChatID, chunk)
		if i == len(chunks)-1 {
			chattable.ReplyMarkup = markup
		}

		if _, err := x.bot.Send(chattable); err != nil {
			logger.E("Message chunk sending error", tracing.InnerError, err)
			x.metrics.RecordMessageSent("error")
			return
		}
		x.metrics.RecordMessageSent("success")
	}
}

func (x *Diplomat) SendText(logger *tracing.Logger, chatID int64, text string) error {
	defer tracing.ProfilePoint(logger, "Diplomat send text completed", "diplomat.send_text")()

	for _, chunk := range transform.Chunks(text, x.config.Telegram.DiplomatChunkSize) {
		msg := tgbotapi.NewMessage(chatID, chunk)

		if _, err := x.bot.Send(msg); err != nil {
			logger.E("Message chunk sending error", tracing.InnerError, err)
			x.metrics.RecordMessageSent("error")
			return err
		}
		x.metrics.RecordMessageSent("success")
	}
	return nil
}

// SendFile delivers a stored file by its transport file id. The kind decides
// the send method so audio and video keep their native players.
func (x *Diplomat) SendFile(logger *tracing.Logger, chatID int64, kind string, fileID string, caption string) error {
	defer tracing.ProfilePoint(logger, "Diplomat send file completed", "diplomat.send_file", "kind", kind)()

	var chattable tgbotapi.Chattable
	switch kind {
	case "audio":
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FileID(fileID))
		audio.Caption = caption
		chattable = audio
	case "video":
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
		video.Caption = caption
		chattable = video
	default:
		document := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
		document.Caption = caption
		chattable = document
	}

	if _, err := x.bot.Send(chattable); err != nil {
		logger.E("File sending error", tracing.InnerError, err)
		x.metrics.RecordMessageSent("error")
		return err
	}

	x.metrics.RecordMessageSent("success")
	return nil
}

// AnswerCallback acknowledges a callback press. Called eagerly before any
// slow work; the token expires in seconds while handlers may take longer.
func (x *Diplomat) AnswerCallback(logger *tracing.Logger, callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := x.bot.Request(callback); err != nil {
		logger.W("Failed to answer callback", tracing.InnerError, err)
	}
}

// ResolveChat looks a chat up by numeric id or username. Used when an admin
// points at a channel by reference instead of a forwarded post.
func (x *Diplomat) ResolveChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error) {
	return x.bot.GetChat(config)
}

// PublishCommands installs a per-chat command menu.
func (x *Diplomat) PublishCommands(logger *tracing.Logger, chatID int64, commands []tgbotapi.BotCommand) {
	scope := tgbotapi.NewBotCommandScopeChat(chatID)
	if _, err := x.bot.Request(tgbotapi.NewSetMyCommandsWithScope(scope, commands...)); err != nil {
		logger.W("Failed to publish command menu", tracing.InnerError, err, tracing.ChatId, chatID)
	}
}

func (x *Diplomat) RemoveMarkup(logger *tracing.Logger, chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := x.bot.Request(edit); err != nil {
		logger.W("Failed to remove reply markup", tracing.InnerError, err)
	}
}

func (x *Diplomat) SendBroadcastMessage(logger *tracing.Logger, chatID int64, text string) error {
	defer tracing.ProfilePoint(logger, "Diplomat send broadcast message completed", "diplomat.send_broadcast_message")()

	for _, chunk := range transform.Chunks(text, x.config.Telegram.DiplomatChunkSize) {
		msg := tgbotapi.NewMessage(chatID, chunk)

		if _, err := x.bot.Send(msg); err != nil {
			logger.E("Broadcast message chunk sending error", tracing.InnerError, err)
			x.metrics.RecordMessageSent("error")
			return err
		}
		x.metrics.RecordMessageSent("success")
	}
	return nil
}
