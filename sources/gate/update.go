package gate

import (
	"strings"
	"time"

	"lingvovault/sources/platform"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Kind string

const (
	KindMessage  Kind = "message"
	KindCallback Kind = "callback"
)

// Update is the transport-neutral view of one inbound event. It is built once
// per received update and discarded after dispatch.
type Update struct {
	Identity   int64
	ChatID     int64
	Kind       Kind
	Content    platform.ContentKind
	Text       string
	Data       string
	ReceivedAt time.Time

	Message  *tgbotapi.Message
	Callback *tgbotapi.CallbackQuery
}

func FromMessage(msg *tgbotapi.Message) *Update {
	upd := &Update{
		Identity:   msg.From.ID,
		ChatID:     msg.Chat.ID,
		Kind:       KindMessage,
		Content:    contentOf(msg),
		Text:       messageText(msg),
		ReceivedAt: time.Unix(int64(msg.Date), 0),
		Message:    msg,
	}
	return upd
}

func FromCallback(query *tgbotapi.CallbackQuery) *Update {
	upd := &Update{
		Identity: query.From.ID,
		Kind:     KindCallback,
		Content:  platform.ContentCallback,
		Data:     query.Data,
		Callback: query,
	}
	if query.Message != nil {
		upd.ChatID = query.Message.Chat.ID
	}
	if upd.ReceivedAt.IsZero() {
		upd.ReceivedAt = time.Now()
	}
	return upd
}

func (u *Update) IsCommand() bool {
	return u.Kind == KindMessage && u.Message != nil && u.Message.IsCommand()
}

func (u *Update) Command() string {
	if !u.IsCommand() {
		return ""
	}
	return u.Message.Command()
}

func (u *Update) CommandArguments() string {
	if !u.IsCommand() {
		return ""
	}
	return u.Message.CommandArguments()
}

// IsConfirmJoined reports whether this update is the one callback action that
// exists to retry the subscription gate. It passes the subscription stage so
// its own handler can re-run the identical check and answer the user itself.
func (u *Update) IsConfirmJoined() bool {
	return u.Kind == KindCallback && u.Data == ConfirmJoinedAction
}

func contentOf(msg *tgbotapi.Message) platform.ContentKind {
	switch {
	case msg.ForwardFromChat != nil:
		return platform.ContentForward
	case msg.Document != nil:
		return platform.ContentDocument
	case msg.Audio != nil:
		return platform.ContentAudio
	case msg.Video != nil:
		return platform.ContentVideo
	default:
		return platform.ContentText
	}
}

func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return strings.TrimSpace(msg.Caption)
}
