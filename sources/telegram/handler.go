package telegram

import (
	"lingvovault/sources/configuration"
	"lingvovault/sources/features"
	"lingvovault/sources/gate"
	"lingvovault/sources/localization"
	"lingvovault/sources/metrics"
	"lingvovault/sources/platform"
	"lingvovault/sources/repository"
	"lingvovault/sources/texting"
	"lingvovault/sources/throttler"
	"lingvovault/sources/tracing"

	"github.com/alecthomas/kong"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messenger is everything the handlers send through. The diplomat implements
// it; tests substitute a recorder.
type messenger interface {
	courier
	RemoveMarkup(logger *tracing.Logger, chatID int64, messageID int)
	SendFile(logger *tracing.Logger, chatID int64, kind string, fileID string, caption string) error
	SendBroadcastMessage(logger *tracing.Logger, chatID int64, text string) error
	ResolveChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	PublishCommands(logger *tracing.Logger, chatID int64, commands []tgbotapi.BotCommand)
}

// settingsStore is the slice of the settings repository the thumbnail
// commands need.
type settingsStore interface {
	Set(logger *tracing.Logger, key string, value string) error
	Delete(logger *tracing.Logger, key string) error
}

type TelegramHandler struct {
	diplomat     messenger
	chain        *gate.Chain
	users        *repository.UsersRepository
	rights       *repository.RightsRepository
	files        *repository.FilesRepository
	saved        *repository.SavedRepository
	downloads    *repository.DownloadsRepository
	channels     *repository.ChannelsRepository
	broadcast    *repository.BroadcastRepository
	settings     settingsStore
	conv         *repository.ConvStateRepository
	throttler    *throttler.Throttler
	features     *features.FeatureManager
	localization *localization.LocalizationManager
	metrics      *metrics.MetricsService
	config       *configuration.Config
}

func NewTelegramHandler(
	diplomat *Diplomat,
	chain *gate.Chain,
	users *repository.UsersRepository,
	rights *repository.RightsRepository,
	files *repository.FilesRepository,
	saved *repository.SavedRepository,
	downloads *repository.DownloadsRepository,
	channels *repository.ChannelsRepository,
	broadcast *repository.BroadcastRepository,
	settings *repository.SettingsRepository,
	conv *repository.ConvStateRepository,
	throttler *throttler.Throttler,
	fm *features.FeatureManager,
	localization *localization.LocalizationManager,
	metrics *metrics.MetricsService,
	config *configuration.Config,
) *TelegramHandler {
	return &TelegramHandler{
		diplomat:     diplomat,
		chain:        chain,
		users:        users,
		rights:       rights,
		files:        files,
		saved:        saved,
		downloads:    downloads,
		channels:     channels,
		broadcast:    broadcast,
		settings:     settings,
		conv:         conv,
		throttler:    throttler,
		features:     fm,
		localization: localization,
		metrics:      metrics,
		config:       config,
	}
}

func (x *TelegramHandler) ParseCmd(cmd interface{}, args string) (*kong.Context, error) {
	parser, err := kong.New(cmd)
	if err != nil {
		return nil, err
	}
	return parser.Parse(texting.ParseCmdArgs(args))
}

func (x *TelegramHandler) reply(log *tracing.Logger, upd *gate.Update, passport *gate.Passport, messageID string) {
	x.diplomat.Reply(log, upd, x.localization.Localize(passport.Language, messageID))
}

func (x *TelegramHandler) replyTd(log *tracing.Logger, upd *gate.Update, passport *gate.Passport, messageID string, td map[string]interface{}) {
	x.diplomat.Reply(log, upd, x.localization.LocalizeTd(passport.Language, messageID, td))
}

func (x *TelegramHandler) isPrivileged(upd *gate.Update, passport *gate.Passport) bool {
	if upd.Identity == x.config.Gate.SuperuserID {
		return true
	}
	return platform.BoolValue(passport.User.IsAdmin, false)
}
