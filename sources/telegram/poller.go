package telegram

import (
	"time"

	"lingvovault/sources/configuration"
	"lingvovault/sources/gate"
	"lingvovault/sources/metrics"
	"lingvovault/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Poller reads the long-poll stream and fans updates out into per-identity
// lanes. Updates from one identity run strictly in arrival order; different
// identities proceed concurrently.
type Poller struct {
	bot     *tgbotapi.BotAPI
	log     *tracing.Logger
	config  *configuration.Config
	router  *Router
	metrics *metrics.MetricsService
	lanes   *lanes
}

func NewPoller(bot *tgbotapi.BotAPI, log *tracing.Logger, config *configuration.Config, router *Router, metrics *metrics.MetricsService) *Poller {
	return &Poller{bot: bot, log: log, config: config, router: router, metrics: metrics, lanes: newLanes()}
}

func (x *Poller) Start() {
	update := tgbotapi.NewUpdate(0)
	update.Timeout = x.config.Telegram.PollerTimeout
	update.AllowedUpdates = x.config.Telegram.AllowedUpdates

	for incoming := range x.bot.GetUpdatesChan(update) {
		upd := x.viewOf(incoming)
		if upd == nil {
			x.metrics.RecordUpdateHandled("skipped")
			continue
		}

		log := x.log.With(
			tracing.UserId, upd.Identity,
			tracing.ChatId, upd.ChatID,
			tracing.UpdateKind, string(upd.Kind),
		)
		if upd.Message != nil {
			log = log.With(
				tracing.UserName, upd.Message.From.UserName,
				tracing.MessageId, upd.Message.MessageID,
				tracing.MessageDate, upd.Message.Date,
			)
		}
		if upd.Callback != nil {
			log = log.With(tracing.CallbackData, upd.Data)
		}

		x.lanes.enqueue(upd.Identity, func() {
			started := time.Now()
			x.router.Dispatch(log, upd)
			x.metrics.RecordUpdateProcessingDuration(time.Since(started))
			x.metrics.RecordUpdateHandled("success")
			log.I("Update handled")
		})
	}

	x.lanes.wait()
}

// viewOf narrows the raw update to the two kinds this bot processes. Updates
// without an identifiable sender are dropped.
func (x *Poller) viewOf(incoming tgbotapi.Update) *gate.Update {
	if msg := incoming.Message; msg != nil && msg.From != nil {
		return gate.FromMessage(msg)
	}
	if query := incoming.CallbackQuery; query != nil && query.From != nil {
		return gate.FromCallback(query)
	}
	return nil
}

func (x *Poller) Stop() {
	x.bot.StopReceivingUpdates()
}
