package telegram

import (
	"net/http"

	"lingvovault/sources/configuration"
	"lingvovault/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func NewBotAPI(log *tracing.Logger, config *configuration.Config, client *http.Client) *tgbotapi.BotAPI {
	endpoint := config.Telegram.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	var bot *tgbotapi.BotAPI
	var err error

	if config.Telegram.UseProxy {
		bot, err = tgbotapi.NewBotAPIWithClient(config.Telegram.BotToken, endpoint, client)
	} else {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(config.Telegram.BotToken, endpoint)
	}

	if err != nil {
		log.F("Failed to initialize telegram bot", tracing.InnerError, err)
	}

	log.I("Telegram bot initialized", "api_endpoint", endpoint, "use_proxy", config.Telegram.UseProxy)
	return bot
}
