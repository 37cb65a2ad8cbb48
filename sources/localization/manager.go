package localization

import (
	"embed"
	"fmt"
	"sync"

	"lingvovault/sources/configuration"
	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localesFS embed.FS

// LocalizationManager resolves message texts by the subscriber's stored
// language. No detection: the language is whatever the user picked, with the
// configured default before the first pick.
type LocalizationManager struct {
	bundle  *i18n.Bundle
	config  *configuration.Config
	log     *tracing.Logger
	locbuff sync.Map
}

func NewLocalizationManager(config *configuration.Config, log *tracing.Logger) (*LocalizationManager, error) {
	bundle := i18n.NewBundle(language.Uzbek)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, lang := range config.Localization.SupportedLanguages {
		filename := fmt.Sprintf("locales/active.%s.toml", lang)

		data, err := localesFS.ReadFile(filename)
		if err != nil {
			log.E("Failed to read locale file", "filename", filename, tracing.InnerError, err)
			return nil, fmt.Errorf("failed to read locale file %s: %w", filename, err)
		}

		if _, err := bundle.ParseMessageFileBytes(data, filename); err != nil {
			log.E("Failed to parse locale file", "filename", filename, tracing.InnerError, err)
			return nil, fmt.Errorf("failed to parse locale file %s: %w", filename, err)
		}

		log.I("Loaded locale file", "filename", filename)
	}

	log.I("LocalizationManager initialized successfully")
	return &LocalizationManager{bundle: bundle, config: config, log: log}, nil
}

func (x *LocalizationManager) localizer(lang platform.Language) *i18n.Localizer {
	if cached, ok := x.locbuff.Load(lang); ok {
		return cached.(*i18n.Localizer)
	}

	localizer := i18n.NewLocalizer(x.bundle, lang, x.config.Localization.DefaultLanguage)
	x.locbuff.Store(lang, localizer)
	return localizer
}

func (x *LocalizationManager) Localize(lang platform.Language, messageID string) string {
	return x.LocalizeTd(lang, messageID, nil)
}

func (x *LocalizationManager) LocalizeTd(lang platform.Language, messageID string, templateData map[string]interface{}) string {
	msg, err := x.localizer(lang).Localize(&i18n.LocalizeConfig{MessageID: messageID, TemplateData: templateData})
	if err != nil {
		x.log.E("Failed to localize message", "message_id", messageID, tracing.InnerError, err)
		return messageID
	}

	return msg
}

// ButtonVariants returns the text of a button message in every supported
// language. The router uses it to recognize menu presses regardless of the
// locale the keyboard was rendered in.
func (x *LocalizationManager) ButtonVariants(messageID string) []string {
	variants := make([]string, 0, len(x.config.Localization.SupportedLanguages))
	for _, lang := range x.config.Localization.SupportedLanguages {
		variants = append(variants, x.Localize(lang, messageID))
	}
	return variants
}
