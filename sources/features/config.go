package features

import (
	"lingvovault/sources/platform"
)

type FeatureConfig struct {
	Disabled          bool
	UnleashAPIURL     string
	UnleashInstanceID string
	UnleashAppName    string
	RefreshInterval   int
}

func NewFeatureConfig() *FeatureConfig {
	return &FeatureConfig{
		Disabled:          platform.GetAsBool("UNLEASH_DISABLED", false),
		UnleashAPIURL:     platform.Get("UNLEASH_API_URL", "http://lingvovault-unleash:4242/api/"),
		UnleashInstanceID: platform.Get("UNLEASH_INSTANCE_ID", "lingvovault"),
		UnleashAppName:    "lingvovault",
		RefreshInterval:   platform.GetAsInt("UNLEASH_REFRESH_INTERVAL", 5),
	}
}
