package throttler

import (
	"time"

	"lingvovault/sources/platform"
)

type ThrottlerConfig struct {
	Limit time.Duration
}

func NewThrottlerConfig() *ThrottlerConfig {
	return &ThrottlerConfig{Limit: platform.GetAsDuration("REQUEST_THROTTLE_LIMIT", "3s")}
}
