package main

import (
	"context"

	"lingvovault/sources/configuration"
	"lingvovault/sources/external"
	"lingvovault/sources/features"
	"lingvovault/sources/gate"
	"lingvovault/sources/localization"
	"lingvovault/sources/metrics"
	"lingvovault/sources/metrics/collector"
	"lingvovault/sources/network"
	"lingvovault/sources/persistence"
	"lingvovault/sources/repository"
	"lingvovault/sources/telegram"
	"lingvovault/sources/throttler"
	"lingvovault/sources/tracing"

	"go.uber.org/fx"
)

var (
	version   = "0.0.0"
	buildTime = "1970-01-01"
)

func main() {
	fx.New(
		tracing.Module,
		configuration.Module,
		external.Module,
		network.Module,
		persistence.Module,
		repository.Module,
		metrics.Module,
		collector.Module,
		features.Module,
		throttler.Module,
		localization.Module,
		gate.Module,
		telegram.Module,

		fx.Invoke(func(lc fx.Lifecycle, log *tracing.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.I("Lingvo Vault started successfully", "version", version, "build_time", buildTime)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.I("Lingvo Vault stopped", "version", version, "build_time", buildTime)
					return nil
				},
			})
		}),
	).Run()
}
