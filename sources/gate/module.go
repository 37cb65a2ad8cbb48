package gate

import (
	"lingvovault/sources/configuration"
	"lingvovault/sources/metrics"
	"lingvovault/sources/repository"

	"go.uber.org/fx"
)

var Module = fx.Module("gate",
	fx.Provide(func(
		users *repository.UsersRepository,
		rights *repository.RightsRepository,
		channels *repository.ChannelsRepository,
		oracle MembershipOracle,
		config *configuration.Config,
		metrics *metrics.MetricsService,
	) *Chain {
		return NewChain(users, rights, channels, oracle, config, metrics)
	}),
)
