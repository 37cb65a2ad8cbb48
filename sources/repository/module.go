package repository

import "go.uber.org/fx"

var Module = fx.Module("repository",
	fx.Provide(
		NewUsersRepository,
		NewRightsRepository,
		NewSettingsRepository,
		NewChannelsRepository,
		NewFilesRepository,
		NewSavedRepository,
		NewDownloadsRepository,
		NewBroadcastRepository,
		NewConvStateRepository,
	),
)
