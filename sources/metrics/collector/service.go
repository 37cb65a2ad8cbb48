package collector

import (
	"context"
	"time"

	"lingvovault/sources/metrics"
	"lingvovault/sources/repository"
	"lingvovault/sources/tracing"

	"go.uber.org/fx"
)

type StatsCollector struct {
	log       *tracing.Logger
	metrics   *metrics.MetricsService
	users     *repository.UsersRepository
	files     *repository.FilesRepository
	downloads *repository.DownloadsRepository
}

func NewStatsCollector(
	lc fx.Lifecycle,
	log *tracing.Logger,
	metrics *metrics.MetricsService,
	users *repository.UsersRepository,
	files *repository.FilesRepository,
	downloads *repository.DownloadsRepository,
) *StatsCollector {
	s := &StatsCollector{
		log:       log,
		metrics:   metrics,
		users:     users,
		files:     files,
		downloads: downloads,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.start()
			return nil
		},
	})

	return s
}

func (s *StatsCollector) start() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	s.collectStats()

	for range ticker.C {
		s.collectStats()
	}
}

func (s *StatsCollector) collectStats() {
	if count, err := s.users.GetTotalUsersCount(s.log); err == nil {
		s.metrics.SetTotalUsers(float64(count))
	} else {
		s.log.E("Failed to collect total users stats", tracing.InnerError, err)
	}

	if count, err := s.users.GetBlockedUsersCount(s.log); err == nil {
		s.metrics.SetBlockedUsers(float64(count))
	} else {
		s.log.E("Failed to collect blocked users stats", tracing.InnerError, err)
	}

	if count, err := s.files.GetTotalFilesCount(s.log); err == nil {
		s.metrics.SetTotalFiles(float64(count))
	} else {
		s.log.E("Failed to collect total files stats", tracing.InnerError, err)
	}

	if count, err := s.downloads.GetTotalDownloadsCount(s.log); err == nil {
		s.metrics.SetTotalDownloads(float64(count))
	} else {
		s.log.E("Failed to collect total downloads stats", tracing.InnerError, err)
	}
}
