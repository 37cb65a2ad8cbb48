package repository

import (
	"context"
	"time"

	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DownloadsRepository struct {
	db *gorm.DB
}

func NewDownloadsRepository(db *gorm.DB) *DownloadsRepository {
	return &DownloadsRepository{db: db}
}

func (x *DownloadsRepository) RecordDownload(logger *tracing.Logger, userID, fileID uuid.UUID) error {
	defer tracing.ProfilePoint(logger, "Downloads record completed", "repository.downloads.record", "file_id", fileID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	row := &entities.Download{UserID: userID, FileID: fileID}
	if err := x.db.WithContext(ctx).Create(row).Error; err != nil {
		logger.E("Failed to record download", tracing.InnerError, err)
		return err
	}

	return nil
}

func (x *DownloadsRepository) GetTotalDownloadsCount(logger *tracing.Logger) (int64, error) {
	defer tracing.ProfilePoint(logger, "Downloads get total count completed", "repository.downloads.get.total.count")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var count int64
	if err := x.db.WithContext(ctx).Model(&entities.Download{}).Count(&count).Error; err != nil {
		logger.E("Failed to count downloads", tracing.InnerError, err)
		return 0, err
	}

	return count, nil
}
