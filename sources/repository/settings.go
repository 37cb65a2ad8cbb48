package repository

import (
	"context"
	"errors"
	"time"

	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well-known settings keys.
const (
	SettingRequiredChannels = "required_channels"
	SettingDefaultThumbnail = "default_thumbnail"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (x *SettingsRepository) Get(logger *tracing.Logger, key string) (*string, error) {
	defer tracing.ProfilePoint(logger, "Settings get completed", "repository.settings.get", "key", key)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 10*time.Second)
	defer cancel()

	var setting entities.Setting
	err := x.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.E("Failed to get setting", tracing.InnerError, err)
		return nil, err
	}

	return setting.Value, nil
}

func (x *SettingsRepository) Set(logger *tracing.Logger, key string, value string) error {
	defer tracing.ProfilePoint(logger, "Settings set completed", "repository.settings.set", "key", key)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 10*time.Second)
	defer cancel()

	setting := &entities.Setting{Key: key, Value: &value}
	err := x.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(setting).Error
	if err != nil {
		logger.E("Failed to set setting", tracing.InnerError, err)
		return err
	}

	logger.I("Setting updated", "key", key)
	return nil
}

func (x *SettingsRepository) Delete(logger *tracing.Logger, key string) error {
	defer tracing.ProfilePoint(logger, "Settings delete completed", "repository.settings.delete", "key", key)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 10*time.Second)
	defer cancel()

	if err := x.db.WithContext(ctx).Where("key = ?", key).Delete(&entities.Setting{}).Error; err != nil {
		logger.E("Failed to delete setting", tracing.InnerError, err)
		return err
	}

	return nil
}
