package repository

import (
	"context"
	"errors"
	"time"

	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SavedRepository struct {
	db *gorm.DB
}

func NewSavedRepository(db *gorm.DB) *SavedRepository {
	return &SavedRepository{db: db}
}

func (x *SavedRepository) SaveForUser(logger *tracing.Logger, userID, fileID uuid.UUID) error {
	defer tracing.ProfilePoint(logger, "Saved save for user completed", "repository.saved.save", "file_id", fileID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	entry := &entities.SavedFile{UserID: userID, FileID: fileID}
	err := x.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
	if err != nil {
		logger.E("Failed to save file for user", tracing.InnerError, err)
		return err
	}

	logger.I("File saved for user")
	return nil
}

func (x *SavedRepository) RemoveForUser(logger *tracing.Logger, userID, fileID uuid.UUID) error {
	defer tracing.ProfilePoint(logger, "Saved remove for user completed", "repository.saved.remove", "file_id", fileID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).Where("user_id = ? AND file_id = ?", userID, fileID).
		Delete(&entities.SavedFile{}).Error
	if err != nil {
		logger.E("Failed to remove saved file", tracing.InnerError, err)
		return err
	}

	return nil
}

func (x *SavedRepository) ListForUser(logger *tracing.Logger, userID uuid.UUID, offset, limit int) ([]entities.SavedFile, error) {
	defer tracing.ProfilePoint(logger, "Saved list for user completed", "repository.saved.list")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var entries []entities.SavedFile
	err := x.db.WithContext(ctx).Preload("File").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	if err != nil {
		logger.E("Failed to list saved files", tracing.InnerError, err)
		return nil, err
	}

	return entries, nil
}

func (x *SavedRepository) CountForUser(logger *tracing.Logger, userID uuid.UUID) (int64, error) {
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var count int64
	err := x.db.WithContext(ctx).Model(&entities.SavedFile{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		logger.E("Failed to count saved files", tracing.InnerError, err)
		return 0, err
	}

	return count, nil
}

func (x *SavedRepository) IsSaved(logger *tracing.Logger, userID, fileID uuid.UUID) (bool, error) {
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var count int64
	err := x.db.WithContext(ctx).Model(&entities.SavedFile{}).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		Count(&count).Error
	if err != nil {
		logger.E("Failed to check saved file", tracing.InnerError, err)
		return false, err
	}

	return count > 0, nil
}

var ErrSavedNotFound = errors.New("saved entry not found")
