package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrFileNotFound = errors.New("file not found")
var ErrFileExists = errors.New("file already exists")

type FilesRepository struct {
	db *gorm.DB
}

func NewFilesRepository(db *gorm.DB) *FilesRepository {
	return &FilesRepository{db: db}
}

func (x *FilesRepository) CreateFile(logger *tracing.Logger, file *entities.File) (*entities.File, error) {
	defer tracing.ProfilePoint(logger, "Files create completed", "repository.files.create", "title", file.Title)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	if err := x.db.WithContext(ctx).Create(file).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.W("File already exists", "telegram_id", file.TelegramID)
			return nil, ErrFileExists
		}
		logger.E("Failed to create file", tracing.InnerError, err)
		return nil, err
	}

	logger.I("File created", "file_id", file.ID)
	return file, nil
}

func (x *FilesRepository) GetFileByID(logger *tracing.Logger, id uuid.UUID) (*entities.File, error) {
	defer tracing.ProfilePoint(logger, "Files get by id completed", "repository.files.get.by.id", "file_id", id)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var file entities.File
	err := x.db.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.W("File not found")
			return nil, ErrFileNotFound
		}
		logger.E("Failed to get file", tracing.InnerError, err)
		return nil, err
	}

	return &file, nil
}

// SearchFiles matches the query against title, tags and file name,
// case-insensitive, newest first.
func (x *FilesRepository) SearchFiles(logger *tracing.Logger, query string, limit int) ([]entities.File, error) {
	defer tracing.ProfilePoint(logger, "Files search completed", "repository.files.search", "query", query)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	pattern := "%" + strings.TrimSpace(query) + "%"

	var files []entities.File
	err := x.db.WithContext(ctx).
		Where("title ILIKE ? OR tags ILIKE ? OR file_name ILIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&files).Error
	if err != nil {
		logger.E("Failed to search files", tracing.InnerError, err)
		return nil, err
	}

	logger.I("Files searched", "found", len(files))
	return files, nil
}

func (x *FilesRepository) DeleteFile(logger *tracing.Logger, id uuid.UUID) error {
	defer tracing.ProfilePoint(logger, "Files delete completed", "repository.files.delete", "file_id", id)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	result := x.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.File{})
	if result.Error != nil {
		logger.E("Failed to delete file", tracing.InnerError, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFileNotFound
	}

	logger.I("File deleted")
	return nil
}

func (x *FilesRepository) IncrementDownloadCount(logger *tracing.Logger, id uuid.UUID) error {
	defer tracing.ProfilePoint(logger, "Files increment download count completed", "repository.files.increment.downloads", "file_id", id)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).Model(&entities.File{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
	if err != nil {
		logger.E("Failed to increment download count", tracing.InnerError, err)
		return err
	}

	return nil
}

func (x *FilesRepository) GetTotalFilesCount(logger *tracing.Logger) (int64, error) {
	defer tracing.ProfilePoint(logger, "Files get total count completed", "repository.files.get.total.count")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var count int64
	if err := x.db.WithContext(ctx).Model(&entities.File{}).Count(&count).Error; err != nil {
		logger.E("Failed to count files", tracing.InnerError, err)
		return 0, err
	}

	return count, nil
}
