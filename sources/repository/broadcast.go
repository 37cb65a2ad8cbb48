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

type BroadcastRepository struct {
	db *gorm.DB
}

func NewBroadcastRepository(db *gorm.DB) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

func (x *BroadcastRepository) CreateBroadcast(logger *tracing.Logger, userID uuid.UUID, text string) (*entities.Broadcast, error) {
	defer tracing.ProfilePoint(logger, "Broadcast create completed", "repository.broadcast.create")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	broadcast := &entities.Broadcast{
		UserID: userID,
		Text:   text,
	}

	if err := x.db.WithContext(ctx).Create(broadcast).Error; err != nil {
		logger.E("Failed to create broadcast", tracing.InnerError, err)
		return nil, err
	}

	logger.I("Broadcast created", "broadcast_id", broadcast.ID)
	return broadcast, nil
}

func (x *BroadcastRepository) FinishBroadcast(logger *tracing.Logger, id uuid.UUID, sent, failed int64) error {
	defer tracing.ProfilePoint(logger, "Broadcast finish completed", "repository.broadcast.finish", "broadcast_id", id)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).Model(&entities.Broadcast{}).Where("id = ?", id).
		Updates(map[string]interface{}{"sent_count": sent, "failed_count": failed}).Error
	if err != nil {
		logger.E("Failed to finish broadcast", tracing.InnerError, err)
		return err
	}

	return nil
}
