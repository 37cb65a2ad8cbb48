package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidUsername = errors.New("invalid username")
)

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

func (x *UsersRepository) CreateUser(logger *tracing.Logger, euid int64, uname *string, ufullname *string, language string) (*entities.User, error) {
	defer tracing.ProfilePoint(logger, "Users create user completed", "repository.users.create.user", "user_id", euid)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	user := &entities.User{
		UserID:    euid,
		Username:  uname,
		Fullname:  ufullname,
		Language:  language,
		IsBlocked: platform.BoolPtr(false),
		IsAdmin:   platform.BoolPtr(false),
	}

	if err := x.db.WithContext(ctx).Create(user).Error; err != nil {
		logger.E("Failed to create user", tracing.InnerError, err)
		return nil, err
	}

	logger.I("Created user")
	return user, nil
}

// GetUserByEid reads the registry record for a sender identity. The read is
// retried once on a transient failure: registry reads happen on every update
// and a single hiccup must not turn into a user-visible error.
func (x *UsersRepository) GetUserByEid(logger *tracing.Logger, euid int64) (*entities.User, error) {
	defer tracing.ProfilePoint(logger, "Users get user by eid completed", "repository.users.get.user.by.eid", "user_id", euid)()

	user, err := x.getUserByEid(euid)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		logger.W("Registry read failed, retrying once", tracing.InnerError, err)
		user, err = x.getUserByEid(euid)
	}

	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.W("User not found")
			return nil, ErrUserNotFound
		}
		logger.E("Failed to get user", tracing.InnerError, err)
		return nil, err
	}

	logger.D("User fetched")
	return user, nil
}

func (x *UsersRepository) getUserByEid(euid int64) (*entities.User, error) {
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var user entities.User
	err := x.db.WithContext(ctx).Where("user_id = ?", euid).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (x *UsersRepository) GetUserByName(logger *tracing.Logger, uname string) (*entities.User, error) {
	defer tracing.ProfilePoint(logger, "Users get user by name completed", "repository.users.get.user.by.name", "username", uname)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	uname = strings.TrimSpace(strings.TrimPrefix(uname, "@"))
	if uname == "" {
		return nil, ErrInvalidUsername
	}

	var user entities.User
	err := x.db.WithContext(ctx).Where("username = ?", uname).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.W("User not found when expected")
			return nil, ErrUserNotFound
		}
		logger.E("Failed to get user", tracing.InnerError, err)
		return nil, err
	}

	logger.I("User fetched")
	return &user, nil
}

func (x *UsersRepository) UpdateUser(logger *tracing.Logger, user *entities.User) (*entities.User, error) {
	defer tracing.ProfilePoint(logger, "Users update user completed", "repository.users.update.user", "user_id", user.UserID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).Model(&entities.User{}).Where("user_id = ?", user.UserID).
		Select("Username", "Fullname", "Language", "IsBlocked", "IsAdmin", "Permissions").
		Updates(user).Error
	if err != nil {
		logger.E("Failed to update user", tracing.InnerError, err)
		return nil, err
	}

	logger.I("User updated")
	return user, nil
}

func (x *UsersRepository) SetLanguage(logger *tracing.Logger, user *entities.User, language string) error {
	defer tracing.ProfilePoint(logger, "Users set language completed", "repository.users.set.language", "user_id", user.UserID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).Model(&entities.User{}).Where("user_id = ?", user.UserID).
		Update("language", language).Error
	if err != nil {
		logger.E("Failed to set user language", tracing.InnerError, err)
		return err
	}

	user.Language = language
	return nil
}

func (x *UsersRepository) SetBlocked(logger *tracing.Logger, user *entities.User, blocked bool) error {
	defer tracing.ProfilePoint(logger, "Users set blocked completed", "repository.users.set.blocked", "user_id", user.UserID, "blocked", blocked)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).Model(&entities.User{}).Where("user_id = ?", user.UserID).
		Update("is_blocked", blocked).Error
	if err != nil {
		logger.E("Failed to set user blocked flag", tracing.InnerError, err)
		return err
	}

	user.IsBlocked = platform.BoolPtr(blocked)
	return nil
}

func (x *UsersRepository) SetAdmin(logger *tracing.Logger, user *entities.User, admin bool) error {
	defer tracing.ProfilePoint(logger, "Users set admin completed", "repository.users.set.admin", "user_id", user.UserID, "admin", admin)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).Model(&entities.User{}).Where("user_id = ?", user.UserID).
		Update("is_admin", admin).Error
	if err != nil {
		logger.E("Failed to set user admin flag", tracing.InnerError, err)
		return err
	}

	user.IsAdmin = platform.BoolPtr(admin)
	return nil
}

// ListReachableIDs returns the transport ids of every non-blocked user,
// insertion order. Broadcast fan-out iterates this snapshot.
func (x *UsersRepository) ListReachableIDs(logger *tracing.Logger) ([]int64, error) {
	defer tracing.ProfilePoint(logger, "Users list reachable ids completed", "repository.users.list.reachable")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 60*time.Second)
	defer cancel()

	var ids []int64
	err := x.db.WithContext(ctx).Model(&entities.User{}).
		Where("is_blocked = ?", false).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		logger.E("Failed to list reachable users", tracing.InnerError, err)
		return nil, err
	}

	return ids, nil
}

func (x *UsersRepository) GetTotalUsersCount(logger *tracing.Logger) (int64, error) {
	defer tracing.ProfilePoint(logger, "Users get total users count completed", "repository.users.get.total.count")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var count int64
	if err := x.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error; err != nil {
		logger.E("Failed to count total users", tracing.InnerError, err)
		return 0, err
	}

	return count, nil
}

func (x *UsersRepository) GetBlockedUsersCount(logger *tracing.Logger) (int64, error) {
	defer tracing.ProfilePoint(logger, "Users get blocked users count completed", "repository.users.get.blocked.count")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var count int64
	if err := x.db.WithContext(ctx).Model(&entities.User{}).Where("is_blocked = ?", true).Count(&count).Error; err != nil {
		logger.E("Failed to count blocked users", tracing.InnerError, err)
		return 0, err
	}

	return count, nil
}
