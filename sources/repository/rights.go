package repository

import (
	"errors"
	"slices"
	"strings"

	"lingvovault/sources/persistence/entities"
	"lingvovault/sources/platform"
	"lingvovault/sources/tracing"
)

var ErrNothingChanged = errors.New("nothing changed")
var ErrCapabilityNotFound = errors.New("capability not found")

const (
	CapabilityManageFiles     = "manage_files"
	CapabilityManageUsers     = "manage_users"
	CapabilityManageChannels  = "manage_channels"
	CapabilityManageBroadcast = "manage_broadcast"
	CapabilityViewStats       = "view_stats"
)

var AvailableCapabilities = []string{
	CapabilityManageFiles,
	CapabilityManageUsers,
	CapabilityManageChannels,
	CapabilityManageBroadcast,
	CapabilityViewStats,
}

type RightsRepository struct {
	users *UsersRepository
}

func NewRightsRepository(users *UsersRepository) *RightsRepository {
	return &RightsRepository{users: users}
}

// HasCapability requires the admin flag plus the named capability.
// Blocked users are always denied regardless of grants.
func (x *RightsRepository) HasCapability(logger *tracing.Logger, user *entities.User, scope string) bool {
	defer tracing.ProfilePoint(logger, "Rights has capability completed", "repository.rights.has.capability", "user_id", user.UserID, "scope", scope)()

	if platform.BoolValue(user.IsBlocked, false) {
		logger.E("User is blocked, fallback to denied")
		return false
	}

	if !platform.BoolValue(user.IsAdmin, false) {
		logger.W("User is not an admin", tracing.Scope, scope)
		return false
	}

	scope = strings.ToLower(strings.TrimSpace(scope))
	for _, grant := range user.Permissions {
		if strings.ToLower(strings.TrimSpace(grant)) == scope {
			return true
		}
	}

	logger.W("User has no capability", tracing.Scope, scope)
	return false
}

func (x *RightsRepository) GrantCapability(logger *tracing.Logger, user *entities.User, scope string) (*entities.User, error) {
	defer tracing.ProfilePoint(logger, "Rights grant capability completed", "repository.rights.grant.capability", "user_id", user.UserID, "scope", scope)()

	if !slices.Contains(AvailableCapabilities, scope) {
		logger.E("Capability not found", tracing.Scope, scope)
		return nil, ErrCapabilityNotFound
	}

	if slices.Contains(user.Permissions, scope) {
		logger.E("Capability already granted", tracing.Scope, scope)
		return nil, ErrNothingChanged
	}

	user.Permissions = append(user.Permissions, scope)
	return x.users.UpdateUser(logger, user)
}

func (x *RightsRepository) RevokeCapability(logger *tracing.Logger, user *entities.User, scope string) (*entities.User, error) {
	defer tracing.ProfilePoint(logger, "Rights revoke capability completed", "repository.rights.revoke.capability", "user_id", user.UserID, "scope", scope)()

	if !slices.Contains(AvailableCapabilities, scope) {
		logger.E("Capability not found", tracing.Scope, scope)
		return nil, ErrCapabilityNotFound
	}

	if !slices.Contains(user.Permissions, scope) {
		logger.E("Capability can't be revoked, because it's not present", tracing.Scope, scope)
		return nil, ErrNothingChanged
	}

	user.Permissions = slices.DeleteFunc(user.Permissions, func(grant string) bool {
		return strings.ToLower(strings.TrimSpace(grant)) == scope
	})

	return x.users.UpdateUser(logger, user)
}
