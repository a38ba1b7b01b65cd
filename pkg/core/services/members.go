package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/pkg/core/authz"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/db"
)

// NewMember holds the details of a member to add
type NewMember struct {
	Name  string
	Email string
	Role  model.Role
}

// ListUsers returns all members ordered by name. A store failure yields an empty list.
func ListUsers(ctx context.Context, users db.UserStore, logger *zap.Logger) []model.User {
	all, err := users.GetUsers(ctx)
	if err != nil {
		logger.Warn("Failed to list users", zap.Error(err))
		return []model.User{}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return strings.ToLower(all[i].Name) < strings.ToLower(all[j].Name)
	})
	return all
}

// GetUser returns the user, or nil if it does not exist or cannot be read
func GetUser(ctx context.Context, users db.UserStore, logger *zap.Logger, id string) *model.User {
	user, err := users.GetUser(ctx, id)
	if err != nil {
		if !isNotFound(err) {
			logger.Warn("Failed to get user", zap.String("user_id", id), zap.Error(err))
		}
		return nil
	}
	return user
}

// AddMember provisions an identity for a new member and writes their user document under its uid
func AddMember(
	ctx context.Context,
	users db.UserStore,
	provisioner Provisioner,
	logger *zap.Logger,
	actor *model.User,
	input NewMember,
) (*model.User, error) {
	if err := authz.Require(actor, authz.ManageMembers); err != nil {
		return nil, err
	}

	if input.Role == "" {
		input.Role = model.RoleMember
	}
	user := &model.User{
		Name:   strings.TrimSpace(input.Name),
		Email:  strings.TrimSpace(input.Email),
		Role:   input.Role,
		Avatar: AvatarPlaceholder(input.Name),
	}
	if err := model.Validate(user); err != nil {
		return nil, err
	}

	logger.Debug("Provisioning identity", zap.String("email", user.Email))
	uid, err := provisioner.CreateIdentity(ctx, user.Name, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to provision identity for %s: %w", user.Email, err)
	}
	user.ID = uid

	if err := users.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to insert member %s: %w", uid, err)
	}

	logger.Info("Member added",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))
	return user, nil
}

// UpdateMember changes a member's profile. Members may change their own name and avatar;
// everything else, including any role change, needs an Admin.
func UpdateMember(
	ctx context.Context,
	users db.UserStore,
	logger *zap.Logger,
	actor *model.User,
	userID string,
	update db.UserUpdate,
) error {
	selfEdit := actor != nil && actor.ID == userID && update.Role == nil && update.Email == nil
	if selfEdit {
		if err := authz.Require(actor, authz.EditOwnProfile); err != nil {
			return err
		}
	} else if err := authz.Require(actor, authz.ManageMembers); err != nil {
		return err
	}

	if update.IsEmpty() {
		return validationError("nothing to update")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return validationError("name cannot be empty")
	}
	if update.Email != nil {
		if err := model.ValidateEmail(*update.Email); err != nil {
			return err
		}
	}
	if update.Role != nil && !update.Role.IsValid() {
		return validationError("unknown role %q", *update.Role)
	}

	if err := users.UpdateUser(ctx, userID, update); err != nil {
		return fmt.Errorf("failed to update member %s: %w", userID, err)
	}

	logger.Info("Member updated", zap.String("user_id", userID), zap.String("by", actor.ID))
	return nil
}

// DeleteMember removes the member's user document. Their authentication identity is left in place.
func DeleteMember(ctx context.Context, users db.UserStore, logger *zap.Logger, actor *model.User, userID string) error {
	if err := authz.Require(actor, authz.ManageMembers); err != nil {
		return err
	}
	if actor.ID == userID {
		return validationError("admins cannot delete themselves")
	}

	if err := users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete member %s: %w", userID, err)
	}

	logger.Info("Member deleted", zap.String("user_id", userID))
	return nil
}
