package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/pkg/core/authz"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/db"
	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// ErrAlreadySignedUp is returned when the user already holds a signup on the event
var ErrAlreadySignedUp = errors.New("user has already signed up for this event")

// SignUpResult describes a committed signup
type SignUpResult struct {
	EventID    string
	EventTitle string
	Role       model.VolunteerRole
	SignedUpAt time.Time
}

// SignUpStore defines the database operations needed for signing up
type SignUpStore interface {
	db.Transactor
	GetEvent(ctx context.Context, id string) (*model.Event, error)
}

// SignUp records userID against roleID on the event and stamps the user's lastSignedUpAt.
// Both writes happen in one transaction; the event and user are re-read inside it
// so a concurrent signup by the same user is rejected with ErrAlreadySignedUp.
// actor must be the user being signed up, or an Admin.
func SignUp(
	ctx context.Context,
	database db.Transactor,
	logger *zap.Logger,
	actor *model.User,
	eventID, userID, roleID string,
) (*SignUpResult, error) {
	if err := authz.Require(actor, authz.SignUp); err != nil {
		return nil, err
	}
	if actor.ID != userID && !authz.Can(actor, authz.ManageMembers) {
		return nil, fmt.Errorf("%w: only admins may sign up other members", authz.ErrForbidden)
	}

	logger.Debug("Signing up",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.String("role_id", roleID))

	var result *SignUpResult
	err := database.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		eventDoc, err := tx.Get(db.EventsCollection, eventID)
		if err != nil {
			return fmt.Errorf("failed to read event %s: %w", eventID, err)
		}
		if _, err := tx.Get(db.UsersCollection, userID); err != nil {
			return fmt.Errorf("failed to read user %s: %w", userID, err)
		}

		event := db.EventFromDocument(*eventDoc)
		role, ok := event.Role(roleID)
		if !ok {
			return validationError("event %s has no role %s", eventID, roleID)
		}
		if event.HasSignup(userID) {
			return ErrAlreadySignedUp
		}

		at := now()
		signups := append(event.Signups, model.Signup{UserID: userID, RoleID: roleID})

		if err := tx.Update(db.EventsCollection, eventID, docstore.Fields{"signups": db.SignupsValue(signups)}); err != nil {
			return fmt.Errorf("failed to add signup: %w", err)
		}
		if err := tx.Update(db.UsersCollection, userID, db.LastSignedUpFields(at)); err != nil {
			return fmt.Errorf("failed to stamp last signup: %w", err)
		}

		// Reset on every attempt since the backend may retry the function
		result = &SignUpResult{
			EventID:    eventID,
			EventTitle: event.Title,
			Role:       role,
			SignedUpAt: at,
		}
		return nil
	})
	if err != nil {
		logger.Warn("Sign up failed",
			zap.String("event_id", eventID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	logger.Info("Signed up",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.String("role", result.Role.Name))

	return result, nil
}

// SignUpFirstAvailable signs the user up for the first role listed on the event
func SignUpFirstAvailable(
	ctx context.Context,
	database SignUpStore,
	logger *zap.Logger,
	actor *model.User,
	eventID, userID string,
) (*SignUpResult, error) {
	event, err := database.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event %s: %w", eventID, err)
	}
	if len(event.VolunteerRoles) == 0 {
		return nil, validationError("event %s has no volunteer roles", eventID)
	}

	return SignUp(ctx, database, logger, actor, eventID, userID, event.VolunteerRoles[0].ID)
}
