package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/pkg/core/activity"
	"github.com/jakechorley/hope-hub/pkg/core/authz"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/db"
)

// AnnouncementInput holds the editable fields of an announcement
type AnnouncementInput struct {
	Title     string
	Message   string
	StartDate time.Time
	EndDate   time.Time
}

// EmailSent represents a member who was sent an announcement
type EmailSent struct {
	UserID string
	Name   string
	Email  string
}

// ListAnnouncements returns all announcements, newest start first. A store failure yields an empty list.
func ListAnnouncements(ctx context.Context, database db.AnnouncementStore, logger *zap.Logger) []model.Announcement {
	announcements, err := database.GetAnnouncements(ctx)
	if err != nil {
		logger.Warn("Failed to list announcements", zap.Error(err))
		return []model.Announcement{}
	}
	sort.SliceStable(announcements, func(i, j int) bool {
		return announcements[i].StartDate.After(announcements[j].StartDate)
	})
	return announcements
}

// ActiveAnnouncements returns the announcements whose window contains at
func ActiveAnnouncements(ctx context.Context, database db.AnnouncementStore, logger *zap.Logger, at time.Time) []model.Announcement {
	active := activity.FilterActive(ListAnnouncements(ctx, database, logger), at)
	if active == nil {
		return []model.Announcement{}
	}
	return active
}

// CreateAnnouncement validates and stores a new announcement
func CreateAnnouncement(ctx context.Context, database db.AnnouncementStore, logger *zap.Logger, actor *model.User, input AnnouncementInput) (*model.Announcement, error) {
	if err := authz.Require(actor, authz.CreateAnnouncement); err != nil {
		return nil, err
	}

	announcement, err := buildAnnouncement(input)
	if err != nil {
		return nil, err
	}

	if err := database.InsertAnnouncement(ctx, announcement); err != nil {
		return nil, fmt.Errorf("failed to insert announcement: %w", err)
	}

	logger.Info("Announcement created",
		zap.String("announcement_id", announcement.ID),
		zap.Time("start", announcement.StartDate),
		zap.Time("end", announcement.EndDate))
	return announcement, nil
}

// UpdateAnnouncement replaces the fields of an existing announcement
func UpdateAnnouncement(ctx context.Context, database db.AnnouncementStore, logger *zap.Logger, actor *model.User, id string, input AnnouncementInput) (*model.Announcement, error) {
	if err := authz.Require(actor, authz.EditAnnouncement); err != nil {
		return nil, err
	}

	announcement, err := buildAnnouncement(input)
	if err != nil {
		return nil, err
	}
	announcement.ID = id

	if err := database.UpdateAnnouncement(ctx, announcement); err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}

	logger.Info("Announcement updated", zap.String("announcement_id", id))
	return announcement, nil
}

// DeleteAnnouncement removes an announcement
func DeleteAnnouncement(ctx context.Context, database db.AnnouncementStore, logger *zap.Logger, actor *model.User, id string) error {
	if err := authz.Require(actor, authz.DeleteAnnouncement); err != nil {
		return err
	}

	if err := database.DeleteAnnouncement(ctx, id); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}

	logger.Info("Announcement deleted", zap.String("announcement_id", id))
	return nil
}

// BroadcastAnnouncement emails the announcement to every member with an email address.
// Returns members who were sent it and those where sending failed.
func BroadcastAnnouncement(
	ctx context.Context,
	users db.UserStore,
	mailer Mailer,
	logger *zap.Logger,
	announcement *model.Announcement,
) ([]EmailSent, []FailedEmail, error) {
	members, err := users.GetUsers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch members: %w", err)
	}

	subject := fmt.Sprintf("Hope Hub: %s", announcement.Title)

	sent := []EmailSent{}
	failed := []FailedEmail{}
	for _, member := range members {
		if member.Email == "" {
			logger.Debug("Skipping member without email", zap.String("user_id", member.ID))
			continue
		}

		body := fmt.Sprintf("Hi %s\n\n%s\n\nThanks\nThe Hope Hub team\n", member.Name, announcement.Message)

		if err := mailer.SendEmail(member.Email, subject, body); err != nil {
			logger.Warn("Failed to send announcement email",
				zap.String("user_id", member.ID),
				zap.String("email", member.Email),
				zap.Error(err))

			failed = append(failed, FailedEmail{
				UserID: member.ID,
				Name:   member.Name,
				Email:  member.Email,
				Error:  err.Error(),
			})
			continue
		}

		sent = append(sent, EmailSent{UserID: member.ID, Name: member.Name, Email: member.Email})
	}

	logger.Info("Announcement broadcast",
		zap.String("announcement_id", announcement.ID),
		zap.Int("sent", len(sent)),
		zap.Int("failed", len(failed)))

	return sent, failed, nil
}

func buildAnnouncement(input AnnouncementInput) (*model.Announcement, error) {
	announcement := &model.Announcement{
		Title:     input.Title,
		Message:   input.Message,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := model.Validate(announcement); err != nil {
		return nil, err
	}
	if err := activity.ValidateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	return announcement, nil
}
