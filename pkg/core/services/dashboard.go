package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/pkg/core/ledger"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/db"
)

// DashboardStore defines the database operations needed for the dashboard
type DashboardStore interface {
	db.EventStore
	db.AnnouncementStore
}

// DashboardResult is a member's home page
type DashboardResult struct {
	User                *model.User
	Summary             ledger.Summary
	ActiveAnnouncements []model.Announcement
	UpcomingEvents      []model.Event
}

// Dashboard gathers the ledger summary, active announcements and upcoming events for user.
// Every part degrades to zero or empty on store failure.
func Dashboard(ctx context.Context, database DashboardStore, logger *zap.Logger, user *model.User, at time.Time) *DashboardResult {
	summary := ledger.New(database, logger).Summary(ctx, user)

	logger.Debug("Built dashboard",
		zap.String("user_id", user.ID),
		zap.Int("points", summary.RewardPoints),
		zap.Int("hours", summary.VolunteerHours),
		zap.Int("new_events", summary.NewEvents))

	return &DashboardResult{
		User:                user,
		Summary:             summary,
		ActiveAnnouncements: ActiveAnnouncements(ctx, database, logger, at),
		UpcomingEvents:      UpcomingEvents(ctx, database, logger, at),
	}
}
