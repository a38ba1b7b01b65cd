package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/pkg/core/model"
)

// EventSource lists every event. db.DB satisfies it.
type EventSource interface {
	GetEvents(ctx context.Context) ([]model.Event, error)
}

// Ledger derives reward points, volunteer hours and new-event counts from event signups.
// Read failures are logged and degrade to zero: the figures are for dashboards,
// where an empty value is preferred over an error.
type Ledger struct {
	events EventSource
	logger *zap.Logger
}

// New creates a Ledger reading events from source
func New(source EventSource, logger *zap.Logger) *Ledger {
	return &Ledger{events: source, logger: logger}
}

// Summary holds a user's ledger figures computed from one event listing
type Summary struct {
	RewardPoints   int
	VolunteerHours int
	NewEvents      int
}

// RewardPoints sums the points of every role the user signed up for
func (l *Ledger) RewardPoints(ctx context.Context, userID string) int {
	events, ok := l.load(ctx, "reward points", zap.String("user_id", userID))
	if !ok {
		return 0
	}
	return PointsFor(events, userID)
}

// VolunteerHours sums the hours of every role the user signed up for
func (l *Ledger) VolunteerHours(ctx context.Context, userID string) int {
	events, ok := l.load(ctx, "volunteer hours", zap.String("user_id", userID))
	if !ok {
		return 0
	}
	return HoursFor(events, userID)
}

// NewEventCountSince counts events created strictly after since.
// A nil since means the beginning of time, so every event counts.
func (l *Ledger) NewEventCountSince(ctx context.Context, since *time.Time) int {
	events, ok := l.load(ctx, "new event count")
	if !ok {
		return 0
	}
	return CountCreatedAfter(events, since)
}

// Summary computes all figures for a user from a single event listing
func (l *Ledger) Summary(ctx context.Context, user *model.User) Summary {
	events, ok := l.load(ctx, "ledger summary", zap.String("user_id", user.ID))
	if !ok {
		return Summary{}
	}
	return Summary{
		RewardPoints:   PointsFor(events, user.ID),
		VolunteerHours: HoursFor(events, user.ID),
		NewEvents:      CountCreatedAfter(events, user.LastSignedUpAt),
	}
}

func (l *Ledger) load(ctx context.Context, what string, fields ...zap.Field) ([]model.Event, bool) {
	events, err := l.events.GetEvents(ctx)
	if err != nil {
		l.logger.Warn("Failed to load events, reporting zero", append(fields, zap.String("figure", what), zap.Error(err))...)
		return nil, false
	}
	return events, true
}

// EventsForUser returns the events holding at least one signup by the user
func EventsForUser(events []model.Event, userID string) []model.Event {
	var out []model.Event
	for _, e := range events {
		if e.HasSignup(userID) {
			out = append(out, e)
		}
	}
	return out
}

// PointsFor sums role points over the user's signups. Signups whose role no
// longer exists on the event contribute nothing.
func PointsFor(events []model.Event, userID string) int {
	return sumRoles(events, userID, func(r model.VolunteerRole) int { return r.Points })
}

// HoursFor sums role hours over the user's signups
func HoursFor(events []model.Event, userID string) int {
	return sumRoles(events, userID, func(r model.VolunteerRole) int { return r.Hours })
}

func sumRoles(events []model.Event, userID string, value func(model.VolunteerRole) int) int {
	total := 0
	for _, event := range EventsForUser(events, userID) {
		for _, signup := range event.Signups {
			if signup.UserID != userID {
				continue
			}
			if role, ok := event.Role(signup.RoleID); ok {
				total += value(role)
			}
		}
	}
	return total
}

// CountCreatedAfter counts events whose CreatedAt is strictly after since (nil counts all)
func CountCreatedAfter(events []model.Event, since *time.Time) int {
	if since == nil {
		return len(events)
	}
	count := 0
	for _, e := range events {
		if e.CreatedAt.After(*since) {
			count++
		}
	}
	return count
}
