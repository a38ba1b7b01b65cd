package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/pkg/core/authz"
	"github.com/jakechorley/hope-hub/pkg/core/ledger"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/db"
)

// MaxSeriesLength caps the number of events an unbounded recurrence rule may create
const MaxSeriesLength = 52

// EventInput holds the editable fields of an event
type EventInput struct {
	Title          string
	Description    string
	Date           time.Time
	VolunteerRoles []model.VolunteerRole
}

// ListEvents returns all events ordered by date. A store failure yields an empty list.
func ListEvents(ctx context.Context, database db.EventStore, logger *zap.Logger) []model.Event {
	events, err := database.GetEvents(ctx)
	if err != nil {
		logger.Warn("Failed to list events", zap.Error(err))
		return []model.Event{}
	}
	sortEventsByDate(events)
	return events
}

// GetEvent returns the event, or nil if it does not exist or cannot be read
func GetEvent(ctx context.Context, database db.EventStore, logger *zap.Logger, id string) *model.Event {
	event, err := database.GetEvent(ctx, id)
	if err != nil {
		if !isNotFound(err) {
			logger.Warn("Failed to get event", zap.String("event_id", id), zap.Error(err))
		}
		return nil
	}
	return event
}

// EventsForUser returns the events the user has signed up to, ordered by date
func EventsForUser(ctx context.Context, database db.EventStore, logger *zap.Logger, userID string) []model.Event {
	events := ledger.EventsForUser(ListEvents(ctx, database, logger), userID)
	if events == nil {
		return []model.Event{}
	}
	return events
}

// NewEventsSince returns events created strictly after since. A nil since returns every event.
func NewEventsSince(ctx context.Context, database db.EventStore, logger *zap.Logger, since *time.Time) []model.Event {
	result := []model.Event{}
	for _, event := range ListEvents(ctx, database, logger) {
		if since == nil || event.CreatedAt.After(*since) {
			result = append(result, event)
		}
	}
	return result
}

// UpcomingEvents returns events on or after from, ordered by date
func UpcomingEvents(ctx context.Context, database db.EventStore, logger *zap.Logger, from time.Time) []model.Event {
	result := []model.Event{}
	for _, event := range ListEvents(ctx, database, logger) {
		if !event.Date.Before(from) {
			result = append(result, event)
		}
	}
	return result
}

// CreateEvent validates and stores a new event with no signups
func CreateEvent(ctx context.Context, database db.EventStore, logger *zap.Logger, actor *model.User, input EventInput) (*model.Event, error) {
	if err := authz.Require(actor, authz.CreateEvent); err != nil {
		return nil, err
	}

	event, err := buildEvent(input, now())
	if err != nil {
		return nil, err
	}

	logger.Debug("Creating event",
		zap.String("title", event.Title),
		zap.Time("date", event.Date),
		zap.Int("role_count", len(event.VolunteerRoles)))

	if err := database.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	logger.Info("Event created", zap.String("event_id", event.ID), zap.String("title", event.Title))
	return event, nil
}

// UpdateEvent replaces an event's editable fields and roles. Signups and createdAt are kept.
func UpdateEvent(ctx context.Context, database db.EventStore, logger *zap.Logger, actor *model.User, eventID string, input EventInput) (*model.Event, error) {
	if err := authz.Require(actor, authz.EditEvent); err != nil {
		return nil, err
	}

	existing, err := database.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event %s: %w", eventID, err)
	}

	event, err := buildEvent(input, existing.CreatedAt)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.Signups = existing.Signups

	for _, signup := range event.Signups {
		if _, ok := event.Role(signup.RoleID); !ok {
			logger.Warn("Signup refers to a role that no longer exists",
				zap.String("event_id", eventID),
				zap.String("user_id", signup.UserID),
				zap.String("role_id", signup.RoleID))
		}
	}

	if err := database.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	logger.Info("Event updated", zap.String("event_id", event.ID))
	return event, nil
}

// CreateEventSeries creates one event per occurrence of an RFC 5545 recurrence rule.
// The rule starts at input.Date. Rules without COUNT or UNTIL stop after MaxSeriesLength events.
func CreateEventSeries(
	ctx context.Context,
	database db.EventStore,
	logger *zap.Logger,
	actor *model.User,
	input EventInput,
	recurrence string,
) ([]*model.Event, error) {
	if err := authz.Require(actor, authz.CreateEvent); err != nil {
		return nil, err
	}

	dates, err := expandRecurrence(recurrence, input.Date)
	if err != nil {
		return nil, err
	}

	logger.Debug("Expanded recurrence", zap.String("rule", recurrence), zap.Int("occurrences", len(dates)))

	createdAt := now()
	events := make([]*model.Event, 0, len(dates))
	for _, date := range dates {
		occurrence := input
		occurrence.Date = date
		event, err := buildEvent(occurrence, createdAt)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := database.InsertEvents(ctx, events); err != nil {
		return nil, fmt.Errorf("failed to insert event series: %w", err)
	}

	logger.Info("Event series created", zap.String("title", input.Title), zap.Int("count", len(events)))
	return events, nil
}

func expandRecurrence(recurrence string, start time.Time) ([]time.Time, error) {
	if recurrence == "" {
		return nil, validationError("recurrence rule is required")
	}
	if start.IsZero() {
		return nil, validationError("series start date is required")
	}

	rule, err := rrule.StrToRRule(recurrence)
	if err != nil {
		return nil, validationError("invalid recurrence rule %q: %v", recurrence, err)
	}
	rule.DTStart(start)

	dates := []time.Time{}
	next := rule.Iterator()
	for date, ok := next(); ok && len(dates) < MaxSeriesLength; date, ok = next() {
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return nil, validationError("recurrence rule %q has no occurrences", recurrence)
	}
	return dates, nil
}

// buildEvent validates input and returns an event with role ids assigned
func buildEvent(input EventInput, createdAt time.Time) (*model.Event, error) {
	roles := make([]model.VolunteerRole, len(input.VolunteerRoles))
	seen := make(map[string]bool)
	for i, role := range input.VolunteerRoles {
		if role.ID == "" {
			role.ID = uuid.New().String()
		}
		if seen[role.ID] {
			return nil, validationError("duplicate volunteer role id %s", role.ID)
		}
		seen[role.ID] = true
		roles[i] = role
	}

	event := &model.Event{
		Title:          input.Title,
		Description:    input.Description,
		Date:           input.Date,
		CreatedAt:      createdAt,
		VolunteerRoles: roles,
		Signups:        []model.Signup{},
	}
	if err := model.Validate(event); err != nil {
		return nil, err
	}
	if event.Date.IsZero() {
		return nil, validationError("event date is required")
	}
	return event, nil
}
