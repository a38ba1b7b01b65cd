package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// EventFromDocument converts an events document into a model.Event.
// Events stored before createdAt was recorded decode with the Unix epoch.
func EventFromDocument(doc docstore.Document) model.Event {
	event := model.Event{
		ID:          doc.ID,
		Title:       stringField(doc.Fields, "title"),
		Description: stringField(doc.Fields, "description"),
		Date:        timeField(doc.Fields, "date"),
		CreatedAt:   time.Unix(0, 0).UTC(),
	}
	if t, ok := asTime(doc.Fields["createdAt"]); ok {
		event.CreatedAt = t
	}

	for _, item := range asList(doc.Fields["volunteerRoles"]) {
		m := asMap(item)
		if m == nil {
			continue
		}
		event.VolunteerRoles = append(event.VolunteerRoles, model.VolunteerRole{
			ID:     asString(m["id"]),
			Name:   asString(m["name"]),
			Points: asInt(m["points"]),
			Hours:  asInt(m["hours"]),
		})
	}

	event.Signups = SignupsFromValue(doc.Fields["signups"])
	return event
}

// SignupsFromValue decodes a stored signups array
func SignupsFromValue(v any) []model.Signup {
	var signups []model.Signup
	for _, item := range asList(v) {
		m := asMap(item)
		if m == nil {
			continue
		}
		signups = append(signups, model.Signup{
			UserID: asString(m["userId"]),
			RoleID: asString(m["roleId"]),
		})
	}
	return signups
}

// EventFields converts a model.Event into the full set of document fields
func EventFields(event *model.Event) docstore.Fields {
	fields := EventEditFields(event)
	fields["createdAt"] = event.CreatedAt.UTC()
	fields["signups"] = SignupsValue(event.Signups)
	return fields
}

// EventEditFields returns the fields an event edit may change. Signups and createdAt are excluded.
func EventEditFields(event *model.Event) docstore.Fields {
	roles := make([]any, 0, len(event.VolunteerRoles))
	for _, r := range event.VolunteerRoles {
		roles = append(roles, map[string]any{
			"id":     r.ID,
			"name":   r.Name,
			"points": r.Points,
			"hours":  r.Hours,
		})
	}
	return docstore.Fields{
		"title":          event.Title,
		"description":    event.Description,
		"date":           event.Date.UTC(),
		"volunteerRoles": roles,
	}
}

// SignupsValue encodes signups for storage
func SignupsValue(signups []model.Signup) []any {
	out := make([]any, 0, len(signups))
	for _, s := range signups {
		out = append(out, map[string]any{"userId": s.UserID, "roleId": s.RoleID})
	}
	return out
}

// GetEvents retrieves all event records
func (db *DB) GetEvents(ctx context.Context) ([]model.Event, error) {
	docs, err := db.store.List(ctx, EventsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	events := make([]model.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, EventFromDocument(doc))
	}
	return events, nil
}

// GetEvent retrieves a single event record
func (db *DB) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	doc, err := db.store.Get(ctx, EventsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	event := EventFromDocument(*doc)
	return &event, nil
}

// InsertEvent stores a new event and sets its generated id
func (db *DB) InsertEvent(ctx context.Context, event *model.Event) error {
	id, err := db.store.Create(ctx, EventsCollection, EventFields(event))
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	event.ID = id
	return nil
}

// InsertEvents stores several events atomically and sets their ids
func (db *DB) InsertEvents(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	writes := make([]docstore.Write, 0, len(events))
	ids := make([]string, 0, len(events))
	for _, event := range events {
		id := uuid.New().String()
		ids = append(ids, id)
		writes = append(writes, docstore.SetOp(EventsCollection, id, EventFields(event)))
	}

	if err := docstore.Commit(ctx, db.store, writes...); err != nil {
		return fmt.Errorf("failed to insert events: %w", err)
	}

	for i, event := range events {
		event.ID = ids[i]
	}
	return nil
}

// UpdateEvent writes the editable fields of an existing event
func (db *DB) UpdateEvent(ctx context.Context, event *model.Event) error {
	if err := db.store.Update(ctx, EventsCollection, event.ID, EventEditFields(event)); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}
