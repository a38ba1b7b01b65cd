package db

import (
	"context"
	"fmt"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// AnnouncementFromDocument converts an announcements document into a model.Announcement
func AnnouncementFromDocument(doc docstore.Document) model.Announcement {
	return model.Announcement{
		ID:        doc.ID,
		Title:     stringField(doc.Fields, "title"),
		Message:   stringField(doc.Fields, "message"),
		StartDate: timeField(doc.Fields, "startDate"),
		EndDate:   timeField(doc.Fields, "endDate"),
	}
}

// AnnouncementFields converts a model.Announcement into document fields
func AnnouncementFields(a *model.Announcement) docstore.Fields {
	return docstore.Fields{
		"title":     a.Title,
		"message":   a.Message,
		"startDate": a.StartDate.UTC(),
		"endDate":   a.EndDate.UTC(),
	}
}

// GetAnnouncements retrieves all announcement records
func (db *DB) GetAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	docs, err := db.store.List(ctx, AnnouncementsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to get announcements: %w", err)
	}
	announcements := make([]model.Announcement, 0, len(docs))
	for _, doc := range docs {
		announcements = append(announcements, AnnouncementFromDocument(doc))
	}
	return announcements, nil
}

// InsertAnnouncement stores a new announcement and sets its generated id
func (db *DB) InsertAnnouncement(ctx context.Context, announcement *model.Announcement) error {
	id, err := db.store.Create(ctx, AnnouncementsCollection, AnnouncementFields(announcement))
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}
	announcement.ID = id
	return nil
}

// UpdateAnnouncement overwrites the fields of an existing announcement
func (db *DB) UpdateAnnouncement(ctx context.Context, announcement *model.Announcement) error {
	if err := db.store.Update(ctx, AnnouncementsCollection, announcement.ID, AnnouncementFields(announcement)); err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	return nil
}

// DeleteAnnouncement removes an announcement
func (db *DB) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := db.store.Delete(ctx, AnnouncementsCollection, id); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return nil
}
