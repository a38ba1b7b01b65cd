package db

import (
	"context"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// UserStore defines the interface for user document operations
type UserStore interface {
	GetUsers(ctx context.Context) ([]model.User, error)
	// GetUser returns docstore.ErrNotFound if the user does not exist
	GetUser(ctx context.Context, id string) (*model.User, error)
	InsertUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, id string, update UserUpdate) error
	DeleteUser(ctx context.Context, id string) error
}

// EventStore defines the interface for event document operations
type EventStore interface {
	GetEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	InsertEvent(ctx context.Context, event *model.Event) error
	InsertEvents(ctx context.Context, events []*model.Event) error
	UpdateEvent(ctx context.Context, event *model.Event) error
}

// AnnouncementStore defines the interface for announcement document operations
type AnnouncementStore interface {
	GetAnnouncements(ctx context.Context) ([]model.Announcement, error)
	InsertAnnouncement(ctx context.Context, announcement *model.Announcement) error
	UpdateAnnouncement(ctx context.Context, announcement *model.Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) error
}

// ConversationStore defines the interface for conversation and message operations
type ConversationStore interface {
	// GetConversationsFor returns conversations the user participates in, without participants or messages
	GetConversationsFor(ctx context.Context, userID string) ([]model.Conversation, error)
	GetConversation(ctx context.Context, id string) (*model.Conversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	InsertConversation(ctx context.Context, conversation *model.Conversation) error
	InsertMessage(ctx context.Context, conversationID string, message *model.Message) error
}

// Transactor runs atomic read-modify-write units against the document store
type Transactor interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error
}

// Database defines the interface for all entity operations.
// db.DB implements it over any docstore.Store backend.
type Database interface {
	UserStore
	EventStore
	AnnouncementStore
	ConversationStore
	Transactor
}
