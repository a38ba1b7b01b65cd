package db

import (
	"context"

	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// Collection names
const (
	UsersCollection         = "users"
	EventsCollection        = "events"
	AnnouncementsCollection = "announcements"
	ConversationsCollection = "conversations"
	MessagesSubcollection   = "messages"
)

// DB maps typed entities onto a document store
type DB struct {
	store docstore.Store
}

// NewDB creates a new database instance
func NewDB(store docstore.Store) *DB {
	return &DB{
		store: store,
	}
}

// Store returns the underlying document store
func (db *DB) Store() docstore.Store {
	return db.store
}

// RunTransaction runs fn atomically against the underlying store
func (db *DB) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	return db.store.RunTransaction(ctx, fn)
}

// MessagesCollection returns the path of a conversation's messages
func MessagesCollection(conversationID string) string {
	return docstore.SubCollection(ConversationsCollection, conversationID, MessagesSubcollection)
}
