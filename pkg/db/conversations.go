package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// ConversationFromDocument converts a conversations document into a model.Conversation
func ConversationFromDocument(doc docstore.Document) model.Conversation {
	return model.Conversation{
		ID:             doc.ID,
		Name:           stringField(doc.Fields, "name"),
		ParticipantIDs: asStrings(doc.Fields["participantIds"]),
	}
}

// ConversationFields converts a model.Conversation into document fields.
// Participants and messages are not stored on the conversation document.
func ConversationFields(c *model.Conversation) docstore.Fields {
	return docstore.Fields{
		"name":           c.Name,
		"participantIds": stringsToList(c.ParticipantIDs),
	}
}

// MessageFromDocument converts a messages document into a model.Message
func MessageFromDocument(doc docstore.Document) model.Message {
	return model.Message{
		ID:        doc.ID,
		SenderID:  stringField(doc.Fields, "senderId"),
		Text:      stringField(doc.Fields, "text"),
		Timestamp: timeField(doc.Fields, "timestamp"),
	}
}

// MessageFields converts a model.Message into document fields
func MessageFields(m *model.Message) docstore.Fields {
	return docstore.Fields{
		"senderId":  m.SenderID,
		"text":      m.Text,
		"timestamp": m.Timestamp.UTC(),
	}
}

// GetConversationsFor retrieves the conversations a user participates in
func (db *DB) GetConversationsFor(ctx context.Context, userID string) ([]model.Conversation, error) {
	docs, err := db.store.List(ctx, ConversationsCollection, docstore.ArrayContains("participantIds", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	conversations := make([]model.Conversation, 0, len(docs))
	for _, doc := range docs {
		conversations = append(conversations, ConversationFromDocument(doc))
	}
	return conversations, nil
}

// GetConversation retrieves a single conversation without participants or messages
func (db *DB) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	doc, err := db.store.Get(ctx, ConversationsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	conversation := ConversationFromDocument(*doc)
	return &conversation, nil
}

// GetMessages retrieves a conversation's messages, oldest first
func (db *DB) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	docs, err := db.store.List(ctx, MessagesCollection(conversationID))
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	messages := make([]model.Message, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, MessageFromDocument(doc))
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

// InsertConversation stores a new conversation and sets its generated id
func (db *DB) InsertConversation(ctx context.Context, conversation *model.Conversation) error {
	id, err := db.store.Create(ctx, ConversationsCollection, ConversationFields(conversation))
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	conversation.ID = id
	return nil
}

// InsertMessage appends a message to a conversation and sets its generated id
func (db *DB) InsertMessage(ctx context.Context, conversationID string, message *model.Message) error {
	id, err := db.store.Create(ctx, MessagesCollection(conversationID), MessageFields(message))
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	message.ID = id
	return nil
}
