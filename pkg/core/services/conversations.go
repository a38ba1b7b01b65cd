package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/hope-hub/pkg/core/authz"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/db"
)

// conversationFetchLimit bounds concurrent store reads when loading conversations
const conversationFetchLimit = 8

// ConversationStore defines the database operations needed for conversations
type ConversationStore interface {
	db.ConversationStore
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// ConversationsForUser returns the user's conversations with participants and messages resolved.
// Participants whose user document no longer exists are dropped. A store failure yields an empty list.
func ConversationsForUser(ctx context.Context, database ConversationStore, logger *zap.Logger, userID string) []model.Conversation {
	conversations, err := database.GetConversationsFor(ctx, userID)
	if err != nil {
		logger.Warn("Failed to list conversations", zap.String("user_id", userID), zap.Error(err))
		return []model.Conversation{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conversationFetchLimit)

	for i := range conversations {
		conversation := &conversations[i]
		g.Go(func() error {
			return hydrateConversation(gctx, database, logger, conversation)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn("Failed to load conversations", zap.String("user_id", userID), zap.Error(err))
		return []model.Conversation{}
	}

	logger.Debug("Loaded conversations", zap.String("user_id", userID), zap.Int("count", len(conversations)))
	return conversations
}

// GetConversation returns one conversation with participants and messages resolved
func GetConversation(ctx context.Context, database ConversationStore, logger *zap.Logger, id string) (*model.Conversation, error) {
	conversation, err := database.GetConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation %s: %w", id, err)
	}
	if err := hydrateConversation(ctx, database, logger, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func hydrateConversation(ctx context.Context, database ConversationStore, logger *zap.Logger, conversation *model.Conversation) error {
	participants := make([]model.User, 0, len(conversation.ParticipantIDs))
	for _, id := range conversation.ParticipantIDs {
		user, err := database.GetUser(ctx, id)
		if err != nil {
			if isNotFound(err) {
				logger.Debug("Dropping missing participant",
					zap.String("conversation_id", conversation.ID),
					zap.String("user_id", id))
				continue
			}
			return fmt.Errorf("failed to fetch participant %s: %w", id, err)
		}
		participants = append(participants, *user)
	}

	messages, err := database.GetMessages(ctx, conversation.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch messages for %s: %w", conversation.ID, err)
	}

	conversation.Participants = participants
	conversation.Messages = messages
	return nil
}

// StartConversation creates a conversation between the actor and memberIDs and posts an opening message.
// A conversation with one other member is named after them; a group needs a name.
func StartConversation(
	ctx context.Context,
	database ConversationStore,
	logger *zap.Logger,
	actor *model.User,
	name string,
	memberIDs []string,
) (*model.Conversation, error) {
	if err := authz.Require(actor, authz.StartConversation); err != nil {
		return nil, err
	}

	participantIDs := []string{}
	seen := map[string]bool{actor.ID: true}
	for _, id := range memberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		participantIDs = append(participantIDs, id)
	}
	if len(participantIDs) == 0 {
		return nil, validationError("a conversation needs at least one other member")
	}
	participantIDs = append(participantIDs, actor.ID)

	name = strings.TrimSpace(name)
	if len(participantIDs) == 2 {
		other, err := database.GetUser(ctx, participantIDs[0])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch member %s: %w", participantIDs[0], err)
		}
		name = other.Name
	} else if name == "" {
		return nil, validationError("group conversations need a name")
	}

	conversation := &model.Conversation{
		Name:           name,
		ParticipantIDs: participantIDs,
	}
	if err := database.InsertConversation(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to insert conversation: %w", err)
	}

	opening := &model.Message{
		SenderID:  actor.ID,
		Text:      fmt.Sprintf("Started conversation: %s", name),
		Timestamp: now(),
	}
	if err := database.InsertMessage(ctx, conversation.ID, opening); err != nil {
		return nil, fmt.Errorf("failed to post opening message: %w", err)
	}
	conversation.Messages = []model.Message{*opening}

	logger.Info("Conversation started",
		zap.String("conversation_id", conversation.ID),
		zap.String("name", name),
		zap.Int("participants", len(participantIDs)))
	return conversation, nil
}

// SendMessage appends a message from the actor, who must take part in the conversation
func SendMessage(
	ctx context.Context,
	database db.ConversationStore,
	logger *zap.Logger,
	actor *model.User,
	conversationID string,
	text string,
) (*model.Message, error) {
	if err := authz.Require(actor, authz.SendMessage); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("message text is required")
	}

	conversation, err := database.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation %s: %w", conversationID, err)
	}
	if !conversation.HasParticipant(actor.ID) {
		return nil, fmt.Errorf("%w: %s is not a participant of %s", authz.ErrForbidden, actor.ID, conversationID)
	}

	message := &model.Message{
		SenderID:  actor.ID,
		Text:      text,
		Timestamp: now(),
	}
	if err := database.InsertMessage(ctx, conversationID, message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	logger.Debug("Message sent",
		zap.String("conversation_id", conversationID),
		zap.String("message_id", message.ID))
	return message, nil
}
