package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/pkg/db"
	"github.com/jakechorley/hope-hub/pkg/docstore"
	"github.com/jakechorley/hope-hub/pkg/seed"
)

// SeedResult reports what the seed command wrote
type SeedResult struct {
	Seeded        bool // false if the store already held users
	Users         int
	Events        int
	Announcements int
	Conversations int
	Messages      int
}

// Seed writes the fixture into the store if, and only if, the users collection is empty.
// The check and the writes run in one transaction so concurrent or repeated runs seed at most once.
func Seed(ctx context.Context, database db.Transactor, logger *zap.Logger, fixture *seed.Fixture) (*SeedResult, error) {
	entities := fixture.Resolve(now())

	writes := []docstore.Write{}
	result := &SeedResult{Seeded: true}
	for i := range entities.Users {
		user := &entities.Users[i]
		writes = append(writes, docstore.SetOp(db.UsersCollection, user.ID, db.UserFields(user)))
		result.Users++
	}
	for i := range entities.Events {
		event := &entities.Events[i]
		writes = append(writes, docstore.SetOp(db.EventsCollection, event.ID, db.EventFields(event)))
		result.Events++
	}
	for i := range entities.Announcements {
		announcement := &entities.Announcements[i]
		writes = append(writes, docstore.SetOp(db.AnnouncementsCollection, announcement.ID, db.AnnouncementFields(announcement)))
		result.Announcements++
	}
	for i := range entities.Conversations {
		conversation := &entities.Conversations[i]
		writes = append(writes, docstore.SetOp(db.ConversationsCollection, conversation.ID, db.ConversationFields(conversation)))
		result.Conversations++
		for j := range conversation.Messages {
			message := &conversation.Messages[j]
			writes = append(writes, docstore.SetOp(db.MessagesCollection(conversation.ID), message.ID, db.MessageFields(message)))
			result.Messages++
		}
	}

	seeded := false
	err := database.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		existing, err := tx.List(db.UsersCollection)
		if err != nil {
			return fmt.Errorf("failed to check existing users: %w", err)
		}
		if len(existing) > 0 {
			logger.Debug("Store already has users", zap.Int("count", len(existing)))
			seeded = false
			return nil
		}
		seeded = true
		return docstore.Apply(tx, writes...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}

	if !seeded {
		logger.Info("Store already seeded, nothing written")
		return &SeedResult{}, nil
	}

	logger.Info("Store seeded",
		zap.Int("users", result.Users),
		zap.Int("events", result.Events),
		zap.Int("announcements", result.Announcements),
		zap.Int("conversations", result.Conversations),
		zap.Int("messages", result.Messages))
	return result, nil
}
