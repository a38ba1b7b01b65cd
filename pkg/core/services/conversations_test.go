package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/pkg/core/authz"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/docstore"
)

func TestStartConversation_OneToOneTakesOtherName(t *testing.T) {
	database, _ := newTestDB(t)
	ctx := context.Background()
	at := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	freezeTime(t, at)

	conversation, err := StartConversation(ctx, database, zap.NewNop(), testAdmin, "ignored", []string{testMember.ID})

	require.NoError(t, err)
	assert.Equal(t, "John Doe", conversation.Name)
	assert.Equal(t, []string{testMember.ID, testAdmin.ID}, conversation.ParticipantIDs)

	messages, err := database.GetMessages(ctx, conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Started conversation: John Doe", messages[0].Text)
	assert.Equal(t, testAdmin.ID, messages[0].SenderID)
}

func TestStartConversation_Group(t *testing.T) {
	database, _ := newTestDB(t)
	ctx := context.Background()
	logger := zap.NewNop()

	_, err := StartConversation(ctx, database, logger, testMember, "  ", []string{testAdmin.ID, testCreator.ID})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = StartConversation(ctx, database, logger, testMember, "Solo", []string{testMember.ID})
	assert.ErrorIs(t, err, model.ErrValidation)

	conversation, err := StartConversation(ctx, database, logger, testMember, "Gala Planning", []string{testAdmin.ID, testCreator.ID, testAdmin.ID})
	require.NoError(t, err)
	assert.Equal(t, "Gala Planning", conversation.Name)
	assert.Equal(t, []string{testAdmin.ID, testCreator.ID, testMember.ID}, conversation.ParticipantIDs)

	_, err = StartConversation(ctx, database, logger, testMember, "", []string{"ghost"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestSendMessage(t *testing.T) {
	database, _ := newTestDB(t)
	ctx := context.Background()
	logger := zap.NewNop()

	conversation, err := StartConversation(ctx, database, logger, testAdmin, "", []string{testMember.ID})
	require.NoError(t, err)

	message, err := SendMessage(ctx, database, logger, testMember, conversation.ID, "  Is the route final?  ")
	require.NoError(t, err)
	assert.Equal(t, "Is the route final?", message.Text)
	assert.NotEmpty(t, message.ID)

	_, err = SendMessage(ctx, database, logger, testCreator, conversation.ID, "Can I join?")
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = SendMessage(ctx, database, logger, testMember, conversation.ID, "")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = SendMessage(ctx, database, logger, testMember, "missing", "hello")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	messages, err := database.GetMessages(ctx, conversation.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestConversationsForUser(t *testing.T) {
	database, store := newTestDB(t)
	ctx := context.Background()
	logger := zap.NewNop()
	base := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	freezeTime(t, base)
	group, err := StartConversation(ctx, database, logger, testAdmin, "Committee", []string{testMember.ID, testCreator.ID})
	require.NoError(t, err)
	_, err = StartConversation(ctx, database, logger, testAdmin, "", []string{testCreator.ID})
	require.NoError(t, err)

	// Inserted out of order; reads come back sorted
	require.NoError(t, database.InsertMessage(ctx, group.ID, &model.Message{SenderID: testMember.ID, Text: "later", Timestamp: base.Add(2 * time.Hour)}))
	require.NoError(t, database.InsertMessage(ctx, group.ID, &model.Message{SenderID: testCreator.ID, Text: "sooner", Timestamp: base.Add(time.Hour)}))

	require.NoError(t, database.DeleteUser(ctx, testCreator.ID))

	conversations := ConversationsForUser(ctx, database, logger, testMember.ID)
	require.Len(t, conversations, 1)
	c := conversations[0]
	assert.Equal(t, "Committee", c.Name)
	assert.Len(t, c.ParticipantIDs, 3)
	require.Len(t, c.Participants, 2)
	assert.ElementsMatch(t, []string{testMember.ID, testAdmin.ID}, []string{c.Participants[0].ID, c.Participants[1].ID})
	require.Len(t, c.Messages, 3)
	assert.Equal(t, "sooner", c.Messages[1].Text)
	assert.Equal(t, "later", c.Messages[2].Text)

	assert.Len(t, ConversationsForUser(ctx, database, logger, testAdmin.ID), 2)
	assert.Empty(t, ConversationsForUser(ctx, database, logger, "nobody"))

	store.InjectFault(func(op, collection, id string) error {
		if op == "list" {
			return errors.New("unavailable")
		}
		return nil
	})
	assert.Empty(t, ConversationsForUser(ctx, database, logger, testMember.ID))
}
