package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/hope-hub/pkg/docstore"
)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := New()

	id, err := store.Create(ctx, "users", docstore.Fields{"name": "Jane"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Jane", doc.Fields["name"])
}

func TestGet_NotFound(t *testing.T) {
	_, err := New().Get(context.Background(), "users", "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestUpdate_MergesTopLevelFields(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Set(ctx, "users", "u1", docstore.Fields{"name": "Jane", "role": "Member"}))

	require.NoError(t, store.Update(ctx, "users", "u1", docstore.Fields{"role": "Admin"}))

	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", doc.Fields["name"])
	assert.Equal(t, "Admin", doc.Fields["role"])
}

func TestUpdate_MissingDocument(t *testing.T) {
	err := New().Update(context.Background(), "users", "nope", docstore.Fields{"role": "Admin"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestGet_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Set(ctx, "events", "e1", docstore.Fields{
		"signups": []any{map[string]any{"userId": "u1", "roleId": "r1"}},
	}))

	doc, err := store.Get(ctx, "events", "e1")
	require.NoError(t, err)
	doc.Fields["signups"] = append(doc.Fields["signups"].([]any), "tampered")

	again, err := store.Get(ctx, "events", "e1")
	require.NoError(t, err)
	assert.Len(t, again.Fields["signups"], 1)
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Set(ctx, "conversations", "c1", docstore.Fields{"name": "Gala", "participantIds": []string{"u1", "u2"}}))
	require.NoError(t, store.Set(ctx, "conversations", "c2", docstore.Fields{"name": "Jane", "participantIds": []string{"u2", "u3"}}))
	require.NoError(t, store.Set(ctx, "conversations", "c3", docstore.Fields{"name": "Gala", "participantIds": []string{"u3"}}))

	docs, err := store.List(ctx, "conversations", docstore.ArrayContains("participantIds", "u2"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c1", docs[0].ID)
	assert.Equal(t, "c2", docs[1].ID)

	docs, err = store.List(ctx, "conversations", docstore.Eq("name", "Gala"), docstore.ArrayContains("participantIds", "u3"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "c3", docs[0].ID)
}

func TestRunTransaction_CommitsAllWrites(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Set(ctx, "users", "u1", docstore.Fields{"name": "Jane"}))

	err := docstore.Commit(ctx, store,
		docstore.UpdateOp("users", "u1", docstore.Fields{"role": "Creator"}),
		docstore.SetOp("events", "e1", docstore.Fields{"title": "Fun Run"}),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Count("events"))
	doc, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Creator", doc.Fields["role"])
}

func TestRunTransaction_FailureMidBatchAppliesNothing(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Set(ctx, "users", "u1", docstore.Fields{"name": "Jane"}))
	require.NoError(t, store.Set(ctx, "events", "e1", docstore.Fields{"title": "Fun Run"}))

	boom := errors.New("store unavailable")
	store.InjectFault(func(op, collection, id string) error {
		if op == "update" && collection == "users" {
			return boom
		}
		return nil
	})

	err := docstore.Commit(ctx, store,
		docstore.UpdateOp("events", "e1", docstore.Fields{"title": "changed"}),
		docstore.UpdateOp("users", "u1", docstore.Fields{"name": "changed"}),
	)
	require.ErrorIs(t, err, boom)

	store.InjectFault(nil)
	event, err := store.Get(ctx, "events", "e1")
	require.NoError(t, err)
	assert.Equal(t, "Fun Run", event.Fields["title"])
	user, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.Fields["name"])
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.Set(ctx, "users", "u1", docstore.Fields{"name": "Jane"}))

	require.NoError(t, store.Delete(ctx, "users", "u1"))

	_, err := store.Get(ctx, "users", "u1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
