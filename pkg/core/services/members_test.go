package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/pkg/core/authz"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/db"
	"github.com/jakechorley/hope-hub/pkg/docstore"
	"github.com/jakechorley/hope-hub/pkg/session"
)

func strPtr(s string) *string { return &s }

func TestAvatarPlaceholder(t *testing.T) {
	assert.Equal(t, "https://placehold.co/100x100.png?text=JD", AvatarPlaceholder("John Doe"))
	assert.Equal(t, "https://placehold.co/100x100.png?text=mal", AvatarPlaceholder("  mary ann lee "))
	assert.Equal(t, "https://placehold.co/100x100.png?text=%3F", AvatarPlaceholder(""))
}

func TestAddMember(t *testing.T) {
	database, _ := newTestDB(t)
	ctx := context.Background()
	provisioner := &mockProvisioner{uid: "uid-42"}

	user, err := AddMember(ctx, database, provisioner, zap.NewNop(), testAdmin, NewMember{Name: "Chris Lee", Email: "chris@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "uid-42", user.ID)
	assert.Equal(t, model.RoleMember, user.Role)
	assert.Equal(t, "https://placehold.co/100x100.png?text=CL", user.Avatar)

	stored, err := database.GetUser(ctx, "uid-42")
	require.NoError(t, err)
	assert.Equal(t, "chris@example.com", stored.Email)
}

func TestAddMember_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		actor       *model.User
		input       NewMember
		provisioner *mockProvisioner
		wantErr     error
	}{
		{"creator", testCreator, NewMember{Name: "A", Email: "a@example.com"}, &mockProvisioner{uid: "x"}, authz.ErrForbidden},
		{"bad email", testAdmin, NewMember{Name: "A", Email: "not-an-email"}, &mockProvisioner{uid: "x"}, model.ErrValidation},
		{"bad role", testAdmin, NewMember{Name: "A", Email: "a@example.com", Role: "Owner"}, &mockProvisioner{uid: "x"}, model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database, _ := newTestDB(t)

			_, err := AddMember(context.Background(), database, tt.provisioner, zap.NewNop(), tt.actor, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, tt.provisioner.created)
		})
	}

	t.Run("provisioning fails", func(t *testing.T) {
		database, _ := newTestDB(t)
		provisioner := &mockProvisioner{err: errors.New("EMAIL_EXISTS")}

		_, err := AddMember(context.Background(), database, provisioner, zap.NewNop(), testAdmin, NewMember{Name: "A", Email: "a@example.com"})

		assert.ErrorContains(t, err, "EMAIL_EXISTS")
		assert.Len(t, ListUsers(context.Background(), database, zap.NewNop()), 3)
	})
}

func TestUpdateMember(t *testing.T) {
	admin := model.RoleAdmin

	tests := []struct {
		name    string
		actor   *model.User
		userID  string
		update  db.UserUpdate
		wantErr error
	}{
		{"self rename", testMember, testMember.ID, db.UserUpdate{Name: strPtr("Johnny")}, nil},
		{"self avatar", testMember, testMember.ID, db.UserUpdate{Avatar: strPtr("https://example.com/me.png")}, nil},
		{"self role change", testMember, testMember.ID, db.UserUpdate{Role: &admin}, authz.ErrForbidden},
		{"self email change", testMember, testMember.ID, db.UserUpdate{Email: strPtr("new@example.com")}, authz.ErrForbidden},
		{"member edits other", testMember, testCreator.ID, db.UserUpdate{Name: strPtr("Johnny")}, authz.ErrForbidden},
		{"admin role change", testAdmin, testMember.ID, db.UserUpdate{Role: &admin}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database, _ := newTestDB(t)
			ctx := context.Background()

			err := UpdateMember(ctx, database, zap.NewNop(), tt.actor, tt.userID, tt.update)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			stored, err := database.GetUser(ctx, tt.userID)
			require.NoError(t, err)
			if tt.update.Name != nil {
				assert.Equal(t, *tt.update.Name, stored.Name)
			}
			if tt.update.Avatar != nil {
				assert.Equal(t, *tt.update.Avatar, stored.Avatar)
			}
			if tt.update.Role != nil {
				assert.Equal(t, *tt.update.Role, stored.Role)
			}
		})
	}
}

func TestUpdateMember_Validation(t *testing.T) {
	database, _ := newTestDB(t)
	ctx := context.Background()
	bogus := model.Role("Owner")

	assert.ErrorIs(t, UpdateMember(ctx, database, zap.NewNop(), testAdmin, testMember.ID, db.UserUpdate{}), model.ErrValidation)
	assert.ErrorIs(t, UpdateMember(ctx, database, zap.NewNop(), testAdmin, testMember.ID, db.UserUpdate{Name: strPtr("  ")}), model.ErrValidation)
	assert.ErrorIs(t, UpdateMember(ctx, database, zap.NewNop(), testAdmin, testMember.ID, db.UserUpdate{Role: &bogus}), model.ErrValidation)
	assert.ErrorIs(t, UpdateMember(ctx, database, zap.NewNop(), testAdmin, "gone", db.UserUpdate{Name: strPtr("X")}), docstore.ErrNotFound)
}

func TestDeleteMember(t *testing.T) {
	database, _ := newTestDB(t)
	ctx := context.Background()
	logger := zap.NewNop()

	assert.ErrorIs(t, DeleteMember(ctx, database, logger, testCreator, testMember.ID), authz.ErrForbidden)
	assert.ErrorIs(t, DeleteMember(ctx, database, logger, testAdmin, testAdmin.ID), model.ErrValidation)

	require.NoError(t, DeleteMember(ctx, database, logger, testAdmin, testMember.ID))
	assert.Nil(t, GetUser(ctx, database, logger, testMember.ID))
	assert.Len(t, ListUsers(ctx, database, logger), 2)
}

func TestCurrentUser(t *testing.T) {
	database, _ := newTestDB(t)
	provider := session.ContextProvider{}

	_, err := CurrentUser(context.Background(), provider, database)
	assert.ErrorIs(t, err, ErrNoSession)

	user, err := CurrentUser(session.WithUserID(context.Background(), testCreator.ID), provider, database)
	require.NoError(t, err)
	assert.Equal(t, testCreator.Name, user.Name)

	_, err = CurrentUser(session.WithUserID(context.Background(), "ghost"), provider, database)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
