package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/docstore"
)

// UserUpdate holds the profile fields to change; nil fields are left untouched
type UserUpdate struct {
	Name   *string
	Email  *string
	Avatar *string
	Role   *model.Role
}

// IsEmpty reports whether the update changes nothing
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Avatar == nil && u.Role == nil
}

// Fields returns the document fields touched by the update
func (u UserUpdate) Fields() docstore.Fields {
	fields := docstore.Fields{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Email != nil {
		fields["email"] = *u.Email
	}
	if u.Avatar != nil {
		fields["avatar"] = *u.Avatar
	}
	if u.Role != nil {
		fields["role"] = string(*u.Role)
	}
	return fields
}

// UserFromDocument converts a users document into a model.User
func UserFromDocument(doc docstore.Document) model.User {
	user := model.User{
		ID:     doc.ID,
		Name:   stringField(doc.Fields, "name"),
		Email:  stringField(doc.Fields, "email"),
		Avatar: stringField(doc.Fields, "avatar"),
		Role:   model.Role(stringField(doc.Fields, "role")),
	}
	if t, ok := asTime(doc.Fields["lastSignedUpAt"]); ok {
		user.LastSignedUpAt = &t
	}
	return user
}

// UserFields converts a model.User into document fields. The id is the document key and is not stored.
func UserFields(user *model.User) docstore.Fields {
	fields := docstore.Fields{
		"name":   user.Name,
		"email":  user.Email,
		"avatar": user.Avatar,
		"role":   string(user.Role),
	}
	if user.LastSignedUpAt != nil {
		fields["lastSignedUpAt"] = *user.LastSignedUpAt
	}
	return fields
}

// LastSignedUpFields returns the update marking a user's latest sign-up time
func LastSignedUpFields(at time.Time) docstore.Fields {
	return docstore.Fields{"lastSignedUpAt": at.UTC()}
}

// GetUsers retrieves all user records
func (db *DB) GetUsers(ctx context.Context) ([]model.User, error) {
	docs, err := db.store.List(ctx, UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	users := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, UserFromDocument(doc))
	}
	return users, nil
}

// GetUser retrieves a single user record
func (db *DB) GetUser(ctx context.Context, id string) (*model.User, error) {
	doc, err := db.store.Get(ctx, UsersCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user := UserFromDocument(*doc)
	return &user, nil
}

// InsertUser writes a user under its id, which must be set (it is the authentication uid)
func (db *DB) InsertUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		return fmt.Errorf("failed to insert user: id is required")
	}
	if err := db.store.Set(ctx, UsersCollection, user.ID, UserFields(user)); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateUser changes profile fields of an existing user
func (db *DB) UpdateUser(ctx context.Context, id string, update UserUpdate) error {
	if update.IsEmpty() {
		return nil
	}
	if err := db.store.Update(ctx, UsersCollection, id, update.Fields()); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser removes the user document only. The authentication identity is not touched.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	if err := db.store.Delete(ctx, UsersCollection, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
