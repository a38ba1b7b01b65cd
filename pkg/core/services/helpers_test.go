package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/db"
	"github.com/jakechorley/hope-hub/pkg/docstore/memstore"
)

var (
	testAdmin   = &model.User{ID: "admin", Name: "Admin User", Email: "admin@example.com", Role: model.RoleAdmin}
	testCreator = &model.User{ID: "creator", Name: "Jane Smith", Email: "jane@example.com", Role: model.RoleCreator}
	testMember  = &model.User{ID: "member", Name: "John Doe", Email: "john@example.com", Role: model.RoleMember}
)

// newTestDB returns a database over an empty in-memory store holding the three test users
func newTestDB(t *testing.T) (*db.DB, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	database := db.NewDB(store)
	for _, u := range []*model.User{testAdmin, testCreator, testMember} {
		user := *u
		require.NoError(t, database.InsertUser(context.Background(), &user))
	}
	return database, store
}

// freezeTime fixes the service clock for the duration of the test
func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	previous := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = previous })
}

// insertEvent stores an event with the given roles and returns its id
func insertEvent(t *testing.T, database *db.DB, title string, date time.Time, roles ...model.VolunteerRole) string {
	t.Helper()
	event := &model.Event{
		Title:          title,
		Date:           date,
		CreatedAt:      date.AddDate(0, 0, -14),
		VolunteerRoles: roles,
		Signups:        []model.Signup{},
	}
	require.NoError(t, database.InsertEvent(context.Background(), event))
	return event.ID
}

// mockMailer implements Mailer for testing
type mockMailer struct {
	sentEmails []string
	failFor    map[string]bool
}

func (m *mockMailer) SendEmail(to, subject, body string) error {
	if m.failFor[to] {
		return fmt.Errorf("mailbox unavailable")
	}
	m.sentEmails = append(m.sentEmails, to)
	return nil
}

// mockProvisioner implements Provisioner for testing
type mockProvisioner struct {
	uid     string
	err     error
	created []string
}

func (m *mockProvisioner) CreateIdentity(ctx context.Context, name, email string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.created = append(m.created, email)
	return m.uid, nil
}
