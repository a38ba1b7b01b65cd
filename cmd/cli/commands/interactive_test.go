package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/hope-hub/internal/config"
	"github.com/jakechorley/hope-hub/pkg/db"
	"github.com/jakechorley/hope-hub/pkg/docstore/memstore"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
		wantErr  bool
	}{
		{"plain words", "signUp evt1 --role sorter", []string{"signUp", "evt1", "--role", "sorter"}, false},
		{"double quotes", `createEvent "Soup kitchen" --date 2026-12-01`, []string{"createEvent", "Soup kitchen", "--date", "2026-12-01"}, false},
		{"single quotes", `sendMessage convo1 'See you at 10'`, []string{"sendMessage", "convo1", "See you at 10"}, false},
		{"empty quoted arg", `updateMember user-1 --avatar ""`, []string{"updateMember", "user-1", "--avatar", ""}, false},
		{"extra spaces", "  listEvents   --upcoming ", []string{"listEvents", "--upcoming"}, false},
		{"unclosed quote", `createEvent "Soup kitchen`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func newTestApp(t *testing.T) (*AppContext, map[string]*cobra.Command) {
	t.Helper()
	app := &AppContext{
		Env:      "test",
		Cfg:      &config.Config{Backend: config.BackendMemory},
		Database: db.NewDB(memstore.New()),
		Logger:   zap.NewNop(),
		Ctx:      context.Background(),
	}

	commands := make(map[string]*cobra.Command)
	for _, cmd := range All(app) {
		commands[cmd.Name()] = cmd
	}
	return app, commands
}

func TestRunSession(t *testing.T) {
	app, commands := newTestApp(t)

	script := strings.Join([]string{
		"seed",
		"as BhlKYjrL0lQU96ze7vaVeYtn6cr1",
		`createEvent "Soup Kitchen" --date 2026-12-01T12:00 --roles "Cook:5:3"`,
		"as user-3",
		"signUp evt4 --role setup",
		"signUp evt4 --role guests",
		"unknownCommand",
		"exit",
		"listMembers",
	}, "\n")

	require.NoError(t, runSession(app, commands, strings.NewReader(script)))

	events, err := app.Database.GetEvents(app.Ctx)
	require.NoError(t, err)
	assert.Len(t, events, 5)

	gala, err := app.Database.GetEvent(app.Ctx, "evt4")
	require.NoError(t, err)
	require.Len(t, gala.Signups, 1, "second sign-up to the same event is rejected")
	assert.Equal(t, "user-3", gala.Signups[0].UserID)
	assert.Equal(t, "setup", gala.Signups[0].RoleID)

	actor, err := app.Actor()
	require.NoError(t, err)
	assert.Equal(t, "user-3", actor.ID)
}

func TestRunSession_MemberCannotCreateEvents(t *testing.T) {
	app, commands := newTestApp(t)

	script := strings.Join([]string{
		"seed",
		"as user-1",
		`createEvent "Not allowed" --date 2026-12-01`,
	}, "\n")

	require.NoError(t, runSession(app, commands, strings.NewReader(script)))

	events, err := app.Database.GetEvents(app.Ctx)
	require.NoError(t, err)
	assert.Len(t, events, 4)
}

func TestRunCommand_ResetsFlags(t *testing.T) {
	app, commands := newTestApp(t)
	createEvent := commands["createEvent"]

	err := runCommand(createEvent, []string{"Missing date"})
	assert.ErrorContains(t, err, "date")

	app.SignInAs("nobody")
	err = runCommand(createEvent, []string{"Still missing", "--roles", "Cook"})
	assert.ErrorContains(t, err, "date")
	assert.False(t, createEvent.Flags().Changed("date"))
}

func TestActor_NoSession(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := app.Actor()
	assert.ErrorContains(t, err, "--as")
}

func TestRunSession_UpdateEventKeepsSignups(t *testing.T) {
	app, commands := newTestApp(t)

	script := strings.Join([]string{
		"seed",
		"as BhlKYjrL0lQU96ze7vaVeYtn6cr1",
		`updateEvent evt1 --title "Food Drive"`,
		`updateEvent evt4 --roles "setup=Setup Crew:30:4,Runner:2"`,
		`updateEvent missing --title "Nothing"`,
	}, "\n")

	require.NoError(t, runSession(app, commands, strings.NewReader(script)))

	drive, err := app.Database.GetEvent(app.Ctx, "evt1")
	require.NoError(t, err)
	assert.Equal(t, "Food Drive", drive.Title)
	assert.Len(t, drive.Signups, 3)
	require.Len(t, drive.VolunteerRoles, 2)
	assert.Equal(t, "sorter", drive.VolunteerRoles[0].ID)
	assert.Equal(t, "driver", drive.VolunteerRoles[1].ID)

	gala, err := app.Database.GetEvent(app.Ctx, "evt4")
	require.NoError(t, err)
	assert.Equal(t, "Annual Gala Dinner", gala.Title)
	require.Len(t, gala.VolunteerRoles, 2)
	assert.Equal(t, "setup", gala.VolunteerRoles[0].ID)
	assert.Equal(t, 30, gala.VolunteerRoles[0].Points)
	assert.Equal(t, "Runner", gala.VolunteerRoles[1].Name)
	assert.NotEmpty(t, gala.VolunteerRoles[1].ID)
}

func TestRunSession_UpdateAnnouncement(t *testing.T) {
	app, commands := newTestApp(t)

	script := strings.Join([]string{
		"seed",
		"as user-1",
		`updateAnnouncement ann1 --title "Members cannot"`,
		"as BhlKYjrL0lQU96ze7vaVeYtn6cr1",
		`updateAnnouncement ann2 --title "Volunteers wanted"`,
		`updateAnnouncement ann3 --end 2001-01-01`,
	}, "\n")

	require.NoError(t, runSession(app, commands, strings.NewReader(script)))

	byID := make(map[string]string)
	announcements, err := app.Database.GetAnnouncements(app.Ctx)
	require.NoError(t, err)
	for _, a := range announcements {
		byID[a.ID] = a.Title
	}
	assert.Equal(t, "Annual Gala Dinner", byID["ann1"])
	assert.Equal(t, "Volunteers wanted", byID["ann2"])
	assert.Equal(t, "New Member Welcome", byID["ann3"], "end before start is rejected")
}

func TestListEvents_New(t *testing.T) {
	app, commands := newTestApp(t)

	script := strings.Join([]string{
		"seed",
		"as user-3",
		"listEvents --new",
	}, "\n")
	require.NoError(t, runSession(app, commands, strings.NewReader(script)))

	err := runCommand(commands["listEvents"], []string{"--new", "extra"})
	assert.Error(t, err)
}
