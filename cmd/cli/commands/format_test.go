package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/hope-hub/pkg/core/model"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"date only", "2026-10-20", time.Date(2026, 10, 20, 0, 0, 0, 0, time.Local), false},
		{"date and time", "2026-10-20T09:30", time.Date(2026, 10, 20, 9, 30, 0, 0, time.Local), false},
		{"surrounding spaces", " 2026-10-20 ", time.Date(2026, 10, 20, 0, 0, 0, 0, time.Local), false},
		{"wrong order", "20-10-2026", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %v", got)
		})
	}
}

func TestParseRoles(t *testing.T) {
	roles, err := parseRoles("Driver:10:2, Cook:5:3,Greeter")
	require.NoError(t, err)
	assert.Equal(t, []model.VolunteerRole{
		{Name: "Driver", Points: 10, Hours: 2},
		{Name: "Cook", Points: 5, Hours: 3},
		{Name: "Greeter"},
	}, roles)

	roles, err = parseRoles("setup=Setup Crew:30:4,Runner:2")
	require.NoError(t, err)
	assert.Equal(t, []model.VolunteerRole{
		{ID: "setup", Name: "Setup Crew", Points: 30, Hours: 4},
		{Name: "Runner", Points: 2},
	}, roles)

	roles, err = parseRoles("")
	require.NoError(t, err)
	assert.Empty(t, roles)

	_, err = parseRoles("Driver:ten:2")
	assert.Error(t, err)

	_, err = parseRoles("Driver:1:2:3")
	assert.Error(t, err)
}

func TestFormatRoles(t *testing.T) {
	event := model.Event{
		VolunteerRoles: []model.VolunteerRole{
			{ID: "r1", Name: "Driver", Points: 10, Hours: 2},
			{ID: "r2", Name: "Cook", Points: 5, Hours: 3},
		},
		Signups: []model.Signup{
			{UserID: "u1", RoleID: "r1"},
			{UserID: "u2", RoleID: "r1"},
			{UserID: "u3", RoleID: "gone"},
		},
	}

	assert.Equal(t, []string{
		"Driver (r1) - 10 pts, 2h - 2 signed up",
		"Cook (r2) - 5 pts, 3h - 0 signed up",
	}, formatRoles(event))
}

func TestParticipantNames(t *testing.T) {
	conversation := model.Conversation{
		ParticipantIDs: []string{"u1", "u2", "deleted"},
		Participants: []model.User{
			{ID: "u2", Name: "Ben"},
			{ID: "u1", Name: "Ada"},
		},
	}

	assert.Equal(t, "Ada, Ben, deleted", participantNames(conversation))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", formatDate(time.Time{}))
	assert.Equal(t, "Tue 20 Oct 2026 09:30", formatDate(time.Date(2026, 10, 20, 9, 30, 0, 0, time.Local)))
}
