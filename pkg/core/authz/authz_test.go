package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/hope-hub/pkg/core/model"
)

func TestCan(t *testing.T) {
	admin := &model.User{ID: "a", Role: model.RoleAdmin}
	creator := &model.User{ID: "c", Role: model.RoleCreator}
	member := &model.User{ID: "m", Role: model.RoleMember}
	unknown := &model.User{ID: "x", Role: "Guest"}

	tests := []struct {
		action  Action
		admin   bool
		creator bool
		member  bool
	}{
		{CreateEvent, true, true, false},
		{EditEvent, true, true, false},
		{CreateAnnouncement, true, true, false},
		{EditAnnouncement, true, true, false},
		{DeleteAnnouncement, true, true, false},
		{ManageMembers, true, false, false},
		{SignUp, true, true, true},
		{StartConversation, true, true, true},
		{SendMessage, true, true, true},
		{EditOwnProfile, true, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.admin, Can(admin, tt.action), "admin")
			assert.Equal(t, tt.creator, Can(creator, tt.action), "creator")
			assert.Equal(t, tt.member, Can(member, tt.action), "member")
			assert.False(t, Can(unknown, tt.action), "unknown role")
			assert.False(t, Can(nil, tt.action), "nil user")
		})
	}
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require(&model.User{Role: model.RoleCreator}, CreateEvent))

	err := Require(&model.User{Role: model.RoleMember}, CreateEvent)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "Member")

	assert.ErrorIs(t, Require(nil, SignUp), ErrForbidden)
}
