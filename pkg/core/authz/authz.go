package authz

import (
	"errors"
	"fmt"

	"github.com/jakechorley/hope-hub/pkg/core/model"
)

// ErrForbidden is returned when a user may not perform an action
var ErrForbidden = errors.New("forbidden")

type Action string

const (
	CreateEvent        Action = "create_event"
	EditEvent          Action = "edit_event"
	CreateAnnouncement Action = "create_announcement"
	EditAnnouncement   Action = "edit_announcement"
	DeleteAnnouncement Action = "delete_announcement"
	ManageMembers      Action = "manage_members"
	SignUp             Action = "sign_up"
	StartConversation  Action = "start_conversation"
	SendMessage        Action = "send_message"
	EditOwnProfile     Action = "edit_own_profile"
)

// memberActions are open to every role
var memberActions = map[Action]bool{
	SignUp:            true,
	StartConversation: true,
	SendMessage:       true,
	EditOwnProfile:    true,
}

// creatorActions are open to Creators and Admins
var creatorActions = map[Action]bool{
	CreateEvent:        true,
	EditEvent:          true,
	CreateAnnouncement: true,
	EditAnnouncement:   true,
	DeleteAnnouncement: true,
}

// Can reports whether user may perform action. A nil user may do nothing.
func Can(user *model.User, action Action) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case model.RoleAdmin:
		return memberActions[action] || creatorActions[action] || action == ManageMembers
	case model.RoleCreator:
		return memberActions[action] || creatorActions[action]
	case model.RoleMember:
		return memberActions[action]
	default:
		return false
	}
}

// Require returns an error wrapping ErrForbidden unless user may perform action
func Require(user *model.User, action Action) error {
	if Can(user, action) {
		return nil
	}
	if user == nil {
		return fmt.Errorf("%w: %s requires a signed in user", ErrForbidden, action)
	}
	return fmt.Errorf("%w: %s role may not %s", ErrForbidden, user.Role, action)
}
