package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is wrapped by every error caused by caller supplied data
var ErrValidation = errors.New("validation failed")

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleCreator Role = "Creator"
	RoleMember  Role = "Member"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCreator || r == RoleMember
}

// User is a member of the organisation
type User struct {
	ID             string
	Name           string `validate:"required"`
	Email          string `validate:"required,email"`
	Avatar         string
	Role           Role `validate:"required,oneof=Admin Creator Member"`
	LastSignedUpAt *time.Time // nil if the user has never signed up
}

// VolunteerRole is a task on an event carrying reward points and hours
type VolunteerRole struct {
	ID     string
	Name   string `validate:"required"`
	Points int    `validate:"min=0"`
	Hours  int    `validate:"min=0"`
}

// Signup links a user to one role of an event
type Signup struct {
	UserID string
	RoleID string
}

// Event is a volunteering opportunity. Roles and signups are embedded in the event document.
type Event struct {
	ID             string
	Title          string `validate:"required"`
	Description    string
	Date           time.Time
	CreatedAt      time.Time
	VolunteerRoles []VolunteerRole `validate:"dive"`
	Signups        []Signup
}

// Role returns the volunteer role with the given id
func (e *Event) Role(roleID string) (VolunteerRole, bool) {
	for _, r := range e.VolunteerRoles {
		if r.ID == roleID {
			return r, true
		}
	}
	return VolunteerRole{}, false
}

// HasSignup reports whether the user holds any signup on the event
func (e *Event) HasSignup(userID string) bool {
	for _, s := range e.Signups {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// Announcement is shown to members between StartDate and EndDate
type Announcement struct {
	ID        string
	Title     string `validate:"required"`
	Message   string `validate:"required"`
	StartDate time.Time
	EndDate   time.Time
}

// Message is a single chat message. Messages are append only.
type Message struct {
	ID        string
	SenderID  string
	Text      string
	Timestamp time.Time
}

// Conversation is a chat thread between participants
type Conversation struct {
	ID             string
	Name           string
	ParticipantIDs []string
	Participants   []User // resolved from ParticipantIDs, missing users are dropped
	Messages       []Message
}

// HasParticipant reports whether userID takes part in the conversation
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

var validate = validator.New()

// Validate checks struct tags on an entity and wraps failures in ErrValidation
func Validate(entity any) error {
	if err := validate.Struct(entity); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ValidateEmail checks a single email address
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, email)
	}
	return nil
}
