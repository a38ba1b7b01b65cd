package seed

import (
	"fmt"

	"github.com/jakechorley/hope-hub/pkg/core/activity"
	"github.com/jakechorley/hope-hub/pkg/core/model"
)

// Validate checks ids are present and unique and that every reference resolves
func (f *Fixture) Validate() error {
	if len(f.Users) == 0 {
		return fmt.Errorf("fixture has no users")
	}

	users := make(map[string]bool)
	for i, u := range f.Users {
		if u.ID == "" {
			return fmt.Errorf("users[%d]: id is required", i)
		}
		if users[u.ID] {
			return fmt.Errorf("users[%d]: duplicate id %s", i, u.ID)
		}
		users[u.ID] = true

		entity := model.User{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar, Role: u.Role}
		if err := model.Validate(entity); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
	}

	events := make(map[string]bool)
	for i, e := range f.Events {
		if e.ID == "" || events[e.ID] {
			return fmt.Errorf("events[%d]: missing or duplicate id %q", i, e.ID)
		}
		events[e.ID] = true
		if e.Title == "" {
			return fmt.Errorf("events[%d]: title is required", i)
		}

		roles := make(map[string]bool)
		for j, r := range e.VolunteerRoles {
			if r.ID == "" || roles[r.ID] {
				return fmt.Errorf("events[%d].volunteerRoles[%d]: missing or duplicate id %q", i, j, r.ID)
			}
			roles[r.ID] = true
			if err := model.Validate(model.VolunteerRole(r)); err != nil {
				return fmt.Errorf("events[%d].volunteerRoles[%d]: %w", i, j, err)
			}
		}

		signedUp := make(map[string]bool)
		for j, s := range e.Signups {
			if !users[s.UserID] {
				return fmt.Errorf("events[%d].signups[%d]: unknown user %s", i, j, s.UserID)
			}
			if !roles[s.RoleID] {
				return fmt.Errorf("events[%d].signups[%d]: unknown role %s", i, j, s.RoleID)
			}
			if signedUp[s.UserID] {
				return fmt.Errorf("events[%d].signups[%d]: user %s signed up twice", i, j, s.UserID)
			}
			signedUp[s.UserID] = true
		}
	}

	announcements := make(map[string]bool)
	for i, a := range f.Announcements {
		if a.ID == "" || announcements[a.ID] {
			return fmt.Errorf("announcements[%d]: missing or duplicate id %q", i, a.ID)
		}
		announcements[a.ID] = true
		if a.EndInDays < a.StartInDays {
			return fmt.Errorf("announcements[%d]: %w", i, activity.ErrInvalidRange)
		}
	}

	conversations := make(map[string]bool)
	messages := make(map[string]bool)
	for i, c := range f.Conversations {
		if c.ID == "" || conversations[c.ID] {
			return fmt.Errorf("conversations[%d]: missing or duplicate id %q", i, c.ID)
		}
		conversations[c.ID] = true

		participants := make(map[string]bool)
		for _, id := range c.ParticipantIDs {
			if !users[id] {
				return fmt.Errorf("conversations[%d]: unknown participant %s", i, id)
			}
			participants[id] = true
		}

		for j, m := range c.Messages {
			if m.ID == "" || messages[m.ID] {
				return fmt.Errorf("conversations[%d].messages[%d]: missing or duplicate id %q", i, j, m.ID)
			}
			messages[m.ID] = true
			if !participants[m.SenderID] {
				return fmt.Errorf("conversations[%d].messages[%d]: sender %s is not a participant", i, j, m.SenderID)
			}
		}
	}

	return nil
}
