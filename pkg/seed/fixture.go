package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jakechorley/hope-hub/pkg/core/model"
)

//go:embed fixture.yaml
var defaultFixture []byte

// Fixture is the demo data written into an empty store
type Fixture struct {
	Users         []User         `yaml:"users"`
	Events        []Event        `yaml:"events"`
	Announcements []Announcement `yaml:"announcements"`
	Conversations []Conversation `yaml:"conversations"`
}

type User struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Email  string     `yaml:"email"`
	Avatar string     `yaml:"avatar"`
	Role   model.Role `yaml:"role"`
}

type Role struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Points int    `yaml:"points"`
	Hours  int    `yaml:"hours"`
}

type Signup struct {
	UserID string `yaml:"userId"`
	RoleID string `yaml:"roleId"`
}

type Event struct {
	ID             string    `yaml:"id"`
	Title          string    `yaml:"title"`
	Description    string    `yaml:"description"`
	Date           time.Time `yaml:"date"`
	VolunteerRoles []Role    `yaml:"volunteerRoles"`
	Signups        []Signup  `yaml:"signups"`
}

// Announcement windows are given in days relative to the seeding time
type Announcement struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Message     string `yaml:"message"`
	StartInDays int    `yaml:"startInDays"`
	EndInDays   int    `yaml:"endInDays"`
}

type Message struct {
	ID       string        `yaml:"id"`
	SenderID string        `yaml:"senderId"`
	Text     string        `yaml:"text"`
	Ago      time.Duration `yaml:"ago"`
}

type Conversation struct {
	ID             string    `yaml:"id"`
	Name           string    `yaml:"name"`
	ParticipantIDs []string  `yaml:"participantIds"`
	Messages       []Message `yaml:"messages"`
}

// Entities is a fixture resolved against a seeding time
type Entities struct {
	Users         []model.User
	Events        []model.Event
	Announcements []model.Announcement
	Conversations []model.Conversation // Messages are populated
}

// Default returns the embedded fixture
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// Load reads a fixture from path, or the embedded fixture if path is empty
func Load(path string) (*Fixture, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates fixture YAML
func Parse(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &fixture, nil
}

// Resolve converts the fixture into entities, placing relative times around at
func (f *Fixture) Resolve(at time.Time) Entities {
	var out Entities

	for _, u := range f.Users {
		out.Users = append(out.Users, model.User{
			ID:     u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Avatar: u.Avatar,
			Role:   u.Role,
		})
	}

	for _, e := range f.Events {
		event := model.Event{
			ID:             e.ID,
			Title:          e.Title,
			Description:    e.Description,
			Date:           e.Date,
			CreatedAt:      at,
			VolunteerRoles: []model.VolunteerRole{},
			Signups:        []model.Signup{},
		}
		for _, r := range e.VolunteerRoles {
			event.VolunteerRoles = append(event.VolunteerRoles, model.VolunteerRole(r))
		}
		for _, s := range e.Signups {
			event.Signups = append(event.Signups, model.Signup(s))
		}
		out.Events = append(out.Events, event)
	}

	for _, a := range f.Announcements {
		out.Announcements = append(out.Announcements, model.Announcement{
			ID:        a.ID,
			Title:     a.Title,
			Message:   a.Message,
			StartDate: at.AddDate(0, 0, a.StartInDays),
			EndDate:   at.AddDate(0, 0, a.EndInDays),
		})
	}

	for _, c := range f.Conversations {
		conversation := model.Conversation{
			ID:             c.ID,
			Name:           c.Name,
			ParticipantIDs: c.ParticipantIDs,
		}
		for _, m := range c.Messages {
			conversation.Messages = append(conversation.Messages, model.Message{
				ID:        m.ID,
				SenderID:  m.SenderID,
				Text:      m.Text,
				Timestamp: at.Add(-m.Ago),
			})
		}
		out.Conversations = append(out.Conversations, conversation)
	}

	return out
}
