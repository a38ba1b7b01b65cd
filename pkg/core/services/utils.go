package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/db"
	"github.com/jakechorley/hope-hub/pkg/docstore"
	"github.com/jakechorley/hope-hub/pkg/session"
)

// ErrNoSession is returned when no user is signed in on the request context
var ErrNoSession = errors.New("no signed in user")

// now is the service clock, replaced in tests
var now = time.Now

// Mailer sends a plain text email
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Provisioner creates an authentication identity for a new member and returns its uid
type Provisioner interface {
	CreateIdentity(ctx context.Context, name, email string) (string, error)
}

// FailedEmail represents an email that could not be sent
type FailedEmail struct {
	UserID string
	Name   string
	Email  string
	Error  string
}

// CurrentUser resolves the signed in user from the request session
func CurrentUser(ctx context.Context, provider session.Provider, users db.UserStore) (*model.User, error) {
	userID, ok := provider.CurrentUserID(ctx)
	if !ok {
		return nil, ErrNoSession
	}

	user, err := users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load signed in user %s: %w", userID, err)
	}
	return user, nil
}

// validationError wraps a message in model.ErrValidation
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrValidation, fmt.Sprintf(format, args...))
}

// isNotFound reports whether err is a missing document
func isNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}

// sortEventsByDate orders events by date, earliest first
func sortEventsByDate(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

// initials returns the first letter of each word in name
func initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		b.WriteRune([]rune(word)[0])
	}
	return b.String()
}

// AvatarPlaceholder returns the placeholder avatar url for a new member
func AvatarPlaceholder(name string) string {
	text := initials(name)
	if text == "" {
		text = "?"
	}
	return "https://placehold.co/100x100.png?text=" + url.QueryEscape(text)
}
