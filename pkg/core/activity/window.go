package activity

import (
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/hope-hub/pkg/core/model"
)

// ErrInvalidRange is returned when an end date precedes its start date
var ErrInvalidRange = fmt.Errorf("%w: end date is before start date", model.ErrValidation)

// IsActive reports whether now falls within the announcement's window. Both bounds are inclusive.
func IsActive(a model.Announcement, now time.Time) bool {
	return !now.Before(a.StartDate) && !now.After(a.EndDate)
}

// ValidateRange rejects a window whose end is before its start. Equal dates are allowed.
func ValidateRange(start, end time.Time) error {
	if end.Before(start) {
		return ErrInvalidRange
	}
	return nil
}

// FilterActive returns the announcements active at now, preserving order
func FilterActive(announcements []model.Announcement, now time.Time) []model.Announcement {
	active := make([]model.Announcement, 0, len(announcements))
	for _, a := range announcements {
		if IsActive(a, now) {
			active = append(active, a)
		}
	}
	return active
}

// IsInvalidRange reports whether err was caused by an inverted window
func IsInvalidRange(err error) bool {
	return errors.Is(err, ErrInvalidRange)
}
