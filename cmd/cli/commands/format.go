package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/hope-hub/pkg/core/model"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
	displayLayout  = "Mon 02 Jan 2006 15:04"
)

// parseDate accepts 2006-01-02 or 2006-01-02T15:04 in local time
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{dateTimeLayout, dateLayout} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or YYYY-MM-DDTHH:MM)", value)
}

// parseRoles parses "Driver:10:2,Cook:5:3" into volunteer roles (name:points:hours).
// Points and hours default to 0 when omitted. An "id=" prefix keeps an existing role id.
func parseRoles(value string) ([]model.VolunteerRole, error) {
	var roles []model.VolunteerRole
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		var id string
		if before, after, ok := strings.Cut(entry, "="); ok {
			id, entry = strings.TrimSpace(before), after
		}

		parts := strings.Split(entry, ":")
		if len(parts) > 3 {
			return nil, fmt.Errorf("invalid role %q (expected name:points:hours)", entry)
		}

		role := model.VolunteerRole{ID: id, Name: strings.TrimSpace(parts[0])}
		numbers := []*int{&role.Points, &role.Hours}
		for i, part := range parts[1:] {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid number in role %q: %w", entry, err)
			}
			*numbers[i] = n
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(displayLayout)
}

// formatRoles renders roles with their rewards and the number of members signed up to each
func formatRoles(event model.Event) []string {
	taken := make(map[string]int)
	for _, s := range event.Signups {
		taken[s.RoleID]++
	}

	lines := make([]string, 0, len(event.VolunteerRoles))
	for _, r := range event.VolunteerRoles {
		lines = append(lines, fmt.Sprintf("%s (%s) - %d pts, %dh - %d signed up", r.Name, r.ID, r.Points, r.Hours, taken[r.ID]))
	}
	return lines
}

// participantNames lists resolved participant names, falling back to ids for missing members
func participantNames(conversation model.Conversation) string {
	names := make(map[string]string, len(conversation.Participants))
	for _, p := range conversation.Participants {
		names[p.ID] = p.Name
	}

	out := make([]string, 0, len(conversation.ParticipantIDs))
	for _, id := range conversation.ParticipantIDs {
		if name, ok := names[id]; ok {
			out = append(out, name)
		} else {
			out = append(out, id)
		}
	}
	return strings.Join(out, ", ")
}
