package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/core/services"
)

// ListEventsCmd creates the listEvents command
func ListEventsCmd(app *AppContext) *cobra.Command {
	var upcoming, mine, fresh bool

	cmd := &cobra.Command{
		Use:   "listEvents",
		Short: "List events with their volunteer roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var events []model.Event
			switch {
			case fresh:
				actor, err := app.Actor()
				if err != nil {
					return err
				}
				events = services.NewEventsSince(app.Ctx, app.Database, app.Logger, actor.LastSignedUpAt)
			case mine:
				actor, err := app.Actor()
				if err != nil {
					return err
				}
				events = services.EventsForUser(app.Ctx, app.Database, app.Logger, actor.ID)
			case upcoming:
				events = services.UpcomingEvents(app.Ctx, app.Database, app.Logger, time.Now())
			default:
				events = services.ListEvents(app.Ctx, app.Database, app.Logger)
			}

			fmt.Printf("\nFound %d events:\n", len(events))
			for _, e := range events {
				printEvent(e)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "Only show events that have not happened yet")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only show events the signed in member has signed up for")
	cmd.Flags().BoolVar(&fresh, "new", false, "Only show events created since the signed in member last signed up")

	return cmd
}

// CreateEventCmd creates the createEvent command
func CreateEventCmd(app *AppContext) *cobra.Command {
	var input eventFlags

	cmd := &cobra.Command{
		Use:   "createEvent <title>",
		Short: "Create an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			eventInput, err := input.toInput(args[0])
			if err != nil {
				return err
			}

			event, err := services.CreateEvent(app.Ctx, app.Database, app.Logger, actor, eventInput)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Event created successfully!\n")
			printEvent(*event)
			fmt.Println()
			return nil
		},
	}

	input.register(cmd)

	return cmd
}

// UpdateEventCmd creates the updateEvent command
func UpdateEventCmd(app *AppContext) *cobra.Command {
	var title, description, date, roles string

	cmd := &cobra.Command{
		Use:   "updateEvent <eventId>",
		Short: "Change an event's details or volunteer roles (sign-ups are kept)",
		Long: `Changes only the given fields. --roles replaces every role; prefix a role with its id
to keep it, e.g. --roles "setup=Setup Crew:30:4,Runner:2". Sign-ups to removed roles earn nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			existing := services.GetEvent(app.Ctx, app.Database, app.Logger, args[0])
			if existing == nil {
				return fmt.Errorf("event %s not found", args[0])
			}

			input := services.EventInput{
				Title:          existing.Title,
				Description:    existing.Description,
				Date:           existing.Date,
				VolunteerRoles: existing.VolunteerRoles,
			}
			if cmd.Flags().Changed("title") {
				input.Title = title
			}
			if cmd.Flags().Changed("description") {
				input.Description = description
			}
			if cmd.Flags().Changed("date") {
				if input.Date, err = parseDate(date); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("roles") {
				if input.VolunteerRoles, err = parseRoles(roles); err != nil {
					return err
				}
			}

			event, err := services.UpdateEvent(app.Ctx, app.Database, app.Logger, actor, args[0], input)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Event updated successfully!\n")
			printEvent(*event)
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&date, "date", "", "New date, YYYY-MM-DD or YYYY-MM-DDTHH:MM")
	cmd.Flags().StringVar(&roles, "roles", "", `Replacement roles as [id=]name:points:hours, comma separated`)

	return cmd
}

// CreateEventSeriesCmd creates the createEventSeries command
func CreateEventSeriesCmd(app *AppContext) *cobra.Command {
	var input eventFlags
	var recurrence string

	cmd := &cobra.Command{
		Use:   "createEventSeries <title>",
		Short: "Create one event per occurrence of a recurrence rule",
		Long: `Creates a series of events starting at --date, repeating by an RFC 5545 rule, e.g.
  createEventSeries "Food bank" --date 2026-11-07T10:00 --roles "Driver:10:2" --rrule "FREQ=WEEKLY;COUNT=6"
Rules without COUNT or UNTIL stop after 52 events. --rrule defaults to defaultRecurrence from config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			rule := recurrence
			if rule == "" {
				rule = app.Cfg.DefaultRecurrence
			}
			if rule == "" {
				return fmt.Errorf("--rrule is required when defaultRecurrence is not configured")
			}

			eventInput, err := input.toInput(args[0])
			if err != nil {
				return err
			}

			events, err := services.CreateEventSeries(app.Ctx, app.Database, app.Logger, actor, eventInput, rule)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Created %d events successfully!\n\n", len(events))
			for i, e := range events {
				fmt.Printf("  %2d. %s (%s)\n", i+1, formatDate(e.Date), e.ID)
			}
			fmt.Println()
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVar(&recurrence, "rrule", "", "RFC 5545 recurrence rule, e.g. FREQ=WEEKLY;COUNT=4")

	return cmd
}

// SignUpCmd creates the signUp command
func SignUpCmd(app *AppContext) *cobra.Command {
	var roleID, userID string

	cmd := &cobra.Command{
		Use:   "signUp <eventId>",
		Short: "Sign up for a volunteer role on an event",
		Long: `Signs the signed in member up for an event. Without --role the event's first role is taken.
Admins may sign up another member with --user.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			target := userID
			if target == "" {
				target = actor.ID
			}

			var result *services.SignUpResult
			if roleID == "" {
				result, err = services.SignUpFirstAvailable(app.Ctx, app.Database, app.Logger, actor, args[0], target)
			} else {
				result, err = services.SignUp(app.Ctx, app.Database, app.Logger, actor, args[0], target, roleID)
			}
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Signed up successfully!\n\n")
			fmt.Printf("Event:   %s (%s)\n", result.EventTitle, result.EventID)
			fmt.Printf("Role:    %s\n", result.Role.Name)
			fmt.Printf("Rewards: %d points, %d hours\n\n", result.Role.Points, result.Role.Hours)
			return nil
		},
	}

	cmd.Flags().StringVar(&roleID, "role", "", "Volunteer role id (defaults to the event's first role)")
	cmd.Flags().StringVar(&userID, "user", "", "Member to sign up (defaults to the signed in member)")

	return cmd
}

// DashboardCmd creates the dashboard command
func DashboardCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the signed in member's rewards, announcements and upcoming events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			result := services.Dashboard(app.Ctx, app.Database, app.Logger, actor, time.Now())

			fmt.Printf("\nWelcome back, %s!\n\n", result.User.Name)
			fmt.Printf("Reward points:   %d\n", result.Summary.RewardPoints)
			fmt.Printf("Volunteer hours: %d\n", result.Summary.VolunteerHours)
			fmt.Printf("New events:      %d\n", result.Summary.NewEvents)

			fmt.Printf("\nAnnouncements (%d):\n", len(result.ActiveAnnouncements))
			for _, a := range result.ActiveAnnouncements {
				fmt.Printf("  - %s: %s\n", a.Title, a.Message)
			}

			fmt.Printf("\nUpcoming events (%d):\n", len(result.UpcomingEvents))
			for _, e := range result.UpcomingEvents {
				marker := " "
				if e.HasSignup(actor.ID) {
					marker = "✓"
				}
				fmt.Printf("  %s %s - %s (%s)\n", marker, formatDate(e.Date), e.Title, e.ID)
			}
			fmt.Println()

			return nil
		},
	}
}

// eventFlags are the flags shared by createEvent and createEventSeries
type eventFlags struct {
	description string
	date        string
	roles       string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "Event description")
	cmd.Flags().StringVar(&f.date, "date", "", "Event date, YYYY-MM-DD or YYYY-MM-DDTHH:MM (required)")
	cmd.Flags().StringVar(&f.roles, "roles", "", `Volunteer roles as name:points:hours, comma separated, e.g. "Driver:10:2,Cook:5:3"`)
	cmd.MarkFlagRequired("date")
}

func (f *eventFlags) toInput(title string) (services.EventInput, error) {
	date, err := parseDate(f.date)
	if err != nil {
		return services.EventInput{}, err
	}

	roles, err := parseRoles(f.roles)
	if err != nil {
		return services.EventInput{}, err
	}

	return services.EventInput{
		Title:          title,
		Description:    f.description,
		Date:           date,
		VolunteerRoles: roles,
	}, nil
}

func printEvent(e model.Event) {
	fmt.Printf("\n%s (%s)\n", e.Title, e.ID)
	fmt.Printf("  Date: %s\n", formatDate(e.Date))
	if e.Description != "" {
		fmt.Printf("  %s\n", e.Description)
	}
	for _, line := range formatRoles(e) {
		fmt.Printf("  - %s\n", line)
	}
}
