package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hope-hub/pkg/core/activity"
	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/core/services"
)

// ListAnnouncementsCmd creates the listAnnouncements command
func ListAnnouncementsCmd(app *AppContext) *cobra.Command {
	var active bool

	cmd := &cobra.Command{
		Use:   "listAnnouncements",
		Short: "List announcements, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()

			var announcements []model.Announcement
			if active {
				announcements = services.ActiveAnnouncements(app.Ctx, app.Database, app.Logger, now)
			} else {
				announcements = services.ListAnnouncements(app.Ctx, app.Database, app.Logger)
			}

			fmt.Printf("\nFound %d announcements:\n\n", len(announcements))
			for _, a := range announcements {
				status := "inactive"
				if activity.IsActive(a, now) {
					status = "active"
				}
				fmt.Printf("- %s (%s) [%s]\n", a.Title, a.ID, status)
				fmt.Printf("  %s to %s\n", formatDate(a.StartDate), formatDate(a.EndDate))
				fmt.Printf("  %s\n", a.Message)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "Only show announcements active now")

	return cmd
}

// CreateAnnouncementCmd creates the createAnnouncement command
func CreateAnnouncementCmd(app *AppContext) *cobra.Command {
	var start, end string
	var email bool

	cmd := &cobra.Command{
		Use:   "createAnnouncement <title> <message>",
		Short: "Publish an announcement, optionally emailing it to every member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			startDate, err := parseDate(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			endDate, err := parseDate(end)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			announcement, err := services.CreateAnnouncement(app.Ctx, app.Database, app.Logger, actor, services.AnnouncementInput{
				Title:     args[0],
				Message:   args[1],
				StartDate: startDate,
				EndDate:   endDate,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Announcement created successfully!\n\n")
			fmt.Printf("ID:     %s\n", announcement.ID)
			fmt.Printf("Shown:  %s to %s\n\n", formatDate(announcement.StartDate), formatDate(announcement.EndDate))

			if !email {
				return nil
			}

			mailer, err := app.Mailer()
			if err != nil {
				return err
			}

			sent, failed, err := services.BroadcastAnnouncement(app.Ctx, app.Database, mailer, app.Logger, announcement)
			if err != nil {
				return err
			}

			if len(sent) > 0 {
				fmt.Printf("✓ Emails sent successfully (%d):\n", len(sent))
				for _, s := range sent {
					fmt.Printf("  - %s (%s)\n", s.Name, s.Email)
				}
				fmt.Println()
			}

			if len(failed) > 0 {
				fmt.Printf("✗ Failed to send emails (%d):\n", len(failed))
				for _, f := range failed {
					fmt.Printf("  - %s (%s): %s\n", f.Name, f.Email, f.Error)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day the announcement is shown (required)")
	cmd.Flags().StringVar(&end, "end", "", "Last moment the announcement is shown (required)")
	cmd.Flags().BoolVar(&email, "email", false, "Email the announcement to every member")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	return cmd
}

// UpdateAnnouncementCmd creates the updateAnnouncement command
func UpdateAnnouncementCmd(app *AppContext) *cobra.Command {
	var title, message, start, end string

	cmd := &cobra.Command{
		Use:   "updateAnnouncement <announcementId>",
		Short: "Change an announcement's text or the dates it is shown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			existing := findAnnouncement(services.ListAnnouncements(app.Ctx, app.Database, app.Logger), args[0])
			if existing == nil {
				return fmt.Errorf("announcement %s not found", args[0])
			}

			input := services.AnnouncementInput{
				Title:     existing.Title,
				Message:   existing.Message,
				StartDate: existing.StartDate,
				EndDate:   existing.EndDate,
			}
			if cmd.Flags().Changed("title") {
				input.Title = title
			}
			if cmd.Flags().Changed("message") {
				input.Message = message
			}
			if cmd.Flags().Changed("start") {
				if input.StartDate, err = parseDate(start); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
			}
			if cmd.Flags().Changed("end") {
				if input.EndDate, err = parseDate(end); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}

			announcement, err := services.UpdateAnnouncement(app.Ctx, app.Database, app.Logger, actor, args[0], input)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Announcement updated successfully!\n\n")
			fmt.Printf("Title:  %s\n", announcement.Title)
			fmt.Printf("Shown:  %s to %s\n\n", formatDate(announcement.StartDate), formatDate(announcement.EndDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&message, "message", "", "New message")
	cmd.Flags().StringVar(&start, "start", "", "New first day shown")
	cmd.Flags().StringVar(&end, "end", "", "New last moment shown")

	return cmd
}

func findAnnouncement(announcements []model.Announcement, id string) *model.Announcement {
	for i := range announcements {
		if announcements[i].ID == id {
			return &announcements[i]
		}
	}
	return nil
}

// DeleteAnnouncementCmd creates the deleteAnnouncement command
func DeleteAnnouncementCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteAnnouncement <announcementId>",
		Short: "Delete an announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			if err := services.DeleteAnnouncement(app.Ctx, app.Database, app.Logger, actor, args[0]); err != nil {
				return err
			}

			fmt.Printf("\n✓ Announcement %s deleted successfully!\n\n", args[0])
			return nil
		},
	}
}
