package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hope-hub/pkg/core/services"
	"github.com/jakechorley/hope-hub/pkg/seed"
)

// SeedCmd creates the seed command
func SeedCmd(app *AppContext) *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate an empty store with the demo fixture",
		Long: `Writes the demo members, events, announcements and conversations in one transaction.
Does nothing if the store already holds any member.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fixturePath
			if path == "" {
				path = app.Cfg.FixturePath
			}

			fixture, err := seed.Load(path)
			if err != nil {
				return err
			}

			result, err := services.Seed(app.Ctx, app.Database, app.Logger, fixture)
			if err != nil {
				return err
			}

			if !result.Seeded {
				fmt.Printf("\nStore already has members, nothing seeded.\n\n")
				return nil
			}

			fmt.Printf("\n✓ Store seeded successfully!\n\n")
			fmt.Printf("Members:       %d\n", result.Users)
			fmt.Printf("Events:        %d\n", result.Events)
			fmt.Printf("Announcements: %d\n", result.Announcements)
			fmt.Printf("Conversations: %d (%d messages)\n\n", result.Conversations, result.Messages)
			return nil
		},
	}

	cmd.Flags().StringVar(&fixturePath, "fixture", "", "Fixture YAML file (defaults to fixturePath from config, then the built in fixture)")

	return cmd
}
