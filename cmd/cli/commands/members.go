package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/core/services"
	"github.com/jakechorley/hope-hub/pkg/db"
)

// ListMembersCmd creates the listMembers command
func ListMembersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listMembers",
		Short: "List all members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members := services.ListUsers(app.Ctx, app.Database, app.Logger)

			fmt.Printf("\nFound %d members:\n\n", len(members))
			for _, m := range members {
				lastSignUp := "never signed up"
				if m.LastSignedUpAt != nil {
					lastSignUp = "last signed up " + formatDate(*m.LastSignedUpAt)
				}
				fmt.Printf("- %s (%s) - %s - %s - %s\n", m.Name, m.ID, m.Role, m.Email, lastSignUp)
			}
			fmt.Println()

			return nil
		},
	}
}

// AddMemberCmd creates the addMember command
func AddMemberCmd(app *AppContext) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "addMember <name> <email>",
		Short: "Create a login for a new member and add them to the organisation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			provisioner, err := app.Provisioner()
			if err != nil {
				return err
			}

			user, err := services.AddMember(app.Ctx, app.Database, provisioner, app.Logger, actor, services.NewMember{
				Name:  args[0],
				Email: args[1],
				Role:  model.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Member added successfully!\n\n")
			fmt.Printf("ID:     %s\n", user.ID)
			fmt.Printf("Name:   %s\n", user.Name)
			fmt.Printf("Email:  %s\n", user.Email)
			fmt.Printf("Role:   %s\n", user.Role)
			fmt.Printf("Avatar: %s\n\n", user.Avatar)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(model.RoleMember), "Role: Admin, Creator or Member")

	return cmd
}

// UpdateMemberCmd creates the updateMember command
func UpdateMemberCmd(app *AppContext) *cobra.Command {
	var name, email, avatar, role string

	cmd := &cobra.Command{
		Use:   "updateMember <userId>",
		Short: "Change a member's name, email, avatar or role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			var update db.UserUpdate
			if cmd.Flags().Changed("name") {
				update.Name = &name
			}
			if cmd.Flags().Changed("email") {
				update.Email = &email
			}
			if cmd.Flags().Changed("avatar") {
				update.Avatar = &avatar
			}
			if cmd.Flags().Changed("role") {
				r := model.Role(role)
				update.Role = &r
			}

			if err := services.UpdateMember(app.Ctx, app.Database, app.Logger, actor, args[0], update); err != nil {
				return err
			}

			fmt.Printf("\n✓ Member %s updated successfully!\n\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&avatar, "avatar", "", "New avatar URL")
	cmd.Flags().StringVar(&role, "role", "", "New role: Admin, Creator or Member")

	return cmd
}

// DeleteMemberCmd creates the deleteMember command
func DeleteMemberCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteMember <userId>",
		Short: "Remove a member's profile (their login is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			if err := services.DeleteMember(app.Ctx, app.Database, app.Logger, actor, args[0]); err != nil {
				return err
			}

			fmt.Printf("\n✓ Member %s deleted successfully!\n\n", args[0])
			return nil
		},
	}
}
