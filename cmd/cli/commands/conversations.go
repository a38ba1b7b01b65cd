package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hope-hub/pkg/core/model"
	"github.com/jakechorley/hope-hub/pkg/core/services"
)

// ConversationsCmd creates the conversations command
func ConversationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "conversations [conversationId]",
		Short: "List the signed in member's conversations, or show one conversation's messages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				conversation, err := services.GetConversation(app.Ctx, app.Database, app.Logger, args[0])
				if err != nil {
					return err
				}
				if !conversation.HasParticipant(actor.ID) {
					return fmt.Errorf("you are not part of conversation %s", args[0])
				}
				printThread(*conversation)
				return nil
			}

			conversations := services.ConversationsForUser(app.Ctx, app.Database, app.Logger, actor.ID)

			fmt.Printf("\nFound %d conversations:\n\n", len(conversations))
			for _, c := range conversations {
				fmt.Printf("- %s (%s) with %s\n", c.Name, c.ID, participantNames(c))
				if n := len(c.Messages); n > 0 {
					last := c.Messages[n-1]
					fmt.Printf("  %s: %s\n", formatDate(last.Timestamp), last.Text)
				}
			}
			fmt.Println()

			return nil
		},
	}
}

// StartConversationCmd creates the startConversation command
func StartConversationCmd(app *AppContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "startConversation <memberId>...",
		Short: "Start a conversation with one or more members",
		Long:  `Starts a conversation. A conversation with one member is named after them; groups need --name.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			conversation, err := services.StartConversation(app.Ctx, app.Database, app.Logger, actor, name, args)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Conversation started successfully!\n\n")
			fmt.Printf("ID:           %s\n", conversation.ID)
			fmt.Printf("Name:         %s\n", conversation.Name)
			fmt.Printf("Participants: %s\n\n", strings.Join(conversation.ParticipantIDs, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Conversation name (required for groups)")

	return cmd
}

// SendMessageCmd creates the sendMessage command
func SendMessageCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sendMessage <conversationId> <text>...",
		Short: "Send a message to a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			message, err := services.SendMessage(app.Ctx, app.Database, app.Logger, actor, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Message sent at %s\n\n", formatDate(message.Timestamp))
			return nil
		},
	}
}

func printThread(conversation model.Conversation) {
	names := make(map[string]string, len(conversation.Participants))
	for _, p := range conversation.Participants {
		names[p.ID] = p.Name
	}

	fmt.Printf("\n%s (%s)\n", conversation.Name, conversation.ID)
	fmt.Printf("With %s\n\n", participantNames(conversation))
	for _, m := range conversation.Messages {
		sender, ok := names[m.SenderID]
		if !ok {
			sender = m.SenderID
		}
		fmt.Printf("[%s] %s: %s\n", formatDate(m.Timestamp), sender, m.Text)
	}
	fmt.Println()
}
