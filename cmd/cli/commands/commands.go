package commands

import "github.com/spf13/cobra"

// All returns every command in the order shown by help
func All(app *AppContext) []*cobra.Command {
	return []*cobra.Command{
		SeedCmd(app),
		DashboardCmd(app),
		ListMembersCmd(app),
		AddMemberCmd(app),
		UpdateMemberCmd(app),
		DeleteMemberCmd(app),
		ListEventsCmd(app),
		CreateEventCmd(app),
		UpdateEventCmd(app),
		CreateEventSeriesCmd(app),
		SignUpCmd(app),
		ListAnnouncementsCmd(app),
		CreateAnnouncementCmd(app),
		UpdateAnnouncementCmd(app),
		DeleteAnnouncementCmd(app),
		ConversationsCmd(app),
		StartConversationCmd(app),
		SendMessageCmd(app),
		InteractiveCmd(app),
	}
}
