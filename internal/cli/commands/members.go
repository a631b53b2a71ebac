package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewMembersCommand creates the members subcommand.
func NewMembersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "List members allowed to post anonymously",
		Long: `List the memberships of the target group space. Only these people can
have their direct messages relayed.`,
		Example: `  mutedvoice members
  mutedvoice members --room Y2lzY29zcGFyazovL3VzL1JPT00v...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadDeps()
			if err != nil {
				return err
			}

			roomID, _ := cmd.Flags().GetString("room")
			if roomID == "" {
				roomID = rt.cfg.Webex.TargetRoomID
			}

			members, err := rt.client.ListMemberships(context.Background(), roomID)
			if err != nil {
				return fmt.Errorf("failed to list memberships: %w", err)
			}

			sort.Slice(members, func(i, j int) bool {
				return members[i].PersonDisplayName < members[j].PersonDisplayName
			})

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Name", "Email", "Person ID", "Moderator"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			for _, m := range members {
				table.Append([]string{
					m.PersonDisplayName,
					m.PersonEmail,
					m.PersonID,
					strconv.FormatBool(m.IsModerator),
				})
			}
			table.Render()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%d member(s)\n", len(members))
			return nil
		},
	}

	cmd.Flags().String("room", "", "Room to list instead of the configured target")

	return cmd
}
