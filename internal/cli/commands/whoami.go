package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewWhoAmICommand creates the whoami subcommand.
func NewWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the Webex identity behind the bot token",
		Example: `  mutedvoice whoami`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadDeps()
			if err != nil {
				return err
			}

			me, err := rt.client.Me(context.Background())
			if err != nil {
				return fmt.Errorf("failed to retrieve bot identity: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bot ID: %s\n", me.ID)
			if me.DisplayName != "" {
				fmt.Fprintf(out, "Name:   %s\n", me.DisplayName)
			}
			if len(me.Emails) > 0 {
				fmt.Fprintf(out, "Email:  %s\n", strings.Join(me.Emails, ", "))
			}
			return nil
		},
	}
}
