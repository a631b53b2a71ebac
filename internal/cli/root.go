// Package cli provides the command-line interface for MutedVoice.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mutedvoice/mutedvoice/internal/cli/commands"
	"github.com/mutedvoice/mutedvoice/internal/version"
)

var rootCmd = NewRootCommand()

// NewRootCommand builds the mutedvoice command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutedvoice",
		Short: "MutedVoice - anonymous relay bot for Webex",
		Long: `MutedVoice receives Webex message webhooks and reposts direct messages
from members of a target group space into that space anonymously.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path != "" {
				return os.Setenv("MUTEDVOICE_CONFIG_PATH", path)
			}
			return nil
		},
	}

	cmd.AddCommand(commands.NewServeCommand())
	cmd.AddCommand(commands.NewWhoAmICommand())
	cmd.AddCommand(commands.NewMembersCommand())
	cmd.AddCommand(commands.NewConfigCommand())
	cmd.AddCommand(commands.NewVersionCommand())

	cmd.PersistentFlags().StringP("config", "c", "", "config file (default is ~/.mutedvoice/mutedvoice.json)")

	return cmd
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
