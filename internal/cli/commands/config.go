package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mutedvoice/mutedvoice/internal/config"
)

// NewConfigCommand creates the config subcommand.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
		Example: `  mutedvoice config show
  mutedvoice config get server.port`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigGetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML (token redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return err
			}
			_, _ = cmd.OutOrStdout().Write(data)

			if err := cfg.Validate(); err != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n# %v\n", err)
			}
			return nil
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get [key]",
		Short:   "Get a configuration value",
		Example: `  mutedvoice config get relay.prefix`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.LoadViper()
			if err != nil {
				return err
			}

			key := args[0]
			if strings.EqualFold(key, "webex.token") {
				return fmt.Errorf("refusing to print the bot token")
			}
			val := v.Get(key)
			if val == nil {
				cmd.Println("null")
				return nil
			}
			cmd.Printf("%v\n", val)
			return nil
		},
	}
}
