// Package commands provides CLI subcommands for MutedVoice.
package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/mutedvoice/mutedvoice/internal/config"
	"github.com/mutedvoice/mutedvoice/internal/gateway"
	"github.com/mutedvoice/mutedvoice/internal/infra"
	"github.com/mutedvoice/mutedvoice/internal/relay"
)

const statusTimeout = 3 * time.Second

// NewServeCommand creates the serve subcommand.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook relay server",
		Long:  `Start, stop, and inspect the MutedVoice webhook server.`,
		Example: `  mutedvoice serve
  mutedvoice serve --port 9090
  mutedvoice serve status`,
	}

	cmd.PersistentFlags().IntP("port", "p", 8080, "Listen port")
	cmd.PersistentFlags().String("host", "0.0.0.0", "Listen host")

	cmd.AddCommand(newServeStartCommand())
	cmd.AddCommand(newServeStopCommand())
	cmd.AddCommand(newServeStatusCommand())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServeStart(cmd)
	}

	return cmd
}

func newServeStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Short:   "Start the webhook server in the foreground",
		Example: `  mutedvoice serve start --host 127.0.0.1 --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeStart(cmd)
		},
	}
}

func newServeStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "stop",
		Short:   "Stop a running webhook server",
		Example: `  mutedvoice serve stop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeStop(cmd)
		},
	}
}

func newServeStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show webhook server status",
		Example: `  mutedvoice serve status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeStatus(cmd)
		},
	}
}

func runServeStart(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	rt, err := loadDeps()
	if err != nil {
		return err
	}
	cfg := rt.cfg

	host := cfg.Server.Host
	if cmd.Flags().Changed("host") {
		host, _ = cmd.Flags().GetString("host")
	}
	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}

	// Single instance check
	if err := infra.EnsureStateDir(); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	lockPath := infra.LockFile()
	fileLock := flock.New(lockPath)

	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("error checking lock file: %w", err)
	}
	if !locked {
		fmt.Fprintln(out, "❌ Error: MutedVoice is already running.")
		fmt.Fprintf(out, "   Lock file found at: %s\n", lockPath)
		return fmt.Errorf("server already running")
	}
	defer func() { _ = fileLock.Unlock() }()

	if err := writeServerPID(); err != nil {
		return err
	}
	defer func() { _ = removeServerPID() }()

	// The identity must be known before the webhook route exists.
	botID := relay.ResolveBotID(context.Background(), rt.client, &rt.logger)

	handler := relay.NewHandler(rt.client, relay.Options{
		BotID:        botID,
		TargetRoomID: cfg.Webex.TargetRoomID,
		Prefix:       cfg.Relay.Prefix,
	}, &rt.logger)

	server := gateway.New(&gateway.Config{
		Host:        host,
		Port:        port,
		WebhookPath: cfg.Server.WebhookPath,
		RateLimit:   cfg.Server.RateLimit,
	}, handler, rt.logger)

	fmt.Fprintf(out, "Starting MutedVoice on %s:%d%s\n", host, port, cfg.Server.WebhookPath)
	if botID == "" {
		fmt.Fprintln(out, "Warning: bot identity unknown, self-message suppression is disabled")
	}

	// For tests, skip actual start if configured
	if os.Getenv("MUTEDVOICE_SKIP_SERVER_START") == "true" {
		fmt.Fprintln(out, "Skipping actual server start for testing.")
		return nil
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func runServeStop(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	pid, err := readServerPID()
	if err != nil {
		return fmt.Errorf("server not running (pid file missing)")
	}

	if !processAlive(pid) {
		_ = removeServerPID()
		return fmt.Errorf("server process not running (stale pid file)")
	}

	if err := signalStop(pid); err != nil {
		return fmt.Errorf("failed to stop server (pid %d): %w", pid, err)
	}

	fmt.Fprintf(out, "Sent stop signal to server (PID %d)\n", pid)
	awaitExit(pid, 3*time.Second)
	return nil
}

func runServeStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}

	status, err := fetchServerStatus(fmt.Sprintf("http://127.0.0.1:%d", port))
	if err != nil {
		fmt.Fprintln(out, "Server: not running")
		return nil
	}

	identity := "resolved"
	if !status.IdentityResolved {
		identity = "unresolved"
	}
	fmt.Fprintf(out, "Server: %s (version %s, uptime %s, bot identity %s)\n", status.Status, status.Version, status.Uptime, identity)
	return nil
}

func fetchServerStatus(baseURL string) (*gateway.StatusResponse, error) {
	var status gateway.StatusResponse
	resp, err := resty.New().
		SetTimeout(statusTimeout).
		R().
		SetResult(&status).
		Get(baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("cannot connect to server: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode())
	}
	return &status, nil
}

func writeServerPID() error {
	return os.WriteFile(infra.PIDFile(), []byte(strconv.Itoa(os.Getpid())), 0644)
}

func readServerPID() (int, error) {
	data, err := os.ReadFile(infra.PIDFile())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid pid file")
	}
	return pid, nil
}

func removeServerPID() error {
	return os.Remove(infra.PIDFile())
}
