/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mixtape-audio/mixtape/internal/config"
	"github.com/mixtape-audio/mixtape/pkg/subsonic"
	"github.com/spf13/cobra"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check server health and detected capabilities",
	Long: `Probe the configured server with a health-check call and report
the negotiated protocol version and detected capabilities.

Exit codes:
  0 - Server is reachable and credentials are accepted
  1 - Server unreachable or authentication failed`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

// newClient loads configuration and builds the protocol client shared
// by all commands.
func newClient(cmd *cobra.Command) (*subsonic.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := cfg.LogLevel
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		logLevel = flag
	}
	logger := setupLogger(logLevel)

	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = debugLogger{logger: logger}

	client, err := subsonic.NewClient(clientCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client (is server.url configured?): %w", err)
	}
	return client, cfg, nil
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, cfg, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	start := time.Now()
	caps, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	fmt.Printf("server:    %s\n", cfg.Server.URL)
	fmt.Printf("latency:   %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("protocol:  %s\n", caps.ProtocolVersion)
	if caps.ServerType != "" {
		fmt.Printf("software:  %s %s\n", caps.ServerType, caps.ServerVersion)
	}
	fmt.Printf("opensubsonic: %v\n", caps.OpenSubsonic)
	auth := "token"
	if !caps.TokenAuth {
		auth = "legacy password"
	}
	fmt.Printf("auth:      %s\n", auth)

	return nil
}
