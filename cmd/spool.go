/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mixtape-audio/mixtape/internal/config"
	"github.com/mixtape-audio/mixtape/internal/spool"
	"github.com/spf13/cobra"
)

// spoolCmd represents the spool command
var spoolCmd = &cobra.Command{
	Use:   "spool",
	Short: "Manage the local play-event spool",
	Long: `Play events are recorded locally first and reported to the server
later, so listens survive network outages. The spool lives in a SQLite
database (spool_db in the config).`,
}

var spoolAddCmd = &cobra.Command{
	Use:   "add <track-id>",
	Short: "Record a play event in the spool",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpoolAdd,
}

var spoolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending play events",
	RunE:  runSpoolList,
}

var spoolDrainCmd = &cobra.Command{
	Use:     "drain",
	Aliases: []string{"submit"},
	Short:   "Submit pending play events to the server",
	RunE:    runSpoolDrain,
}

func init() {
	rootCmd.AddCommand(spoolCmd)
	spoolCmd.AddCommand(spoolAddCmd)
	spoolCmd.AddCommand(spoolListCmd)
	spoolCmd.AddCommand(spoolDrainCmd)

	spoolAddCmd.Flags().String("title", "", "Track title (informational)")
	spoolAddCmd.Flags().String("artist", "", "Track artist (informational)")
	spoolListCmd.Flags().Int("limit", 50, "Maximum events to list")
}

func runSpoolAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	queue, err := spool.NewQueue(cfg.SpoolDB)
	if err != nil {
		return fmt.Errorf("failed to open spool: %w", err)
	}
	defer queue.Close()

	title, _ := cmd.Flags().GetString("title")
	artist, _ := cmd.Flags().GetString("artist")

	id, err := queue.Add(ctx, spool.PlayEvent{
		TrackID:  args[0],
		Title:    title,
		Artist:   artist,
		PlayedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to record play event: %w", err)
	}

	fmt.Printf("recorded play event %d for track %s\n", id, args[0])
	return nil
}

func runSpoolList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	queue, err := spool.NewQueue(cfg.SpoolDB)
	if err != nil {
		return fmt.Errorf("failed to open spool: %w", err)
	}
	defer queue.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	events, err := queue.GetPending(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read spool: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("spool is empty")
		return nil
	}

	for _, e := range events {
		line := fmt.Sprintf("%-6d %-12s %s", e.ID, e.TrackID, e.PlayedAt.Format(time.RFC3339))
		if e.Title != "" {
			line += fmt.Sprintf("  %s — %s", e.Artist, e.Title)
		}
		if e.Error != "" {
			line += fmt.Sprintf("  (last error: %s)", e.Error)
		}
		fmt.Println(line)
	}
	return nil
}

func runSpoolDrain(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, cfg, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	queue, err := spool.NewQueue(cfg.SpoolDB)
	if err != nil {
		return fmt.Errorf("failed to open spool: %w", err)
	}
	defer queue.Close()

	logLevel := cfg.LogLevel
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		logLevel = flag
	}
	logger := setupLogger(logLevel)

	submitter := spool.NewSubmitter(client, queue, logger)
	submitted, err := submitter.Drain(ctx)
	if err != nil {
		return fmt.Errorf("drain stopped after %d events: %w", submitted, err)
	}

	fmt.Printf("submitted %d play events\n", submitted)
	return nil
}
