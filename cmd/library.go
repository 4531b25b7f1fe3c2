/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// libraryCmd represents the library command
var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Enumerate the full music library",
	Long: `Walk the artist -> album -> track hierarchy and list every audio
track in the library. Video and directory entries are excluded and
duplicates are collapsed.

The enumeration is all-or-nothing: if any part of the traversal fails
terminally, no tracks are printed.`,
	RunE: runLibrary,
}

func init() {
	rootCmd.AddCommand(libraryCmd)

	libraryCmd.Flags().Bool("count", false, "Print only the number of tracks")
	libraryCmd.Flags().Duration("timeout", 5*time.Minute, "Overall enumeration deadline")
}

func runLibrary(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	countOnly, _ := cmd.Flags().GetBool("count")

	if countOnly {
		tracks, err := client.Library(ctx)
		if err != nil {
			return fmt.Errorf("enumeration failed: %w", err)
		}
		fmt.Println(len(tracks))
		return nil
	}

	// Stream tracks as they arrive instead of materializing the
	// library; on failure the partial output is marked invalid.
	stream := client.EnumerateLibrary(ctx)
	defer stream.Close()

	printed := 0
	for {
		track, ok := stream.Next()
		if !ok {
			break
		}
		fmt.Printf("%-10s %s  %s  %s\n",
			track.ID,
			pad(track.Artist, 24),
			pad(track.Album, 28),
			track.Title,
		)
		printed++
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("enumeration aborted, output above is incomplete and must be discarded: %w", err)
	}
	if skipped := stream.Skipped(); skipped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d vanished items\n", skipped)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d tracks\n", printed)
	return nil
}

// pad truncates or pads a string to a fixed display width, unicode-aware
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
