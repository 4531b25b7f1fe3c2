/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the library for artists, albums, and tracks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int("limit", 10, "Maximum results per category")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	result, err := client.Search(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for _, a := range result.Artists {
		fmt.Printf("artist  %-10s %s (%d albums)\n", a.ID, a.Name, a.AlbumCount)
	}
	for _, al := range result.Albums {
		fmt.Printf("album   %-10s %s — %s\n", al.ID, al.Artist, al.Name)
	}
	for _, tr := range result.Tracks {
		fmt.Printf("track   %-10s %s — %s (%s)\n", tr.ID, tr.Artist, tr.Title, tr.Album)
	}
	if len(result.Artists)+len(result.Albums)+len(result.Tracks) == 0 {
		fmt.Println("no results")
	}
	return nil
}
