package main

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/abelbrown/growthdesk/internal/model"
	"github.com/abelbrown/growthdesk/internal/otel"
)

var rosterNew bool

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "List artists",
	Long:  `Lists the analytics roster, or with --new the artists enrolled in the growth program.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		events := otel.NewNullLogger()
		defer events.Close()
		client := newClient(events)
		ctx := cmdContext(cmd)

		var (
			artists []model.Artist
			err     error
		)
		if rosterNew {
			artists, err = client.ListNewArtists(ctx)
		} else {
			artists, err = client.ListArtists(ctx)
		}
		if err != nil {
			return err
		}
		return printRoster(cmd.OutOrStdout(), artists)
	},
}

func init() {
	rootCmd.AddCommand(rosterCmd)
	rosterCmd.Flags().BoolVar(&rosterNew, "new", false, "list growth-program artists instead of the analytics roster")
}

func printRoster(out io.Writer, artists []model.Artist) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"ID", "Name", "Genre", "Location", "Status"})
	for _, a := range artists {
		if err := table.Append([]string{a.ID, a.Name, a.Genre, a.Location, a.Status}); err != nil {
			return fmt.Errorf("render roster: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render roster: %w", err)
	}
	fmt.Fprintf(out, "%d artists\n", len(artists))
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
