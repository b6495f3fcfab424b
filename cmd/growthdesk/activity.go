package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/abelbrown/growthdesk/internal/store"
)

var (
	activityLimit  int
	activityArtist string
	activityStats  bool
	activityPrune  time.Duration
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the notification journal",
	Long: `Prints the newest journaled notifications. --stats tallies them by
kind and --prune deletes entries older than the given age.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.ActivityDBPath())
		if err != nil {
			return err
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		if activityPrune > 0 {
			n, err := st.Prune(time.Now().Add(-activityPrune))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "pruned %d entries older than %s\n", n, activityPrune)
			return nil
		}
		if activityStats {
			return printActivityStats(out, st)
		}
		entries, err := st.Recent(activityLimit, activityArtist)
		if err != nil {
			return err
		}
		return printActivity(out, entries)
	},
}

func init() {
	rootCmd.AddCommand(activityCmd)
	activityCmd.Flags().IntVarP(&activityLimit, "number", "n", 20, "number of entries to show")
	activityCmd.Flags().StringVar(&activityArtist, "artist", "", "only show entries for this artist id")
	activityCmd.Flags().BoolVar(&activityStats, "stats", false, "count entries by kind")
	activityCmd.Flags().DurationVar(&activityPrune, "prune", 0, "delete entries older than this age, e.g. 720h")
}

func printActivity(out io.Writer, entries []store.Entry) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Time", "Kind", "Artist", "View", "Message"})
	for _, e := range entries {
		row := []string{e.Created.Local().Format("2006-01-02 15:04:05"), e.Kind, e.ArtistID, e.View, e.Message}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("render activity: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render activity: %w", err)
	}
	return nil
}

func printActivityStats(out io.Writer, st *store.Store) error {
	counts, err := st.CountByKind()
	if err != nil {
		return err
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Kind", "Count"})
	for _, k := range kinds {
		if err := table.Append([]string{k, strconv.Itoa(counts[k])}); err != nil {
			return fmt.Errorf("render stats: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render stats: %w", err)
	}
	return nil
}
