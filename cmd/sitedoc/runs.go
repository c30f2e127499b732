package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/sitedoc-dev/sitedoc/internal/config"
	"github.com/sitedoc-dev/sitedoc/internal/database"
	"github.com/spf13/cobra"
)

// NewRunsCmd creates the runs command.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Inspect archived crawl runs",
		Long: `Runs lists the crawl runs stored in the crawl database. With a run id
it prints that run's pages in discovery order; with --edges it prints
the link graph recorded for the run instead.

Examples:
  # List all archived runs
  sitedoc runs

  # Show the pages of run 3
  sitedoc runs 3

  # Show the link graph of run 3
  sitedoc runs --edges 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunsCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Crawl database directory (default: XDG data directory)")
	cmd.Flags().Bool("edges", false,
		"Print the run's link graph instead of its pages")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Inspection never creates a database: an empty archive is a
	// user-visible condition, not something to paper over.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if len(args) == 0 {
		return listRuns(cmd, db)
	}

	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}

	edges, err := cmd.Flags().GetBool("edges")
	if err != nil {
		return err
	}
	if edges {
		return printRunEdges(cmd, db, runID)
	}
	return printRunPages(cmd, db, runID)
}

// listRuns prints all archived runs, newest first.
func listRuns(cmd *cobra.Command, db *database.CrawlDB) error {
	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No archived runs.")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-40s %-20s %s\n", "ID", "SEED", "STARTED", "PAGES")
	for _, r := range runs {
		fmt.Fprintf(out, "%-6d %-40s %-20s %d\n",
			r.ID, r.Seed, r.StartedAt.Format("2006-01-02 15:04:05"), r.Pages)
	}
	return nil
}

// printRunPages prints one run's pages in discovery order.
func printRunPages(cmd *cobra.Command, db *database.CrawlDB, runID int64) error {
	pages, err := db.GetRunPages(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("failed to load pages for run %d: %w", runID, err)
	}

	out := cmd.OutOrStdout()
	if len(pages) == 0 {
		fmt.Fprintf(out, "No pages recorded for run %d.\n", runID)
		return nil
	}

	for _, p := range pages {
		status := "ok"
		switch {
		case p.Error != "":
			status = "failed: " + p.Error
		case !p.Stable:
			status = "unstable"
		}
		fmt.Fprintf(out, "%3d  depth %d  %-50s %3d block(s)  %s\n",
			p.DiscoveryIndex, p.Depth, p.URL, p.BlockCount, status)
	}
	return nil
}

// printRunEdges prints one run's link graph grouped by source page,
// sorted by source URL for stable output.
func printRunEdges(cmd *cobra.Command, db *database.CrawlDB, runID int64) error {
	edges, err := db.GetLinkEdges(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("failed to load link edges for run %d: %w", runID, err)
	}

	out := cmd.OutOrStdout()
	if len(edges) == 0 {
		fmt.Fprintf(out, "No link edges recorded for run %d.\n", runID)
		return nil
	}

	for _, from := range slices.Sorted(maps.Keys(edges)) {
		fmt.Fprintln(out, from)
		for _, to := range edges[from] {
			fmt.Fprintf(out, "  -> %s\n", to)
		}
	}
	return nil
}
