// Package main provides the entry point for the sitedoc CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitedoc.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitedoc",
		Short: "Turn a JavaScript-rendered website into a single document",
		Long: `sitedoc crawls a website with a headless browser, waits for each page
to finish rendering (including infinite scroll and lazy-loaded content),
extracts the structural content, and assembles everything into one
Word or Markdown document in the order pages were discovered.

Authentication cookies and headers for gated sites can be configured
per host in a .sitedoc file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
