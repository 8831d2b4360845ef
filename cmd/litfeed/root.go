package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for litfeed.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "litfeed",
		Short: "Endless reading feed of public-domain literature",
		Long: `litfeed aggregates public-domain literary texts from online archives and
presents them as an endless reading feed.

Archive pages are resolved recursively: summary hubs, redirects and
"multiple editions" pages are followed until real content is found, and
lists, indexes and biographies are rejected by a quality scorer.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewFeedCmd())
	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewScoreCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
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
