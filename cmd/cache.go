package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewCmdCache creates the cache command with subcommands.
func NewCmdCache(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(newCmdCacheClear(opts))
	cmd.AddCommand(newCmdCacheStats(opts))

	return cmd
}

// newCmdCacheClear creates the cache clear subcommand.
func newCmdCacheClear(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the response cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(_ context.Context, s *session) error {
				if err := s.app.Cache.Clear(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
				return nil
			})
		},
	}
}

// newCmdCacheStats creates the cache stats subcommand.
func newCmdCacheStats(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(_ context.Context, s *session) error {
				stats, err := s.app.Cache.Stats()
				if err != nil {
					return fmt.Errorf("failed to get cache stats: %w", err)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Cache statistics:\n")
				fmt.Fprintf(w, "  Directory: %s\n", stats.Dir)
				fmt.Fprintf(w, "  Memory:\n")
				fmt.Fprintf(w, "    Entries: %d\n", stats.MemoryEntries)
				fmt.Fprintf(w, "    Size:    %s\n", formatBytes(stats.MemoryBytes))
				fmt.Fprintf(w, "  Disk:\n")
				fmt.Fprintf(w, "    Entries: %d\n", stats.DiskEntries)
				fmt.Fprintf(w, "    Size:    %s\n", formatBytes(stats.DiskBytes))
				return nil
			})
		},
	}
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
