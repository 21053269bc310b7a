package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCmdHistory creates the search history command with subcommands.
func NewCmdHistory(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or manage recent user searches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, opts)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recent searches, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <query>",
		Short: "Forget one search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(_ context.Context, s *session) error {
				return s.app.History.Remove(joinArgs(args))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget every search",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(_ context.Context, s *session) error {
				if err := s.app.History.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Search history cleared.")
				return nil
			})
		},
	})

	return cmd
}

func runHistoryList(cmd *cobra.Command, opts *Options) error {
	return opts.run(cmd, func(_ context.Context, s *session) error {
		return s.formatter.History(cmd.OutOrStdout(), s.app.History.All())
	})
}
