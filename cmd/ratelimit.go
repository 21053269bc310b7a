package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus(opts))
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long:  `Display the current GitHub API rate limit status for core and search APIs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return runRateLimitStatus(ctx, cmd, s)
			})
		},
	}
}

func runRateLimitStatus(ctx context.Context, cmd *cobra.Command, s *session) error {
	limits, err := s.app.Client.RateLimits(ctx)
	if err != nil {
		return fmt.Errorf("failed to get rate limits: %w", err)
	}

	w := cmd.OutOrStdout()
	auth := "no (set GITHUB_TOKEN for higher limits)"
	if s.app.Client.Authenticated() {
		auth = "yes"
	}
	fmt.Fprintln(w, "GitHub API Rate Limits:")
	fmt.Fprintf(w, "Authenticated: %s\n", auth)
	fmt.Fprintln(w)

	if limits.Core != nil {
		fmt.Fprintf(w, "Core API:   %d/%d remaining (resets in %s)\n",
			limits.Core.Remaining, limits.Core.Limit, resetIn(limits.Core.Reset.Time))
	}

	if limits.Search != nil {
		fmt.Fprintf(w, "Search API: %d/%d remaining (resets in %s)\n",
			limits.Search.Remaining, limits.Search.Limit, resetIn(limits.Search.Reset.Time))
	}

	if st := s.app.Client.RateLimitStatus(); st.Limited {
		fmt.Fprintf(w, "\nRequests are paused until %s\n", st.ResetAt.Format(time.Kitchen))
	}
	return nil
}

func resetIn(t time.Time) time.Duration {
	d := time.Until(t).Round(time.Second)
	if d < 0 {
		return 0
	}
	return d
}
