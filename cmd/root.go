package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New(options ...Option) *cobra.Command {
	opts := NewOptions(options...)

	rootCmd := &cobra.Command{
		Use:   "ghusers",
		Short: "Browse GitHub users and repositories",
		Long: `A CLI for searching GitHub users and repositories. Responses are
cached on disk and refreshed in the background, and favorites and recent
searches are kept between runs.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addGlobalFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdSearch(opts))
	rootCmd.AddCommand(NewCmdUser(opts))
	rootCmd.AddCommand(NewCmdRepos(opts))
	rootCmd.AddCommand(NewCmdRepo(opts))
	rootCmd.AddCommand(NewCmdSearchRepos(opts))
	rootCmd.AddCommand(NewCmdFavorites(opts))
	rootCmd.AddCommand(NewCmdHistory(opts))
	rootCmd.AddCommand(NewCmdCache(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdRateLimit(opts))
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}

// addGlobalFlags adds the flags shared by every subcommand.
func addGlobalFlags(cmd *cobra.Command, opts *Options) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.Format, "output", "o", opts.Format, "Output format (table, json)")
	flags.CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	flags.StringVar(&opts.MetricsOut, "metrics-out", opts.MetricsOut, "Write Prometheus metrics to file on exit")

	// Profiling flags
	flags.StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	flags.StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	flags.StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}
