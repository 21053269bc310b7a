package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/ghusers/internal/model"
	"github.com/spiffcs/ghusers/internal/output"
	"github.com/spiffcs/ghusers/internal/search"
)

// NewCmdSearch creates the user search command.
func NewCmdSearch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search GitHub users",
		Long: `Search GitHub users by login or name. A query that is itself a valid
login also looks that user up directly so exact matches come first.
Successful searches are added to the search history.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, joinArgs(args))
		},
	}

	cmd.Flags().IntVar(&opts.Pages, "pages", 1, "Number of result pages to load")
	return cmd
}

func runSearch(cmd *cobra.Command, opts *Options, query string) error {
	return opts.run(cmd, func(ctx context.Context, s *session) error {
		us := search.NewUserSearch(ctx, s.app.Users, search.WithHistory(s.app.History))
		defer us.Close()

		us.Search(query)
		us.Wait()
		if err := collectPages(us, us.State, us.Cursor, opts.Pages); err != nil {
			return err
		}
		return s.formatter.Users(cmd.OutOrStdout(), us.Users.Value())
	})
}

// NewCmdSearchRepos creates the repository search command.
func NewCmdSearchRepos(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search-repos <query>",
		Short: "Search GitHub repositories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchRepos(cmd, opts, joinArgs(args))
		},
	}

	cmd.Flags().IntVar(&opts.Pages, "pages", 1, "Number of result pages to load")
	cmd.Flags().StringVar(&opts.Sort, "sort", string(model.SortStars), "Sort by (stars, updated, created, pushed, full_name)")
	cmd.Flags().StringVar(&opts.Order, "order", string(model.OrderDesc), "Sort order (asc, desc)")
	return cmd
}

func runSearchRepos(cmd *cobra.Command, opts *Options, query string) error {
	sort, err := model.ParseSort(opts.Sort)
	if err != nil {
		return err
	}
	order, err := model.ParseOrder(opts.Order)
	if err != nil {
		return err
	}

	return opts.run(cmd, func(ctx context.Context, s *session) error {
		rs := search.NewRepoSearch(ctx, s.app.Repositories)
		defer rs.Close()

		// No query is set yet, so neither call searches.
		rs.SetSort(sort)
		rs.SetOrder(order)

		rs.Search(query)
		rs.Wait()
		if err := collectPages(rs, rs.State, rs.Cursor, opts.Pages); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		repos := rs.Repositories.Value()
		if err := s.formatter.Repositories(w, repos); err != nil {
			return err
		}
		if s.format == output.FormatTable && len(repos) > 0 {
			fmt.Fprintf(w, "%d total matches\n", rs.TotalCount.Value())
		}
		return nil
	})
}
