package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/ghusers/internal/ghclient"
	"github.com/spiffcs/ghusers/internal/listing"
	"github.com/spiffcs/ghusers/internal/model"
)

// NewCmdUser creates the user profile command.
func NewCmdUser(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user <login>",
		Short: "Show a GitHub user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUser(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Repos, "repos", false, "Also list the user's most recently updated repositories")
	return cmd
}

func validLogin(login string) (string, error) {
	login = strings.TrimSpace(login)
	if !ghclient.ValidUsername(login) {
		return "", fmt.Errorf("invalid GitHub username %q", login)
	}
	return login, nil
}

func runUser(cmd *cobra.Command, opts *Options, login string) error {
	login, err := validLogin(login)
	if err != nil {
		return err
	}

	return opts.run(cmd, func(ctx context.Context, s *session) error {
		var (
			profile model.UserProfile
			repos   []model.RepositorySummary
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			p, err := s.app.Users.GetUser(gctx, login)
			profile = p
			return err
		})
		if opts.Repos {
			g.Go(func() error {
				r, err := s.app.Repositories.GetRepositories(gctx, login, model.SortUpdated, model.OrderDesc, 1)
				repos = r
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if opts.Repos && repos == nil {
			repos = []model.RepositorySummary{}
		}
		return s.formatter.User(cmd.OutOrStdout(), profile, repos)
	})
}

// NewCmdRepos creates the repository listing command.
func NewCmdRepos(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos <login>",
		Short: "List a user's repositories",
		Long: `List a user's public repositories. --sort and --order are applied by
GitHub; --filter and --lang narrow the loaded pages locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepos(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Pages, "pages", 1, "Number of pages to load")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort by (updated, created, pushed, full_name, stars)")
	cmd.Flags().StringVar(&opts.Order, "order", "", "Sort order (asc, desc)")
	cmd.Flags().StringVar(&opts.Language, "lang", "", "Only show repositories in this language")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "Only show repositories whose name or description contains text")
	return cmd
}

func runRepos(cmd *cobra.Command, opts *Options, login string) error {
	login, err := validLogin(login)
	if err != nil {
		return err
	}
	sort, err := model.ParseSort(opts.Sort)
	if err != nil {
		return err
	}
	order, err := model.ParseOrder(opts.Order)
	if err != nil {
		return err
	}

	return opts.run(cmd, func(ctx context.Context, s *session) error {
		l := listing.NewRepoList(ctx, s.app.Repositories, login)
		defer l.Close()

		l.SetFilterText(opts.Filter)
		l.SetLanguage(opts.Language)

		// Each setter reloads and supersedes the previous load.
		if sort != "" {
			l.SetSort(sort)
		}
		if order != "" {
			l.SetOrder(order)
		}
		if sort == "" && order == "" {
			l.Load()
		}
		l.Wait()

		if err := collectPages(l, l.State, l.Cursor, opts.Pages); err != nil {
			return err
		}
		return s.formatter.Repositories(cmd.OutOrStdout(), l.Items.Value())
	})
}

// NewCmdRepo creates the repository detail command.
func NewCmdRepo(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "repo <owner/name>",
		Short: "Show a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, name, err := splitRepository(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				repo, err := s.app.Repositories.GetRepository(ctx, owner, name)
				if err != nil {
					return err
				}
				return s.formatter.Repository(cmd.OutOrStdout(), repo)
			})
		},
	}
}
