package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spiffcs/ghusers/internal/constants"
	"github.com/spiffcs/ghusers/internal/model"
	"github.com/spiffcs/ghusers/internal/output"
	"github.com/spiffcs/ghusers/internal/persist"
)

// NewCmdFavorites creates the favorites command with subcommands.
func NewCmdFavorites(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite users and repositories",
		Long: `Manage favorite users and repositories.

Favorites are mirrored to a shared database so that other programs, such
as a desktop widget, can show them. Use 'favorites watch' to follow changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFavoritesList(cmd, opts)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorites",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFavoritesList(cmd, opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add-user <login>",
		Short: "Add a user to favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavoritesAddUser(cmd, opts, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add-repo <owner/name>",
		Short: "Add a repository to favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavoritesAddRepo(cmd, opts, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove-user <login>",
		Short: "Remove a user from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavoritesRemoveUser(cmd, opts, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove-repo <owner/name>",
		Short: "Remove a repository from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavoritesRemoveRepo(cmd, opts, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Print favorites whenever another process changes them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFavoritesWatch(cmd, opts)
		},
	})

	return cmd
}

// favoritesOutput is the JSON shape of 'favorites list'.
type favoritesOutput struct {
	Users        []model.UserProfile       `json:"users"`
	Repositories []model.RepositorySummary `json:"repositories"`
}

func runFavoritesList(cmd *cobra.Command, opts *Options) error {
	return opts.run(cmd, func(_ context.Context, s *session) error {
		return printFavorites(cmd, s)
	})
}

func printFavorites(cmd *cobra.Command, s *session) error {
	w := cmd.OutOrStdout()
	users := s.app.FavoriteUsers.All()
	repos := s.app.FavoriteRepositories.All()

	if s.format == output.FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(favoritesOutput{Users: users, Repositories: repos})
	}

	fmt.Fprintln(w, "Users")
	if err := s.formatter.Users(w, users); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Repositories")
	return s.formatter.Repositories(w, repos)
}

func runFavoritesAddUser(cmd *cobra.Command, opts *Options, login string) error {
	login, err := validLogin(login)
	if err != nil {
		return err
	}
	return opts.run(cmd, func(ctx context.Context, s *session) error {
		user, err := s.app.Users.GetUser(ctx, login)
		if err != nil {
			return err
		}
		if err := s.app.FavoriteUsers.Add(user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites.\n", user.Login)
		return nil
	})
}

func runFavoritesAddRepo(cmd *cobra.Command, opts *Options, fullName string) error {
	owner, name, err := splitRepository(fullName)
	if err != nil {
		return err
	}
	return opts.run(cmd, func(ctx context.Context, s *session) error {
		repo, err := s.app.Repositories.GetRepository(ctx, owner, name)
		if err != nil {
			return err
		}
		if err := s.app.FavoriteRepositories.Add(repo.Summary()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites.\n", repo.FullName)
		return nil
	})
}

func runFavoritesRemoveUser(cmd *cobra.Command, opts *Options, login string) error {
	return opts.run(cmd, func(_ context.Context, s *session) error {
		for _, u := range s.app.FavoriteUsers.All() {
			if strings.EqualFold(u.Login, strings.TrimSpace(login)) {
				if err := s.app.FavoriteUsers.Remove(u.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites.\n", u.Login)
				return nil
			}
		}
		return fmt.Errorf("%s is not a favorite", login)
	})
}

func runFavoritesRemoveRepo(cmd *cobra.Command, opts *Options, fullName string) error {
	return opts.run(cmd, func(_ context.Context, s *session) error {
		for _, r := range s.app.FavoriteRepositories.All() {
			if strings.EqualFold(r.FullName, strings.TrimSpace(fullName)) {
				if err := s.app.FavoriteRepositories.Remove(r.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites.\n", r.FullName)
				return nil
			}
		}
		return fmt.Errorf("%s is not a favorite", fullName)
	})
}

func runFavoritesWatch(cmd *cobra.Command, opts *Options) error {
	return opts.run(cmd, func(ctx context.Context, s *session) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Watching %s for favorite changes (Ctrl-C to stop)\n", s.app.SharedDir)

		return persist.Watch(ctx, s.app.SharedDir, func(name string) {
			switch name {
			case constants.FavoriteUsersName:
				s.app.FavoriteUsers.Reload()
			case constants.FavoriteRepositoriesName:
				s.app.FavoriteRepositories.Reload()
			default:
				return
			}
			fmt.Fprintf(w, "\n%s changed\n", name)
			if err := printFavorites(cmd, s); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to print favorites: %v\n", err)
			}
		})
	})
}
