package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spiffcs/ghusers/internal/app"
	"github.com/spiffcs/ghusers/internal/listing"
	"github.com/spiffcs/ghusers/internal/log"
	"github.com/spiffcs/ghusers/internal/observable"
	"github.com/spiffcs/ghusers/internal/output"
)

// session is what a command body receives from run.
type session struct {
	app       *app.App
	formatter output.Formatter
	format    output.Format
}

// run sets up logging, profiling and the application, runs fn and tears
// everything down again.
func (o *Options) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) (err error) {
	log.Initialize(o.Verbosity, os.Stderr)

	profiler := NewProfiler(o.CPUProfile, o.MemProfile, o.Trace)
	if err := profiler.Start(); err != nil {
		return err
	}
	defer profiler.Stop()

	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	formatName := o.Format
	if formatName == "" {
		formatName = cfg.DefaultFormat
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, app.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer func() {
		if o.MetricsOut != "" {
			a.Wait()
			if merr := a.WriteMetrics(o.MetricsOut); merr != nil {
				err = errors.Join(err, merr)
			}
		}
		if cerr := a.Close(); cerr != nil {
			log.Warn("failed to close state", "error", cerr)
		}
	}()

	formatter := output.NewFormatter(format, output.Options{
		FavoriteUsers:        a.FavoriteUsers,
		FavoriteRepositories: a.FavoriteRepositories,
		Hyperlinks:           isTerminal(cmd),
	})

	return fn(ctx, &session{app: a, formatter: formatter, format: format})
}

// isTerminal reports whether the command writes to an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// pager is a list controller that can load more pages.
type pager interface {
	LoadNextPage()
	Wait()
}

// collectPages fails if the first page failed and otherwise loads up to
// pages pages in total. A failed later page keeps what was loaded.
func collectPages(p pager, state *observable.Subject[listing.State], cursor *observable.Subject[listing.Cursor], pages int) error {
	if st := state.Value(); st.Phase == listing.PhaseFailed {
		return st.Err
	}
	for loaded := 1; loaded < pages; loaded++ {
		before := cursor.Value()
		if !before.HasMore {
			break
		}
		p.LoadNextPage()
		p.Wait()
		after := cursor.Value()
		if after.Page == before.Page {
			if after.HasMore {
				log.Warn("stopped loading pages", "page", before.Page+1)
			}
			break
		}
	}
	return nil
}

// splitRepository parses "owner/name".
func splitRepository(s string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return owner, name, nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
