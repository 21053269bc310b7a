package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spiffcs/ghusers/internal/format"
	"github.com/spiffcs/ghusers/internal/model"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	opts Options
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func (f *TableFormatter) hyperlink(text, url string) string {
	if !f.opts.Hyperlinks || url == "" {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

func isFavorite(c FavoriteChecker, id int64) bool {
	return c != nil && c.Contains(id)
}

// cell truncates s to width and pads it so columns line up.
func cell(s string, width int) string {
	s, visible := format.TruncateToWidth(s, width)
	return format.PadRight(s, visible, width)
}

func iconCell(icon format.IconType) string {
	s := icon.String()
	return format.PadRight(s, format.DisplayWidth(s), format.IconWidth)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Users outputs users as a table
func (f *TableFormatter) Users(w io.Writer, users []model.UserProfile) error {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return nil
	}

	const (
		colLogin = 24
		colName  = 28
	)

	fmt.Fprintf(w, "%s%-*s  %-*s  %s\n", strings.Repeat(" ", format.IconWidth), colLogin, "Login", colName, "Name", "URL")
	fmt.Fprintln(w, strings.Repeat("-", format.IconWidth+colLogin+colName+40))

	for _, u := range users {
		icon := format.DetermineIcon(format.IconInput{Favorite: isFavorite(f.opts.FavoriteUsers, u.ID)})
		login := format.TruncateUsername(u.Login, colLogin)
		linked := format.PadRight(f.hyperlink(color.CyanString(login), u.HTMLURL), format.DisplayWidth(login), colLogin)
		name := ""
		if u.Name != "" && u.Name != u.Login {
			name = u.Name
		}
		fmt.Fprintf(w, "%s%s  %s  %s\n", iconCell(icon), linked, cell(dash(name), colName), u.HTMLURL)
	}

	fmt.Fprintf(w, "\n%d users\n", len(users))
	return nil
}

// User outputs a profile followed by the user's repositories when given
func (f *TableFormatter) User(w io.Writer, u model.UserProfile, repos []model.RepositorySummary) error {
	title := color.New(color.Bold).Sprint(u.DisplayName())
	if isFavorite(f.opts.FavoriteUsers, u.ID) {
		title = format.FavoriteIcon + " " + title
	}
	fmt.Fprintln(w, title)
	if u.Name != "" {
		fmt.Fprintf(w, "  %s\n", color.CyanString("@"+u.Login))
	}
	if u.Bio != "" {
		fmt.Fprintf(w, "  %s\n", u.Bio)
	}
	fmt.Fprintln(w)

	rows := []struct{ label, value string }{
		{"Company", u.Company},
		{"Location", u.Location},
		{"Blog", u.Blog},
		{"Profile", u.HTMLURL},
		{"Joined", u.CreatedAt},
	}
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		fmt.Fprintf(w, "  %-10s %s\n", r.label, r.value)
	}
	fmt.Fprintf(w, "  %-10s %s repos · %s followers · %s following\n", "Stats",
		format.FormatCount(u.PublicRepos), format.FormatCount(u.Followers), format.FormatCount(u.Following))

	if repos == nil {
		return nil
	}
	fmt.Fprintln(w)
	return f.Repositories(w, repos)
}

// Repositories outputs repositories as a table
func (f *TableFormatter) Repositories(w io.Writer, repos []model.RepositorySummary) error {
	if len(repos) == 0 {
		fmt.Fprintln(w, "No repositories found.")
		return nil
	}

	const (
		colRepo  = 32
		colLang  = 12
		colStars = 7
		colForks = 6
		colDesc  = 44
		colAge   = 7
	)

	fmt.Fprintf(w, "%s%-*s  %-*s  %*s  %*s  %-*s  %s\n",
		strings.Repeat(" ", format.IconWidth),
		colRepo, "Repository",
		colLang, "Language",
		colStars, "Stars",
		colForks, "Forks",
		colDesc, "Description",
		"Updated")
	fmt.Fprintln(w, strings.Repeat("-", format.IconWidth+colRepo+colLang+colStars+colForks+colDesc+colAge+10))

	now := f.opts.Now()
	for _, r := range repos {
		icon := format.DetermineIcon(format.IconInput{
			Favorite:         isFavorite(f.opts.FavoriteRepositories, r.ID),
			Stars:            r.Stars,
			PopularThreshold: format.PopularStars,
		})

		name, visible := format.TruncateToWidth(r.FullName, colRepo)
		name = format.PadRight(f.hyperlink(name, r.HTMLURL), visible, colRepo)

		fmt.Fprintf(w, "%s%s  %s  %*s  %*s  %s  %s\n",
			iconCell(icon),
			name,
			cell(dash(r.Language), colLang),
			colStars, format.FormatCount(r.Stars),
			colForks, format.FormatCount(r.Forks),
			cell(dash(r.Description), colDesc),
			format.FormatTimestamp(r.UpdatedAt, now),
		)
	}

	fmt.Fprintf(w, "\n%d repositories\n", len(repos))
	return nil
}

// Repository outputs a repository detail
func (f *TableFormatter) Repository(w io.Writer, r model.RepositoryDetail) error {
	title := color.New(color.Bold).Sprint(r.FullName)
	if isFavorite(f.opts.FavoriteRepositories, r.ID) {
		title = format.FavoriteIcon + " " + title
	}
	var flags []string
	if r.Private {
		flags = append(flags, color.YellowString("private"))
	}
	if r.Fork {
		flags = append(flags, "fork")
	}
	if r.Archived {
		flags = append(flags, color.RedString("archived"))
	}
	if len(flags) > 0 {
		title += " [" + strings.Join(flags, ", ") + "]"
	}
	fmt.Fprintln(w, title)
	if r.Description != "" {
		fmt.Fprintf(w, "  %s\n", r.Description)
	}
	fmt.Fprintln(w)

	license := ""
	if r.License != nil {
		license = r.License.Name
	}
	updated := ""
	if age := format.FormatTimestamp(r.UpdatedAt, f.opts.Now()); age != "-" {
		updated = age + " ago"
	}
	rows := []struct{ label, value string }{
		{"Owner", r.Owner.Login},
		{"Language", r.Language},
		{"License", license},
		{"Branch", r.DefaultBranch},
		{"Homepage", r.Homepage},
		{"Topics", strings.Join(r.Topics, ", ")},
		{"URL", r.HTMLURL},
		{"Clone", r.CloneURL},
		{"Created", r.CreatedAt},
		{"Updated", updated},
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		fmt.Fprintf(w, "  %-10s %s\n", row.label, row.value)
	}
	fmt.Fprintf(w, "  %-10s %s stars · %s forks · %s watchers · %s open issues\n", "Stats",
		format.FormatCount(r.Stars), format.FormatCount(r.Forks),
		format.FormatCount(r.Watchers), format.FormatCount(r.OpenIssuesCount))
	return nil
}

// History outputs recent searches, most recent first
func (f *TableFormatter) History(w io.Writer, entries []string) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No recent searches.")
		return nil
	}
	for i, e := range entries {
		fmt.Fprintf(w, "%3d  %s\n", i+1, e)
	}
	return nil
}
