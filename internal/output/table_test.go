package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/spiffcs/ghusers/internal/format"
	"github.com/spiffcs/ghusers/internal/model"
)

type favoriteSet map[int64]bool

func (s favoriteSet) Contains(id int64) bool { return s[id] }

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTable(opts Options) Formatter {
	color.NoColor = true
	opts.Now = func() time.Time { return fixedNow }
	return NewFormatter(FormatTable, opts)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"markdown", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUsersTable(t *testing.T) {
	f := newTable(Options{FavoriteUsers: favoriteSet{2: true}})

	var buf bytes.Buffer
	err := f.Users(&buf, []model.UserProfile{
		{ID: 1, Login: "octocat", HTMLURL: "https://github.com/octocat"},
		{ID: 2, Login: "torvalds", Name: "Linus Torvalds", HTMLURL: "https://github.com/torvalds"},
	})
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	if !strings.Contains(lines[0], "Login") {
		t.Errorf("header = %q, want Login column", lines[0])
	}
	if strings.Contains(lines[2], format.FavoriteIcon) {
		t.Errorf("octocat row %q should not be marked favorite", lines[2])
	}
	if !strings.Contains(lines[3], format.FavoriteIcon) || !strings.Contains(lines[3], "Linus Torvalds") {
		t.Errorf("torvalds row = %q, want favorite icon and name", lines[3])
	}
	if !strings.Contains(buf.String(), "2 users") {
		t.Errorf("output missing footer:\n%s", buf.String())
	}
}

func TestEmptyTables(t *testing.T) {
	f := newTable(Options{})
	tests := []struct {
		name   string
		render func(*bytes.Buffer) error
		want   string
	}{
		{"users", func(b *bytes.Buffer) error { return f.Users(b, nil) }, "No users found."},
		{"repositories", func(b *bytes.Buffer) error { return f.Repositories(b, nil) }, "No repositories found."},
		{"history", func(b *bytes.Buffer) error { return f.History(b, nil) }, "No recent searches."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.render(&buf); err != nil {
				t.Fatalf("render error = %v", err)
			}
			if strings.TrimSpace(buf.String()) != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRepositoriesTable(t *testing.T) {
	f := newTable(Options{FavoriteRepositories: favoriteSet{}})

	var buf bytes.Buffer
	err := f.Repositories(&buf, []model.RepositorySummary{
		{ID: 1, FullName: "torvalds/linux", Language: "C", Stars: 170000, Forks: 52000, UpdatedAt: "2024-03-10T09:00:00Z"},
		{ID: 2, FullName: "octocat/hello-world", Stars: 3, UpdatedAt: "2024-02-01T00:00:00Z",
			Description: strings.Repeat("a very long description ", 5)},
	})
	if err != nil {
		t.Fatalf("Repositories() error = %v", err)
	}

	out := buf.String()
	lines := strings.Split(out, "\n")
	checks := []struct {
		line int
		want []string
	}{
		{2, []string{format.PopularIcon, "torvalds/linux", "170k", "52k", "3h"}},
		{3, []string{"octocat/hello-world", "...", "1mo"}},
	}
	for _, c := range checks {
		for _, want := range c.want {
			if !strings.Contains(lines[c.line], want) {
				t.Errorf("line %d = %q, want it to contain %q", c.line, lines[c.line], want)
			}
		}
	}
	first := format.DisplayWidth(lines[2][:strings.Index(lines[2], "torvalds/linux")])
	second := format.DisplayWidth(lines[3][:strings.Index(lines[3], "octocat/hello-world")])
	if first != second {
		t.Errorf("repository column is not aligned:\n%s\n%s", lines[2], lines[3])
	}
}

func TestRepositoryDetail(t *testing.T) {
	f := newTable(Options{FavoriteRepositories: favoriteSet{7: true}})

	var buf bytes.Buffer
	err := f.Repository(&buf, model.RepositoryDetail{
		ID:            7,
		FullName:      "octocat/hello-world",
		Owner:         model.Owner{Login: "octocat"},
		Archived:      true,
		License:       &model.License{Name: "MIT License"},
		Topics:        []string{"demo", "example"},
		DefaultBranch: "main",
		Stars:         1500,
	})
	if err != nil {
		t.Fatalf("Repository() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{format.FavoriteIcon, "[archived]", "MIT License", "demo, example", "1.5k stars"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Updated") {
		t.Errorf("missing update time should be omitted:\n%s", out)
	}
}

func TestUserWithRepositories(t *testing.T) {
	f := newTable(Options{})

	var buf bytes.Buffer
	err := f.User(&buf, model.UserProfile{ID: 1, Login: "octocat", Name: "The Octocat", Followers: 2500},
		[]model.RepositorySummary{{ID: 9, FullName: "octocat/spoon-knife"}})
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"The Octocat", "@octocat", "2.5k followers", "octocat/spoon-knife"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHyperlinks(t *testing.T) {
	f := newTable(Options{Hyperlinks: true})

	var buf bytes.Buffer
	if err := f.Users(&buf, []model.UserProfile{{ID: 1, Login: "octocat", HTMLURL: "https://github.com/octocat"}}); err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\033]8;;https://github.com/octocat\033\\") {
		t.Errorf("output missing OSC 8 link:\n%q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	f := NewFormatter(FormatJSON, Options{})

	var buf bytes.Buffer
	if err := f.Users(&buf, nil); err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty users = %q, want []", buf.String())
	}

	buf.Reset()
	user := model.UserProfile{ID: 1, Login: "octocat"}
	repos := []model.RepositorySummary{{ID: 2, Name: "x", FullName: "octocat/x"}}
	if err := f.User(&buf, user, repos); err != nil {
		t.Fatalf("User() error = %v", err)
	}

	var got UserOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.User.Login != "octocat" || len(got.Repositories) != 1 {
		t.Errorf("decoded %+v, want user and one repository", got)
	}
}
