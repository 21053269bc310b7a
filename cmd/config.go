package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spiffcs/ghusers/config"
	"github.com/spiffcs/ghusers/internal/cache"
	"github.com/spiffcs/ghusers/internal/persist"
)

// settableKey is a configuration key that 'config set' may change.
type settableKey struct {
	name  string
	usage string
	apply func(cfg *config.Config, value string) error
}

var settableKeys = []settableKey{
	{"default_format", "output format when -o is not given (table, json)", func(cfg *config.Config, v string) error {
		cfg.DefaultFormat = v
		return nil
	}},
	{"base_url", "GitHub API endpoint, e.g. a GitHub Enterprise /api/v3/ URL", func(cfg *config.Config, v string) error {
		cfg.BaseURL = v
		return nil
	}},
	{"requests_per_second", "client-side request throttle", func(cfg *config.Config, v string) error {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return fmt.Errorf("invalid requests_per_second %q: must be a positive number", v)
		}
		cfg.RequestsPerSecond = &rps
		return nil
	}},
	{"revalidate_interval", "minimum time between background refreshes of one response (0 refreshes every hit)", func(cfg *config.Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid revalidate_interval %q: %w", v, err)
		}
		cfg.RevalidateInterval = &d
		return nil
	}},
	{"state_backend", "storage for favorites and history (bolt, file)", func(cfg *config.Config, v string) error {
		cfg.StateBackend = v
		return nil
	}},
	{"cache_dir", "directory of the response cache", func(cfg *config.Config, v string) error {
		cfg.CacheDir = v
		return nil
	}},
	{"data_dir", "directory of favorites and history", func(cfg *config.Config, v string) error {
		cfg.DataDir = v
		return nil
	}},
	{"shared_dir", "directory of the shared favorites mirror", func(cfg *config.Config, v string) error {
		cfg.SharedDir = v
		return nil
	}},
}

func lookupSettableKey(name string) (settableKey, bool) {
	for _, k := range settableKeys {
		if k.name == name {
			return k, true
		}
	}
	return settableKey{}, false
}

// NewCmdConfig creates the config command. Without a subcommand it behaves
// like 'config show'.
func NewCmdConfig() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change ghusers settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.OutOrStdout(), format, false)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(newCmdConfigShow())
	cmd.AddCommand(newCmdConfigInit())
	cmd.AddCommand(newCmdConfigLocations())
	cmd.AddCommand(newCmdConfigSet())
	return cmd
}

func newCmdConfigShow() *cobra.Command {
	var (
		format   string
		defaults bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		Long: `Print the configuration after merging the global file and ./.ghusers.yaml.
The token is redacted. --defaults prints every setting with its default value
instead, which is a good starting point for a config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.OutOrStdout(), format, defaults)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "Output format (yaml, json)")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Print the default value of every setting")
	return cmd
}

func runConfigShow(w io.Writer, format string, defaults bool) error {
	cfg := config.DefaultConfig()
	if !defaults {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
	}

	redacted := *cfg
	if redacted.Token != "" {
		redacted.Token = "********"
	}
	return writeConfig(w, &redacted, format)
}

// writeConfig prints cfg with its YAML key names in either format.
func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	switch format {
	case "yaml":
		_, err = w.Write(data)
		return err
	case "json":
		fields := map[string]any{}
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(fields)
	default:
		return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
	}
}

func newCmdConfigInit() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a commented starter config file to the global location, or to
./.ghusers.yaml with --local. An existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ConfigPath()
			if local {
				path = config.LocalConfigPath()
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}
			if err := config.SaveTo(path, config.MinimalConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Write ./.ghusers.yaml instead of the global file")
	return cmd
}

func newCmdConfigLocations() *cobra.Command {
	return &cobra.Command{
		Use:     "locations",
		Aliases: []string{"path"},
		Short:   "Show where ghusers reads config and keeps its data",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return writeLocations(cmd.OutOrStdout(), cfg)
		},
	}
}

func writeLocations(w io.Writer, cfg *config.Config) error {
	paths := config.GetConfigPaths()
	exists := func(ok bool) string {
		if ok {
			return "exists"
		}
		return "not found"
	}

	dirs := []struct {
		label      string
		configured string
		fallback   func() (string, error)
	}{
		{"Cache", cfg.CacheDir, cache.DefaultDir},
		{"Data", cfg.DataDir, persist.DefaultDataDir},
		{"Shared", cfg.SharedDir, persist.DefaultSharedDir},
	}

	fmt.Fprintf(w, "Global config: %s (%s)\n", paths.GlobalPath, exists(paths.GlobalExists))
	fmt.Fprintf(w, "Local config:  %s (%s)\n", paths.LocalPath, exists(paths.LocalExists))
	for _, d := range dirs {
		dir := d.configured
		if dir == "" {
			var err error
			if dir, err = d.fallback(); err != nil {
				return fmt.Errorf("failed to resolve %s directory: %w", strings.ToLower(d.label), err)
			}
		}
		fmt.Fprintf(w, "%-14s %s\n", d.label+":", dir)
	}
	return nil
}

func newCmdConfigSet() *cobra.Command {
	var help strings.Builder
	help.WriteString("Change one setting in the global config file. Keys:\n")
	for _, k := range settableKeys {
		fmt.Fprintf(&help, "  %-20s %s\n", k.name, k.usage)
	}
	help.WriteString("\nThe token is only read from the file or GITHUB_TOKEN and cannot be set here.")

	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long:  help.String(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func runConfigSet(w io.Writer, name, value string) error {
	if name == "token" {
		return fmt.Errorf("the token cannot be set from the command line; export GITHUB_TOKEN instead")
	}
	key, ok := lookupSettableKey(name)
	if !ok {
		return fmt.Errorf("unknown config key: %s", name)
	}

	// Only the global file is rewritten so local overrides stay local.
	cfg, err := config.LoadFrom(config.ConfigPath(), "")
	if err != nil {
		return err
	}
	if err := key.apply(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s = %s\n", name, value)
	return nil
}
