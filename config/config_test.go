package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func TestLoadFromDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "also-missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"DefaultFormat", cfg.DefaultFormat, "table"},
		{"BaseURL", cfg.GetBaseURL(), "https://api.github.com/"},
		{"StateBackend", cfg.GetStateBackend(), BackendBolt},
		{"RequestsPerSecond", cfg.GetRequestsPerSecond(), 10.0},
		{"MemoryCacheEntries", cfg.GetMemoryCacheEntries(), 100},
		{"MemoryCacheBytes", cfg.GetMemoryCacheBytes(), int64(50 * 1024 * 1024)},
		{"RevalidateInterval", cfg.GetRevalidateInterval(), 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadFromMergesLocalOverGlobal(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.yaml")
	local := filepath.Join(dir, ".ghusers.yaml")

	writeFile(t, global, `default_format: json
base_url: https://ghe.example.com/api/v3/
state_backend: file
memory_cache_entries: 10
revalidate_interval: 1m
`)
	writeFile(t, local, `state_backend: bolt
revalidate_interval: 5s
`)

	cfg, err := LoadFrom(global, local)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.DefaultFormat != "json" {
		t.Errorf("DefaultFormat = %q, want json", cfg.DefaultFormat)
	}
	if cfg.GetBaseURL() != "https://ghe.example.com/api/v3/" {
		t.Errorf("BaseURL = %q, want global value", cfg.GetBaseURL())
	}
	if cfg.GetStateBackend() != BackendBolt {
		t.Errorf("StateBackend = %q, want local value bolt", cfg.GetStateBackend())
	}
	if cfg.GetMemoryCacheEntries() != 10 {
		t.Errorf("MemoryCacheEntries = %d, want 10", cfg.GetMemoryCacheEntries())
	}
	if cfg.GetRevalidateInterval() != 5*time.Second {
		t.Errorf("RevalidateInterval = %v, want 5s", cfg.GetRevalidateInterval())
	}
}

func TestLoadFromRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "state_backend: redis\n"},
		{"unknown format", "default_format: xml\n"},
		{"zero entries", "memory_cache_entries: 0\n"},
		{"negative bytes", "memory_cache_bytes: -1\n"},
		{"negative interval", "revalidate_interval: -5s\n"},
		{"malformed yaml", "default_format: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			global := filepath.Join(dir, "config.yaml")
			writeFile(t, global, tt.content)

			if _, err := LoadFrom(global, filepath.Join(dir, "none.yaml")); err == nil {
				t.Errorf("LoadFrom() error = nil, want error")
			}
		})
	}
}

func TestZeroRevalidateIntervalIsAllowed(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.yaml")
	writeFile(t, global, "revalidate_interval: 0s\n")

	cfg, err := LoadFrom(global, filepath.Join(dir, "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.GetRevalidateInterval() != 0 {
		t.Errorf("RevalidateInterval = %v, want 0", cfg.GetRevalidateInterval())
	}
}

func TestGetGitHubToken(t *testing.T) {
	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "from-env")
		cfg := &Config{Token: "from-file"}
		if got := cfg.GetGitHubToken(); got != "from-env" {
			t.Errorf("GetGitHubToken() = %q, want from-env", got)
		}
	})

	t.Run("falls back to file", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		cfg := &Config{Token: "from-file"}
		if got := cfg.GetGitHubToken(); got != "from-file" {
			t.Errorf("GetGitHubToken() = %q, want from-file", got)
		}
	})
}

func TestDefaultConfigRoundTripsThroughYAML(t *testing.T) {
	out, err := DefaultConfig().ToYAML()
	if err != nil {
		t.Fatalf("ToYAML() error = %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, out)

	cfg, err := LoadFrom(path, filepath.Join(dir, "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v\n%s", err, out)
	}
	if cfg.GetRevalidateInterval() != 30*time.Second {
		t.Errorf("RevalidateInterval = %v, want 30s", cfg.GetRevalidateInterval())
	}
	if cfg.GetStateBackend() != BackendBolt {
		t.Errorf("StateBackend = %q, want bolt", cfg.GetStateBackend())
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveTo(path, MinimalConfig()); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if _, err := LoadFrom(path, filepath.Join(t.TempDir(), "none.yaml")); err != nil {
		t.Errorf("minimal config does not load: %v", err)
	}
}
