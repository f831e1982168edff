package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable ApplyEnv consults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvMailto, EnvLogLevel, EnvDataDir, EnvOutputPath} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndResolution(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, `
target:
  name: Nikolay S Markov
output: site/publications.json
index_db: /var/tmp/pubs.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	target := cfg.Target.Target()
	if target.First != "Nikolay" || target.Middle != "S" || target.Last != "Markov" {
		t.Errorf("target = %+v", target)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"DataDir", cfg.DataDir, filepath.Join(dir, DefaultDataDir)},
		{"ExcludeFile", cfg.ExcludeFile, filepath.Join(dir, DefaultExcludeFile)},
		{"OverridesFile", cfg.OverridesFile, filepath.Join(dir, DefaultOverridesFile)},
		{"AbbreviationsFile", cfg.AbbreviationsFile, filepath.Join(dir, DefaultAbbreviationsFile)},
		{"Output", cfg.Output, filepath.Join(dir, "site", "publications.json")},
		{"IndexDB", cfg.IndexDB, "/var/tmp/pubs.db"},
		{"CheckpointFile", cfg.Crossref.CheckpointFile, filepath.Join(dir, DefaultCheckpointFile)},
		{"FromPubDate", cfg.Crossref.FromPubDate, DefaultFromPubDate},
		{"QueryAuthor", cfg.QueryAuthor(), "markov"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}

	if cfg.OverlapThreshold != 0.8 {
		t.Errorf("OverlapThreshold = %v, want 0.8", cfg.OverlapThreshold)
	}
	if cfg.Crossref.Pause() != 2*time.Second || cfg.Crossref.RetryDelay() != 5*time.Second {
		t.Errorf("pause/retry = %v/%v", cfg.Crossref.Pause(), cfg.Crossref.RetryDelay())
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoad_SplitTargetAndCrossref(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), `
target:
  first: Nikolay
  last: Markov
overlap_threshold: 0.9
include_source: true
crossref:
  query_author: "n markov"
  rows: 50
  pause_seconds: 0.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Target.Target(); got.First != "Nikolay" || got.Middle != "" || got.Last != "Markov" {
		t.Errorf("target = %+v", got)
	}
	if cfg.OverlapThreshold != 0.9 || !cfg.IncludeSource {
		t.Errorf("threshold=%v include_source=%v", cfg.OverlapThreshold, cfg.IncludeSource)
	}
	if cfg.QueryAuthor() != "n markov" || cfg.Crossref.Rows != 50 {
		t.Errorf("crossref = %+v", cfg.Crossref)
	}
	if cfg.Crossref.Pause() != 500*time.Millisecond {
		t.Errorf("Pause() = %v", cfg.Crossref.Pause())
	}
	// Unset crossref keys keep their defaults.
	if cfg.Crossref.MaxFailures != 5 {
		t.Errorf("MaxFailures = %d, want 5", cfg.Crossref.MaxFailures)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMailto, "someone@example.org")
	t.Setenv(EnvLogLevel, "debug")

	path := writeConfig(t, t.TempDir(), `
target: {last: Markov}
crossref: {mailto: file@example.org}
log: {level: warn, format: json}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crossref.Mailto != "someone@example.org" {
		t.Errorf("Mailto = %q", cfg.Crossref.Mailto)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"no target", "output: out.json\n", ErrNoTarget},
		{"threshold too large", "target: {last: Markov}\noverlap_threshold: 1.5\n", nil},
		{"bad log level", "target: {last: Markov}\nlog: {level: loud}\n", nil},
		{"bad log format", "target: {last: Markov}\nlog: {format: xml}\n", nil},
		{"negative rows", "target: {last: Markov}\ncrossref: {rows: -1}\n", nil},
		{"malformed yaml", "target: [unterminated\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want not-exist", err)
	}
}

func TestFindConfig(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	want := writeConfig(t, root, "target: {last: Markov}\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindConfig("", nested)
	if err != nil {
		t.Fatalf("FindConfig() error = %v", err)
	}
	if got != want {
		t.Errorf("FindConfig() = %q, want %q", got, want)
	}

	if got, _ := FindConfig("explicit.yml", nested); got != "explicit.yml" {
		t.Errorf("explicit path ignored: %q", got)
	}

	t.Setenv(EnvConfig, "/env/pubs.yml")
	if got, _ := FindConfig("", nested); got != "/env/pubs.yml" {
		t.Errorf("%s ignored: %q", EnvConfig, got)
	}
}

func TestFindConfig_NotFound(t *testing.T) {
	clearEnv(t)
	if _, err := FindConfig("", t.TempDir()); err == nil {
		t.Error("FindConfig() expected error outside any project")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/pubs", filepath.Join(home, "pubs")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
