// Package config loads the pubs.yml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pubtrack/pubtrack/internal/author"
	"github.com/pubtrack/pubtrack/internal/crossref"
	"github.com/pubtrack/pubtrack/internal/curation"
	"github.com/pubtrack/pubtrack/internal/dedup"
	"github.com/pubtrack/pubtrack/internal/logging"
)

const (
	// ConfigFile is the default project file name.
	ConfigFile = "pubs.yml"

	DefaultDataDir           = "data"
	DefaultExcludeFile       = "exclude.txt"
	DefaultOverridesFile     = "overrides.json"
	DefaultAbbreviationsFile = "journal_abbreviations.tsv"
	DefaultOutput            = "publications.json"
	DefaultIndexDB           = ".pubs/index.db"
	DefaultCheckpointFile    = "last_indexed_date.txt"
	DefaultFromPubDate       = "2019-06-01"
)

// Environment variables consulted after the file is read.
const (
	EnvConfig     = "PUBS_CONFIG"
	EnvMailto     = "CROSSREF_MAILTO"
	EnvLogLevel   = "PUBS_LOG_LEVEL"
	EnvDataDir    = "PUBS_DATA_DIR"
	EnvOutputPath = "PUBS_OUTPUT"
)

// ErrNoTarget is returned when the file names no target last name.
var ErrNoTarget = errors.New("target last name not configured")

// TargetConfig names the person whose bibliography is built. Name, when set,
// is parsed and takes precedence over the split fields.
type TargetConfig struct {
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	First  string `yaml:"first,omitempty" json:"first,omitempty"`
	Middle string `yaml:"middle,omitempty" json:"middle,omitempty"`
	Last   string `yaml:"last,omitempty" json:"last,omitempty"`
}

// Target returns the matcher identity.
func (t TargetConfig) Target() author.Target {
	if strings.TrimSpace(t.Name) != "" {
		return author.ParseTarget(t.Name)
	}
	return author.Target{
		First:  strings.TrimSpace(t.First),
		Middle: strings.TrimSpace(t.Middle),
		Last:   strings.TrimSpace(t.Last),
	}
}

// CrossrefConfig configures the fetch command.
type CrossrefConfig struct {
	QueryAuthor    string  `yaml:"query_author,omitempty" json:"query_author,omitempty"`
	Mailto         string  `yaml:"mailto,omitempty" json:"mailto,omitempty"`
	FromPubDate    string  `yaml:"from_pub_date,omitempty" json:"from_pub_date,omitempty"`
	Rows           int     `yaml:"rows,omitempty" json:"rows,omitempty"`
	CheckpointFile string  `yaml:"checkpoint_file,omitempty" json:"checkpoint_file,omitempty"`
	StartIndexDate string  `yaml:"start_index_date,omitempty" json:"start_index_date,omitempty"`
	MaxFailures    int     `yaml:"max_failures,omitempty" json:"max_failures,omitempty"`
	PauseSeconds   float64 `yaml:"pause_seconds,omitempty" json:"pause_seconds,omitempty"`
	RetrySeconds   float64 `yaml:"retry_seconds,omitempty" json:"retry_seconds,omitempty"`
	RateLimit      float64 `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`
}

// Pause returns the delay between pages.
func (c CrossrefConfig) Pause() time.Duration {
	return seconds(c.PauseSeconds)
}

// RetryDelay returns the delay after a failed request.
func (c CrossrefConfig) RetryDelay() time.Duration {
	return seconds(c.RetrySeconds)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Config represents a pubs.yml project file.
type Config struct {
	Target            TargetConfig   `yaml:"target" json:"target"`
	DataDir           string         `yaml:"data_dir" json:"data_dir"`
	ExcludeFile       string         `yaml:"exclude_file" json:"exclude_file"`
	OverridesFile     string         `yaml:"overrides_file" json:"overrides_file"`
	AbbreviationsFile string         `yaml:"abbreviations_file" json:"abbreviations_file"`
	Output            string         `yaml:"output" json:"output"`
	IndexDB           string         `yaml:"index_db" json:"index_db"`
	IncludeSource     bool           `yaml:"include_source" json:"include_source"`
	OverlapThreshold  float64        `yaml:"overlap_threshold" json:"overlap_threshold"`
	Log               logging.Config `yaml:"log" json:"log"`
	Crossref          CrossrefConfig `yaml:"crossref" json:"crossref"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-" json:"path,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataDir:           DefaultDataDir,
		ExcludeFile:       DefaultExcludeFile,
		OverridesFile:     DefaultOverridesFile,
		AbbreviationsFile: DefaultAbbreviationsFile,
		Output:            DefaultOutput,
		IndexDB:           DefaultIndexDB,
		OverlapThreshold:  dedup.DefaultOverlapThreshold,
		Log:               logging.DefaultConfig(),
		Crossref: CrossrefConfig{
			FromPubDate:    DefaultFromPubDate,
			Rows:           crossref.DefaultRows,
			CheckpointFile: DefaultCheckpointFile,
			StartIndexDate: crossref.DefaultStartIndexDate,
			MaxFailures:    crossref.DefaultMaxFailures,
			PauseSeconds:   crossref.DefaultPause.Seconds(),
			RetrySeconds:   crossref.DefaultRetryDelay.Seconds(),
			RateLimit:      crossref.RateLimit,
		},
	}
}

// Parse decodes YAML over the defaults. Paths are left as written.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Load reads the file at path, applies environment overrides, resolves
// relative paths against the file's directory and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.Path = abs

	cfg.ApplyEnv()
	cfg.Resolve(filepath.Dir(abs))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays values from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvMailto); v != "" {
		c.Crossref.Mailto = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvOutputPath); v != "" {
		c.Output = v
	}
}

// Resolve makes every relative path absolute against base.
func (c *Config) Resolve(base string) {
	for _, p := range []*string{
		&c.DataDir,
		&c.ExcludeFile,
		&c.OverridesFile,
		&c.AbbreviationsFile,
		&c.Output,
		&c.IndexDB,
		&c.Crossref.CheckpointFile,
	} {
		*p = resolvePath(base, *p)
	}
}

func resolvePath(base, p string) string {
	if p == "" {
		return ""
	}
	p = ExpandPath(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// Validate checks the values a run cannot do without.
func (c *Config) Validate() error {
	if c.Target.Target().Last == "" {
		return ErrNoTarget
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	if c.OverlapThreshold <= 0 || c.OverlapThreshold > 1 {
		return fmt.Errorf("overlap_threshold must be in (0, 1], got %v", c.OverlapThreshold)
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "" && f != logging.FormatConsole && f != logging.FormatJSON {
		return fmt.Errorf("invalid log format: %s (valid: %s, %s)", c.Log.Format, logging.FormatConsole, logging.FormatJSON)
	}
	if c.Crossref.Rows < 0 || c.Crossref.MaxFailures < 0 || c.Crossref.RateLimit < 0 {
		return fmt.Errorf("crossref rows, max_failures and rate_limit must not be negative")
	}
	return nil
}

// CurationPaths returns the table locations for curation.Load.
func (c *Config) CurationPaths() curation.Paths {
	return curation.Paths{
		Exclude:       c.ExcludeFile,
		Overrides:     c.OverridesFile,
		Abbreviations: c.AbbreviationsFile,
	}
}

// QueryAuthor returns the author query sent to Crossref, defaulting to the
// lower-cased target last name.
func (c *Config) QueryAuthor() string {
	if c.Crossref.QueryAuthor != "" {
		return c.Crossref.QueryAuthor
	}
	return strings.ToLower(c.Target.Target().Last)
}

// FindConfig returns the config file to use. An explicit path wins, then
// PUBS_CONFIG, then the nearest pubs.yml walking up from start.
func FindConfig(explicit, start string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, nil
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		candidate := filepath.Join(abs, ConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no %s found (use --config or %s)", ConfigFile, EnvConfig)
		}
		abs = parent
	}
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
