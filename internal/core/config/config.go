package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int           `toml:"version"`
	Sources       Sources       `toml:"sources"`
	Environments  []Environment `toml:"environments"`
	Resolve       Resolve       `toml:"resolve"`
	Exclude       Exclude       `toml:"exclude"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Output        Output        `toml:"output"`
	Observability Observability `toml:"observability"`
}

type Sources struct {
	Roots []string `toml:"roots"`
}

// Environment is one named renaming environment. Type srg and tsrg load a
// mapping file directly; type csv layers member renames over a base
// environment and must name one.
type Environment struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	File string `toml:"file"`
	Base string `toml:"base"`
}

type Resolve struct {
	Prefix string `toml:"prefix"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Watch struct {
	Debounce  time.Duration `toml:"debounce"`
	RateLimit float64       `toml:"rate_limit"` // passes per second
	Burst     int           `toml:"burst"`
}

type Output struct {
	SARIF    string `toml:"sarif"`
	Markdown string `toml:"markdown"`
	TSV      string `toml:"tsv"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Port          int    `toml:"port"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
	EnableMetrics bool   `toml:"enable_metrics"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateEnvironments(&cfg); err != nil {
		return nil, err
	}
	if err := validateDatabase(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Sources.Roots) == 0 {
		cfg.Sources.Roots = []string{"."}
	}

	if strings.TrimSpace(cfg.Resolve.Prefix) == "" {
		cfg.Resolve.Prefix = "shadow$"
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{"build", "out", ".git", ".gradle"}
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "shadowmap.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RateLimit <= 0 {
		cfg.Watch.RateLimit = 2
	}
	if cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = 1
	}

	if cfg.Observability.Port == 0 {
		cfg.Observability.Port = 9090
	}
	if cfg.Observability.Enabled {
		cfg.Observability.EnableMetrics = true
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateEnvironments(cfg *Config) error {
	if len(cfg.Environments) == 0 {
		return fmt.Errorf("at least one [[environments]] entry is required")
	}

	seen := make(map[string]bool, len(cfg.Environments))
	for i, env := range cfg.Environments {
		ref := fmt.Sprintf("environments[%d]", i)
		name := strings.TrimSpace(env.Name)
		if name == "" {
			return fmt.Errorf("%s.name must not be empty", ref)
		}
		if seen[name] {
			return fmt.Errorf("duplicate environment name %q", name)
		}
		seen[name] = true

		switch strings.ToLower(strings.TrimSpace(env.Type)) {
		case "srg", "tsrg":
			if env.Base != "" {
				return fmt.Errorf("%s.base is only valid for type csv", ref)
			}
		case "csv":
			if strings.TrimSpace(env.Base) == "" {
				return fmt.Errorf("%s.base must name a base environment for type csv", ref)
			}
		default:
			return fmt.Errorf("%s.type must be one of: srg, tsrg, csv", ref)
		}

		if strings.TrimSpace(env.File) == "" {
			return fmt.Errorf("%s.file must not be empty", ref)
		}
	}

	// csv bases must reference an srg or tsrg environment declared in this file
	for i, env := range cfg.Environments {
		if strings.ToLower(env.Type) != "csv" {
			continue
		}
		if !seen[env.Base] {
			return fmt.Errorf("environments[%d].base references unknown environment %q", i, env.Base)
		}
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// ResolveRelative anchors relative source roots, mapping files, and output
// paths on the config file's directory.
func (cfg *Config) ResolveRelative(configPath string) {
	base := filepath.Dir(configPath)
	anchor := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	for i := range cfg.Sources.Roots {
		anchor(&cfg.Sources.Roots[i])
	}
	for i := range cfg.Environments {
		anchor(&cfg.Environments[i].File)
	}
	anchor(&cfg.DB.Path)
	anchor(&cfg.Output.SARIF)
	anchor(&cfg.Output.Markdown)
	anchor(&cfg.Output.TSV)
}
