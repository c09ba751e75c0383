package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	BackendAuto     = "auto"
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendBolt     = "bolt"
	BackendMemory   = "memory"
)

// Backends lists every accepted store.backend value.
var Backends = []string{BackendAuto, BackendSupabase, BackendPostgres, BackendSQLite, BackendBolt, BackendMemory}

type Config struct {
	Store   StoreConfig   `toml:"store" yaml:"store" json:"store"`
	Log     LogConfig     `toml:"log" yaml:"log" json:"log"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics" json:"metrics"`
}

type StoreConfig struct {
	// Backend selects the store implementation. "auto" uses Supabase when a URL
	// is configured and a local SQLite file otherwise.
	Backend string `toml:"backend" yaml:"backend" json:"backend"`

	// URL and Key address a Supabase project (PostgREST under /rest/v1).
	URL string `toml:"url,omitempty" yaml:"url,omitempty" json:"url,omitempty"`
	Key string `toml:"key,omitempty" yaml:"key,omitempty" json:"key,omitempty"`

	// DSN is used by the postgres backend.
	DSN string `toml:"dsn,omitempty" yaml:"dsn,omitempty" json:"dsn,omitempty"`

	// Path is the database file for the sqlite and bolt backends.
	Path string `toml:"path,omitempty" yaml:"path,omitempty" json:"path,omitempty"`

	Table string `toml:"table" yaml:"table" json:"table"`

	// Timeout bounds each store call. Zero disables the bound.
	Timeout Duration `toml:"timeout" yaml:"timeout" json:"timeout"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level" json:"level"`
	// File receives logs while the TUI owns the terminal. Empty discards them.
	File string `toml:"file,omitempty" yaml:"file,omitempty" json:"file,omitempty"`
}

type MetricsConfig struct {
	// Addr, when set, serves Prometheus metrics on http://Addr/metrics.
	Addr string `toml:"addr,omitempty" yaml:"addr,omitempty" json:"addr,omitempty"`
}

// Duration accepts "15s"-style strings in both TOML and YAML files.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}

func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

const (
	DefaultTable   = "crewmates"
	DefaultTimeout = Duration(15 * time.Second)
)

func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendAuto,
			Table:   DefaultTable,
			Timeout: DefaultTimeout,
		},
		Log: LogConfig{Level: "info"},
	}
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.crewmates).
	if v := strings.TrimSpace(os.Getenv("CREWMATES_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".crewmates"), nil
}

// DefaultPath is config.toml, or config.yaml/config.yml when only that exists.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	for _, alt := range []string{"config.yaml", "config.yml"} {
		candidate := filepath.Join(dir, alt)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return path, nil
}

// Load reads path (DefaultPath when empty) over the defaults. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := decode(path, b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		_, err := toml.NewDecoder(bytes.NewReader(b)).Decode(cfg)
		return err
	}
}

// ApplyEnv overlays CREWMATES_* variables (and the SUPABASE_URL/SUPABASE_KEY
// pair most Supabase projects already export).
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}
	if v := first("CREWMATES_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := first("CREWMATES_SUPABASE_URL", "SUPABASE_URL"); v != "" {
		c.Store.URL = v
	}
	if v := first("CREWMATES_SUPABASE_KEY", "SUPABASE_KEY"); v != "" {
		c.Store.Key = v
	}
	if v := first("CREWMATES_DSN", "DATABASE_URL"); v != "" {
		c.Store.DSN = v
	}
	if v := first("CREWMATES_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := first("CREWMATES_TABLE"); v != "" {
		c.Store.Table = v
	}
	if v := first("CREWMATES_TIMEOUT"); v != "" {
		if err := c.Store.Timeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("CREWMATES_TIMEOUT: %w", err)
		}
	}
	if v := first("CREWMATES_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := first("CREWMATES_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := first("CREWMATES_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}

// ResolvedBackend turns "auto" (or empty) into a concrete backend name.
func (s StoreConfig) ResolvedBackend() string {
	b := strings.ToLower(strings.TrimSpace(s.Backend))
	switch b {
	case "", BackendAuto:
		if strings.TrimSpace(s.URL) != "" {
			return BackendSupabase
		}
		return BackendSQLite
	case "rest", "postgrest":
		return BackendSupabase
	case "pg", "postgresql":
		return BackendPostgres
	case "bbolt":
		return BackendBolt
	}
	return b
}

// Validate reports configuration that cannot produce a working store.
func (c Config) Validate() error {
	switch c.Store.ResolvedBackend() {
	case BackendSupabase:
		if strings.TrimSpace(c.Store.URL) == "" {
			return errors.New("store.url is required for the supabase backend (or set SUPABASE_URL)")
		}
		if strings.TrimSpace(c.Store.Key) == "" {
			return errors.New("store.key is required for the supabase backend (or set SUPABASE_KEY)")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return errors.New("store.dsn is required for the postgres backend (or set DATABASE_URL)")
		}
	case BackendSQLite, BackendBolt, BackendMemory:
	default:
		return fmt.Errorf("unknown store.backend %q (want one of %s)", c.Store.Backend, strings.Join(Backends, ", "))
	}
	if c.Store.Timeout < 0 {
		return errors.New("store.timeout must not be negative")
	}
	if strings.TrimSpace(c.Store.Table) == "" {
		return errors.New("store.table is required")
	}
	return nil
}

// DataPath returns the sqlite/bolt file, defaulting to the config dir.
func (s StoreConfig) DataPath() (string, error) {
	if p := strings.TrimSpace(s.Path); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	name := "crewmates.sqlite"
	if s.ResolvedBackend() == BackendBolt {
		name = "crewmates.bolt"
	}
	return filepath.Join(dir, name), nil
}

// Redacted hides secrets for display.
func (c Config) Redacted() Config {
	out := c
	if out.Store.Key != "" {
		out.Store.Key = "********"
	}
	if out.Store.DSN != "" {
		out.Store.DSN = redactDSN(out.Store.DSN)
	}
	return out
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return dsn[:scheme+3] + creds[:i] + ":********" + dsn[at:]
	}
	return dsn
}

// Save writes cfg as TOML to path (DefaultPath when empty).
func Save(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		_ = enc.Close()
	default:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
	}
	// The file may hold an API key.
	return atomicWriteFile(dir, "config.*.tmp", path, buf.Bytes(), 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
