// Package config loads netsmith settings from TOML or YAML files.
//
// The format is picked by file extension (.toml, .yaml, .yml). Every field
// has a default, so an empty or missing file yields [Default]. Durations are
// written as Go duration strings:
//
//	[appliance]
//	url = "http://lanforge:8080"
//	timeout = "5s"
//
//	[timing]
//	settle = "1s"
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// EnvConfig names the environment variable holding a config file path.
const EnvConfig = "NETSMITH_CONFIG"

// Duration is a time.Duration that reads and writes as "250ms" in both
// TOML and YAML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the complete netsmith configuration.
type Config struct {
	DefaultResource int       `toml:"default_resource" yaml:"default_resource"`
	Appliance       Appliance `toml:"appliance" yaml:"appliance"`
	Layout          Layout    `toml:"layout" yaml:"layout"`
	Timing          Timing    `toml:"timing" yaml:"timing"`
	Lock            Lock      `toml:"lock" yaml:"lock"`
	Journal         Journal   `toml:"journal" yaml:"journal"`
}

// Appliance configures the API client.
type Appliance struct {
	URL      string            `toml:"url" yaml:"url"`
	Timeout  Duration          `toml:"timeout" yaml:"timeout"`
	Attempts int               `toml:"attempts" yaml:"attempts"`
	Backoff  Duration          `toml:"backoff" yaml:"backoff"`
	Headers  map[string]string `toml:"headers,omitempty" yaml:"headers,omitempty"`
}

// Layout configures placement.
type Layout struct {
	Margin        int    `toml:"margin" yaml:"margin"`
	RouterWidth   int    `toml:"router_width" yaml:"router_width"`
	RouterHeight  int    `toml:"router_height" yaml:"router_height"`
	LandingMargin int    `toml:"landing_margin" yaml:"landing_margin"`
	Seed          uint64 `toml:"seed" yaml:"seed"`                         // 0 seeds from the clock
	Stream        string `toml:"stream,omitempty" yaml:"stream,omitempty"` // rngstream name; overrides Seed
}

// Timing holds the settle delays the appliance needs between commands.
type Timing struct {
	Settle  Duration `toml:"settle" yaml:"settle"`   // after apply_vr_cfg
	Remove  Duration `toml:"remove" yaml:"remove"`   // after rm_vr
	Refresh Duration `toml:"refresh" yaml:"refresh"` // between GUI refresh steps
}

// Lock selects the mutation lock backend.
type Lock struct {
	Backend       string   `toml:"backend" yaml:"backend"` // local or redis
	RedisAddr     string   `toml:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword string   `toml:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int      `toml:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	Prefix        string   `toml:"prefix,omitempty" yaml:"prefix,omitempty"`
	TTL           Duration `toml:"ttl" yaml:"ttl"`
}

// Journal selects where mutation outcomes are recorded.
type Journal struct {
	Backend    string `toml:"backend" yaml:"backend"` // none, file or mongo
	Path       string `toml:"path,omitempty" yaml:"path,omitempty"`
	MongoURI   string `toml:"mongo_uri,omitempty" yaml:"mongo_uri,omitempty"`
	Database   string `toml:"database,omitempty" yaml:"database,omitempty"`
	Collection string `toml:"collection,omitempty" yaml:"collection,omitempty"`
	TestID     string `toml:"test_id,omitempty" yaml:"test_id,omitempty"`
	TestTag    string `toml:"test_tag,omitempty" yaml:"test_tag,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DefaultResource: 1,
		Appliance: Appliance{
			URL:      "http://localhost:8080",
			Timeout:  Duration(10 * time.Second),
			Attempts: 3,
			Backoff:  Duration(500 * time.Millisecond),
		},
		Layout: Layout{
			Margin:        15,
			RouterWidth:   50,
			RouterHeight:  250,
			LandingMargin: 15,
		},
		Timing: Timing{
			Settle:  Duration(time.Second),
			Remove:  Duration(50 * time.Millisecond),
			Refresh: Duration(30 * time.Millisecond),
		},
		Lock: Lock{
			Backend: "local",
			Prefix:  "netsmith:lock",
			TTL:     Duration(30 * time.Second),
		},
		Journal: Journal{
			Backend:    "none",
			Database:   "netsmith",
			Collection: "journal",
		},
	}
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c Config) Validate() error {
	switch {
	case c.DefaultResource < 1:
		return invalid("default_resource must be positive, got %d", c.DefaultResource)
	case errors.ValidateURL(c.Appliance.URL) != nil:
		return invalid("appliance.url %q must be an http(s) URL", c.Appliance.URL)
	case c.Appliance.Timeout <= 0:
		return invalid("appliance.timeout must be positive")
	case c.Appliance.Attempts < 1:
		return invalid("appliance.attempts must be at least 1")
	case c.Appliance.Backoff < 0:
		return invalid("appliance.backoff must not be negative")
	case c.Layout.Margin < 0 || c.Layout.LandingMargin < 0:
		return invalid("layout margins must not be negative")
	case c.Layout.RouterWidth <= 0 || c.Layout.RouterHeight <= 0:
		return invalid("layout router size must be positive, got %dx%d", c.Layout.RouterWidth, c.Layout.RouterHeight)
	case c.Timing.Settle < 0 || c.Timing.Remove < 0 || c.Timing.Refresh < 0:
		return invalid("timing delays must not be negative")
	}

	switch c.Lock.Backend {
	case "local":
	case "redis":
		if c.Lock.RedisAddr == "" {
			return invalid("lock.redis_addr is required for the redis backend")
		}
	default:
		return invalid("unknown lock backend %q", c.Lock.Backend)
	}

	switch c.Journal.Backend {
	case "none":
	case "file":
		if c.Journal.Path == "" {
			return invalid("journal.path is required for the file backend")
		}
	case "mongo":
		if c.Journal.MongoURI == "" {
			return invalid("journal.mongo_uri is required for the mongo backend")
		}
	default:
		return invalid("unknown journal backend %q", c.Journal.Backend)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// Format is a config file syntax.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", invalid("cannot tell config format of %q (want .toml, .yaml or .yml)", path)
}

// Load reads and validates the config at path on top of Default.
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes data on top of Default and validates the result.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case TOML:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, invalid("decode toml: %v", err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return Config{}, invalid("unknown keys: %v", undec)
		}
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return Config{}, invalid("decode yaml: %v", err)
		}
	default:
		return Config{}, invalid("unknown format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg to w in format.
func Write(w io.Writer, cfg Config, format Format) error {
	switch format {
	case TOML:
		return toml.NewEncoder(w).Encode(cfg)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return invalid("unknown format %q", format)
}

// DefaultPath returns $XDG_CONFIG_HOME/netsmith/config.toml, falling back to
// ~/.config/netsmith/config.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "netsmith", "config.toml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "netsmith", "config.toml")
}

// Resolve picks the config file to use: flag, then $NETSMITH_CONFIG, then
// DefaultPath. explicit is false only for DefaultPath, whose absence is not
// an error.
func Resolve(flag string) (path string, explicit bool) {
	if flag != "" {
		return flag, true
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, true
	}
	return DefaultPath(), false
}

// LoadResolved loads the file chosen by Resolve, returning Default when the
// implicit default file does not exist.
func LoadResolved(flag string) (Config, string, error) {
	path, explicit := Resolve(flag)
	if _, err := os.Stat(path); err != nil && !explicit && os.IsNotExist(err) {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// String renders cfg as TOML.
func (c Config) String() string {
	var buf bytes.Buffer
	if err := Write(&buf, c, TOML); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}
