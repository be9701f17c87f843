package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/netsmith/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
default_resource = 2

[appliance]
url = "http://lanforge:8080"
timeout = "5s"

[layout]
margin = 20

[timing]
settle = "250ms"
`)
	cfg, err := Parse(data, TOML)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultResource != 2 || cfg.Appliance.URL != "http://lanforge:8080" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Appliance.Timeout.Std() != 5*time.Second || cfg.Timing.Settle.Std() != 250*time.Millisecond {
		t.Errorf("durations = %v, %v", cfg.Appliance.Timeout, cfg.Timing.Settle)
	}
	if cfg.Layout.Margin != 20 || cfg.Layout.RouterWidth != 50 {
		t.Errorf("layout = %+v, defaults must survive partial files", cfg.Layout)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
appliance:
  url: https://lf.example
  backoff: 1s
lock:
  backend: redis
  redis_addr: localhost:6379
journal:
  backend: file
  path: /tmp/j.jsonl
  test_id: run-1
  test_tag: smoke
`)
	cfg, err := Parse(data, YAML)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Appliance.Backoff.Std() != time.Second || cfg.Lock.Backend != "redis" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Journal.TestID != "run-1" || cfg.Journal.TestTag != "smoke" {
		t.Errorf("journal = %+v", cfg.Journal)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, f := range []Format{TOML, YAML} {
		cfg, err := Parse(nil, f)
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if cfg.Layout != Default().Layout {
			t.Errorf("%s: layout = %+v", f, cfg.Layout)
		}
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"unknown toml key", TOML, "colour = 1"},
		{"unknown yaml key", YAML, "colour: 1"},
		{"bad duration", TOML, "[timing]\nsettle = \"soon\""},
		{"zero resource", TOML, "default_resource = 0"},
		{"negative margin", YAML, "layout:\n  margin: -1"},
		{"zero width", TOML, "[layout]\nrouter_width = 0"},
		{"bad url", TOML, "[appliance]\nurl = \"lanforge\""},
		{"unknown lock", TOML, "[lock]\nbackend = \"etcd\""},
		{"redis without addr", TOML, "[lock]\nbackend = \"redis\""},
		{"file journal without path", TOML, "[journal]\nbackend = \"file\""},
		{"mongo journal without uri", YAML, "journal:\n  backend: mongo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{"a.toml": TOML, "a.YAML": YAML, "dir/a.yml": YAML} {
		got, err := FormatOf(path)
		if err != nil || got != want {
			t.Errorf("FormatOf(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := FormatOf("a.json"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("json: %v", err)
	}
}

func TestWriteThenParse(t *testing.T) {
	cfg := Default()
	cfg.Timing.Settle = Duration(1500 * time.Millisecond)
	for _, f := range []Format{TOML, YAML} {
		var buf bytes.Buffer
		if err := Write(&buf, cfg, f); err != nil {
			t.Fatal(err)
		}
		got, err := Parse(buf.Bytes(), f)
		if err != nil {
			t.Fatalf("%s: %v\n%s", f, err, buf.String())
		}
		if got.Timing != cfg.Timing {
			t.Errorf("%s: timing = %+v", f, got.Timing)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	if p, explicit := Resolve("flag.toml"); p != "flag.toml" || !explicit {
		t.Errorf("flag: %q %v", p, explicit)
	}
	if p, explicit := Resolve(""); p != filepath.Join("/xdg", "netsmith", "config.toml") || explicit {
		t.Errorf("default: %q %v", p, explicit)
	}
	t.Setenv(EnvConfig, "env.yaml")
	if p, explicit := Resolve(""); p != "env.yaml" || !explicit {
		t.Errorf("env: %q %v", p, explicit)
	}
}

func TestLoadResolved(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, path, err := LoadResolved("")
	if err != nil || path != "" || cfg.Appliance.URL != Default().Appliance.URL {
		t.Fatalf("missing default file: %v %q", err, path)
	}

	if _, _, err := LoadResolved(filepath.Join(dir, "absent.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing explicit file: %v", err)
	}

	file := filepath.Join(dir, "netsmith", "config.toml")
	os.MkdirAll(filepath.Dir(file), 0o755)
	os.WriteFile(file, []byte("default_resource = 4\n"), 0o644)
	cfg, path, err = LoadResolved("")
	if err != nil || path != file || cfg.DefaultResource != 4 {
		t.Errorf("default file: %v %q %d", err, path, cfg.DefaultResource)
	}
}
