package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterFlags(cmd)
	RegisterCrawlFlags(cmd)
	return cmd
}

func parse(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := newCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(parse(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Origin != DefaultOrigin {
		t.Errorf("Expected origin %s, got %s", DefaultOrigin, cfg.Origin)
	}
	if cfg.ContentTimeout != 10*time.Second || cfg.SettleDelay != 2*time.Second {
		t.Errorf("Unexpected timings: %v / %v", cfg.ContentTimeout, cfg.SettleDelay)
	}
	if cfg.ProbeDelayMin != 3*time.Second || cfg.ProbeDelayMax != 5*time.Second {
		t.Errorf("Unexpected probe delay %v-%v", cfg.ProbeDelayMin, cfg.ProbeDelayMax)
	}
	if cfg.PageDelayMin != 3*time.Second || cfg.PageDelayMax != 6*time.Second {
		t.Errorf("Unexpected page delay %v-%v", cfg.PageDelayMin, cfg.PageDelayMax)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected info level, got %s", cfg.LogLevel)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "listcrawl.yaml")
	yaml := "output: from-file.csv\nmax_pages: 4\ncontent_timeout: 15s\nonly: [Sedan, Coupe]\nfetcher: http\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LISTCRAWL_MAX_PAGES", "7")
	t.Setenv("LISTCRAWL_OUTPUT", "from-env.csv")

	cfg, err := Load(parse(t, "--config", path, "--output", "from-flag.csv"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OutputPath != "from-flag.csv" {
		t.Errorf("Flag should win, got %s", cfg.OutputPath)
	}
	if cfg.MaxPages != 7 {
		t.Errorf("Env should beat file, got %d", cfg.MaxPages)
	}
	if cfg.ContentTimeout != 15*time.Second {
		t.Errorf("File should beat default, got %v", cfg.ContentTimeout)
	}
	if len(cfg.Only) != 2 || cfg.Only[1] != "Coupe" {
		t.Errorf("Unexpected section filter %v", cfg.Only)
	}
	if cfg.Fetcher != FetcherHTTP {
		t.Errorf("Expected http fetcher, got %s", cfg.Fetcher)
	}
}

func TestLoad_UnchangedFlagDoesNotOverrideEnv(t *testing.T) {
	t.Setenv("LISTCRAWL_ORIGIN", "https://example.test")
	cfg, err := Load(parse(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Origin != "https://example.test" {
		t.Errorf("Expected env origin, got %s", cfg.Origin)
	}
}

func TestLoad_VerboseAndQuiet(t *testing.T) {
	cfg, err := Load(parse(t, "-v"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug, got %s", cfg.LogLevel)
	}

	cfg, err = Load(parse(t, "-q"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("Expected error, got %s", cfg.LogLevel)
	}
}

func TestLoad_OnlyFlag(t *testing.T) {
	cfg, err := Load(parse(t, "--only", " Sedan ,, Coupe"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Only) != 2 || cfg.Only[0] != "Sedan" || cfg.Only[1] != "Coupe" {
		t.Errorf("Unexpected filter %q", cfg.Only)
	}
}

func TestLoad_HeaderFlag(t *testing.T) {
	cfg, err := Load(parse(t, "-H", "Referer: https://example.test", "--header", "X-A: 1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Headers) != 2 || cfg.Headers[1] != "X-A: 1" {
		t.Errorf("Unexpected headers %q", cfg.Headers)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("LISTCRAWL_CONTENT_TIMEOUT", "soon")
	if _, err := Load(parse(t)); err == nil {
		t.Error("Expected error for unparsable duration")
	}
}

func TestLoad_UnknownFileKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("no_such_key: 1\n"), 0644)
	if _, err := Load(parse(t, "--config", path)); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	os.WriteFile(path, nil, 0644)
	if _, err := Load(parse(t, "--config", path)); err != nil {
		t.Errorf("Empty file should be accepted, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty origin", func(c *Config) { c.Origin = "" }},
		{"relative origin", func(c *Config) { c.Origin = "www.example.test" }},
		{"unknown fetcher", func(c *Config) { c.Fetcher = "curl" }},
		{"zero content timeout", func(c *Config) { c.ContentTimeout = 0 }},
		{"zero navigate timeout", func(c *Config) { c.NavigateTimeout = 0 }},
		{"negative settle", func(c *Config) { c.SettleDelay = -time.Second }},
		{"inverted page delay", func(c *Config) { c.PageDelayMin, c.PageDelayMax = 6*time.Second, 3*time.Second }},
		{"inverted probe delay", func(c *Config) { c.ProbeDelayMin = 10 * time.Second }},
		{"no start attempts", func(c *Config) { c.StartAttempts = 0 }},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"empty output", func(c *Config) { c.OutputPath = "" }},
		{"malformed header", func(c *Config) { c.Headers = []string{"nocolon"} }},
	}

	if err := validate(Defaults()); err != nil {
		t.Fatalf("Defaults should be valid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			if err := validate(cfg); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName("content-timeout"); got != "LISTCRAWL_CONTENT_TIMEOUT" {
		t.Errorf("EnvName() = %s", got)
	}
}
