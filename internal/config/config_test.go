package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	c := NewConfig()
	c.SeedURL = "http://docs.example.com/"
	return c
}

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	if c.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", c.MaxDepth, DefaultMaxDepth)
	}
	if c.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", c.MaxPages, DefaultMaxPages)
	}
	if c.PageTimeout != DefaultPageTimeout {
		t.Errorf("PageTimeout = %v, want %v", c.PageTimeout, DefaultPageTimeout)
	}
	if c.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", c.Workers, DefaultWorkers)
	}
	if c.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", c.Format, DefaultFormat)
	}
	if len(c.ExcludeSelectors) == 0 {
		t.Error("ExcludeSelectors should default to the navigation selectors")
	}
	if !c.SaveToDB {
		t.Error("SaveToDB should default to true")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "missing seed",
			mutate:  func(c *Config) { c.SeedURL = "" },
			wantErr: ErrNoSeed,
		},
		{
			name:    "zero page timeout",
			mutate:  func(c *Config) { c.PageTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative scroll timeout",
			mutate:  func(c *Config) { c.ScrollStepTimeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "zero stable steps",
			mutate:  func(c *Config) { c.StableSteps = 0 },
			wantErr: ErrInvalidStableSteps,
		},
		{
			name:    "zero scroll cap",
			mutate:  func(c *Config) { c.MaxScrollSteps = 0 },
			wantErr: ErrInvalidScrollSteps,
		},
		{
			name:    "negative depth",
			mutate:  func(c *Config) { c.MaxDepth = -1 },
			wantErr: ErrInvalidDepth,
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Format = "pdf" },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "both format is valid",
			mutate:  func(c *Config) { c.Format = "both" },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := validConfig()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("full profile", func(t *testing.T) {
		t.Parallel()

		content := `
defaults:
  depth: 3
sites:
  docs.example.com:
    cookie: "session=abc123"
    headers:
      Authorization: "Bearer token"
    depth: 2
    ignorePatterns:
      - "/api/*"
    excludeSelectors:
      - ".sidebar"
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() failed: %v", err)
		}

		site := cf.GetSiteConfig("docs.example.com")
		if site.Cookie != "session=abc123" {
			t.Errorf("Cookie = %q", site.Cookie)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("Headers = %v", site.Headers)
		}
		if site.Depth != 2 {
			t.Errorf("Depth = %d, want the site override", site.Depth)
		}
		if len(site.IgnorePatterns) != 1 || site.IgnorePatterns[0] != "/api/*" {
			t.Errorf("IgnorePatterns = %v", site.IgnorePatterns)
		}
		if len(site.ExcludeSelectors) != 1 || site.ExcludeSelectors[0] != ".sidebar" {
			t.Errorf("ExcludeSelectors = %v", site.ExcludeSelectors)
		}

		// Unknown hosts fall back to defaults.
		other := cf.GetSiteConfig("other.example.com")
		if other.Depth != 3 {
			t.Errorf("default Depth = %d, want 3", other.Depth)
		}
		if other.Cookie != "" {
			t.Errorf("default Cookie = %q, want empty", other.Cookie)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), DefaultConfigFile))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("LoadConfigFile() = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("LoadConfigFile() should fail on malformed yaml")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(path, []byte("sites: {}"), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yml")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}
