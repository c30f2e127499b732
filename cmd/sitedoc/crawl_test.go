package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewCrawlCmd tests the crawl command creation and flag defaults.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl <url>" {
			t.Errorf("expected use 'crawl <url>', got %q", cmd.Use)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"depth", "max-pages", "workers", "ignore", "follow",
			"timeout", "scroll-timeout", "stable-steps", "max-scrolls",
			"user-agent", "control-url", "exclude", "capture-chrome",
			"format", "output", "config", "no-db", "db-dir",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})
}

// TestBuildConfig tests that flags land in the config.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Flags().Set("depth", "3"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if err := cmd.Flags().Set("format", "markdown"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if err := cmd.Flags().Set("timeout", "10s"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if err := cmd.Flags().Set("no-db", "true"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	cfg, err := buildConfig(cmd, []string{"http://docs.example.com/"})
	if err != nil {
		t.Fatalf("buildConfig() failed: %v", err)
	}

	if cfg.SeedURL != "http://docs.example.com/" {
		t.Errorf("SeedURL = %q", cfg.SeedURL)
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.MaxDepth)
	}
	if cfg.Format != "markdown" {
		t.Errorf("Format = %q, want markdown", cfg.Format)
	}
	if cfg.PageTimeout != 10*time.Second {
		t.Errorf("PageTimeout = %v, want 10s", cfg.PageTimeout)
	}
	if cfg.SaveToDB {
		t.Error("SaveToDB should be false with --no-db")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("built config should validate: %v", err)
	}
}

// TestBuildConfigSiteProfile tests that the seed host's profile from
// the config file is merged, with explicit flags winning.
func TestBuildConfigSiteProfile(t *testing.T) {
	t.Parallel()

	content := `
sites:
  docs.example.com:
    cookie: "session=abc123"
    headers:
      Authorization: "Bearer token"
    depth: 2
    ignorePatterns:
      - "/api/*"
`
	path := filepath.Join(t.TempDir(), ".sitedoc")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Run("profile applies", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"http://docs.example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() failed: %v", err)
		}

		if cfg.Cookie != "session=abc123" {
			t.Errorf("Cookie = %q", cfg.Cookie)
		}
		if cfg.Headers["Authorization"] != "Bearer token" {
			t.Errorf("Headers = %v", cfg.Headers)
		}
		if cfg.MaxDepth != 2 {
			t.Errorf("MaxDepth = %d, want the profile's 2", cfg.MaxDepth)
		}
		if len(cfg.IgnorePatterns) != 1 || cfg.IgnorePatterns[0] != "/api/*" {
			t.Errorf("IgnorePatterns = %v", cfg.IgnorePatterns)
		}
	})

	t.Run("explicit flag beats profile", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		if err := cmd.Flags().Set("depth", "4"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"http://docs.example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() failed: %v", err)
		}
		if cfg.MaxDepth != 4 {
			t.Errorf("MaxDepth = %d, want the flag's 4", cfg.MaxDepth)
		}
	})

	t.Run("other host ignores profile", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"http://other.example.com/"})
		if err != nil {
			t.Fatalf("buildConfig() failed: %v", err)
		}
		if cfg.Cookie != "" {
			t.Errorf("Cookie = %q, want empty for an unlisted host", cfg.Cookie)
		}
	})
}

// TestBuildConfigMissingExplicitConfig tests that a missing explicit
// config file is an error while the default search is silent.
func TestBuildConfigMissingExplicitConfig(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()
	if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yml")); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	if _, err := buildConfig(cmd, []string{"http://docs.example.com/"}); err == nil {
		t.Error("buildConfig() should fail when an explicit config file is missing")
	}
}

func TestWithExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		ext  string
		want string
	}{
		{"site", ".docx", "site.docx"},
		{"site.docx", ".md", "site.md"},
		{"out/dir/site.md", ".docx", "out/dir/site.docx"},
		{"docs.example.com", ".md", "docs.example.com.md"},
	}
	for _, tt := range tests {
		if got := withExtension(tt.path, tt.ext); got != tt.want {
			t.Errorf("withExtension(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestDefaultOutputBase(t *testing.T) {
	t.Parallel()

	if got := defaultOutputBase("http://docs.example.com/start"); got != "docs.example.com" {
		t.Errorf("defaultOutputBase() = %q, want the hostname", got)
	}
	if got := defaultOutputBase("://bad"); got != "sitedoc-output" {
		t.Errorf("defaultOutputBase() = %q, want the fallback", got)
	}
}
