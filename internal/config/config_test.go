package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("missing bot token", func(t *testing.T) {
		// Keep gsm lookups from succeeding by pointing at nothing.
		t.Setenv("DISCORD_BOT_TOKEN", "")
		if _, err := Load(ctx); err == nil {
			t.Error("Load() expected error without DISCORD_BOT_TOKEN")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DISCORD_BOT_TOKEN", "test-token")
		cfg, err := Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("Port = %q, want %q", cfg.Port, "8080")
		}
		if cfg.CleanupInterval != time.Hour {
			t.Errorf("CleanupInterval = %v, want %v", cfg.CleanupInterval, time.Hour)
		}
		if cfg.Retry.Attempts != 3 {
			t.Errorf("Retry.Attempts = %d, want 3", cfg.Retry.Attempts)
		}
		if cfg.HasGitHubAuth() {
			t.Error("HasGitHubAuth() = true without credentials")
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DISCORD_BOT_TOKEN", "test-token")
		t.Setenv("GITHUB_TOKEN", "ghp_test")
		t.Setenv("CHANNEL_PULL_REQUESTS", "12345")
		t.Setenv("CLEANUP_INTERVAL", "30m")
		t.Setenv("RETRY_ATTEMPTS", "5")

		cfg, err := Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Channels.PullRequests != "12345" {
			t.Errorf("Channels.PullRequests = %q, want %q", cfg.Channels.PullRequests, "12345")
		}
		if cfg.CleanupInterval != 30*time.Minute {
			t.Errorf("CleanupInterval = %v, want 30m", cfg.CleanupInterval)
		}
		if cfg.Retry.Attempts != 5 {
			t.Errorf("Retry.Attempts = %d, want 5", cfg.Retry.Attempts)
		}
		if !cfg.HasGitHubAuth() {
			t.Error("HasGitHubAuth() = false with token set")
		}
	})

	t.Run("invalid duration falls back", func(t *testing.T) {
		t.Setenv("DISCORD_BOT_TOKEN", "test-token")
		t.Setenv("STATS_INTERVAL", "not-a-duration")

		cfg, err := Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.StatsInterval != time.Hour {
			t.Errorf("StatsInterval = %v, want default %v", cfg.StatsInterval, time.Hour)
		}
	})
}

func TestLoadRoutes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.yaml")

	content := `skip:
  pull_request: [synchronize, edited]
  watch: [started]
channels:
  release: "999888777"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	routes, err := LoadRoutes(path)
	if err != nil {
		t.Fatalf("LoadRoutes() error = %v", err)
	}

	if got := routes.Skip["pull_request"]; len(got) != 2 || got[0] != "synchronize" {
		t.Errorf("Skip[pull_request] = %v, want [synchronize edited]", got)
	}
	if routes.Channels["release"] != "999888777" {
		t.Errorf("Channels[release] = %q, want %q", routes.Channels["release"], "999888777")
	}

	if _, err := LoadRoutes(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("LoadRoutes() expected error for missing file")
	}
}
