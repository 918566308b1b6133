// Package config loads relay settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/gsm"
	"gopkg.in/yaml.v3"
)

// Defaults for tunables that are rarely overridden.
const (
	defaultPort            = "8080"
	defaultStateDir        = "state"
	defaultCleanupInterval = time.Hour
	defaultStatsInterval   = time.Hour
	defaultPurgeInterval   = 6 * time.Hour
	defaultRetentionDays   = 30
	defaultHTTPTimeout     = 15 * time.Second

	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
	defaultRetryMaxDelay = 5 * time.Second
)

// RetryPolicy is the single retry configuration shared by every call site.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// Channels holds the Discord channel IDs each notification class is routed to.
// An empty ID disables that destination.
type Channels struct {
	Commits      string
	PullRequests string
	Merges       string
	Issues       string
	Releases     string
	Deployments  string
	CI           string
	Wiki         string
	Logs         string

	StatsCommits      string
	StatsPullRequests string
	StatsMerges       string
}

// Routes holds optional routing overrides loaded from a YAML file: extra
// skip rules per event type and per-event-type channel overrides.
type Routes struct {
	Skip     map[string][]string `yaml:"skip"`
	Channels map[string]string   `yaml:"channels"`
}

// Settings holds all server configuration.
type Settings struct {
	DiscordBotToken  string
	WebhookSecret    string
	GitHubToken      string
	GitHubAppID      string
	GitHubPrivateKey string
	GitHubAccount    string

	Port     string
	StateDir string

	Channels Channels
	Routes   Routes

	CleanupInterval time.Duration
	StatsInterval   time.Duration
	PurgeInterval   time.Duration
	RetentionDays   int
	HTTPTimeout     time.Duration

	Retry RetryPolicy
}

// Load reads settings from the environment. Secret values fall back to
// Secret Manager when not present in the environment.
func Load(ctx context.Context) (Settings, error) {
	getSecret := func(name string) string {
		if v := os.Getenv(name); v != "" {
			return v
		}
		value, err := gsm.Fetch(ctx, name)
		if err != nil {
			slog.Debug("secret not found in Secret Manager", "name", name, "error", err)
			return ""
		}
		if value != "" {
			slog.Info("loaded secret from Secret Manager", "name", name)
		}
		return value
	}

	githubPrivateKey := getSecret("GITHUB_PRIVATE_KEY")
	if githubPrivateKey == "" {
		if keyPath := os.Getenv("GITHUB_PRIVATE_KEY_PATH"); keyPath != "" {
			data, err := os.ReadFile(keyPath) //nolint:gosec // operator-supplied path
			if err != nil {
				return Settings{}, fmt.Errorf("read private key: %w", err)
			}
			githubPrivateKey = string(data)
		}
	}

	cfg := Settings{
		DiscordBotToken:  getSecret("DISCORD_BOT_TOKEN"),
		WebhookSecret:    getSecret("GITHUB_WEBHOOK_SECRET"),
		GitHubToken:      getSecret("GITHUB_TOKEN"),
		GitHubAppID:      os.Getenv("GITHUB_APP_ID"),
		GitHubPrivateKey: githubPrivateKey,
		GitHubAccount:    os.Getenv("GITHUB_ACCOUNT"),
		Port:             getEnv("PORT", defaultPort),
		StateDir:         getEnv("STATE_DIR", defaultStateDir),
		Channels: Channels{
			Commits:           os.Getenv("CHANNEL_COMMITS"),
			PullRequests:      os.Getenv("CHANNEL_PULL_REQUESTS"),
			Merges:            os.Getenv("CHANNEL_MERGES"),
			Issues:            os.Getenv("CHANNEL_ISSUES"),
			Releases:          os.Getenv("CHANNEL_RELEASES"),
			Deployments:       os.Getenv("CHANNEL_DEPLOYMENTS"),
			CI:                os.Getenv("CHANNEL_CI"),
			Wiki:              os.Getenv("CHANNEL_WIKI"),
			Logs:              os.Getenv("CHANNEL_LOGS"),
			StatsCommits:      os.Getenv("CHANNEL_STATS_COMMITS"),
			StatsPullRequests: os.Getenv("CHANNEL_STATS_PULL_REQUESTS"),
			StatsMerges:       os.Getenv("CHANNEL_STATS_MERGES"),
		},
		CleanupInterval: getDuration("CLEANUP_INTERVAL", defaultCleanupInterval),
		StatsInterval:   getDuration("STATS_INTERVAL", defaultStatsInterval),
		PurgeInterval:   getDuration("PURGE_INTERVAL", defaultPurgeInterval),
		RetentionDays:   getInt("RETENTION_DAYS", defaultRetentionDays),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
		Retry: RetryPolicy{
			Attempts: uint(getInt("RETRY_ATTEMPTS", defaultRetryAttempts)), //nolint:gosec // bounded small value
			Delay:    getDuration("RETRY_DELAY", defaultRetryDelay),
			MaxDelay: getDuration("RETRY_MAX_DELAY", defaultRetryMaxDelay),
		},
	}

	if path := os.Getenv("ROUTES_FILE"); path != "" {
		routes, err := LoadRoutes(path)
		if err != nil {
			return Settings{}, fmt.Errorf("load routes file: %w", err)
		}
		cfg.Routes = routes
	}

	if cfg.DiscordBotToken == "" {
		return cfg, errors.New("DISCORD_BOT_TOKEN environment variable is required")
	}
	if cfg.WebhookSecret == "" {
		slog.Warn("GITHUB_WEBHOOK_SECRET not set, webhook signature verification disabled")
	}
	if !cfg.HasGitHubAuth() {
		slog.Warn("no GitHub credentials configured, cleanup and stats jobs disabled")
	}

	return cfg, nil
}

// HasGitHubAuth reports whether any GitHub credential is configured.
func (s *Settings) HasGitHubAuth() bool {
	return s.GitHubToken != "" || (s.GitHubAppID != "" && s.GitHubPrivateKey != "")
}

// LoadRoutes parses a YAML routing-overrides file.
func LoadRoutes(path string) (Routes, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return Routes{}, fmt.Errorf("read routes: %w", err)
	}

	var routes Routes
	if err := yaml.Unmarshal(data, &routes); err != nil {
		return Routes{}, fmt.Errorf("parse routes: %w", err)
	}
	return routes, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "name", key, "value", v, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer, using default", "name", key, "value", v, "default", defaultValue)
		return defaultValue
	}
	return n
}
