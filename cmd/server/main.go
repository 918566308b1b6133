// Package main provides the entry point for the githerald server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/githerald/internal/bot"
	"github.com/codeGROOVE-dev/githerald/internal/config"
	"github.com/codeGROOVE-dev/githerald/internal/discord"
	ghclient "github.com/codeGROOVE-dev/githerald/internal/github"
	"github.com/codeGROOVE-dev/githerald/internal/state"
	"github.com/codeGROOVE-dev/githerald/internal/webhook"
)

const (
	serverReadTimeout  = 15 * time.Second
	serverWriteTimeout = 15 * time.Second
	serverIdleTimeout  = 120 * time.Second
	shutdownGrace      = 5 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Warn("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	exitCode := run(ctx)
	cancel()
	os.Exit(exitCode)
}

func run(ctx context.Context) int {
	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	slog.Info("configuration loaded",
		"has_webhook_secret", cfg.WebhookSecret != "",
		"has_github_auth", cfg.HasGitHubAuth(),
		"state_dir", cfg.StateDir,
		"port", cfg.Port)

	store, err := state.NewFileStore(cfg.StateDir)
	if err != nil {
		slog.Error("failed to open state store", "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()

	discordClient, err := discord.New(cfg.DiscordBotToken, cfg.Retry, slog.Default())
	if err != nil {
		slog.Error("failed to create Discord client", "error", err)
		return 1
	}
	if err := discordClient.Open(); err != nil {
		slog.Error("failed to connect to Discord", "error", err)
		return 1
	}
	defer func() {
		if err := discordClient.Close(); err != nil {
			slog.Warn("failed to close Discord session", "error", err)
		}
	}()

	githubClient, err := buildGitHubClient(ctx, cfg)
	if err != nil {
		slog.Error("failed to create GitHub client", "error", err)
		return 1
	}

	relay := bot.New(discordClient, githubClient, store, cfg.Channels, slog.Default())
	ingress := webhook.New(relay, discordClient, cfg, slog.Default())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      ingress.Router(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		slog.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		return runJobs(ctx, relay, cfg)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		return 1
	}

	slog.Info("shutdown complete")
	return 0
}

// buildGitHubClient picks App auth over token auth when both are present.
// No credentials at all returns a nil client; the jobs that need one skip
// themselves.
func buildGitHubClient(ctx context.Context, cfg config.Settings) (bot.GitHub, error) {
	var source ghclient.APISource
	switch {
	case cfg.GitHubAppID != "" && cfg.GitHubPrivateKey != "":
		app, err := ghclient.NewAppClient(cfg.GitHubAppID, cfg.GitHubPrivateKey, cfg.GitHubAccount, slog.Default())
		if err != nil {
			return nil, err
		}
		source = app
	case cfg.GitHubToken != "":
		source = ghclient.NewStaticSource(ctx, cfg.GitHubToken, cfg.HTTPTimeout)
	default:
		return nil, nil //nolint:nilnil // no credentials means no client
	}
	return ghclient.New(source, cfg.GitHubAccount, slog.Default()), nil
}

// runJobs drives the periodic maintenance loops: reconciling the PR map,
// refreshing repository stats, and purging old notifications. Stats run
// once at startup so the channels are fresh after a deploy.
func runJobs(ctx context.Context, relay *bot.Bot, cfg config.Settings) error {
	cleanupTicker := time.NewTicker(cfg.CleanupInterval)
	defer cleanupTicker.Stop()

	statsTicker := time.NewTicker(cfg.StatsInterval)
	defer statsTicker.Stop()

	purgeTicker := time.NewTicker(cfg.PurgeInterval)
	defer purgeTicker.Stop()

	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	if err := relay.RefreshStats(ctx); err != nil {
		slog.Warn("initial stats refresh failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-cleanupTicker.C:
			if err := relay.Cleanup(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("cleanup sweep failed", "error", err)
			}

		case <-statsTicker.C:
			if err := relay.RefreshStats(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("stats refresh failed", "error", err)
			}

		case <-purgeTicker.C:
			if err := relay.Purge(ctx, retention); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("purge failed", "error", err)
			}
		}
	}
}
