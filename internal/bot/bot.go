// Package bot implements the notification lifecycle: posting events to
// Discord channels, tracking pull request messages, and running the
// periodic reconciliation, stats, and retention jobs.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/codeGROOVE-dev/githerald/internal/config"
	ghclient "github.com/codeGROOVE-dev/githerald/internal/github"
	"github.com/codeGROOVE-dev/githerald/internal/state"
)

// Discord is the subset of the Discord client the bot uses.
type Discord interface {
	PostEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (string, error)
	EditEmbed(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	RenameChannel(ctx context.Context, channelID, name string) error
	PurgeOldMessages(ctx context.Context, channelID string, cutoff time.Time) ([]string, error)
	LogToChannel(ctx context.Context, channelID, text string)
}

// GitHub is the subset of the GitHub client the bot uses.
type GitHub interface {
	PRState(ctx context.Context, owner, repo string, number int) (ghclient.PRStatus, error)
	FetchRepoStats(ctx context.Context) (*ghclient.RepoStats, error)
}

// Bot relays GitHub events to Discord and keeps the message map honest.
type Bot struct {
	discord  Discord
	github   GitHub
	store    state.Store
	channels config.Channels
	logger   *slog.Logger
}

// New creates a Bot. The GitHub client may be nil when no GitHub
// credentials are configured; jobs that need it become no-ops.
func New(discord Discord, github GitHub, store state.Store, channels config.Channels, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		discord:  discord,
		github:   github,
		store:    store,
		channels: channels,
		logger:   logger,
	}
}
