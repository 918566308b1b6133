package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v50/github"

	"github.com/codeGROOVE-dev/githerald/internal/discord"
	"github.com/codeGROOVE-dev/githerald/internal/format"
	"github.com/codeGROOVE-dev/githerald/internal/state"
)

// HandlePullRequest runs the lifecycle for a pull_request event: new and
// reopened PRs get a tracked message, closed PRs get a merge or close
// notice and their tracked message is retired.
func (b *Bot) HandlePullRequest(ctx context.Context, event *github.PullRequestEvent) error {
	repo := event.GetRepo().GetFullName()
	number := event.GetPullRequest().GetNumber()
	action := event.GetAction()
	key := state.PRKey(repo, number)

	logger := b.logger.With("repo", repo, "pr", number, "action", action)

	switch action {
	case "opened", "ready_for_review", "reopened":
		return b.trackPR(ctx, key, event, logger)
	case "closed":
		return b.retirePR(ctx, key, event, logger)
	default:
		// Refresh the tracked message if we have one; otherwise nothing to do.
		if messageID, ok := b.store.PRMessage(ctx, key); ok {
			embed := format.PullRequestEvent(event)
			if err := b.discord.EditEmbed(ctx, b.channels.PullRequests, messageID, embed); err != nil {
				logger.Warn("failed to refresh PR message", "error", err)
			}
		}
		return nil
	}
}

// trackPR posts (or refreshes) the open notification for a PR. A key never
// holds more than one live message: if one already exists it is edited in
// place rather than duplicated.
func (b *Bot) trackPR(ctx context.Context, key string, event *github.PullRequestEvent, logger *slog.Logger) error {
	embed := format.PullRequestEvent(event)

	if messageID, ok := b.store.PRMessage(ctx, key); ok {
		err := b.discord.EditEmbed(ctx, b.channels.PullRequests, messageID, embed)
		if err == nil {
			logger.Info("refreshed existing PR message", "message_id", messageID)
			return nil
		}
		if !discord.IsUnknownMessage(err) {
			return fmt.Errorf("refresh PR message: %w", err)
		}
		// The tracked message is gone; fall through and post a new one.
		logger.Warn("tracked message vanished, reposting", "message_id", messageID)
	}

	messageID, err := b.discord.PostEmbed(ctx, b.channels.PullRequests, embed)
	if err != nil {
		return fmt.Errorf("post PR message: %w", err)
	}
	if err := b.store.SavePRMessage(ctx, key, messageID); err != nil {
		return fmt.Errorf("save PR message: %w", err)
	}

	logger.Info("tracked new PR message", "message_id", messageID)
	return nil
}

// retirePR posts the closed/merged notification and removes the tracked
// open message. The merged flag on the payload decides the destination:
// merged PRs announce in the merges channel, abandoned ones in the PR
// channel.
func (b *Bot) retirePR(ctx context.Context, key string, event *github.PullRequestEvent, logger *slog.Logger) error {
	embed := format.ClosedPREvent(event)
	channelID := b.channels.PullRequests
	if event.GetPullRequest().GetMerged() {
		embed = format.MergeEvent(event)
		channelID = b.channels.Merges
	}

	if _, err := b.discord.PostEmbed(ctx, channelID, embed); err != nil {
		return fmt.Errorf("post close notification: %w", err)
	}

	messageID, ok := b.store.PRMessage(ctx, key)
	if !ok {
		return nil
	}

	// Remove the map entry first so a delete failure cannot leave a
	// retired PR looking open after restart.
	if err := b.store.RemovePRMessage(ctx, key); err != nil {
		return fmt.Errorf("remove PR entry: %w", err)
	}

	if err := b.discord.DeleteMessage(ctx, b.channels.PullRequests, messageID); err != nil {
		if discord.IsUnknownMessage(err) {
			return nil
		}
		logger.Warn("failed to delete retired PR message", "message_id", messageID, "error", err)
		b.discord.LogToChannel(ctx, b.channels.Logs,
			fmt.Sprintf("Failed to delete notification %s for %s", messageID, key))
	}
	return nil
}
