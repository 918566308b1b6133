package bot

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/codeGROOVE-dev/githerald/internal/format"
	"github.com/codeGROOVE-dev/githerald/internal/state"
)

// RefreshStats renames the stats channels to carry the account-wide totals
// and upserts one embed per repository in each stats channel. Repo embeds
// are edited in place on later runs so the channels never fill up.
func (b *Bot) RefreshStats(ctx context.Context) error {
	if b.github == nil {
		b.logger.Debug("stats refresh skipped, no GitHub credentials")
		return nil
	}

	stats, err := b.github.FetchRepoStats(ctx)
	if err != nil {
		return fmt.Errorf("fetch repo stats: %w", err)
	}

	b.renameStatsChannel(ctx, b.channels.StatsCommits, fmt.Sprintf("%d-commits", stats.Totals.Commits))
	b.renameStatsChannel(ctx, b.channels.StatsPullRequests, fmt.Sprintf("%d-prs", stats.Totals.PullRequests))
	b.renameStatsChannel(ctx, b.channels.StatsMerges, fmt.Sprintf("%d-merges", stats.Totals.MergedPullRequests))

	repos := make([]string, 0, len(stats.PerRepo))
	for repo := range stats.PerRepo {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	created := make(map[string]string)
	for _, repo := range repos {
		counts := stats.PerRepo[repo]
		repoURL := "https://github.com/" + repo

		b.upsertStatEmbed(ctx, created, b.channels.StatsCommits,
			state.StatKey(repo, "commits"),
			format.RepoStatEmbed(repo, repoURL, "commits", counts.Commits))
		b.upsertStatEmbed(ctx, created, b.channels.StatsPullRequests,
			state.StatKey(repo, "prs"),
			format.RepoStatEmbed(repo, repoURL, "pull requests", counts.PullRequests))
		b.upsertStatEmbed(ctx, created, b.channels.StatsMerges,
			state.StatKey(repo, "merges"),
			format.RepoStatEmbed(repo, repoURL, "merged pull requests", counts.MergedPullRequests))
	}

	if len(created) > 0 {
		if err := b.store.SaveStatsMessages(ctx, created); err != nil {
			return fmt.Errorf("save stats messages: %w", err)
		}
	}

	b.logger.Info("stats refresh finished",
		"repos", len(stats.PerRepo),
		"commits", stats.Totals.Commits,
		"pull_requests", stats.Totals.PullRequests,
		"merged", stats.Totals.MergedPullRequests)
	return nil
}

func (b *Bot) renameStatsChannel(ctx context.Context, channelID, name string) {
	if channelID == "" {
		return
	}
	if err := b.discord.RenameChannel(ctx, channelID, name); err != nil {
		b.logger.Warn("failed to rename stats channel", "channel_id", channelID, "name", name, "error", err)
	}
}

// upsertStatEmbed edits the known message for key, or posts a new one and
// records it in created. Failures are logged and skipped so one bad embed
// cannot stall the whole refresh.
func (b *Bot) upsertStatEmbed(ctx context.Context, created map[string]string, channelID, key string, embed *discordgo.MessageEmbed) {
	if channelID == "" {
		return
	}

	if messageID, ok := b.store.StatsMessage(ctx, key); ok {
		if err := b.discord.EditEmbed(ctx, channelID, messageID, embed); err != nil {
			b.logger.Warn("failed to edit stats embed", "key", key, "error", err)
		}
		return
	}

	messageID, err := b.discord.PostEmbed(ctx, channelID, embed)
	if err != nil {
		b.logger.Warn("failed to post stats embed", "key", key, "error", err)
		return
	}
	created[key] = messageID
}
