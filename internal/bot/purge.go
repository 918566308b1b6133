package bot

import (
	"context"
	"time"
)

// Purge deletes notifications older than retention from the event channels
// and repairs the PR map: any tracked message that fell to the purge loses
// its map entry so the map never points at deleted messages.
func (b *Bot) Purge(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention)

	channels := []string{
		b.channels.Commits,
		b.channels.PullRequests,
		b.channels.Merges,
		b.channels.Issues,
		b.channels.Releases,
		b.channels.Deployments,
		b.channels.CI,
		b.channels.Wiki,
	}

	deleted := make(map[string]bool)
	for _, channelID := range uniqueChannels(channels) {
		ids, err := b.discord.PurgeOldMessages(ctx, channelID, cutoff)
		for _, id := range ids {
			deleted[id] = true
		}
		if err != nil {
			b.logger.Warn("purge incomplete for channel", "channel_id", channelID, "error", err)
		}
	}

	if len(deleted) == 0 {
		return nil
	}

	// Drop map entries whose message the purge just removed.
	repaired := 0
	for key, messageID := range b.store.PRMessages(ctx) {
		if !deleted[messageID] {
			continue
		}
		if err := b.store.RemovePRMessage(ctx, key); err != nil {
			b.logger.Warn("failed to drop purged PR entry", "key", key, "error", err)
			continue
		}
		repaired++
	}

	b.logger.Info("purge finished", "deleted", len(deleted), "map_entries_dropped", repaired)
	return nil
}

// uniqueChannels filters out empty and duplicate IDs while keeping order.
func uniqueChannels(channels []string) []string {
	var out []string
	used := make(map[string]bool, len(channels))
	for _, id := range channels {
		if id == "" || used[id] {
			continue
		}
		used[id] = true
		out = append(out, id)
	}
	return out
}
