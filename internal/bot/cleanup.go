package bot

import (
	"context"
	"fmt"

	"github.com/codeGROOVE-dev/githerald/internal/discord"
	ghclient "github.com/codeGROOVE-dev/githerald/internal/github"
	"github.com/codeGROOVE-dev/githerald/internal/state"
)

// Cleanup reconciles the PR message map against GitHub. Entries whose PR
// is merged, closed, or deleted have their Discord message removed and are
// dropped from the map. Lookup failures keep the entry so a flaky sweep
// never loses track of a live PR. The sweep is idempotent: running it
// twice in a row changes nothing the second time.
func (b *Bot) Cleanup(ctx context.Context) error {
	if b.github == nil {
		b.logger.Debug("cleanup skipped, no GitHub credentials")
		return nil
	}

	snapshot := b.store.PRMessages(ctx)
	if len(snapshot) == 0 {
		return nil
	}

	kept := make(map[string]string, len(snapshot))
	removed := 0

	for key, messageID := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}

		repo, number, ok := state.ParsePRKey(key)
		if !ok {
			b.logger.Warn("dropping malformed PR key", "key", key)
			removed++
			continue
		}
		owner, name, ok := ghclient.SplitRepo(repo)
		if !ok {
			b.logger.Warn("dropping PR key with malformed repo", "key", key)
			removed++
			continue
		}

		status, err := b.github.PRState(ctx, owner, name, number)
		switch {
		case ghclient.IsNotFound(err):
			// PR (or its repo) no longer exists; retire the message.
		case err != nil:
			b.logger.Warn("PR lookup failed, keeping entry", "key", key, "error", err)
			kept[key] = messageID
			continue
		case status.Open():
			kept[key] = messageID
			continue
		}

		if err := b.discord.DeleteMessage(ctx, b.channels.PullRequests, messageID); err != nil && !discord.IsUnknownMessage(err) {
			b.logger.Warn("failed to delete stale PR message, keeping entry",
				"key", key, "message_id", messageID, "error", err)
			kept[key] = messageID
			continue
		}
		removed++
	}

	if removed == 0 {
		return nil
	}
	if err := b.store.ReplacePRMessages(ctx, kept); err != nil {
		return fmt.Errorf("save reconciled PR map: %w", err)
	}

	b.logger.Info("cleanup sweep finished", "checked", len(snapshot), "removed", removed)
	b.discord.LogToChannel(ctx, b.channels.Logs,
		fmt.Sprintf("Cleanup: removed %d stale PR notification(s), %d still open", removed, len(kept)))
	return nil
}
