// Package state provides persistent message tracking for the relay.
package state

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// PRKey builds the map key for a pull request: "owner/repo#number".
func PRKey(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}

// ParsePRKey splits a PR key back into its repository and number.
func ParsePRKey(key string) (repo string, number int, ok bool) {
	repo, num, found := strings.Cut(key, "#")
	if !found || repo == "" {
		return "", 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return "", 0, false
	}
	return repo, n, true
}

// StatKey builds the map key for a per-repo statistic message, e.g. "repo#commits".
func StatKey(repo, stat string) string {
	return repo + "#" + stat
}

// Store tracks which Discord message corresponds to which PR or statistic.
//
// The PR map holds at most one entry per key; an entry exists only while the
// handler believes the posted notification still exists in its channel. The
// stats map is append/overwrite only - entries are edited in place, never
// removed.
type Store interface {
	// PR notification tracking
	PRMessage(ctx context.Context, key string) (messageID string, ok bool)
	SavePRMessage(ctx context.Context, key, messageID string) error
	RemovePRMessage(ctx context.Context, key string) error

	// PRMessages returns a snapshot of the full PR map for reconciliation.
	PRMessages(ctx context.Context) map[string]string

	// ReplacePRMessages overwrites the whole PR map in one batch save.
	ReplacePRMessages(ctx context.Context, m map[string]string) error

	// Stats message tracking
	StatsMessage(ctx context.Context, key string) (messageID string, ok bool)
	StatsMessages(ctx context.Context) map[string]string
	SaveStatsMessages(ctx context.Context, m map[string]string) error

	Close() error
}
