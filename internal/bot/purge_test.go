package bot

import (
	"context"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/githerald/internal/state"
)

func TestPurgeRepairsPRMap(t *testing.T) {
	ctx := context.Background()
	disc := newMockDiscord()
	disc.purged = []string{"msg-old"}
	store := state.NewMemoryStore()

	_ = store.SavePRMessage(ctx, "acme/widgets#1", "msg-old")
	_ = store.SavePRMessage(ctx, "acme/widgets#2", "msg-fresh")

	b := New(disc, nil, store, testChannels, nil)
	if err := b.Purge(ctx, 30*24*time.Hour); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}

	remaining := store.PRMessages(ctx)
	if _, ok := remaining["acme/widgets#1"]; ok {
		t.Error("entry pointing at a purged message survived")
	}
	if _, ok := remaining["acme/widgets#2"]; !ok {
		t.Error("entry for a live message was dropped")
	}
}

func TestPurgeNothingDeleted(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	_ = store.SavePRMessage(ctx, "acme/widgets#1", "msg-fresh")

	b := New(newMockDiscord(), nil, store, testChannels, nil)
	if err := b.Purge(ctx, time.Hour); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if got := len(store.PRMessages(ctx)); got != 1 {
		t.Errorf("map entries = %d, want untouched", got)
	}
}

func TestUniqueChannels(t *testing.T) {
	got := uniqueChannels([]string{"a", "", "b", "a", ""})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("uniqueChannels() = %v, want [a b]", got)
	}
}
