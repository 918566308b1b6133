package bot

import (
	"context"
	"errors"
	"testing"

	ghclient "github.com/codeGROOVE-dev/githerald/internal/github"
	"github.com/codeGROOVE-dev/githerald/internal/state"
)

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	disc := newMockDiscord()
	store := state.NewMemoryStore()

	_ = store.SavePRMessage(ctx, "acme/widgets#1", "msg-open")
	_ = store.SavePRMessage(ctx, "acme/widgets#2", "msg-merged")
	_ = store.SavePRMessage(ctx, "acme/widgets#3", "msg-deleted")

	gh := &mockGitHub{prs: map[string]ghclient.PRStatus{
		"acme/widgets#1": {State: "open"},
		"acme/widgets#2": {State: "closed", Merged: true},
		// #3 is absent: the lookup 404s.
	}}

	b := New(disc, gh, store, testChannels, nil)
	if err := b.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	remaining := store.PRMessages(ctx)
	if len(remaining) != 1 {
		t.Fatalf("map entries = %v, want only the open PR", remaining)
	}
	if _, ok := remaining["acme/widgets#1"]; !ok {
		t.Error("open PR entry was dropped")
	}
	if len(disc.deletes) != 2 {
		t.Errorf("deletes = %v, want messages for merged and vanished PRs", disc.deletes)
	}
}

func TestCleanupIdempotent(t *testing.T) {
	ctx := context.Background()
	disc := newMockDiscord()
	store := state.NewMemoryStore()

	_ = store.SavePRMessage(ctx, "acme/widgets#1", "msg-open")
	_ = store.SavePRMessage(ctx, "acme/widgets#2", "msg-stale")

	gh := &mockGitHub{prs: map[string]ghclient.PRStatus{
		"acme/widgets#1": {State: "open"},
		"acme/widgets#2": {State: "closed"},
	}}

	b := New(disc, gh, store, testChannels, nil)
	if err := b.Cleanup(ctx); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	deletesAfterFirst := len(disc.deletes)

	if err := b.Cleanup(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(disc.deletes) != deletesAfterFirst {
		t.Errorf("second sweep deleted %d more messages, want 0", len(disc.deletes)-deletesAfterFirst)
	}
	if got := len(store.PRMessages(ctx)); got != 1 {
		t.Errorf("map entries = %d, want 1", got)
	}
}

func TestCleanupLookupFailureKeepsEntry(t *testing.T) {
	ctx := context.Background()
	disc := newMockDiscord()
	store := state.NewMemoryStore()

	_ = store.SavePRMessage(ctx, "acme/widgets#1", "msg-flaky")
	_ = store.SavePRMessage(ctx, "acme/widgets#2", "msg-stale")

	gh := &mockGitHub{
		prs:    map[string]ghclient.PRStatus{"acme/widgets#2": {State: "closed"}},
		prErrs: map[string]error{"acme/widgets#1": errors.New("api unavailable")},
	}

	b := New(disc, gh, store, testChannels, nil)
	if err := b.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v, want partial failure tolerated", err)
	}

	remaining := store.PRMessages(ctx)
	if _, ok := remaining["acme/widgets#1"]; !ok {
		t.Error("entry with failing lookup was dropped")
	}
	if _, ok := remaining["acme/widgets#2"]; ok {
		t.Error("stale entry survived despite the other lookup failing")
	}
}

func TestCleanupMalformedKeyDropped(t *testing.T) {
	ctx := context.Background()
	disc := newMockDiscord()
	store := state.NewMemoryStore()

	_ = store.SavePRMessage(ctx, "not-a-valid-key", "msg-junk")

	b := New(disc, &mockGitHub{}, store, testChannels, nil)
	if err := b.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if got := len(store.PRMessages(ctx)); got != 0 {
		t.Errorf("map entries = %d, want malformed key dropped", got)
	}
}

func TestCleanupWithoutGitHub(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	_ = store.SavePRMessage(ctx, "acme/widgets#1", "msg-1")

	b := New(newMockDiscord(), nil, store, testChannels, nil)
	if err := b.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if got := len(store.PRMessages(ctx)); got != 1 {
		t.Errorf("map entries = %d, want untouched without credentials", got)
	}
}
