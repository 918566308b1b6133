package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/codeGROOVE-dev/githerald/internal/config"
)

func testPolicy() config.RetryPolicy {
	return config.RetryPolicy{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}
}

func restError(code int) *discordgo.RESTError {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: code}}
}

func TestNew(t *testing.T) {
	client, err := New("test-token", testPolicy(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.session == nil {
		t.Fatal("session not initialized")
	}
	if client.session.Token != "Bot test-token" {
		t.Errorf("Token = %q, want Bot prefix", client.session.Token)
	}
}

func TestRetryableCtxRetriesTransientErrors(t *testing.T) {
	client := &Client{policy: testPolicy()}

	calls := 0
	err := client.retryableCtx(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryableCtx() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryableCtxDoesNotRetryUnknownMessage(t *testing.T) {
	client := &Client{policy: testPolicy()}

	calls := 0
	err := client.retryableCtx(context.Background(), func() error {
		calls++
		return restError(discordgo.ErrCodeUnknownMessage)
	})
	if err == nil {
		t.Fatal("retryableCtx() error = nil, want unknown message error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 for non-retryable error", calls)
	}
}

func TestRetryableCtxStopsOnCancel(t *testing.T) {
	client := &Client{policy: testPolicy()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := client.retryableCtx(ctx, func() error {
		calls++
		return context.Canceled
	})
	if err == nil {
		t.Fatal("retryableCtx() error = nil, want context error")
	}
	if calls > 1 {
		t.Errorf("calls = %d, want no retries after cancellation", calls)
	}
}

func TestIsUnknownMessage(t *testing.T) {
	if !IsUnknownMessage(restError(discordgo.ErrCodeUnknownMessage)) {
		t.Error("IsUnknownMessage() = false for unknown message code")
	}
	if IsUnknownMessage(restError(discordgo.ErrCodeUnknownChannel)) {
		t.Error("IsUnknownMessage() = true for unknown channel code")
	}
	if IsUnknownMessage(errors.New("plain error")) {
		t.Error("IsUnknownMessage() = true for non-REST error")
	}
	if IsUnknownMessage(nil) {
		t.Error("IsUnknownMessage() = true for nil")
	}
}

func TestIsUnknownChannel(t *testing.T) {
	if !IsUnknownChannel(restError(discordgo.ErrCodeUnknownChannel)) {
		t.Error("IsUnknownChannel() = false for unknown channel code")
	}
	if IsUnknownChannel(restError(discordgo.ErrCodeUnknownMessage)) {
		t.Error("IsUnknownChannel() = true for unknown message code")
	}
}
