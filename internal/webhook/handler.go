// Package webhook implements the GitHub webhook ingress: signature
// verification, event filtering, and dispatch to Discord.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/codeGROOVE-dev/retry"
	"github.com/google/go-github/v50/github"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/codeGROOVE-dev/githerald/internal/bot"
	"github.com/codeGROOVE-dev/githerald/internal/config"
	"github.com/codeGROOVE-dev/githerald/internal/format"
)

// maxBodySize caps webhook payloads; GitHub's own limit is 25 MB.
const maxBodySize = 10 << 20

// defaultSkip lists webhook actions that carry no signal worth a message.
var defaultSkip = map[string][]string{
	"pull_request": {"synchronize", "edited", "review_requested"},
	"issues":       {"edited", "labeled", "unlabeled"},
}

// PRHandler runs the pull request message lifecycle.
type PRHandler interface {
	HandlePullRequest(ctx context.Context, event *github.PullRequestEvent) error
}

// Handler receives GitHub webhooks and relays them to Discord.
type Handler struct {
	pr       PRHandler
	discord  bot.Discord
	channels config.Channels
	routes   config.Routes
	secret   string
	policy   config.RetryPolicy
	logger   *slog.Logger
	seen     *deliveryLog
}

// New creates a webhook handler. An empty secret disables signature
// verification.
func New(pr PRHandler, discord bot.Discord, cfg config.Settings, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pr:       pr,
		discord:  discord,
		channels: cfg.Channels,
		routes:   cfg.Routes,
		secret:   cfg.WebhookSecret,
		policy:   cfg.Retry,
		logger:   logger,
		seen:     newDeliveryLog(deliveryLogSize),
	}
}

// Router builds the HTTP routing table for the relay.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(securityHeaders)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/github", h.handleWebhook).Methods(http.MethodPost)
	return r
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		next.ServeHTTP(w, r)
	})
}

func (*Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	if h.secret != "" {
		sig := r.Header.Get(github.SHA256SignatureHeader)
		if err := github.ValidateSignature(sig, body, []byte(h.secret)); err != nil {
			h.logger.Warn("webhook signature rejected", "error", err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
			return
		}
	}

	eventType := github.WebHookType(r)
	if eventType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing X-GitHub-Event header"})
		return
	}

	deliveryID := github.DeliveryID(r)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	logger := h.logger.With("event", eventType, "delivery_id", deliveryID)

	if !h.seen.record(deliveryID) {
		logger.Info("duplicate delivery, skipping")
		writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
		return
	}

	if action := payloadAction(body); h.shouldSkip(eventType, action) {
		logger.Debug("filtered low-value event", "action", action)
		writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
		return
	}

	// GitHub redelivers on non-2xx; a processing failure here is our
	// problem to log, not GitHub's to retry.
	if err := h.process(r.Context(), eventType, body); err != nil {
		logger.Error("event processing failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// shouldSkip consults the routing overrides first, then the built-in table.
func (h *Handler) shouldSkip(eventType, action string) bool {
	if action == "" {
		return false
	}
	skipped, ok := h.routes.Skip[eventType]
	if !ok {
		skipped = defaultSkip[eventType]
	}
	for _, s := range skipped {
		if s == action {
			return true
		}
	}
	return false
}

// channelFor resolves the destination channel, honoring per-event overrides.
func (h *Handler) channelFor(eventType, fallback string) string {
	if id, ok := h.routes.Channels[eventType]; ok {
		return id
	}
	return fallback
}

func (h *Handler) process(ctx context.Context, eventType string, body []byte) error {
	event, err := github.ParseWebHook(eventType, body)
	if err != nil {
		// Unregistered event types still get a generic note in the logs channel.
		return h.postGeneric(ctx, eventType, body)
	}

	switch e := event.(type) {
	case *github.PingEvent:
		return nil
	case *github.PullRequestEvent:
		return h.handlePR(ctx, e)
	case *github.PushEvent:
		return h.post(ctx, h.channelFor("push", h.channels.Commits), format.PushEvent(e))
	case *github.IssuesEvent:
		return h.post(ctx, h.channelFor("issues", h.channels.Issues), format.IssuesEvent(e))
	case *github.ReleaseEvent:
		return h.post(ctx, h.channelFor("release", h.channels.Releases), format.ReleaseEvent(e))
	case *github.WorkflowRunEvent:
		// Only finished runs carry a verdict worth posting.
		if e.GetWorkflowRun().GetStatus() != "completed" {
			return nil
		}
		return h.post(ctx, h.channelFor("workflow_run", h.channels.CI), format.WorkflowRunEvent(e))
	case *github.CheckSuiteEvent:
		if e.GetCheckSuite().GetStatus() != "completed" {
			return nil
		}
		return h.post(ctx, h.channelFor("check_suite", h.channels.CI), format.CheckSuiteEvent(e))
	case *github.DeploymentStatusEvent:
		return h.post(ctx, h.channelFor("deployment_status", h.channels.Deployments), format.DeploymentStatusEvent(e))
	case *github.GollumEvent:
		return h.post(ctx, h.channelFor("gollum", h.channels.Wiki), format.GollumEvent(e))
	default:
		return h.postGeneric(ctx, eventType, body)
	}
}

// handlePR wraps the lifecycle handler in the shared retry policy so a
// transient Discord or store hiccup does not lose the event.
func (h *Handler) handlePR(ctx context.Context, event *github.PullRequestEvent) error {
	return retry.Do(
		func() error { return h.pr.HandlePullRequest(ctx, event) },
		retry.Context(ctx),
		retry.Attempts(h.policy.Attempts),
		retry.Delay(h.policy.Delay),
		retry.MaxDelay(h.policy.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
	)
}

func (h *Handler) post(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	if channelID == "" {
		return nil
	}
	if _, err := h.discord.PostEmbed(ctx, channelID, embed); err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	return nil
}

func (h *Handler) postGeneric(ctx context.Context, eventType string, body []byte) error {
	var meta struct {
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
		Sender struct {
			Login string `json:"login"`
		} `json:"sender"`
	}
	_ = json.Unmarshal(body, &meta) // best effort; empty fields are fine

	return h.post(ctx, h.channelFor(eventType, h.channels.Logs),
		format.GenericEvent(eventType, meta.Repository.FullName, meta.Sender.Login))
}

// payloadAction extracts the top-level "action" field without a full parse.
func payloadAction(body []byte) string {
	var p struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return ""
	}
	return p.Action
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
