// Package discord provides the Discord API client for the relay.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/codeGROOVE-dev/retry"

	"github.com/codeGROOVE-dev/githerald/internal/config"
)

// openTimeout is the maximum time to wait for the Discord gateway connection.
const openTimeout = 30 * time.Second

// messagePageSize is the page size used when scanning channel history.
const messagePageSize = 100

// Client wraps discordgo.Session with the operations the relay needs.
type Client struct {
	session *discordgo.Session
	logger  *slog.Logger
	policy  config.RetryPolicy
}

// New creates a new Discord client.
func New(token string, policy config.RetryPolicy, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create Discord session: %w", err)
	}

	return &Client{
		session: session,
		logger:  logger,
		policy:  policy,
	}, nil
}

// retryableCtx wraps a transient API call with the shared retry policy.
func (c *Client) retryableCtx(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(c.policy.Attempts),
		retry.Delay(c.policy.Delay),
		retry.MaxDelay(c.policy.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false
			}
			// Unknown channel/message never resolves itself; don't retry.
			return !IsUnknownChannel(err) && !IsUnknownMessage(err)
		}),
	)
}

// Open opens the gateway connection with a timeout.
func (c *Client) Open() error {
	done := make(chan error, 1)
	go func() {
		done <- c.session.Open()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(openTimeout):
		c.session.Close() //nolint:errcheck,gosec // best-effort close on timeout
		return errors.New("timeout waiting for Discord connection")
	}
}

// Close closes the gateway connection.
func (c *Client) Close() error {
	return c.session.Close()
}

// PostEmbed sends an embed to a channel and returns the new message ID.
func (c *Client) PostEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (string, error) {
	var messageID string
	err := c.retryableCtx(ctx, func() error {
		msg, err := c.session.ChannelMessageSendEmbed(channelID, embed)
		if err != nil {
			return fmt.Errorf("send embed: %w", err)
		}
		messageID = msg.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("posted embed",
		"channel_id", channelID,
		"message_id", messageID,
		"title", embed.Title)

	return messageID, nil
}

// EditEmbed replaces the embed on an existing message.
func (c *Client) EditEmbed(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed) error {
	err := c.retryableCtx(ctx, func() error {
		if _, err := c.session.ChannelMessageEditEmbed(channelID, messageID, embed); err != nil {
			return fmt.Errorf("edit embed: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Debug("edited embed",
		"channel_id", channelID,
		"message_id", messageID,
		"title", embed.Title)

	return nil
}

// DeleteMessage deletes a message from a channel.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := c.retryableCtx(ctx, func() error {
		if err := c.session.ChannelMessageDelete(channelID, messageID); err != nil {
			return fmt.Errorf("delete message: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("deleted message",
		"channel_id", channelID,
		"message_id", messageID)

	return nil
}

// RenameChannel changes a channel's name.
func (c *Client) RenameChannel(ctx context.Context, channelID, name string) error {
	err := c.retryableCtx(ctx, func() error {
		if _, err := c.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name}); err != nil {
			return fmt.Errorf("rename channel: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("renamed channel",
		"channel_id", channelID,
		"name", name)

	return nil
}

// PurgeOldMessages deletes messages older than cutoff from a channel and
// returns the IDs it deleted. Individual delete failures are logged and
// skipped so one stuck message cannot stall the purge.
func (c *Client) PurgeOldMessages(ctx context.Context, channelID string, cutoff time.Time) ([]string, error) {
	var deleted []string
	beforeID := ""

	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		messages, err := c.session.ChannelMessages(channelID, messagePageSize, beforeID, "", "")
		if err != nil {
			return deleted, fmt.Errorf("list messages: %w", err)
		}
		if len(messages) == 0 {
			break
		}
		beforeID = messages[len(messages)-1].ID

		for _, msg := range messages {
			if !msg.Timestamp.Before(cutoff) {
				continue
			}
			if err := c.session.ChannelMessageDelete(channelID, msg.ID); err != nil {
				c.logger.Warn("failed to delete old message",
					"channel_id", channelID,
					"message_id", msg.ID,
					"error", err)
				continue
			}
			deleted = append(deleted, msg.ID)
		}

		if len(messages) < messagePageSize {
			break
		}
	}

	if len(deleted) > 0 {
		c.logger.Info("purged old messages",
			"channel_id", channelID,
			"deleted", len(deleted),
			"cutoff", cutoff)
	}

	return deleted, nil
}

// LogToChannel posts a plain operator message to the logs channel.
// Failures are swallowed: the log channel is best effort by definition.
func (c *Client) LogToChannel(ctx context.Context, channelID, text string) {
	if channelID == "" {
		return
	}
	err := c.retryableCtx(ctx, func() error {
		_, err := c.session.ChannelMessageSend(channelID, text)
		return err
	})
	if err != nil {
		c.logger.Warn("failed to post operator log",
			"channel_id", channelID,
			"error", err)
	}
}

// IsUnknownMessage reports whether err means the message no longer exists.
func IsUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	return restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}

// IsUnknownChannel reports whether err means the channel does not exist.
func IsUnknownChannel(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	return restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel
}
