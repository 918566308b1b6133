package github

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v50/github"
	"golang.org/x/oauth2"
)

const (
	jwtExpiration      = 10 * time.Minute
	tokenRefreshBuffer = 5 * time.Minute
)

// AppClient authenticates as a GitHub App installed on a single account and
// implements APISource by minting short-lived installation tokens.
type AppClient struct {
	privateKey     *rsa.PrivateKey
	logger         *slog.Logger
	appID          string
	account        string
	installationID int64
	token          string
	tokenExpiry    time.Time
	mu             sync.Mutex
}

// NewAppClient creates a GitHub App client for the given account.
func NewAppClient(appID, privateKeyPEM, account string, logger *slog.Logger) (*AppClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &AppClient{
		appID:      appID,
		account:    account,
		privateKey: key,
		logger:     logger,
	}, nil
}

// API returns a client authenticated with a current installation token.
func (c *AppClient) API(ctx context.Context) (*github.Client, error) {
	token, err := c.installationToken(ctx)
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts)), nil
}

func (c *AppClient) installationToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExpiry) > tokenRefreshBuffer {
		return c.token, nil
	}

	jwtClient, err := c.jwtClient(ctx)
	if err != nil {
		return "", err
	}

	if c.installationID == 0 {
		id, err := c.findInstallation(ctx, jwtClient)
		if err != nil {
			return "", err
		}
		c.installationID = id
	}

	token, _, err := jwtClient.Apps.CreateInstallationToken(ctx, c.installationID, nil)
	if err != nil {
		return "", fmt.Errorf("create installation token: %w", err)
	}

	c.token = token.GetToken()
	c.tokenExpiry = token.GetExpiresAt().Time

	c.logger.Debug("refreshed installation token",
		"installation_id", c.installationID,
		"expires_at", token.GetExpiresAt())

	return c.token, nil
}

func (c *AppClient) findInstallation(ctx context.Context, jwtClient *github.Client) (int64, error) {
	installations, _, err := jwtClient.Apps.ListInstallations(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("list installations: %w", err)
	}

	for _, inst := range installations {
		if inst.Account.GetLogin() != c.account {
			continue
		}
		c.logger.Debug("found installation",
			"account", c.account,
			"installation_id", inst.GetID())
		return inst.GetID(), nil
	}

	return 0, fmt.Errorf("no installation found for account: %s", c.account)
}

func (c *AppClient) jwtClient(ctx context.Context) (*github.Client, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtExpiration)),
		Issuer:    c.appID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign app JWT: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: signed})
	return github.NewClient(oauth2.NewClient(ctx, ts)), nil
}
