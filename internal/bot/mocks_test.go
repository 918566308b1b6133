package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-github/v50/github"

	ghclient "github.com/codeGROOVE-dev/githerald/internal/github"
)

// errUnknownMessage mimics the Discord API response for a deleted message.
var errUnknownMessage = &discordgo.RESTError{
	Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage},
}

// notFoundErr mimics a GitHub 404 for a missing PR or repository.
func notFoundErr() error {
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: http.StatusNotFound, Request: &http.Request{}},
	}
}

type postedMessage struct {
	channelID string
	embed     *discordgo.MessageEmbed
}

// mockDiscord records calls and lets tests inject per-call failures.
type mockDiscord struct {
	postErr   error
	editErr   error
	deleteErr error

	posts    []postedMessage
	edits    []string
	deletes  []string
	renames  map[string]string
	purged   []string
	nextID   int
	logLines []string
}

func newMockDiscord() *mockDiscord {
	return &mockDiscord{renames: make(map[string]string)}
}

func (m *mockDiscord) PostEmbed(_ context.Context, channelID string, embed *discordgo.MessageEmbed) (string, error) {
	if m.postErr != nil {
		return "", m.postErr
	}
	m.posts = append(m.posts, postedMessage{channelID: channelID, embed: embed})
	m.nextID++
	return fmt.Sprintf("msg-%d", m.nextID), nil
}

func (m *mockDiscord) EditEmbed(_ context.Context, _, messageID string, _ *discordgo.MessageEmbed) error {
	if m.editErr != nil {
		return m.editErr
	}
	m.edits = append(m.edits, messageID)
	return nil
}

func (m *mockDiscord) DeleteMessage(_ context.Context, _, messageID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes = append(m.deletes, messageID)
	return nil
}

func (m *mockDiscord) RenameChannel(_ context.Context, channelID, name string) error {
	m.renames[channelID] = name
	return nil
}

func (m *mockDiscord) PurgeOldMessages(_ context.Context, _ string, _ time.Time) ([]string, error) {
	return m.purged, nil
}

func (m *mockDiscord) LogToChannel(_ context.Context, _, text string) {
	m.logLines = append(m.logLines, text)
}

// mockGitHub answers PR lookups from a fixed table.
type mockGitHub struct {
	prs      map[string]ghclient.PRStatus
	prErrs   map[string]error
	stats    *ghclient.RepoStats
	statsErr error
}

func (m *mockGitHub) PRState(_ context.Context, owner, repo string, number int) (ghclient.PRStatus, error) {
	key := fmt.Sprintf("%s/%s#%d", owner, repo, number)
	if err, ok := m.prErrs[key]; ok {
		return ghclient.PRStatus{}, err
	}
	if status, ok := m.prs[key]; ok {
		return status, nil
	}
	return ghclient.PRStatus{}, notFoundErr()
}

func (m *mockGitHub) FetchRepoStats(_ context.Context) (*ghclient.RepoStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}
