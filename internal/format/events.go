package format

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-github/v50/github"
)

const (
	maxCommitsShown = 5
	maxTitleLen     = 200
	maxBodyLen      = 500
)

// PushEvent renders a push notification.
func PushEvent(event *github.PushEvent) *discordgo.MessageEmbed {
	repo := event.GetRepo()
	branch := strings.TrimPrefix(event.GetRef(), "refs/heads/")
	commits := event.Commits

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("\U0001F4DD %d commit%s pushed to %s", len(commits), plural(len(commits)), branch), // 📝
		URL:   fmt.Sprintf("%s/commits/%s", repo.GetHTMLURL(), branch),
		Color: ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
			{Name: "Pusher", Value: event.GetPusher().GetName(), Inline: true},
			{Name: "Branch", Value: branch, Inline: true},
		},
	}

	var lines []string
	for i, commit := range commits {
		if i >= maxCommitsShown {
			break
		}
		lines = append(lines, fmt.Sprintf("[`%s`](%s) %s - %s",
			ShortSHA(commit.GetID()),
			commit.GetURL(),
			Truncate(firstLine(commit.GetMessage()), 72),
			commit.GetAuthor().GetName()))
	}
	if len(lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Commits", Value: strings.Join(lines, "\n"),
		})
	}
	if extra := len(commits) - maxCommitsShown; extra > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "​", Value: fmt.Sprintf("... and %d more commit%s", extra, plural(extra)),
		})
	}

	return embed
}

// PullRequestEvent renders an open/reopened/ready notification for a PR.
func PullRequestEvent(event *github.PullRequestEvent) *discordgo.MessageEmbed {
	pr := event.GetPullRequest()
	repo := event.GetRepo()

	icon, color := "\U0001F500", ColorGreen // 🔀
	switch event.GetAction() {
	case "closed":
		icon, color = "❌", ColorRed // ❌
	case "reopened":
		icon, color = "\U0001F501", ColorOrange // 🔁
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s PR #%d %s: %s", icon, pr.GetNumber(), event.GetAction(), Truncate(pr.GetTitle(), maxTitleLen)),
		URL:   pr.GetHTMLURL(),
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
			{Name: "Author", Value: pr.GetUser().GetLogin(), Inline: true},
			{Name: "Branch", Value: fmt.Sprintf("`%s` → `%s`", pr.GetHead().GetRef(), pr.GetBase().GetRef()), Inline: true},
		},
	}

	if body := strings.TrimSpace(pr.GetBody()); body != "" {
		embed.Description = Truncate(body, maxBodyLen)
	}

	return embed
}

// MergeEvent renders the notification for a merged PR.
func MergeEvent(event *github.PullRequestEvent) *discordgo.MessageEmbed {
	pr := event.GetPullRequest()
	repo := event.GetRepo()

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("\U0001F680 PR #%d merged: %s", pr.GetNumber(), Truncate(pr.GetTitle(), maxTitleLen)), // 🚀
		URL:   pr.GetHTMLURL(),
		Color: ColorPurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
			{Name: "Author", Value: pr.GetUser().GetLogin(), Inline: true},
			{Name: "Merged by", Value: event.GetSender().GetLogin(), Inline: true},
		},
	}
}

// ClosedPREvent renders the notification for a PR closed without merging.
func ClosedPREvent(event *github.PullRequestEvent) *discordgo.MessageEmbed {
	pr := event.GetPullRequest()
	repo := event.GetRepo()

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("❌ PR #%d closed: %s", pr.GetNumber(), Truncate(pr.GetTitle(), maxTitleLen)), // ❌
		URL:   pr.GetHTMLURL(),
		Color: ColorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
			{Name: "Author", Value: pr.GetUser().GetLogin(), Inline: true},
			{Name: "Closed by", Value: event.GetSender().GetLogin(), Inline: true},
		},
	}
}

// IssuesEvent renders an issue notification.
func IssuesEvent(event *github.IssuesEvent) *discordgo.MessageEmbed {
	issue := event.GetIssue()
	repo := event.GetRepo()

	color := ColorOrange
	if event.GetAction() == "closed" {
		color = ColorGrey
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("\U0001F41B Issue #%d %s: %s", issue.GetNumber(), event.GetAction(), Truncate(issue.GetTitle(), maxTitleLen)), // 🐛
		URL:   issue.GetHTMLURL(),
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
			{Name: "Author", Value: issue.GetUser().GetLogin(), Inline: true},
		},
	}
}

// ReleaseEvent renders a release notification.
func ReleaseEvent(event *github.ReleaseEvent) *discordgo.MessageEmbed {
	release := event.GetRelease()
	repo := event.GetRepo()

	name := release.GetName()
	if name == "" {
		name = release.GetTagName()
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("\U0001F4E6 Release %s: %s", event.GetAction(), Truncate(name, maxTitleLen)), // 📦
		URL:   release.GetHTMLURL(),
		Color: ColorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
			{Name: "Tag", Value: release.GetTagName(), Inline: true},
			{Name: "Author", Value: release.GetAuthor().GetLogin(), Inline: true},
		},
	}

	if body := strings.TrimSpace(release.GetBody()); body != "" {
		embed.Description = Truncate(body, maxBodyLen)
	}

	return embed
}

// WorkflowRunEvent renders a CI workflow run notification.
func WorkflowRunEvent(event *github.WorkflowRunEvent) *discordgo.MessageEmbed {
	run := event.GetWorkflowRun()
	repo := event.GetRepo()
	status := run.GetStatus()
	conclusion := run.GetConclusion()

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Workflow %s: %s", StatusIcon(status, conclusion), displayStatus(status, conclusion), run.GetName()),
		URL:   run.GetHTMLURL(),
		Color: StatusColor(status, conclusion),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
			{Name: "Branch", Value: run.GetHeadBranch(), Inline: true},
			{Name: "Commit", Value: ShortSHA(run.GetHeadSHA()), Inline: true},
			{Name: "Duration", Value: Duration(run.GetRunStartedAt().Time, run.GetUpdatedAt().Time), Inline: true},
		},
	}
}

// CheckSuiteEvent renders a check suite notification.
func CheckSuiteEvent(event *github.CheckSuiteEvent) *discordgo.MessageEmbed {
	suite := event.GetCheckSuite()
	repo := event.GetRepo()
	status := suite.GetStatus()
	conclusion := suite.GetConclusion()

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Check suite %s", StatusIcon(status, conclusion), displayStatus(status, conclusion)),
		URL:   repo.GetHTMLURL(),
		Color: StatusColor(status, conclusion),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
			{Name: "Branch", Value: suite.GetHeadBranch(), Inline: true},
			{Name: "Commit", Value: ShortSHA(suite.GetHeadSHA()), Inline: true},
		},
	}
}

// DeploymentStatusEvent renders a deployment status notification.
func DeploymentStatusEvent(event *github.DeploymentStatusEvent) *discordgo.MessageEmbed {
	status := event.GetDeploymentStatus()
	repo := event.GetRepo()

	color := ColorOrange
	switch status.GetState() {
	case "success":
		color = ColorGreen
	case "failure", "error":
		color = ColorRed
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("\U0001F6A2 Deployment %s", status.GetState()), // 🚢
		URL:   repo.GetHTMLURL(),
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
			{Name: "Environment", Value: event.GetDeployment().GetEnvironment(), Inline: true},
		},
	}
}

// GollumEvent renders a wiki page change notification.
func GollumEvent(event *github.GollumEvent) *discordgo.MessageEmbed {
	repo := event.GetRepo()

	var lines []string
	for _, page := range event.Pages {
		lines = append(lines, fmt.Sprintf("[%s](%s) %s", page.GetTitle(), page.GetHTMLURL(), page.GetAction()))
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("\U0001F4D6 Wiki updated by %s", event.GetSender().GetLogin()), // 📖
		URL:         repo.GetHTMLURL() + "/wiki",
		Color:       ColorBlue,
		Description: Truncate(strings.Join(lines, "\n"), maxBodyLen),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Repository", Value: repoLink(repo.GetFullName(), repo.GetHTMLURL()), Inline: true},
		},
	}
}

// GenericEvent renders a fallback notification for unrecognized event types.
func GenericEvent(eventType, repoFullName, sender string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("\U0001F4EF GitHub event: %s", eventType), // 📯
		Color: ColorGrey,
	}
	if repoFullName != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Repository", Value: repoFullName, Inline: true,
		})
	}
	if sender != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Sender", Value: sender, Inline: true,
		})
	}
	return embed
}

// RepoStatEmbed renders a per-repository statistic for the stats channels.
func RepoStatEmbed(repoFullName, repoURL, stat string, count int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("\U0001F4CA %s", repoFullName), // 📊
		URL:         repoURL,
		Color:       ColorBlue,
		Description: fmt.Sprintf("**%d** %s", count, stat),
	}
}

func displayStatus(status, conclusion string) string {
	if conclusion != "" {
		return conclusion
	}
	return strings.ReplaceAll(status, "_", " ")
}

func repoLink(fullName, url string) string {
	if url == "" {
		return fullName
	}
	return fmt.Sprintf("[%s](%s)", fullName, url)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
