package github

import (
	"net/url"
	"strings"

	"workdesk/internal/model"

	"github.com/google/go-github/v71/github"
)

// FromGitHubIssue converts an issue search result to a search hit.
// Search results usually omit the repository object, so the API repository
// URL is used as a second structured source. Repository stays empty when
// neither is present.
func FromGitHubIssue(issue *github.Issue) model.SearchHit {
	hit := model.SearchHit{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		URL:    issue.GetHTMLURL(),
	}

	if issue.Repository != nil {
		hit.Repository = issue.Repository.GetFullName()
	}
	if hit.Repository == "" {
		hit.Repository = repositoryFromAPIURL(issue.GetRepositoryURL())
	}

	return hit
}

// repositoryFromAPIURL parses https://api.github.com/repos/owner/repo
func repositoryFromAPIURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "repos" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1] + "/" + parts[i+2]
		}
	}
	return ""
}

// FromGitHubPullRequest converts a GitHub pull request to our model
func FromGitHubPullRequest(pr *github.PullRequest) model.PullRequest {
	info := model.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		URL:     pr.GetHTMLURL(),
		Draft:   pr.GetDraft(),
		State:   model.ParsePRState(pr.GetState(), pr.GetMerged() || pr.MergedAt != nil),
		Updated: pr.GetUpdatedAt().Time,
	}

	if pr.Head != nil {
		info.Branch = pr.Head.GetRef()
	}
	if pr.Base != nil && pr.Base.Repo != nil {
		info.Repository = pr.Base.Repo.GetFullName()
	}

	for _, user := range pr.RequestedReviewers {
		if login := user.GetLogin(); login != "" {
			info.PendingReviewers = append(info.PendingReviewers, login)
		}
	}
	for _, team := range pr.RequestedTeams {
		if slug := team.GetSlug(); slug != "" {
			info.PendingReviewers = append(info.PendingReviewers, "team:"+slug)
		}
	}

	for _, label := range pr.Labels {
		info.Labels = append(info.Labels, label.GetName())
	}

	return info
}

// FromGitHubReview converts a GitHub review to a review event
func FromGitHubReview(review *github.PullRequestReview) model.ReviewEvent {
	event := model.ReviewEvent{
		State:       review.GetState(),
		SubmittedAt: review.GetSubmittedAt().Time,
	}

	if review.User != nil {
		event.Reviewer = review.User.GetLogin()
	}

	return event
}
