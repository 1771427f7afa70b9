package models

import "strings"

// GitHubPushPayload is the subset of a GitHub push webhook used for classification
type GitHubPushPayload struct {
	Ref        string           `json:"ref"`
	Before     string           `json:"before"`
	After      string           `json:"after"`
	Compare    string           `json:"compare"`
	Commits    []GitHubCommit   `json:"commits"`
	Repository GitHubRepository `json:"repository"`
	Created    bool             `json:"created"`
	Deleted    bool             `json:"deleted"`
	Forced     bool             `json:"forced"`
}

// GitHubCommit represents a commit in the GitHub webhook
type GitHubCommit struct {
	ID        string   `json:"id"`
	Distinct  bool     `json:"distinct"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	URL       string   `json:"url"`
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Modified  []string `json:"modified"`
}

// GitHubRepository represents a repository in the GitHub webhook
type GitHubRepository struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}

// GetRepositoryName returns the full repository name
func (p GitHubPushPayload) GetRepositoryName() string {
	return p.Repository.FullName
}

// GetBranch returns the branch name without refs/heads/ prefix
func (p GitHubPushPayload) GetBranch() string {
	return strings.TrimPrefix(p.Ref, "refs/heads/")
}

// IsNewBranch reports whether the push created the branch, in which case the
// commit list does not describe every change against a previous state
func (p GitHubPushPayload) IsNewBranch() bool {
	return isZeroRevision(p.Before)
}

// GetCommits returns commits in a generic format
func (p GitHubPushPayload) GetCommits() []CommitInfo {
	commits := make([]CommitInfo, len(p.Commits))
	for i, c := range p.Commits {
		commits[i] = CommitInfo{
			ID:      c.ID,
			Message: c.Message,
			URL:     c.URL,
			Files:   commitFiles(c.Added, c.Modified, c.Removed),
		}
	}
	return commits
}
