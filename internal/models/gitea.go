package models

import "strings"

// GiteaPushPayload is the subset of a Gitea push webhook used for classification
type GiteaPushPayload struct {
	Ref        string          `json:"ref"`
	Before     string          `json:"before"`
	After      string          `json:"after"`
	CompareURL string          `json:"compare_url"`
	Commits    []GiteaCommit   `json:"commits"`
	Repository GiteaRepository `json:"repository"`
}

// GiteaCommit represents a commit in the Gitea webhook
type GiteaCommit struct {
	ID        string   `json:"id"`
	Message   string   `json:"message"`
	URL       string   `json:"url"`
	Timestamp string   `json:"timestamp"`
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Modified  []string `json:"modified"`
}

// GiteaRepository represents a repository in the Gitea webhook
type GiteaRepository struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}

// GetRepositoryName returns the full repository name
func (p GiteaPushPayload) GetRepositoryName() string {
	return p.Repository.FullName
}

// GetBranch returns the branch name without refs/heads/ prefix
func (p GiteaPushPayload) GetBranch() string {
	return strings.TrimPrefix(p.Ref, "refs/heads/")
}

// IsNewBranch reports whether the push created the branch, in which case the
// commit list does not describe every change against a previous state
func (p GiteaPushPayload) IsNewBranch() bool {
	return isZeroRevision(p.Before)
}

// GetCommits returns commits in a generic format
func (p GiteaPushPayload) GetCommits() []CommitInfo {
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
