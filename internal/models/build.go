package models

import (
	"strings"
	"time"
)

// Build is the subset of an Azure DevOps build record used to pick a baseline
type Build struct {
	ID            int       `json:"id"`
	BuildNumber   string    `json:"buildNumber"`
	Status        string    `json:"status"`
	Result        string    `json:"result"`
	SourceBranch  string    `json:"sourceBranch"`
	SourceVersion string    `json:"sourceVersion"`
	FinishTime    time.Time `json:"finishTime"`
	Definition    struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"definition"`
}

// BuildList is the response of the builds list endpoint
type BuildList struct {
	Count int     `json:"count"`
	Value []Build `json:"value"`
}

// Change is a source change associated with a build. For Git repositories
// the ID is the commit SHA.
type Change struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Author    struct {
		DisplayName string `json:"displayName"`
	} `json:"author"`
}

// ChangeList is the response of the build changes endpoint
type ChangeList struct {
	Count int      `json:"count"`
	Value []Change `json:"value"`
}

// CommitIDs returns the non-empty change ids in response order
func (l ChangeList) CommitIDs() []string {
	ids := make([]string, 0, len(l.Value))
	for _, c := range l.Value {
		if id := strings.TrimSpace(c.ID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
