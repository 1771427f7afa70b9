package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubPushChangedFiles(t *testing.T) {
	body := `{
		"ref": "refs/heads/main",
		"repository": {"full_name": "acme/web"},
		"commits": [
			{"id": "c1", "added": ["a.ts"], "modified": [], "removed": []},
			{"id": "c2", "added": ["b.md"], "modified": ["a.ts"], "removed": ["old.txt"]}
		]
	}`

	var p GitHubPushPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, "acme/web", p.GetRepositoryName())
	assert.Equal(t, "main", p.GetBranch())
	assert.Equal(t, []string{"a.ts", "b.md", "a.ts", "old.txt"}, ChangedFiles(p.GetCommits()))
}

func TestGiteaPushChangedFiles(t *testing.T) {
	body := `{
		"ref": "refs/heads/dev",
		"repository": {"full_name": "acme/api"},
		"commits": [{"id": "c1", "modified": [".gitea/workflows/ci.yml"]}]
	}`

	var p GiteaPushPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, "dev", p.GetBranch())
	assert.Equal(t, []string{".gitea/workflows/ci.yml"}, ChangedFiles(p.GetCommits()))
}

func TestChangeListCommitIDs(t *testing.T) {
	l := ChangeList{Value: []Change{{ID: "abc"}, {ID: " "}, {ID: "def"}}}
	assert.Equal(t, []string{"abc", "def"}, l.CommitIDs())
}

func TestIsNewBranch(t *testing.T) {
	assert.True(t, GitHubPushPayload{Before: "0000000000000000000000000000000000000000"}.IsNewBranch())
	assert.True(t, GiteaPushPayload{}.IsNewBranch())
	assert.False(t, GitHubPushPayload{Before: "6113728f27ae82c7b1a177c8d03f9e96e0adf246"}.IsNewBranch())
}
