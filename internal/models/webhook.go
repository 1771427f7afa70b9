package models

// CommitInfo holds common commit information across different webhook providers
type CommitInfo struct {
	ID      string
	Message string
	URL     string
	Files   []string // added, modified and removed paths, in that order
}

// commitFiles concatenates a push commit's file lists without deduplicating
func commitFiles(added, modified, removed []string) []string {
	files := make([]string, 0, len(added)+len(modified)+len(removed))
	files = append(files, added...)
	files = append(files, modified...)
	files = append(files, removed...)
	return files
}

// ChangedFiles concatenates the files of every commit in order
func ChangedFiles(commits []CommitInfo) []string {
	files := make([]string, 0)
	for _, c := range commits {
		files = append(files, c.Files...)
	}
	return files
}

// zeroRevision is the "before" revision of a push that creates a branch
const zeroRevision = "0000000000000000000000000000000000000000"

func isZeroRevision(rev string) bool {
	return rev == "" || rev == zeroRevision
}
