package git

import (
	"regexp"
	"strconv"
	"strings"
)

// noiseLines match lines that agents and wrappers interleave with command
// output: command echoes, return codes and logging commands.
var noiseLines = []*regexp.Regexp{
	regexp.MustCompile(`^\[command\]`),
	regexp.MustCompile(`^##(vso)?\[`),
	regexp.MustCompile(`^rc:\s*-?\d+$`),
	regexp.MustCompile(`^success:\s*(true|false)$`),
	regexp.MustCompile(`^> Executing: `),
}

// ParseNameOnly turns --name-only output into a list of paths. Quoted paths
// are unquoted, whitespace is trimmed, and blank and noise lines are dropped.
// Duplicates are kept.
func ParseNameOnly(out string) []string {
	paths := make([]string, 0)
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isNoise(line) {
			continue
		}
		line = unquote(line)
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

func isNoise(line string) bool {
	for _, re := range noiseLines {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// unquote reverses git's C-style path quoting ("a\tb", "r\303\251sum\303\251").
// When the quoted form is not valid, only the surrounding quotes are removed.
func unquote(line string) string {
	if len(line) < 2 || line[0] != '"' || line[len(line)-1] != '"' {
		return strings.Trim(line, `"`)
	}
	if s, err := strconv.Unquote(line); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(line[1 : len(line)-1])
}
