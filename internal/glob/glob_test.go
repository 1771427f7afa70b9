package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesAny(t *testing.T) {
	cases := []struct {
		name     string
		paths    []string
		patterns []string
		want     bool
	}{
		{"double star matches everything", []string{"src/a.ts"}, []string{"**"}, true},
		{"double star matches dot files", []string{".github/workflows/ci.yml"}, []string{"**"}, true},
		{"single star matches dot file", []string{".editorconfig"}, []string{"*"}, true},
		{"dot directory under double star", []string{"src/.config/x.json"}, []string{"src/**/*.json"}, true},
		{"unicode path", []string{"docs/résumé.md"}, []string{"docs/**/*.md"}, true},
		{"unicode pattern", []string{"文档/说明.md"}, []string{"文档/*.md"}, true},
		{"question mark is one rune", []string{"é.md"}, []string{"?.md"}, true},
		{"single star does not cross separators", []string{"src/a/b.ts"}, []string{"src/*.ts"}, false},
		{"double star crosses separators", []string{"src/a/b.ts"}, []string{"src/**/*.ts"}, true},
		{"bracket class", []string{"v2.txt"}, []string{"v[0-9].txt"}, true},
		{"negated bracket class", []string{"v2.txt"}, []string{"v[!0-9].txt"}, false},
		{"alternatives", []string{"a.yaml"}, []string{"*.{yml,yaml}"}, true},
		{"case sensitive", []string{"README.MD"}, []string{"*.md"}, false},
		{"root pattern does not match nested", []string{"src/a.md"}, []string{"*.md"}, false},
		{"no paths", nil, []string{"**"}, false},
		{"no patterns", []string{"a"}, nil, false},
		{"second pattern matches", []string{"b.md"}, []string{"*.ts", "*.md"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MatchesAny(tc.paths, tc.patterns)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMatchesAnyRejectsBadPattern(t *testing.T) {
	_, err := MatchesAny([]string{"a"}, []string{"[unclosed"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadPattern)
	assert.Contains(t, err.Error(), `"[unclosed"`)
}

func TestMatchesAnyShortCircuitsBeforeLaterPatterns(t *testing.T) {
	got, err := MatchesAny([]string{"a.ts"}, []string{"*.ts", "[unclosed"})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCheckAll(t *testing.T) {
	assert.NoError(t, CheckAll([]string{"**", "src/*.go", "{a,b}/**"}))
	assert.ErrorIs(t, CheckAll([]string{"ok", "{a,b"}), ErrBadPattern)
}

func TestFilter(t *testing.T) {
	got, err := Filter([]string{"a.ts", "b.md", "a.ts", "c/d.md"}, []string{"**/*.md", "a.ts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts", "b.md", "a.ts", "c/d.md"}, got)

	got, err = Filter([]string{"x.go"}, []string{"*.md"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
