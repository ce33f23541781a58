package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		isDir   bool
		want    bool
	}{
		{"dist/", "dist", true, true},
		{"dist/", "dist/a.js", false, true},
		{"dist/", "pkg/dist/a.js", false, true},
		{"dist/", "dist", false, false},
		{"*.min.js", "lib/app.min.js", false, true},
		{"*.min.js", "lib/app.js", false, false},
		{"/root.js", "root.js", false, true},
		{"/root.js", "src/root.js", false, false},
		{"src/gen", "src/gen/a.ts", false, true},
		{"src/gen", "lib/src/gen/a.ts", false, false},
		{"fixtures", "test/fixtures/x.js", false, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchPattern(tc.pattern, tc.path, tc.isDir), "%s ~ %s", tc.pattern, tc.path)
	}
}

func TestIgnoreMatcher(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("\n# comment\n*.log.js\n!keep.log.js\n"), 0o644))

	m := newIgnoreMatcher(root, []string{"tmp/"})
	assert.True(t, m.Ignored(filepath.Join(root, "a.log.js"), false))
	assert.False(t, m.Ignored(filepath.Join(root, "keep.log.js"), false))
	assert.True(t, m.Ignored(filepath.Join(root, "tmp"), true))
	assert.False(t, m.Ignored(filepath.Join(root, "src", "a.js"), false))
	assert.False(t, m.Ignored(root, true))
}
