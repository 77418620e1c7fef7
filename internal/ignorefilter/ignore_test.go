package ignorefilter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGitignore(t *testing.T, root string, lines ...string) {
	t.Helper()
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(content), 0o644))
}

func TestAlwaysIgnoredPatterns(t *testing.T) {
	f := New(t.TempDir(), nil)

	cases := []string{
		"project/.git/HEAD",
		"project/.git",
		"project/node_modules/pkg/index.js",
		"project/.venv/bin/python",
		"project/__pycache__/mod.pyc",
		"project/main.rs~",
		"project/main.go.bak",
		"project/main.go.swp",
	}
	for _, c := range cases {
		assert.True(t, f.IsIgnored(c), "expected %q to be ignored", c)
	}

	assert.False(t, f.IsIgnored("project/src/main.go"))
}

func TestGitignoreGlobPattern(t *testing.T) {
	root := t.TempDir()
	writeGitignore(t, root, "*.log", "temp/")

	f := New(root, nil)

	assert.True(t, f.IsIgnored(filepath.Join(root, "a.log")))
	assert.True(t, f.IsIgnored(filepath.Join(root, "temp", "x.rs")))
	assert.False(t, f.IsIgnored(filepath.Join(root, "src", "main.rs")))
}

func TestGitignoreNegation(t *testing.T) {
	root := t.TempDir()
	writeGitignore(t, root, "*.log", "!important.log")

	f := New(root, nil)

	assert.False(t, f.IsIgnored(filepath.Join(root, "important.log")))
	assert.True(t, f.IsIgnored(filepath.Join(root, "debug.log")))
}

func TestNoGitignoreFileFallsBackToAlwaysIgnored(t *testing.T) {
	root := t.TempDir()
	f := New(root, nil)

	assert.False(t, f.IsIgnored(filepath.Join(root, "main.go")))
	assert.True(t, f.IsIgnored(filepath.Join(root, "node_modules", "x.js")))
}

func TestIsIgnoredIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeGitignore(t, root, "*.log")
	f := New(root, nil)

	path := filepath.Join(root, "debug.log")
	first := f.IsIgnored(path)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, f.IsIgnored(path))
	}
}
