// Package ignorefilter implements the pure path predicate the workspace
// synchronizer uses to decide which filesystem events are worth acting
// on: .gitignore semantics layered with a hard-coded set of paths that
// are always ignored regardless of what .gitignore says.
package ignorefilter

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
)

// Filter answers whether a workspace-relative path should be skipped by
// the synchronizer. The zero value (no .gitignore loaded) still applies
// the always-ignored rules.
type Filter struct {
	root    string
	matcher *ignore.GitIgnore // nil when no .gitignore could be read
}

// New builds a Filter for workspaceRoot, loading workspaceRoot/.gitignore
// if present. A missing or unreadable .gitignore is not an error: the
// filter falls back to the always-ignored rules alone.
func New(workspaceRoot string, logger *zap.SugaredLogger) *Filter {
	f := &Filter{root: workspaceRoot}

	data, err := os.ReadFile(filepath.Join(workspaceRoot, ".gitignore"))
	if err != nil {
		if logger != nil {
			logger.Debugw("ignorefilter: no .gitignore found", "workspace", workspaceRoot)
		}
		return f
	}

	f.matcher = ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
	return f
}

// alwaysIgnoredComponents are path components that are ignored no matter
// what .gitignore says.
var alwaysIgnoredComponents = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
}

// IsIgnored reports whether path (absolute or workspace-relative) should
// be skipped.
func (f *Filter) IsIgnored(path string) bool {
	if isAlwaysIgnored(path) {
		return true
	}
	if f.matcher == nil {
		return false
	}

	rel := path
	if filepath.IsAbs(path) {
		if r, err := filepath.Rel(f.root, path); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	return f.matcher.MatchesPath(rel)
}

func isAlwaysIgnored(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") || strings.Contains(base, ".bak") || strings.Contains(base, ".swp") {
		return true
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if alwaysIgnoredComponents[part] {
			return true
		}
	}
	return false
}
