// Package lspconv holds small conversion tables shared between the LSP
// client runtime (which needs a languageId for didOpen) and the tool
// orchestrator (which needs a fence-block language tag for rendering).
// The reference implementation kept two divergent copies of this table;
// this one is unified per the resolved open question in SPEC_FULL.md §9.
package lspconv

import (
	"path/filepath"
	"strings"
)

var extensionToLanguage = map[string]string{
	"rs":   "rust",
	"go":   "go",
	"js":   "javascript",
	"ts":   "typescript",
	"jsx":  "jsx",
	"tsx":  "tsx",
	"py":   "python",
	"java": "java",
	"c":    "c",
	"h":    "c",
	"cpp":  "cpp",
	"hpp":  "cpp",
	"cc":   "cpp",
	"json": "json",
	"md":   "markdown",
	"html": "html",
	"css":  "css",
}

// LanguageForPath returns the LSP languageId / code-fence tag for path,
// falling back to "plaintext" for unrecognized or missing extensions.
func LanguageForPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if lang, ok := extensionToLanguage[strings.ToLower(ext)]; ok {
		return lang
	}
	return "plaintext"
}
