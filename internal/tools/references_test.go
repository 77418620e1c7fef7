package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

func TestFindReferencesGroupsByFile(t *testing.T) {
	client, server := newTestClient(t)

	dir := t.TempDir()
	defPath := filepath.Join(dir, "def.go")
	usePath := filepath.Join(dir, "use.go")
	require.NoError(t, os.WriteFile(defPath, []byte("package main\n\nfunc helper() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(usePath, []byte("package main\n\nfunc main() {\n\thelper()\n\thelper()\n}\n"), 0o644))

	useURI, err := protocol.URIFromPath(usePath)
	require.NoError(t, err)

	server.stub("textDocument/references", []map[string]any{
		{
			"uri":   string(useURI),
			"range": map[string]any{"start": map[string]any{"line": 3, "character": 1}, "end": map[string]any{"line": 3, "character": 7}},
		},
		{
			"uri":   string(useURI),
			"range": map[string]any{"start": map[string]any{"line": 4, "character": 1}, "end": map[string]any{"line": 4, "character": 7}},
		},
	})

	out, err := FindReferences(context.Background(), client, fmt.Sprintf("%s:3:6", defPath))
	require.NoError(t, err)
	require.Contains(t, out, "Found 2 references")
	require.Contains(t, out, "File: "+usePath)
	require.Contains(t, out, "Line 4:")
	require.Contains(t, out, "Line 5:")

	server.expectCall(t, "textDocument/didOpen")
	server.expectCall(t, "textDocument/references")
}

func TestFindReferencesNoneFound(t *testing.T) {
	client, server := newTestClient(t)
	server.stub("textDocument/references", []map[string]any{})

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	_, err := FindReferences(context.Background(), client, fmt.Sprintf("%s:1:1", path))
	require.Error(t, err)
}
