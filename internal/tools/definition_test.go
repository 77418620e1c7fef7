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

func TestFindDefinitionRendersSnippet(t *testing.T) {
	client, server := newTestClient(t)

	dir := t.TempDir()
	defPath := filepath.Join(dir, "def.go")
	usePath := filepath.Join(dir, "use.go")
	require.NoError(t, os.WriteFile(defPath, []byte("package main\n\nfunc helper() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(usePath, []byte("package main\n\nfunc main() {\n\thelper()\n}\n"), 0o644))

	defURI, err := protocol.URIFromPath(defPath)
	require.NoError(t, err)

	server.stub("textDocument/definition", map[string]any{
		"uri": string(defURI),
		"range": map[string]any{
			"start": map[string]any{"line": 2, "character": 5},
			"end":   map[string]any{"line": 2, "character": 11},
		},
	})

	out, err := FindDefinition(context.Background(), client, fmt.Sprintf("%s:4:2", usePath))
	require.NoError(t, err)
	require.Contains(t, out, "func helper() {}")
	require.Contains(t, out, defPath+":3:6")

	server.expectCall(t, "textDocument/didOpen")
	server.expectCall(t, "textDocument/definition")
}

func TestFindDefinitionNotFound(t *testing.T) {
	client, server := newTestClient(t)
	server.stub("textDocument/definition", nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	_, err := FindDefinition(context.Background(), client, fmt.Sprintf("%s:1:1", path))
	require.Error(t, err)
}
