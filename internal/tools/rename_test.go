package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

func TestRenameSymbolAppliesChangesMap(t *testing.T) {
	client, server := newTestClient(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc oldName() {}\n"), 0o644))

	uri, err := protocol.URIFromPath(path)
	require.NoError(t, err)

	server.stub("textDocument/rename", map[string]any{
		"changes": map[string]any{
			string(uri): []map[string]any{
				{
					"range":   map[string]any{"start": map[string]any{"line": 2, "character": 5}, "end": map[string]any{"line": 2, "character": 12}},
					"newText": "newName",
				},
			},
		},
	})

	summary, err := RenameSymbol(context.Background(), client, path, 3, 6, "newName")
	require.NoError(t, err)
	require.Equal(t, "Applied 1 edits across 1 files", summary)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "package main\n\nfunc newName() {}\n", string(content))

	server.expectCall(t, "textDocument/didOpen")
	server.expectCall(t, "textDocument/rename")
}

func TestRenameSymbolRejectsDocumentOperations(t *testing.T) {
	client, server := newTestClient(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	server.stub("textDocument/rename", map[string]any{
		"documentChanges": []map[string]any{
			{
				"kind":    "create",
				"uri":     "file:///tmp/new.go",
				"options": map[string]any{},
			},
		},
	})

	_, err := RenameSymbol(context.Background(), client, path, 1, 1, "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not supported")
}

func TestRenameSymbolNoEditsReturned(t *testing.T) {
	client, server := newTestClient(t)
	server.stub("textDocument/rename", nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	_, err := RenameSymbol(context.Background(), client, path, 1, 1, "x")
	require.Error(t, err)
}
