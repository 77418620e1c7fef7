package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHoverRendersMarkupContent(t *testing.T) {
	client, server := newTestClient(t)
	server.stub("textDocument/hover", map[string]any{
		"contents": map[string]any{
			"kind":  "markdown",
			"value": "func broken()",
		},
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc broken() {}\n"), 0o644))

	out, err := Hover(context.Background(), client, path, 3, 6)
	require.NoError(t, err)
	require.Equal(t, "func broken()", out)

	server.expectCall(t, "textDocument/didOpen")
	server.expectCall(t, "textDocument/hover")
}

func TestHoverNoInformation(t *testing.T) {
	client, _ := newTestClient(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	out, err := Hover(context.Background(), client, path, 1, 1)
	require.NoError(t, err)
	require.Equal(t, noHoverInfo, out)
}
