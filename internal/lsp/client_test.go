package lsp

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mcpbridge/lsp-bridge/internal/jsonrpc"
)

// fakeServer is a minimal stand-in for an LSP server, speaking the framed
// JSON-RPC protocol over its end of an in-memory pipe. It answers
// "initialize" and "shutdown" requests and records every method it sees,
// in arrival order, for assertions.
type fakeServer struct {
	reader *jsonrpc.Reader
	writer *jsonrpc.Writer

	methods chan string
}

func newFakeServer(conn net.Conn) *fakeServer {
	return &fakeServer{
		reader:  jsonrpc.NewReader(conn),
		writer:  jsonrpc.NewWriter(conn),
		methods: make(chan string, 64),
	}
}

func (f *fakeServer) run() {
	for {
		msg, err := f.reader.Read()
		if err != nil {
			return
		}
		f.methods <- msg.Method

		switch msg.Method {
		case "initialize":
			resp, _ := jsonrpc.NewResponse(*msg.ID, map[string]any{"capabilities": map[string]any{}})
			_ = f.writer.Write(resp)
		case "shutdown":
			resp, _ := jsonrpc.NewResponse(*msg.ID, nil)
			_ = f.writer.Write(resp)
		}
	}
}

func (f *fakeServer) expectMethod(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-f.methods:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for method %q", want)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeServer) {
	t.Helper()
	clientConn, serverConn := net.Pipe()

	server := newFakeServer(serverConn)
	go server.run()

	logger := zap.NewNop().Sugar()
	client := newClientForTest(logger, clientConn)

	t.Cleanup(func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
	})

	return client, server
}

func TestInitializeThenShutdown(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	result, err := client.Initialize(ctx, t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, result)

	server.expectMethod(t, "initialize")
	server.expectMethod(t, "initialized")

	require.NoError(t, client.Shutdown(ctx))

	server.expectMethod(t, "shutdown")
	server.expectMethod(t, "exit")
}

func TestOpenChangeCloseOrderingAndVersions(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	_, err := client.Initialize(ctx, t.TempDir())
	require.NoError(t, err)
	server.expectMethod(t, "initialize")
	server.expectMethod(t, "initialized")

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	require.False(t, client.IsFileOpen(path))
	require.NoError(t, client.OpenFile(ctx, path))
	require.True(t, client.IsFileOpen(path))
	server.expectMethod(t, "textDocument/didOpen")

	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644))
	require.NoError(t, client.ChangeFile(ctx, path))
	server.expectMethod(t, "textDocument/didChange")

	require.NoError(t, client.CloseFile(ctx, path))
	require.False(t, client.IsFileOpen(path))
	server.expectMethod(t, "textDocument/didClose")

	require.NoError(t, client.Shutdown(ctx))
	server.expectMethod(t, "shutdown")
	server.expectMethod(t, "exit")
}

func TestChangeFileOnUnopenedPathErrors(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "missing.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	err := client.ChangeFile(ctx, path)
	require.Error(t, err)
}

func TestOpenFileIsNoOpWhenAlreadyOpen(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	require.NoError(t, client.OpenFile(ctx, path))
	server.expectMethod(t, "textDocument/didOpen")

	require.NoError(t, client.OpenFile(ctx, path))

	select {
	case m := <-server.methods:
		t.Fatalf("unexpected second didOpen: %q", m)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishDiagnosticsUpdatesCache(t *testing.T) {
	client, _ := newTestClient(t)

	params := map[string]any{
		"uri": "file:///tmp/foo.go",
		"diagnostics": []map[string]any{
			{
				"range":    map[string]any{"start": map[string]any{"line": 0, "character": 0}, "end": map[string]any{"line": 0, "character": 1}},
				"severity": 1,
				"message":  "undefined: foo",
			},
		},
	}
	raw, err := json.Marshal(params)
	require.NoError(t, err)

	client.handlePublishDiagnostics(raw)

	diags := client.GetDiagnostics("file:///tmp/foo.go")
	require.Len(t, diags, 1)
	assert.Equal(t, "undefined: foo", diags[0].Message)
}
