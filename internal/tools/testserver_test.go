package tools

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mcpbridge/lsp-bridge/internal/jsonrpc"
	"github.com/mcpbridge/lsp-bridge/internal/lsp"
)

// fakeLSPServer answers textDocument/* requests with canned results
// keyed by method, and acks didOpen/didChange/didClose notifications
// silently, so orchestrator tests can exercise a real Client without a
// real language server subprocess.
type fakeLSPServer struct {
	reader *jsonrpc.Reader
	writer *jsonrpc.Writer

	results map[string]any
	calls   chan *jsonrpc.Message
}

func newFakeLSPServer(conn net.Conn) *fakeLSPServer {
	return &fakeLSPServer{
		reader:  jsonrpc.NewReader(conn),
		writer:  jsonrpc.NewWriter(conn),
		results: make(map[string]any),
		calls:   make(chan *jsonrpc.Message, 64),
	}
}

func (f *fakeLSPServer) stub(method string, result any) {
	f.results[method] = result
}

func (f *fakeLSPServer) run() {
	for {
		msg, err := f.reader.Read()
		if err != nil {
			return
		}
		f.calls <- msg

		if !msg.IsRequest() {
			continue
		}

		result, ok := f.results[msg.Method]
		if !ok {
			result = nil
		}
		resp, _ := jsonrpc.NewResponse(*msg.ID, result)
		_ = f.writer.Write(resp)
	}
}

func (f *fakeLSPServer) expectCall(t *testing.T, method string) *jsonrpc.Message {
	t.Helper()
	select {
	case msg := <-f.calls:
		require.Equal(t, method, msg.Method)
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for call %q", method)
		return nil
	}
}

func newTestClient(t *testing.T) (*lsp.Client, *fakeLSPServer) {
	t.Helper()
	clientConn, serverConn := net.Pipe()

	server := newFakeLSPServer(serverConn)
	go server.run()

	logger := zap.NewNop().Sugar()
	client := lsp.NewForTesting(logger, clientConn)

	t.Cleanup(func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
	})

	return client, server
}
