// Package lsp implements the client-side half of the LSP client runtime:
// a framed JSON-RPC multiplexer over a child process's stdio that tracks
// open-document versions, correlates request IDs to awaiting callers,
// dispatches server-initiated requests/notifications to registered
// handlers, and maintains a per-URI diagnostic cache.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mcpbridge/lsp-bridge/internal/jsonrpc"
	"github.com/mcpbridge/lsp-bridge/internal/lspconv"
	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

// ErrCancelled is delivered to every in-flight caller when the runtime
// shuts down, so tool invocations surface as errors instead of hanging.
var ErrCancelled = fmt.Errorf("lsp: request cancelled: runtime shutting down")

// NotificationHandler processes an inbound server-to-client notification.
type NotificationHandler func(params json.RawMessage) error

// RequestHandler produces a response for an inbound server-to-client
// request. A returned error becomes a −32603 (internal error) response.
type RequestHandler func(params json.RawMessage) (any, error)

type openFileState struct {
	version    int32
	languageID string
}

type callResult struct {
	result json.RawMessage
	err    error
}

type outboundRequest struct {
	id      jsonrpc.MessageID
	method  string
	params  any
	replyCh chan callResult
}

type outboundNotification struct {
	method string
	params any
	done   chan struct{}
}

type outboundResponse struct {
	msg *jsonrpc.Message
}

// Client is a running LSP client: one child process, one framed
// transport, one message loop.
type Client struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	writer *jsonrpc.Writer
	logger *zap.SugaredLogger

	nextID atomic.Int32

	outboundRequests      chan outboundRequest
	outboundNotifications chan outboundNotification
	outboundResponses     chan outboundResponse
	inbound               chan *jsonrpc.Message
	shutdownSignal        chan struct{}
	loopDone              chan struct{}

	openFilesMu sync.Mutex
	openFiles   map[string]*openFileState

	diagMu      sync.RWMutex
	diagnostics map[protocol.DocumentUri][]protocol.Diagnostic

	notifHandlersMu      sync.RWMutex
	notificationHandlers map[string]NotificationHandler

	reqHandlersMu   sync.RWMutex
	requestHandlers map[string]RequestHandler
}

// Start spawns the LSP server process and begins the message loop. The
// runtime is not yet initialized against the server; call Initialize
// next.
func Start(logger *zap.SugaredLogger, command string, args []string) (*Client, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("lsp: open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("lsp: start %s: %w", command, err)
	}

	c := newClient(logger, stdin)
	c.cmd = cmd

	go c.drainStderr(stderr)
	go c.readLoop(stdout)
	go c.messageLoop()

	return c, nil
}

// newClientForTest wires a Client directly over an in-process
// io.ReadWriteCloser (e.g. a pipe to a fake LSP server), bypassing
// process spawning.
func newClientForTest(logger *zap.SugaredLogger, rwc io.ReadWriteCloser) *Client {
	c := newClient(logger, rwc)
	go c.readLoop(rwc)
	go c.messageLoop()
	return c
}

// NewForTesting is newClientForTest exported for other packages' tests
// that need a Client wired to a fake LSP server over an in-process pipe.
func NewForTesting(logger *zap.SugaredLogger, rwc io.ReadWriteCloser) *Client {
	return newClientForTest(logger, rwc)
}

func newClient(logger *zap.SugaredLogger, stdin io.WriteCloser) *Client {
	c := &Client{
		stdin:                 stdin,
		writer:                jsonrpc.NewWriter(stdin),
		logger:                logger,
		outboundRequests:      make(chan outboundRequest),
		outboundNotifications: make(chan outboundNotification),
		outboundResponses:     make(chan outboundResponse),
		inbound:               make(chan *jsonrpc.Message, 32),
		shutdownSignal:        make(chan struct{}),
		loopDone:              make(chan struct{}),
		openFiles:             make(map[string]*openFileState),
		diagnostics:           make(map[protocol.DocumentUri][]protocol.Diagnostic),
		notificationHandlers:  make(map[string]NotificationHandler),
		requestHandlers:       make(map[string]RequestHandler),
	}
	RegisterDefaultHandlers(c)
	return c
}

func (c *Client) drainStderr(stderr io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := stderr.Read(buf)
		if n > 0 {
			c.logger.Debugw("lsp server stderr", "output", string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) readLoop(r io.Reader) {
	reader := jsonrpc.NewReader(r)
	for {
		msg, err := reader.Read()
		if err != nil {
			if err != io.EOF {
				c.logger.Warnw("lsp transport read failed, terminating message loop", "error", err)
			}
			close(c.inbound)
			return
		}
		c.inbound <- msg
	}
}

// messageLoop is the single logical task that owns the pending-request
// table and serializes all writes to the transport.
func (c *Client) messageLoop() {
	defer close(c.loopDone)

	pending := make(map[string]chan callResult)

	cancelAll := func() {
		for id, ch := range pending {
			ch <- callResult{err: ErrCancelled}
			close(ch)
			delete(pending, id)
		}
	}

	for {
		select {
		case req, ok := <-c.outboundRequests:
			if !ok {
				return
			}
			msg, err := jsonrpc.NewRequest(req.id, req.method, req.params)
			if err != nil {
				req.replyCh <- callResult{err: err}
				close(req.replyCh)
				continue
			}
			pending[req.id.String()] = req.replyCh
			if err := c.writer.Write(msg); err != nil {
				delete(pending, req.id.String())
				req.replyCh <- callResult{err: fmt.Errorf("lsp: write request: %w", err)}
				close(req.replyCh)
			}

		case notif, ok := <-c.outboundNotifications:
			if !ok {
				return
			}
			msg, err := jsonrpc.NewNotification(notif.method, notif.params)
			if err == nil {
				err = c.writer.Write(msg)
			}
			if err != nil {
				c.logger.Errorw("lsp: failed to write notification", "method", notif.method, "error", err)
			}
			close(notif.done)

		case resp := <-c.outboundResponses:
			if err := c.writer.Write(resp.msg); err != nil {
				c.logger.Errorw("lsp: failed to write response", "error", err)
			}

		case msg, ok := <-c.inbound:
			if !ok {
				cancelAll()
				return
			}
			c.dispatchInbound(msg, pending)

		case <-c.shutdownSignal:
			cancelAll()
			return
		}
	}
}

func (c *Client) dispatchInbound(msg *jsonrpc.Message, pending map[string]chan callResult) {
	switch {
	case msg.IsResponse():
		if msg.ID == nil {
			c.logger.Errorw("lsp: response missing id")
			return
		}
		ch, ok := pending[msg.ID.String()]
		if !ok {
			c.logger.Warnw("lsp: response for unknown request id, dropping", "id", msg.ID.String())
			return
		}
		delete(pending, msg.ID.String())
		if msg.Error != nil {
			ch <- callResult{err: msg.Error}
		} else if msg.Result != nil {
			ch <- callResult{result: msg.Result}
		} else {
			ch <- callResult{err: fmt.Errorf("lsp: response has neither result nor error")}
		}
		close(ch)

	case msg.IsRequest():
		c.handleServerRequest(msg)

	case msg.IsNotification():
		c.handleServerNotification(msg)

	default:
		c.logger.Errorw("lsp: malformed message, dropping", "raw", msg)
	}
}

func (c *Client) handleServerRequest(msg *jsonrpc.Message) {
	c.reqHandlersMu.RLock()
	handler, ok := c.requestHandlers[msg.Method]
	c.reqHandlersMu.RUnlock()

	if !ok {
		resp := jsonrpc.NewErrorResponse(*msg.ID, -32601, fmt.Sprintf("method not found: %s", msg.Method))
		if err := c.writer.Write(resp); err != nil {
			c.logger.Errorw("lsp: failed to write response", "error", err)
		}
		return
	}

	result, err := handler(msg.Params)
	var resp *jsonrpc.Message
	if err != nil {
		resp = jsonrpc.NewErrorResponse(*msg.ID, -32603, err.Error())
	} else {
		resp, err = jsonrpc.NewResponse(*msg.ID, result)
		if err != nil {
			resp = jsonrpc.NewErrorResponse(*msg.ID, -32603, err.Error())
		}
	}
	// This runs on the message loop, which owns the writer, so the
	// response is written directly rather than queued back to the loop.
	if err := c.writer.Write(resp); err != nil {
		c.logger.Errorw("lsp: failed to write response", "error", err)
	}
}

func (c *Client) handleServerNotification(msg *jsonrpc.Message) {
	if msg.Method == "textDocument/publishDiagnostics" {
		c.handlePublishDiagnostics(msg.Params)
		return
	}

	c.notifHandlersMu.RLock()
	handler, ok := c.notificationHandlers[msg.Method]
	c.notifHandlersMu.RUnlock()

	if !ok {
		c.logger.Debugw("lsp: no handler for notification", "method", msg.Method)
		return
	}
	if err := handler(msg.Params); err != nil {
		c.logger.Errorw("lsp: notification handler failed", "method", msg.Method, "error", err)
	}
}

func (c *Client) handlePublishDiagnostics(params json.RawMessage) {
	var p protocol.PublishDiagnosticsParams
	if err := json.Unmarshal(params, &p); err != nil {
		c.logger.Errorw("lsp: malformed publishDiagnostics", "error", err)
		return
	}
	c.diagMu.Lock()
	c.diagnostics[p.URI] = p.Diagnostics
	c.diagMu.Unlock()
}

// Call issues a JSON-RPC request and blocks for the reply.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := jsonrpc.NewIntID(c.nextID.Add(1))
	replyCh := make(chan callResult, 1)

	select {
	case c.outboundRequests <- outboundRequest{id: id, method: method, params: params, replyCh: replyCh}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-replyCh:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Notify sends a JSON-RPC notification, returning once it has been
// handed to the writer (so callers can rely on wire ordering).
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	done := make(chan struct{})
	select {
	case c.outboundNotifications <- outboundNotification{method: method, params: params, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Initialize sends the initialize request followed by the initialized
// notification, per SPEC_FULL.md §4.3's ordering guarantee.
func (c *Client) Initialize(ctx context.Context, workspaceRoot string) (*protocol.InitializeResult, error) {
	rootURI, err := protocol.URIFromPath(workspaceRoot)
	if err != nil {
		return nil, err
	}

	params := protocol.InitializeParams{
		ProcessID:             os.Getpid(),
		RootURI:               rootURI,
		ClientInfo:            &protocol.ClientInfo{Name: "mcp-lsp-bridge", Version: "0.1.0"},
		Capabilities:          protocol.DefaultCapabilities(),
		InitializationOptions: protocol.DefaultInitializationOptions(),
		WorkspaceFolders:      []protocol.WorkspaceFolder{{URI: rootURI, Name: workspaceRoot}},
		Trace:                 "off",
	}

	raw, err := c.Call(ctx, "initialize", params)
	if err != nil {
		return nil, fmt.Errorf("lsp: initialize: %w", err)
	}

	var result protocol.InitializeResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("lsp: parse initialize result: %w", err)
		}
	}

	if err := c.Notify(ctx, "initialized", struct{}{}); err != nil {
		return nil, fmt.Errorf("lsp: initialized notification: %w", err)
	}

	c.logger.Infow("lsp client initialized", "workspace", workspaceRoot)
	return &result, nil
}

// Shutdown closes all open files, performs the shutdown/exit handshake,
// drains the message loop, and reaps the child process.
func (c *Client) Shutdown(ctx context.Context) error {
	c.CloseAllFiles(ctx)

	if _, err := c.Call(ctx, "shutdown", nil); err != nil {
		c.logger.Warnw("lsp: shutdown request failed", "error", err)
	}
	if err := c.Notify(ctx, "exit", nil); err != nil {
		c.logger.Warnw("lsp: exit notification failed", "error", err)
	}

	close(c.shutdownSignal)
	<-c.loopDone

	_ = c.stdin.Close()

	if c.cmd == nil {
		return nil
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- c.cmd.Wait() }()

	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		c.logger.Warnw("lsp: server did not exit in time, killing")
		_ = c.cmd.Process.Kill()
		<-waitDone
	}

	c.logger.Infow("lsp client shut down")
	return nil
}

// OpenFile ensures path is tracked at version 1 and sends didOpen. A
// path that is already open is a no-op success.
func (c *Client) OpenFile(ctx context.Context, path string) error {
	uri, err := protocol.URIFromPath(path)
	if err != nil {
		return err
	}
	key := string(uri)

	c.openFilesMu.Lock()
	if _, ok := c.openFiles[key]; ok {
		c.openFilesMu.Unlock()
		return nil
	}
	languageID := lspconv.LanguageForPath(path)
	c.openFiles[key] = &openFileState{version: 1, languageID: languageID}
	c.openFilesMu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		c.openFilesMu.Lock()
		delete(c.openFiles, key)
		c.openFilesMu.Unlock()
		return fmt.Errorf("lsp: read file %s: %w", path, err)
	}

	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    1,
			Text:       string(content),
		},
	}
	if err := c.Notify(ctx, "textDocument/didOpen", params); err != nil {
		return fmt.Errorf("lsp: didOpen: %w", err)
	}
	return nil
}

// ChangeFile increments path's version and sends a full-text didChange.
// It is an error to call ChangeFile on a path that is not open.
func (c *Client) ChangeFile(ctx context.Context, path string) error {
	uri, err := protocol.URIFromPath(path)
	if err != nil {
		return err
	}
	key := string(uri)

	c.openFilesMu.Lock()
	state, ok := c.openFiles[key]
	if !ok {
		c.openFilesMu.Unlock()
		return fmt.Errorf("lsp: cannot notify change for unopened file: %s", path)
	}
	state.version++
	version := state.version
	c.openFilesMu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("lsp: read file %s: %w", path, err)
	}

	params := protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{URI: uri, Version: version},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: string(content)},
		},
	}
	if err := c.Notify(ctx, "textDocument/didChange", params); err != nil {
		return fmt.Errorf("lsp: didChange: %w", err)
	}
	return nil
}

// CloseFile untracks path and sends didClose, if it was open. Closing an
// unopened path is a no-op success.
func (c *Client) CloseFile(ctx context.Context, path string) error {
	uri, err := protocol.URIFromPath(path)
	if err != nil {
		return err
	}
	key := string(uri)

	c.openFilesMu.Lock()
	if _, ok := c.openFiles[key]; !ok {
		c.openFilesMu.Unlock()
		return nil
	}
	delete(c.openFiles, key)
	c.openFilesMu.Unlock()

	params := protocol.DidCloseTextDocumentParams{TextDocument: protocol.TextDocumentIdentifier{URI: uri}}
	if err := c.Notify(ctx, "textDocument/didClose", params); err != nil {
		return fmt.Errorf("lsp: didClose: %w", err)
	}
	return nil
}

// CloseAllFiles closes every currently tracked file, logging but not
// failing on per-file errors.
func (c *Client) CloseAllFiles(ctx context.Context) {
	c.openFilesMu.Lock()
	paths := make([]string, 0, len(c.openFiles))
	for key := range c.openFiles {
		if p, err := protocol.PathFromURI(protocol.DocumentUri(key)); err == nil {
			paths = append(paths, p)
		}
	}
	c.openFilesMu.Unlock()

	for _, p := range paths {
		if err := c.CloseFile(ctx, p); err != nil {
			c.logger.Errorw("lsp: error closing file", "path", p, "error", err)
		}
	}
}

// IsFileOpen reports whether path is currently tracked.
func (c *Client) IsFileOpen(path string) bool {
	uri, err := protocol.URIFromPath(path)
	if err != nil {
		return false
	}
	c.openFilesMu.Lock()
	defer c.openFilesMu.Unlock()
	_, ok := c.openFiles[string(uri)]
	return ok
}

// GetDiagnostics returns the current diagnostic snapshot for uri,
// possibly empty.
func (c *Client) GetDiagnostics(uri protocol.DocumentUri) []protocol.Diagnostic {
	c.diagMu.RLock()
	defer c.diagMu.RUnlock()
	return append([]protocol.Diagnostic(nil), c.diagnostics[uri]...)
}

// RegisterNotificationHandler installs fn for inbound notifications
// matching method. Intended to be called during startup.
func (c *Client) RegisterNotificationHandler(method string, fn NotificationHandler) {
	c.notifHandlersMu.Lock()
	defer c.notifHandlersMu.Unlock()
	c.notificationHandlers[method] = fn
}

// RegisterRequestHandler installs fn for inbound requests matching
// method. Intended to be called during startup.
func (c *Client) RegisterRequestHandler(method string, fn RequestHandler) {
	c.reqHandlersMu.Lock()
	defer c.reqHandlersMu.Unlock()
	c.requestHandlers[method] = fn
}
