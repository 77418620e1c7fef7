package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/stdio"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mcpbridge/lsp-bridge/internal/lsp"
	"github.com/mcpbridge/lsp-bridge/internal/mcpserver"
	"github.com/mcpbridge/lsp-bridge/internal/watcher"
)

var debug = os.Getenv("DEBUG") != ""

type config struct {
	workspaceDir string
	lspCommand   string
	lspArgs      []string
}

type server struct {
	config  config
	logger  *zap.SugaredLogger
	client  *lsp.Client
	watcher *watcher.Watcher
	mcp     *mcp_golang.Server
}

func newServer(cfg config, logger *zap.SugaredLogger) *server {
	return &server{config: cfg, logger: logger}
}

func (s *server) start(ctx context.Context) error {
	client, err := lsp.Start(s.logger, s.config.lspCommand, s.config.lspArgs)
	if err != nil {
		return fmt.Errorf("start lsp server: %w", err)
	}
	s.client = client

	if _, err := client.Initialize(ctx, s.config.workspaceDir); err != nil {
		return fmt.Errorf("initialize lsp server: %w", err)
	}
	s.logger.Infow("lsp server initialized", "command", s.config.lspCommand)

	w, err := watcher.New(s.config.workspaceDir, client, s.logger)
	if err != nil {
		return fmt.Errorf("create workspace watcher: %w", err)
	}
	s.watcher = w
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start workspace watcher: %w", err)
	}

	s.mcp = mcp_golang.NewServer(stdio.NewStdioServerTransport())
	adapter := mcpserver.New(client, s.mcp, s.logger)
	if err := adapter.RegisterTools(); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	return s.mcp.Serve()
}

func (s *server) cleanup() {
	s.logger.Infow("cleanup initiated")

	if s.watcher != nil {
		s.watcher.Stop()
	}

	if s.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.client.Shutdown(ctx); err != nil {
			s.logger.Warnw("lsp shutdown failed", "error", err)
		}
	}

	s.logger.Infow("cleanup complete")
}

func newRootCommand() *cobra.Command {
	var cfg config

	cmd := &cobra.Command{
		Use:   "lsp-bridge --workspace <dir> --lsp <command> -- [lsp-args...]",
		Short: "Bridge an MCP tool-calling peer to a language server over LSP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.lspArgs = args

			workspaceDir, err := filepath.Abs(cfg.workspaceDir)
			if err != nil {
				return fmt.Errorf("resolve workspace path: %w", err)
			}
			if info, err := os.Stat(workspaceDir); err != nil || !info.IsDir() {
				return fmt.Errorf("workspace directory does not exist: %s", workspaceDir)
			}
			cfg.workspaceDir = workspaceDir

			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.workspaceDir, "workspace", "", "Path to the workspace root directory")
	if err := cmd.MarkFlagRequired("workspace"); err != nil {
		panic(err)
	}

	cmd.Flags().StringVar(&cfg.lspCommand, "lsp", "", "LSP server command to run (its arguments go after --)")
	if err := cmd.MarkFlagRequired("lsp"); err != nil {
		panic(err)
	}

	return cmd
}

func run(cfg config) error {
	zapLogger, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := zapLogger.Sugar()

	s := newServer(cfg, logger)

	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	parentDeath := make(chan struct{})
	go watchParent(logger, done, parentDeath)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Infow("received signal", "signal", sig)
			shutdownOnce(s, done)
		case <-parentDeath:
			logger.Infow("parent process terminated, shutting down")
			shutdownOnce(s, done)
		}
	}()

	ctx := context.Background()
	if err := s.start(ctx); err != nil {
		logger.Errorw("server error", "error", err)
		shutdownOnce(s, done)
		return err
	}

	<-done
	logger.Infow("shutdown complete")
	return nil
}

func watchParent(logger *zap.SugaredLogger, done, parentDeath chan struct{}) {
	ppid := os.Getppid()
	if debug {
		logger.Infow("monitoring parent process", "ppid", ppid)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			currentPpid := os.Getppid()
			if currentPpid != ppid && (currentPpid == 1 || ppid == 1) {
				logger.Infow("parent process terminated", "original_ppid", ppid, "current_ppid", currentPpid)
				close(parentDeath)
				return
			}
		case <-done:
			return
		}
	}
}

func shutdownOnce(s *server, done chan struct{}) {
	select {
	case <-done:
	default:
		s.cleanup()
		close(done)
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
