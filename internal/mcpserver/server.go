// Package mcpserver registers the bridge's tool catalogue on an MCP
// server and adapts each orchestrator function into a schema-typed
// callable.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/metoro-io/mcp-golang"
	"go.uber.org/zap"

	"github.com/mcpbridge/lsp-bridge/internal/lsp"
	"github.com/mcpbridge/lsp-bridge/internal/tools"
)

// Server is a stateless adapter: it holds only references to the LSP
// runtime, the MCP server, and the logger, and registers each tool as a thin wrapper
// around the orchestrator functions in internal/tools.
type Server struct {
	client *lsp.Client
	logger *zap.SugaredLogger
	mcp    *mcp_golang.Server
}

func New(client *lsp.Client, mcp *mcp_golang.Server, logger *zap.SugaredLogger) *Server {
	return &Server{client: client, mcp: mcp, logger: logger}
}

type EditFileArgs struct {
	Path  string            `json:"path" jsonschema:"required,description=Path to the file to edit."`
	Edits []EditFileEditArg `json:"edits" jsonschema:"required,description=Whole-line replacements to apply, in any order."`
}

type EditFileEditArg struct {
	StartLine uint32 `json:"startLine" jsonschema:"required,description=1-indexed first line of the range to replace, inclusive."`
	EndLine   uint32 `json:"endLine" jsonschema:"required,description=1-indexed last line of the range to replace, inclusive."`
	NewText   string `json:"newText" jsonschema:"required,description=Text to replace the line range with."`
}

type DiagnosticsArgs struct {
	Path            string `json:"path" jsonschema:"required,description=Path to the file to get diagnostics for."`
	ContextLines    *int   `json:"contextLines" jsonschema:"default=2,description=Lines of surrounding code to show around each diagnostic."`
	ShowLineNumbers *bool  `json:"showLineNumbers" jsonschema:"default=true,description=Prefix each code line with its line number."`
}

type HoverArgs struct {
	Path   string `json:"path" jsonschema:"required,description=Path to the file."`
	Line   uint32 `json:"line" jsonschema:"required,description=1-indexed line number."`
	Column uint32 `json:"column" jsonschema:"required,description=1-indexed column number."`
}

type SymbolLocationArgs struct {
	SymbolLocation string `json:"symbolLocation" jsonschema:"required,description=Symbol location in the form 'path:line:column', 1-indexed."`
}

type RenameSymbolArgs struct {
	Path    string `json:"path" jsonschema:"required,description=Path to the file containing the symbol."`
	Line    uint32 `json:"line" jsonschema:"required,description=1-indexed line number of the symbol."`
	Column  uint32 `json:"column" jsonschema:"required,description=1-indexed column number of the symbol."`
	NewName string `json:"newName" jsonschema:"required,description=The new name for the symbol."`
}

// RegisterTools wires the six tool-orchestrator operations onto the MCP
// server under their public tool names.
func (s *Server) RegisterTools() error {
	if err := s.mcp.RegisterTool(
		"edit_file",
		"Apply one or more whole-line replacements to a file and notify the language server of the change.",
		func(args EditFileArgs) (*mcp_golang.ToolResponse, error) {
			edits := make([]tools.EditSpec, len(args.Edits))
			for i, e := range args.Edits {
				edits[i] = tools.EditSpec{StartLine: e.StartLine, EndLine: e.EndLine, NewText: e.NewText}
			}
			result, err := tools.EditFile(context.Background(), s.client, args.Path, edits)
			if err != nil {
				return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(fmt.Sprintf("Error editing file: %v", err))), nil
			}
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(result)), nil
		},
	); err != nil {
		return fmt.Errorf("register edit_file: %w", err)
	}

	if err := s.mcp.RegisterTool(
		"diagnostics",
		"Get diagnostic information (errors, warnings) for a file from the language server.",
		func(args DiagnosticsArgs) (*mcp_golang.ToolResponse, error) {
			contextLines, showLineNumbers := 2, true
			if args.ContextLines != nil {
				contextLines = *args.ContextLines
			}
			if args.ShowLineNumbers != nil {
				showLineNumbers = *args.ShowLineNumbers
			}
			result, err := tools.GetDiagnostics(context.Background(), s.client, args.Path, contextLines, showLineNumbers)
			if err != nil {
				return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(fmt.Sprintf("Error getting diagnostics: %v", err))), nil
			}
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(result)), nil
		},
	); err != nil {
		return fmt.Errorf("register diagnostics: %w", err)
	}

	if err := s.mcp.RegisterTool(
		"hover",
		"Get hover information (type signature, documentation) for the symbol at a position.",
		func(args HoverArgs) (*mcp_golang.ToolResponse, error) {
			result, err := tools.Hover(context.Background(), s.client, args.Path, args.Line, args.Column)
			if err != nil {
				return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(fmt.Sprintf("Error getting hover info: %v", err))), nil
			}
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(result)), nil
		},
	); err != nil {
		return fmt.Errorf("register hover: %w", err)
	}

	if err := s.mcp.RegisterTool(
		"definition",
		"Find the definition of the symbol at a 'path:line:column' location.",
		func(args SymbolLocationArgs) (*mcp_golang.ToolResponse, error) {
			result, err := tools.FindDefinition(context.Background(), s.client, args.SymbolLocation)
			if err != nil {
				return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(fmt.Sprintf("Error finding definition: %v", err))), nil
			}
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(result)), nil
		},
	); err != nil {
		return fmt.Errorf("register definition: %w", err)
	}

	if err := s.mcp.RegisterTool(
		"references",
		"Find all references to the symbol at a 'path:line:column' location.",
		func(args SymbolLocationArgs) (*mcp_golang.ToolResponse, error) {
			result, err := tools.FindReferences(context.Background(), s.client, args.SymbolLocation)
			if err != nil {
				return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(fmt.Sprintf("Error finding references: %v", err))), nil
			}
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(result)), nil
		},
	); err != nil {
		return fmt.Errorf("register references: %w", err)
	}

	if err := s.mcp.RegisterTool(
		"rename_symbol",
		"Rename the symbol at a position across the workspace.",
		func(args RenameSymbolArgs) (*mcp_golang.ToolResponse, error) {
			result, err := tools.RenameSymbol(context.Background(), s.client, args.Path, args.Line, args.Column, args.NewName)
			if err != nil {
				return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(fmt.Sprintf("Error renaming symbol: %v", err))), nil
			}
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(result)), nil
		},
	); err != nil {
		return fmt.Errorf("register rename_symbol: %w", err)
	}

	s.logger.Infow("registered mcp tools", "count", 6)
	return nil
}
