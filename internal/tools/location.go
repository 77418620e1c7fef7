// Package tools implements the orchestrator: the six LSP operations the
// MCP adapter exposes, each translating between human-facing 1-indexed
// input and the 0-indexed LSP wire protocol, and rendering the reply as
// plain text.
package tools

import (
	"fmt"
	"strconv"
	"strings"
)

// SymbolLocation is a parsed "path:line:column" reference, 1-indexed on
// the wire and converted to 0-indexed before use in LSP params.
type SymbolLocation struct {
	Path   string
	Line   uint32
	Column uint32
}

// parseSymbolLocation parses "path:line:column" (1-indexed), converting
// to 0-indexed line/column.
func parseSymbolLocation(s string) (SymbolLocation, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return SymbolLocation{}, fmt.Errorf("symbol location must be in the format 'path:line:column', got %q", s)
	}

	column, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return SymbolLocation{}, fmt.Errorf("parse column: %w", err)
	}
	line, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return SymbolLocation{}, fmt.Errorf("parse line: %w", err)
	}
	path := strings.Join(parts[:len(parts)-2], ":")

	return SymbolLocation{
		Path:   path,
		Line:   saturatingSub1(line),
		Column: saturatingSub1(column),
	}, nil
}

func saturatingSub1(n int) uint32 {
	if n <= 0 {
		return 0
	}
	return uint32(n - 1)
}
