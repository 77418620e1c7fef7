package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mcpbridge/lsp-bridge/internal/lsp"
	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

// FindReferences resolves every reference to the symbol at
// symbolLocation ("path:line:column", 1-indexed), grouped by file.
func FindReferences(ctx context.Context, client *lsp.Client, symbolLocation string) (string, error) {
	loc, err := parseSymbolLocation(symbolLocation)
	if err != nil {
		return "", err
	}

	if err := client.OpenFile(ctx, loc.Path); err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}

	uri, err := protocol.URIFromPath(loc.Path)
	if err != nil {
		return "", err
	}

	params := protocol.ReferenceParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: loc.Line, Character: loc.Column},
		Context:      protocol.ReferenceContext{IncludeDeclaration: true},
	}

	raw, err := client.Call(ctx, "textDocument/references", params)
	if err != nil {
		return "", fmt.Errorf("references request: %w", err)
	}

	locations, err := parseLocations(raw)
	if err != nil {
		return "", err
	}
	if len(locations) == 0 {
		return "", fmt.Errorf("no references found for symbol: %s", symbolLocation)
	}

	byFile := make(map[string][]protocol.Location)
	var fileOrder []string
	for _, l := range locations {
		path, err := protocol.PathFromURI(l.URI)
		if err != nil {
			return "", err
		}
		if _, ok := byFile[path]; !ok {
			fileOrder = append(fileOrder, path)
		}
		byFile[path] = append(byFile[path], l)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d references to '%s' in %d files:\n\n", len(locations), symbolLocation, len(byFile))

	for _, path := range fileOrder {
		fmt.Fprintf(&b, "File: %s\n", path)

		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read file %s: %w", path, err)
		}
		lines := strings.Split(string(content), "\n")

		for _, l := range byFile[path] {
			lineNum := int(l.Range.Start.Line)
			colNum := int(l.Range.Start.Character)
			if lineNum >= len(lines) {
				continue
			}
			prefix := fmt.Sprintf("  Line %d: ", lineNum+1)
			fmt.Fprintf(&b, "%s%s\n", prefix, lines[lineNum])
			fmt.Fprintf(&b, "%s^\n", strings.Repeat(" ", len(prefix)+colNum))
		}
		b.WriteByte('\n')
	}

	return b.String(), nil
}
