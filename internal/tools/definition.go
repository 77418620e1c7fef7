package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcpbridge/lsp-bridge/internal/lsp"
	"github.com/mcpbridge/lsp-bridge/internal/lspconv"
	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

// FindDefinition resolves the definition of the symbol at symbolLocation
// ("path:line:column", 1-indexed) and renders each result location as a
// fenced code block.
func FindDefinition(ctx context.Context, client *lsp.Client, symbolLocation string) (string, error) {
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

	params := protocol.DefinitionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: loc.Line, Character: loc.Column},
	}

	raw, err := client.Call(ctx, "textDocument/definition", params)
	if err != nil {
		return "", fmt.Errorf("definition request: %w", err)
	}

	locations, err := parseLocations(raw)
	if err != nil {
		return "", err
	}
	if len(locations) == 0 {
		return "", fmt.Errorf("definition not found for symbol: %s", symbolLocation)
	}

	var b strings.Builder
	for _, l := range locations {
		targetPath, err := protocol.PathFromURI(l.URI)
		if err != nil {
			return "", err
		}
		content, err := os.ReadFile(targetPath)
		if err != nil {
			return "", fmt.Errorf("read file %s: %w", targetPath, err)
		}
		lines := strings.Split(string(content), "\n")

		startLine := int(l.Range.Start.Line)
		endLine := int(l.Range.End.Line)

		var snippet strings.Builder
		for i := startLine; i <= endLine && i < len(lines); i++ {
			snippet.WriteString(lines[i])
			snippet.WriteByte('\n')
		}

		fmt.Fprintf(&b, "Definition found in %s:%d:%d\n\n%s\n\n",
			targetPath, startLine+1, l.Range.Start.Character+1,
			formatCode(snippet.String(), lspconv.LanguageForPath(targetPath)))
	}

	return b.String(), nil
}

func formatCode(code, language string) string {
	return fmt.Sprintf("```%s\n%s\n```", language, code)
}

// parseLocations accepts either a single Location object, an array of
// Locations, or a null/empty result.
func parseLocations(raw json.RawMessage) ([]protocol.Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var locations []protocol.Location
		if err := json.Unmarshal(raw, &locations); err != nil {
			return nil, fmt.Errorf("parse locations: %w", err)
		}
		return locations, nil
	}

	var location protocol.Location
	if err := json.Unmarshal(raw, &location); err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	return []protocol.Location{location}, nil
}
