package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcpbridge/lsp-bridge/internal/lsp"
	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

const noHoverInfo = "No hover information available at this position."

// Hover renders hover information at a 1-indexed (line, column) in path.
func Hover(ctx context.Context, client *lsp.Client, path string, line, column uint32) (string, error) {
	if err := client.OpenFile(ctx, path); err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}

	uri, err := protocol.URIFromPath(path)
	if err != nil {
		return "", err
	}

	params := protocol.HoverParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: saturatingSub1(int(line)), Character: saturatingSub1(int(column))},
	}

	raw, err := client.Call(ctx, "textDocument/hover", params)
	if err != nil {
		return "", fmt.Errorf("hover request: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return noHoverInfo, nil
	}

	var hover protocol.Hover
	if err := json.Unmarshal(raw, &hover); err != nil {
		return "", fmt.Errorf("parse hover result: %w", err)
	}

	contents := renderHoverContents(hover.Contents)
	if contents == "" {
		return noHoverInfo, nil
	}
	return contents, nil
}

func renderHoverContents(h protocol.HoverContents) string {
	switch {
	case h.Markup != nil:
		return h.Markup.Value
	case h.Array != nil:
		var parts []string
		for _, m := range h.Array {
			parts = append(parts, renderMarkedString(m))
		}
		return strings.Join(parts, "\n\n")
	case h.Scalar != nil:
		return renderMarkedString(*h.Scalar)
	default:
		return ""
	}
}

func renderMarkedString(m protocol.MarkedString) string {
	if m.Language == "" {
		return m.Value
	}
	return fmt.Sprintf("```%s\n%s\n```", m.Language, m.Value)
}
