package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/mcpbridge/lsp-bridge/internal/lsp"
	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

// EditSpec is one whole-line replacement, 1-indexed and inclusive.
type EditSpec struct {
	StartLine uint32
	EndLine   uint32
	NewText   string
}

// EditFile rewrites path by replacing each line range in edits, applying
// them in descending start-position order so earlier offsets remain
// valid, then notifies the LSP server of the change.
func EditFile(ctx context.Context, client *lsp.Client, path string, edits []EditSpec) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}

	if err := client.OpenFile(ctx, path); err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}

	lspEdits := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		lspEdits = append(lspEdits, lineRangeToEdit(string(content), e.StartLine, e.EndLine, e.NewText))
	}

	newContent, err := applyTextEdits(string(content), lspEdits)
	if err != nil {
		return "", fmt.Errorf("apply edits: %w", err)
	}

	if err := os.WriteFile(path, []byte(newContent), 0o644); err != nil {
		return "", fmt.Errorf("write file %s: %w", path, err)
	}

	if err := client.ChangeFile(ctx, path); err != nil {
		return "", fmt.Errorf("notify change: %w", err)
	}

	return fmt.Sprintf("Successfully applied %d edits to %s", len(edits), path), nil
}
