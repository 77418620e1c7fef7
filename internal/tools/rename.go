package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcpbridge/lsp-bridge/internal/lsp"
	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

// RenameSymbol renames the symbol at a 1-indexed (line, column) in path to
// newName and applies the resulting WorkspaceEdit to disk.
func RenameSymbol(ctx context.Context, client *lsp.Client, path string, line, column uint32, newName string) (string, error) {
	if err := client.OpenFile(ctx, path); err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}

	uri, err := protocol.URIFromPath(path)
	if err != nil {
		return "", err
	}

	params := protocol.RenameParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: saturatingSub1(int(line)), Character: saturatingSub1(int(column))},
		NewName:      newName,
	}

	raw, err := client.Call(ctx, "textDocument/rename", params)
	if err != nil {
		return "", fmt.Errorf("rename request: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("no rename edits returned for %s at %d:%d", path, line, column)
	}

	var edit protocol.WorkspaceEdit
	if err := json.Unmarshal(raw, &edit); err != nil {
		return "", fmt.Errorf("parse workspace edit: %w", err)
	}

	byFile, err := editsByFile(edit)
	if err != nil {
		return "", err
	}
	if len(byFile) == 0 {
		return "", fmt.Errorf("no rename edits returned for %s at %d:%d", path, line, column)
	}

	editCount := 0
	for targetPath, textEdits := range byFile {
		if err := applyEditsToFile(ctx, client, targetPath, textEdits); err != nil {
			return "", err
		}
		editCount += len(textEdits)
	}

	return fmt.Sprintf("Applied %d edits across %d files", editCount, len(byFile)), nil
}

// editsByFile flattens a WorkspaceEdit to a path->edits map, preferring
// DocumentChanges over Changes when both are present, per the LSP spec.
// File-operation variants (create/rename/delete) are rejected outright.
func editsByFile(edit protocol.WorkspaceEdit) (map[string][]protocol.TextEdit, error) {
	result := make(map[string][]protocol.TextEdit)

	if len(edit.DocumentChanges) > 0 {
		for _, dc := range edit.DocumentChanges {
			if dc.Kind != protocol.DocumentChangeEdit {
				return nil, fmt.Errorf("document operations (create/rename/delete) are not supported")
			}
			path, err := protocol.PathFromURI(dc.Edit.TextDocument.URI)
			if err != nil {
				return nil, err
			}
			for _, ae := range dc.Edit.Edits {
				result[path] = append(result[path], ae.TextEdit)
			}
		}
		return result, nil
	}

	for uri, textEdits := range edit.Changes {
		path, err := protocol.PathFromURI(uri)
		if err != nil {
			return nil, err
		}
		result[path] = append(result[path], textEdits...)
	}
	return result, nil
}

func applyEditsToFile(ctx context.Context, client *lsp.Client, path string, edits []protocol.TextEdit) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file %s: %w", path, err)
	}

	newContent, err := applyTextEdits(string(content), edits)
	if err != nil {
		return fmt.Errorf("apply edits to %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(newContent), 0o644); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}

	if err := client.OpenFile(ctx, path); err != nil {
		return fmt.Errorf("open file %s: %w", path, err)
	}
	if err := client.ChangeFile(ctx, path); err != nil {
		return fmt.Errorf("notify change to %s: %w", path, err)
	}
	return nil
}
