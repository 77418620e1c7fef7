package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

// positionToByteOffset converts a 0-indexed LSP position into a byte
// offset into content, clamping the character offset to the line length.
func positionToByteOffset(content string, pos protocol.Position) (int, error) {
	lines := strings.Split(content, "\n")
	if int(pos.Line) >= len(lines) {
		return 0, fmt.Errorf("invalid line number: %d", pos.Line)
	}

	offset := 0
	for _, line := range lines[:pos.Line] {
		offset += len(line) + 1 // +1 for the newline
	}

	line := lines[pos.Line]
	char := int(pos.Character)
	if char > len(line) {
		char = len(line)
	}
	return offset + char, nil
}

// applyTextEdits applies edits to content in descending start-position
// order, so earlier offsets stay valid as later (later-in-file) edits are
// applied first.
func applyTextEdits(content string, edits []protocol.TextEdit) (string, error) {
	sorted := make([]protocol.TextEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Range.Start, sorted[j].Range.Start
		if a.Line != b.Line {
			return a.Line > b.Line
		}
		return a.Character > b.Character
	})

	result := content
	for _, edit := range sorted {
		start, err := positionToByteOffset(result, edit.Range.Start)
		if err != nil {
			return "", err
		}
		end, err := positionToByteOffset(result, edit.Range.End)
		if err != nil {
			return "", err
		}
		if start > end || end > len(result) {
			return "", fmt.Errorf("invalid edit range [%d,%d) in content of length %d", start, end, len(result))
		}
		result = result[:start] + edit.NewText + result[end:]
	}
	return result, nil
}

// lineRangeToEdit converts a 1-indexed, inclusive [startLine, endLine]
// whole-line range into a half-open character Range: the start of
// startLine through the end of endLine (or through end-of-file, if
// endLine exceeds the line count).
func lineRangeToEdit(content string, startLine, endLine uint32, newText string) protocol.TextEdit {
	lines := strings.Split(content, "\n")

	start := protocol.Position{Line: startLine - 1, Character: 0}

	var end protocol.Position
	endIdx := int(endLine - 1)
	switch {
	case endIdx < len(lines):
		end = protocol.Position{Line: endLine - 1, Character: uint32(len(lines[endIdx]))}
	default:
		// endLine is beyond the file: replace through end-of-file rather
		// than naming a line position that doesn't exist.
		last := len(lines) - 1
		end = protocol.Position{Line: uint32(last), Character: uint32(len(lines[last]))}
	}

	return protocol.TextEdit{Range: protocol.Range{Start: start, End: end}, NewText: newText}
}
