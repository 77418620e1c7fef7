package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mcpbridge/lsp-bridge/internal/lsp"
	"github.com/mcpbridge/lsp-bridge/internal/protocol"
)

var severityTitle = cases.Title(language.Und)

func severityLabel(sev protocol.DiagnosticSeverity) string {
	return severityTitle.String(strings.ToLower(sev.String()))
}

// GetDiagnostics renders the cached diagnostics for path with a code
// context window and caret underlines.
func GetDiagnostics(ctx context.Context, client *lsp.Client, path string, contextLines int, showLineNumbers bool) (string, error) {
	if err := client.OpenFile(ctx, path); err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}

	uri, err := protocol.URIFromPath(path)
	if err != nil {
		return "", err
	}

	diagnostics := client.GetDiagnostics(uri)
	if len(diagnostics) == 0 {
		return fmt.Sprintf("No diagnostics found for %s", path), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	lines := strings.Split(string(content), "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "Diagnostics for %s:\n\n", path)

	for i, d := range diagnostics {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "%s: %s\n", severityLabel(d.Severity), d.Message)

		startLine := int(d.Range.Start.Line)
		endLine := int(d.Range.End.Line)

		contextStart := startLine - contextLines
		if contextStart < 0 {
			contextStart = 0
		}
		contextEnd := endLine + contextLines
		if lastLine := len(lines) - 1; contextEnd > lastLine {
			contextEnd = lastLine
		}

		b.WriteString("\nCode context:\n")

		for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
			if lineNum >= len(lines) {
				continue
			}
			lineContent := lines[lineNum]

			if showLineNumbers {
				fmt.Fprintf(&b, "%5d | %s\n", lineNum+1, lineContent)
			} else {
				fmt.Fprintf(&b, "%s\n", lineContent)
			}

			if lineNum >= startLine && lineNum <= endLine {
				startChar := 0
				if lineNum == startLine {
					startChar = int(d.Range.Start.Character)
				}
				endChar := len(lineContent)
				if lineNum == endLine {
					endChar = int(d.Range.End.Character)
				}
				caretCount := endChar - startChar
				if caretCount < 1 {
					caretCount = 1
				}

				prefix := ""
				if showLineNumbers {
					prefix = "      | "
				}
				fmt.Fprintf(&b, "%s%s%s\n", prefix, strings.Repeat(" ", startChar), strings.Repeat("^", caretCount))
			}
		}
	}

	return b.String(), nil
}
