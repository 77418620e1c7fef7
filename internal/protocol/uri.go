package protocol

import (
	"fmt"
	"path/filepath"

	lspuri "go.lsp.dev/uri"
)

// DocumentUri is the wire representation of an LSP document URI.
type DocumentUri string

// URIFromPath converts an absolute filesystem path to a file:// URI.
func URIFromPath(path string) (DocumentUri, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("protocol: absolutize %q: %w", path, err)
	}
	return DocumentUri(lspuri.File(abs)), nil
}

// PathFromURI converts a file:// URI back to a filesystem path.
func PathFromURI(uri DocumentUri) (string, error) {
	return lspuri.URI(uri).Filename(), nil
}
