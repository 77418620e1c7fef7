// Package protocol models the subset of the LSP wire vocabulary this
// bridge needs, as one internally-consistent set of types. Unlike a
// general-purpose LSP types package, the union-shaped fields this bridge
// actually has to interpret correctly — hover contents, workspace-edit
// document changes — are modeled as real sum types with their own
// unmarshaling logic, not flattened structs.
package protocol

import "encoding/json"

// Position is zero-indexed, matching the wire format; callers at the
// tool-orchestrator boundary are responsible for 1-indexed user input.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Location struct {
	URI   DocumentUri `json:"uri"`
	Range Range       `json:"range"`
}

type TextDocumentIdentifier struct {
	URI DocumentUri `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	URI     DocumentUri `json:"uri"`
	Version int32       `json:"version"`
}

type TextDocumentItem struct {
	URI        DocumentUri `json:"uri"`
	LanguageID string      `json:"languageId"`
	Version    int32       `json:"version"`
	Text       string      `json:"text"`
}

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// TextEdit is a single full-text replacement over a range.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// DiagnosticSeverity mirrors the LSP severity enum.
type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityInformation:
		return "Info"
	case SeverityHint:
		return "Hint"
	default:
		return "Unknown"
	}
}

type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     json.RawMessage    `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

type PublishDiagnosticsParams struct {
	URI         DocumentUri  `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// MarkedString is the legacy hover-content element: either a plain
// string or a {language, value} pair rendered as a fenced code block.
type MarkedString struct {
	Value    string
	Language string // empty when this is the plain-string form
}

func (m *MarkedString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Value = s
		m.Language = ""
		return nil
	}
	var ls struct {
		Language string `json:"language"`
		Value    string `json:"value"`
	}
	if err := json.Unmarshal(data, &ls); err != nil {
		return err
	}
	m.Value = ls.Value
	m.Language = ls.Language
	return nil
}

// MarkupContent is the modern structured hover-content form.
type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// HoverContents is the union of the three shapes a Hover.Contents field
// can take on the wire: a scalar MarkedString, an array of MarkedStrings,
// or a MarkupContent block.
type HoverContents struct {
	Scalar *MarkedString
	Array  []MarkedString
	Markup *MarkupContent
}

func (h *HoverContents) UnmarshalJSON(data []byte) error {
	// Try markup block first: it is the only shape with a "kind" field.
	var markup MarkupContent
	if err := json.Unmarshal(data, &markup); err == nil && markup.Kind != "" {
		h.Markup = &markup
		return nil
	}

	var arr []MarkedString
	if err := json.Unmarshal(data, &arr); err == nil {
		h.Array = arr
		return nil
	}

	var scalar MarkedString
	if err := json.Unmarshal(data, &scalar); err != nil {
		return err
	}
	h.Scalar = &scalar
	return nil
}

// IsEmpty reports whether no renderable content was present.
func (h *HoverContents) IsEmpty() bool {
	if h == nil {
		return true
	}
	if h.Markup != nil {
		return h.Markup.Value == ""
	}
	if h.Scalar != nil {
		return h.Scalar.Value == ""
	}
	return len(h.Array) == 0
}

type Hover struct {
	Contents HoverContents `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

// AnnotatedTextEdit wraps a TextEdit with an optional change-annotation
// identifier, the "Right" arm of the OneOf<TextEdit, AnnotatedTextEdit>
// union LSP uses inside TextDocumentEdit.Edits.
type AnnotatedTextEdit struct {
	TextEdit
	AnnotationID string `json:"annotationId,omitempty"`
}

// TextDocumentEdit is one per-document group of edits inside a
// WorkspaceEdit's documentChanges array.
type TextDocumentEdit struct {
	TextDocument VersionedTextDocumentIdentifier `json:"textDocument"`
	Edits        []AnnotatedTextEdit             `json:"edits"`
}

// DocumentChangeKind distinguishes a plain edit group from one of the
// file-operation variants (create/rename/delete) that this bridge does
// not support applying.
type DocumentChangeKind int

const (
	DocumentChangeEdit DocumentChangeKind = iota
	DocumentChangeCreateFile
	DocumentChangeRenameFile
	DocumentChangeDeleteFile
)

// DocumentChange is one element of WorkspaceEdit.DocumentChanges: either
// a TextDocumentEdit, or a file-operation variant we reject.
type DocumentChange struct {
	Kind DocumentChangeKind
	Edit TextDocumentEdit // valid when Kind == DocumentChangeEdit
}

func (d *DocumentChange) UnmarshalJSON(data []byte) error {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.Kind {
	case "create":
		d.Kind = DocumentChangeCreateFile
		return nil
	case "rename":
		d.Kind = DocumentChangeRenameFile
		return nil
	case "delete":
		d.Kind = DocumentChangeDeleteFile
		return nil
	default:
		var edit TextDocumentEdit
		if err := json.Unmarshal(data, &edit); err != nil {
			return err
		}
		d.Kind = DocumentChangeEdit
		d.Edit = edit
		return nil
	}
}

// WorkspaceEdit is the reply shape for textDocument/rename: either a flat
// URI->edits map, a documentChanges array, or both (documentChanges wins
// when both are present, per the LSP spec).
type WorkspaceEdit struct {
	Changes         map[DocumentUri][]TextEdit `json:"changes,omitempty"`
	DocumentChanges []DocumentChange           `json:"documentChanges,omitempty"`
}

type RenameParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
	NewName      string                 `json:"newName"`
}

type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type ReferenceParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
	Context      ReferenceContext       `json:"context"`
}

type DefinitionParams = TextDocumentPositionParams

type HoverParams = TextDocumentPositionParams

// InitializeResult is left loosely typed: this bridge only needs to know
// that initialization succeeded, not the server's full capability set.
type InitializeResult struct {
	Capabilities json.RawMessage `json:"capabilities"`
}
