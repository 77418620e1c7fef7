package protocol

// The capability structs below are deliberately narrow: this bridge only
// ever sends the capability block once, at startup, so there is no need
// to model LSP's entire (very large) ClientCapabilities surface — only
// the sections the reference implementation actually advertised.

type WorkspaceClientCapabilities struct {
	ApplyEdit              bool                                      `json:"applyEdit,omitempty"`
	Configuration          bool                                      `json:"configuration,omitempty"`
	WorkspaceFolders       bool                                      `json:"workspaceFolders,omitempty"`
	DidChangeConfiguration *DidChangeConfigurationClientCapabilities `json:"didChangeConfiguration,omitempty"`
	DidChangeWatchedFiles  *DidChangeWatchedFilesClientCapabilities  `json:"didChangeWatchedFiles,omitempty"`
}

type DidChangeConfigurationClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
}

type DidChangeWatchedFilesClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
}

type TextDocumentSyncClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
	DidSave             bool `json:"didSave,omitempty"`
}

type CompletionItemCapability struct {
	SnippetSupport bool `json:"snippetSupport,omitempty"`
}

type CompletionClientCapabilities struct {
	DynamicRegistration bool                      `json:"dynamicRegistration,omitempty"`
	CompletionItem      *CompletionItemCapability `json:"completionItem,omitempty"`
}

type HoverClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
}

type CodeActionKindCapability struct {
	ValueSet []string `json:"valueSet"`
}

type CodeActionLiteralSupport struct {
	CodeActionKind CodeActionKindCapability `json:"codeActionKind"`
}

type CodeActionClientCapabilities struct {
	DynamicRegistration      bool                      `json:"dynamicRegistration,omitempty"`
	CodeActionLiteralSupport *CodeActionLiteralSupport `json:"codeActionLiteralSupport,omitempty"`
}

type TextDocumentClientCapabilities struct {
	Synchronization *TextDocumentSyncClientCapabilities `json:"synchronization,omitempty"`
	Completion      *CompletionClientCapabilities       `json:"completion,omitempty"`
	Hover           *HoverClientCapabilities            `json:"hover,omitempty"`
	CodeAction      *CodeActionClientCapabilities       `json:"codeAction,omitempty"`
}

type ClientCapabilities struct {
	Workspace    *WorkspaceClientCapabilities    `json:"workspace,omitempty"`
	TextDocument *TextDocumentClientCapabilities `json:"textDocument,omitempty"`
}

type WorkspaceFolder struct {
	URI  DocumentUri `json:"uri"`
	Name string      `json:"name"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Codelenses mirrors the gopls-specific initializationOptions block the
// reference implementation sends; harmless to other servers (SPEC_FULL.md
// §9, Open Question (b)).
type Codelenses struct {
	Generate          bool `json:"generate"`
	RegenerateCgo     bool `json:"regenerate_cgo"`
	Test              bool `json:"test"`
	Tidy              bool `json:"tidy"`
	UpgradeDependency bool `json:"upgrade_dependency"`
	Vendor            bool `json:"vendor"`
	Vulncheck         bool `json:"vulncheck"`
}

type InitializationOptions struct {
	Codelenses Codelenses `json:"codelenses"`
}

type InitializeParams struct {
	ProcessID             int                    `json:"processId"`
	RootURI               DocumentUri            `json:"rootUri"`
	ClientInfo            *ClientInfo            `json:"clientInfo,omitempty"`
	Capabilities          ClientCapabilities     `json:"capabilities"`
	InitializationOptions *InitializationOptions `json:"initializationOptions,omitempty"`
	WorkspaceFolders      []WorkspaceFolder      `json:"workspaceFolders,omitempty"`
	Trace                 string                 `json:"trace,omitempty"`
}

// DefaultCapabilities builds the capability block SPEC_FULL.md §6
// requires: workspace configuration/watched-files, text-document
// synchronization with didSave, completion with snippet support, hover,
// and code actions with quickfix/refactor/source kinds.
func DefaultCapabilities() ClientCapabilities {
	return ClientCapabilities{
		Workspace: &WorkspaceClientCapabilities{
			Configuration:          true,
			WorkspaceFolders:       true,
			DidChangeConfiguration: &DidChangeConfigurationClientCapabilities{DynamicRegistration: true},
			DidChangeWatchedFiles:  &DidChangeWatchedFilesClientCapabilities{DynamicRegistration: true},
		},
		TextDocument: &TextDocumentClientCapabilities{
			Synchronization: &TextDocumentSyncClientCapabilities{DynamicRegistration: true, DidSave: true},
			Completion: &CompletionClientCapabilities{
				DynamicRegistration: true,
				CompletionItem:      &CompletionItemCapability{SnippetSupport: true},
			},
			Hover: &HoverClientCapabilities{DynamicRegistration: true},
			CodeAction: &CodeActionClientCapabilities{
				DynamicRegistration: true,
				CodeActionLiteralSupport: &CodeActionLiteralSupport{
					CodeActionKind: CodeActionKindCapability{
						ValueSet: []string{"quickfix", "refactor", "source"},
					},
				},
			},
		},
	}
}

// DefaultInitializationOptions builds the codelenses block SPEC_FULL.md
// §6 requires.
func DefaultInitializationOptions() *InitializationOptions {
	return &InitializationOptions{
		Codelenses: Codelenses{
			Generate:          true,
			RegenerateCgo:     true,
			Test:              true,
			Tidy:              true,
			UpgradeDependency: true,
			Vendor:            true,
			Vulncheck:         false,
		},
	}
}
