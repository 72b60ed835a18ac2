package codebase

import (
	"context"

	"fortio.org/safecast"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/hws/hwscript/parser"
	"github.com/dhamidi/hws/project"
)

const lsName = "hws"

var lspLog = commonlog.GetLogger("hws.lsp")

type LSPServer struct {
	codebase *Codebase
	cache    *Cache
	watcher  *FileWatcher
	handler  protocol.Handler
	server   *server.Server
	version  string
	notify   glsp.NotifyFunc
}

// NewLSPServer creates a server analysing documents into cache.
func NewLSPServer(version string, cache *Cache) *LSPServer {
	ls := &LSPServer{
		version: version,
		cache:   cache,
	}

	ls.handler = protocol.Handler{
		Initialize:                     ls.initialize,
		Initialized:                    ls.initialized,
		Shutdown:                       ls.shutdown,
		SetTrace:                       ls.setTrace,
		TextDocumentDidOpen:            ls.textDocumentDidOpen,
		TextDocumentDidChange:          ls.textDocumentDidChange,
		TextDocumentDidClose:           ls.textDocumentDidClose,
		TextDocumentDidSave:            ls.textDocumentDidSave,
		TextDocumentCompletion:         ls.textDocumentCompletion,
		TextDocumentHover:              ls.textDocumentHover,
		TextDocumentDefinition:         ls.textDocumentDefinition,
		TextDocumentDocumentSymbol:     ls.textDocumentDocumentSymbol,
		WorkspaceDidChangeWatchedFiles: ls.workspaceDidChangeWatchedFiles,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) RunTCP(address string) error {
	return ls.server.RunTCP(address)
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	proj, err := project.LoadFrom(project.Find(rootDir))
	if err != nil {
		lspLog.Errorf("load project: %s", err)
		proj = project.New(rootDir)
	}
	if logCfg := proj.Config.Log; logCfg.File != "" || logCfg.Verbosity != 0 {
		var path *string
		if logCfg.File != "" {
			path = &logCfg.File
		}
		commonlog.Configure(logCfg.Verbosity, path)
	}

	ls.codebase = New(proj, ls.cache)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(false),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "$"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.notify = ctx.Notify

	if err := ls.codebase.LoadVariables(context.Background()); err != nil {
		lspLog.Warningf("load variable groups: %s", err)
	}
	if err := ls.codebase.ScanAll(); err != nil {
		lspLog.Warningf("scan workspace: %s", err)
	}

	if ls.codebase.Project().Config.Watch.Enabled {
		ls.watcher = NewFileWatcher(ls.codebase)
		ls.watcher.OnChange = ls.publishAll
		ls.watcher.Start()
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
		ls.watcher = nil
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	ls.codebase.Open(NewSource(doc.URI, doc.Version, doc.Text))
	ls.publish(ctx.Notify, doc.URI)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := change.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		lspLog.Warningf("ignoring incremental change to %s", params.TextDocument.URI)
		return nil
	}
	ls.codebase.Open(NewSource(params.TextDocument.URI, params.TextDocument.Version, whole.Text))
	ls.publish(ctx.Notify, params.TextDocument.URI)
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	ls.codebase.Close(uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	ls.publish(ctx.Notify, params.TextDocument.URI)
	return nil
}

func (ls *LSPServer) workspaceDidChangeWatchedFiles(ctx *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	proj := ls.codebase.Project()
	for _, change := range params.Changes {
		path, err := uriToPath(change.URI)
		if err != nil {
			continue
		}
		deleted := change.Type == protocol.FileChangeTypeDeleted
		switch {
		case proj.IsVariableFile(path) && deleted:
			ls.codebase.RemoveVariableFile(path)
		case proj.IsVariableFile(path):
			if err := ls.codebase.ReloadVariableFile(path); err != nil {
				lspLog.Warningf("reload %s: %s", path, err)
			}
		case proj.IsScript(path) && ls.cache.Lookup(change.URI) != nil:
			// Open documents are indexed from the editor's text.
		case proj.IsScript(path) && deleted:
			ls.codebase.RemoveFile(path)
		case proj.IsScript(path):
			if err := ls.codebase.ScanFile(path); err != nil {
				lspLog.Warningf("scan %s: %s", path, err)
			}
		}
	}
	ls.publishAll()
	return nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	src, offset, ok := ls.locate(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}

	completions := ls.codebase.CompletionsAt(src, offset)
	if len(completions) == 0 {
		return nil, nil
	}

	items := make([]protocol.CompletionItem, 0, len(completions))
	for _, c := range completions {
		kind := toCompletionKind(c.Kind)
		item := protocol.CompletionItem{
			Label:      c.Label,
			Kind:       &kind,
			InsertText: strPtr(c.InsertText),
			SortText:   strPtr(c.SortText),
		}
		if c.Detail != "" {
			item.Detail = strPtr(c.Detail)
		}
		if c.Snippet {
			format := protocol.InsertTextFormatSnippet
			item.InsertTextFormat = &format
		}
		if c.Documentation != "" {
			item.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: c.Documentation}
		}
		items = append(items, item)
	}
	return items, nil
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	src, offset, ok := ls.locate(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	h, ok := ls.codebase.HoverAt(src, offset)
	if !ok {
		return nil, nil
	}
	doc := ls.cache.Get(src)
	rng := toRange(doc.Lines.Position(h.Start), doc.Lines.Position(h.End))
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: h.Contents},
		Range:    &rng,
	}, nil
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	src, offset, ok := ls.locate(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	loc, ok := ls.codebase.DefinitionAt(src, offset)
	if !ok {
		return nil, nil
	}
	return protocol.Location{URI: loc.URI, Range: toRange(loc.Start, loc.End)}, nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := ls.cache.Lookup(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	symbols := ls.codebase.DocumentSymbols(NewSource(doc.URI, doc.Version, doc.Text))
	return toDocumentSymbols(doc, symbols), nil
}

// locate maps an LSP position in an open document to a byte offset.
func (ls *LSPServer) locate(uri string, pos protocol.Position) (Source, int, bool) {
	doc := ls.cache.Lookup(uri)
	if doc == nil {
		return nil, 0, false
	}
	offset := doc.Lines.Offset(parser.Position{Line: int(pos.Line), Character: int(pos.Character)})
	return NewSource(doc.URI, doc.Version, doc.Text), offset, true
}

func (ls *LSPServer) publish(notify glsp.NotifyFunc, uri string) {
	doc := ls.cache.Lookup(uri)
	if doc == nil || notify == nil {
		return
	}
	found := ls.codebase.Diagnostics(NewSource(doc.URI, doc.Version, doc.Text))

	diagnostics := make([]protocol.Diagnostic, 0, len(found))
	for _, d := range found {
		severity := protocol.DiagnosticSeverity(d.Severity)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toRange(doc.Lines.Position(d.Start), doc.Lines.Position(d.End)),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: d.Code},
			Source:   strPtr(lsName),
			Message:  d.Message,
		})
	}

	params := protocol.PublishDiagnosticsParams{URI: doc.URI, Diagnostics: diagnostics}
	if v, err := safecast.Conv[protocol.UInteger](doc.Version); err == nil {
		params.Version = &v
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

// publishAll refreshes the diagnostics of every open document.
func (ls *LSPServer) publishAll() {
	for _, uri := range ls.cache.URIs() {
		ls.publish(ls.notify, uri)
	}
}

func toDocumentSymbols(doc *Document, symbols []DocumentSymbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, s := range symbols {
		ds := protocol.DocumentSymbol{
			Name:           s.Name,
			Kind:           toSymbolKind(s.Kind),
			Range:          toRange(doc.Lines.Position(s.Start), doc.Lines.Position(s.End)),
			SelectionRange: toRange(doc.Lines.Position(s.NameStart), doc.Lines.Position(s.NameEnd)),
			Children:       toDocumentSymbols(doc, s.Children),
		}
		if s.Detail != "" {
			ds.Detail = strPtr(s.Detail)
		}
		out = append(out, ds)
	}
	return out
}

func toRange(start, end parser.Position) protocol.Range {
	return protocol.Range{Start: toPosition(start), End: toPosition(end)}
}

func toPosition(p parser.Position) protocol.Position {
	line, err := safecast.Conv[protocol.UInteger](p.Line)
	if err != nil {
		line = 0
	}
	char, err := safecast.Conv[protocol.UInteger](p.Character)
	if err != nil {
		char = 0
	}
	return protocol.Position{Line: line, Character: char}
}

func toCompletionKind(kind CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case CompletionKindFunction:
		return protocol.CompletionItemKindFunction
	case CompletionKindConstant:
		return protocol.CompletionItemKindConstant
	case CompletionKindClass:
		return protocol.CompletionItemKindClass
	case CompletionKindProperty:
		return protocol.CompletionItemKindProperty
	case CompletionKindObject:
		return protocol.CompletionItemKindModule
	case CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindVariable
	}
}

func toSymbolKind(kind SymbolKind) protocol.SymbolKind {
	switch kind {
	case SymbolKindFunction:
		return protocol.SymbolKindFunction
	case SymbolKindClass:
		return protocol.SymbolKindClass
	case SymbolKindConstant:
		return protocol.SymbolKindConstant
	case SymbolKindObject:
		return protocol.SymbolKindObject
	default:
		return protocol.SymbolKindVariable
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
