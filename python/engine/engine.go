// Package engine realizes the completion core's collaborator contracts over
// the line-structured parser: scope filters, pragmatic value inference,
// search-path import resolution and call signatures. It is deliberately
// shallow compared to a full type checker; the completion core treats every
// provider answer as best-effort.
package engine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/parser"
)

var log = commonlog.GetLogger("kai.engine")

// Options configure an Engine for one document.
type Options struct {
	// Path is the document's file path, used for relative imports and
	// path completion. May be empty for unsaved buffers.
	Path string
	// SearchPath lists the import roots, innermost first.
	SearchPath []string
	// ParamNames plugs in the parameter-name completion policy.
	ParamNames complete.ParamNameProvider
}

// Engine binds one parsed document to the provider interfaces. It is created
// fresh per document state; nothing is shared across requests except the
// caller-owned search path.
type Engine struct {
	module *parser.Module
	lines  []string
	opts   Options
}

func New(lines []string, opts Options) *Engine {
	return &Engine{
		module: parser.Parse(lines),
		lines:  lines,
		opts:   opts,
	}
}

// Module exposes the parsed tree, mainly for the CLI dump command.
func (e *Engine) Module() *parser.Module {
	return e.module
}

// Providers bundles the engine into the completer's collaborator set.
func (e *Engine) Providers() complete.Providers {
	baseDir := "."
	if e.opts.Path != "" {
		baseDir = filepath.Dir(e.opts.Path)
	}
	return complete.Providers{
		Grammar:    e.module,
		Scope:      e,
		Inference:  e,
		Convert:    func([]complete.Value) []complete.Value { return nil },
		Imports:    e,
		Paths:      &PathCompleter{BaseDir: baseDir},
		ParamNames: e.opts.ParamNames,
		Signatures: e,
	}
}

// Completer builds a ready-to-use completer for the document.
func (e *Engine) Completer(settings complete.Settings) *complete.Completer {
	return complete.New(e.Providers(), settings)
}

// ContextAt returns the inference context for the innermost scope enclosing
// pos.
func (e *Engine) ContextAt(pos parser.Position) complete.Context {
	scope := e.scopeAt(pos)
	return &evalContext{eng: e, scope: scope}
}

func (e *Engine) scopeAt(pos parser.Position) *parser.Node {
	leaf := e.module.LeafAt(pos, true)
	if leaf == nil {
		return e.module.Root
	}
	// On an empty line the nearest leaf is EOF; the preceding leaf decides
	// which block the position continues.
	if leaf.Token.Kind == parser.TokenEOF || pos.Before(leaf.Span.Start) {
		if prev := leaf.PreviousLeaf(); prev != nil {
			leaf = prev
		}
	}
	node := leaf
	for node != nil && !node.IsScope() {
		node = node.Parent
	}
	for node != nil && node.Kind != parser.KindFileInput {
		// Past the block's last line, it stays open only at a deeper
		// indentation than its header.
		if pos.Line > node.End().Line && pos.Column <= node.Start().Column {
			parent := node.Parent
			for parent != nil && !parent.IsScope() {
				parent = parent.Parent
			}
			node = parent
			continue
		}
		break
	}
	if node == nil {
		return e.module.Root
	}
	return node
}

// readModuleFile loads and parses another source file, for module-attribute
// and import completion. Errors are logged and treated as an empty module.
func readModuleFile(path string) *parser.Module {
	content, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("module read failed: %s", err.Error())
		return nil
	}
	return parser.Parse(strings.Split(strings.TrimRight(string(content), "\n"), "\n"))
}
