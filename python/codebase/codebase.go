// Package codebase tracks open documents and answers completion requests
// over them. It is the shared state behind both the LSP server and the CLI.
package codebase

import (
	"os"
	"strings"
	"sync"

	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/engine"
	"github.com/dhamidi/kai/python/parser"
)

type Codebase struct {
	mu         sync.RWMutex
	rootDir    string
	files      map[string]*FileInfo
	searchPath []string
}

type FileInfo struct {
	Path    string
	Content []byte
	Lines   []string
}

func New(rootDir string) *Codebase {
	return &Codebase{
		rootDir: rootDir,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

// SetSearchPath configures extra import roots, e.g. from workspace
// configuration.
func (c *Codebase) SetSearchPath(roots []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchPath = roots
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.UpdateFile(path, content)
}

func (c *Codebase) UpdateFile(path string, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files[path] = &FileInfo{
		Path:    path,
		Content: content,
		Lines:   splitLines(content),
	}
	return nil
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// EngineFor builds a fresh engine over the current document state. The
// engine is request-scoped; the codebase only holds raw document text.
func (c *Codebase) EngineFor(path string) *engine.Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := c.files[path]
	if f == nil {
		return nil
	}
	roots := append([]string{}, c.searchPath...)
	if c.rootDir != "" {
		roots = append(roots, c.rootDir)
	}
	return engine.New(f.Lines, engine.Options{
		Path:       path,
		SearchPath: roots,
	})
}

// CompletionsAtPoint runs completion at a 1-based line and 0-based column.
func (c *Codebase) CompletionsAtPoint(path string, line, column int) []CompletionItem {
	eng := c.EngineFor(path)
	if eng == nil {
		return nil
	}
	completer := eng.Completer(complete.DefaultSettings())
	pos := parser.Position{Line: line, Column: column}
	cands := completer.Complete(eng.Module().Lines(), pos, false)

	var items []CompletionItem
	for _, cand := range cands {
		items = append(items, CompletionItem{
			Label:      cand.Name,
			Kind:       cand.Kind,
			Detail:     cand.Detail,
			InsertText: insertTextFor(cand),
		})
	}
	return items
}

// insertTextFor converts a candidate to the text the editor inserts.
// Keywords that start a clause get a trailing space so typing flows on.
func insertTextFor(cand *complete.Candidate) string {
	if cand.Kind == complete.NameKeyword && keywordTakesSpace(cand.Name) {
		return cand.Name + " "
	}
	return cand.Name
}

func keywordTakesSpace(name string) bool {
	switch name {
	case "pass", "break", "continue", "else", "finally", "try", "True", "False", "None":
		return false
	}
	return true
}

type CompletionItem struct {
	Label      string
	Kind       complete.NameKind
	Detail     string
	InsertText string
}

func splitLines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	return strings.Split(text, "\n")
}
