package engine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/parser"
)

// ResolveImport completes the next component of a dotted import path. Names
// holds the components already typed; level is the relative-import dot
// count. When onlyModules is set, only modules and packages qualify; module
// attributes are left out.
func (e *Engine) ResolveImport(names []string, level int, onlyModules bool) []complete.NameEntry {
	var entries []complete.NameEntry
	for _, root := range e.importRoots(level) {
		entries = append(entries, e.resolveIn(root, names, onlyModules)...)
	}
	return entries
}

// importRoots lists the directories a path may resolve under. Absolute
// imports search the configured path plus the document's directory;
// relative imports resolve against the document's directory, ascending one
// level per extra dot.
func (e *Engine) importRoots(level int) []string {
	baseDir := "."
	if e.opts.Path != "" {
		baseDir = filepath.Dir(e.opts.Path)
	}
	if level > 0 {
		dir := baseDir
		for i := 1; i < level; i++ {
			dir = filepath.Dir(dir)
		}
		return []string{dir}
	}
	roots := append([]string{}, e.opts.SearchPath...)
	return append(roots, baseDir)
}

func (e *Engine) resolveIn(root string, names []string, onlyModules bool) []complete.NameEntry {
	dir := root
	for i, name := range names {
		sub := filepath.Join(dir, name)
		if info, err := os.Stat(sub); err == nil && info.IsDir() {
			dir = sub
			continue
		}
		// The path bottoms out in a module file; only its attributes can
		// follow, and only when the module file is the last component.
		if i == len(names)-1 && !onlyModules {
			if mod := readModuleFile(filepath.Join(dir, name+".py")); mod != nil {
				return moduleAttributes(mod)
			}
		}
		return nil
	}
	return e.listModules(dir, onlyModules)
}

// listModules lists the importable names directly under dir: .py files and
// package directories, plus the package's own attributes when attributes
// are wanted.
func (e *Engine) listModules(dir string, onlyModules bool) []complete.NameEntry {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		log.Debugf("import listing failed: %s", err.Error())
		return nil
	}
	var entries []complete.NameEntry
	for _, ent := range dirents {
		name := ent.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		if ent.IsDir() {
			entries = append(entries, complete.NameEntry{Name: name, Kind: complete.NameModule})
			continue
		}
		if strings.HasSuffix(name, ".py") {
			entries = append(entries, complete.NameEntry{
				Name: strings.TrimSuffix(name, ".py"),
				Kind: complete.NameModule,
			})
		}
	}
	if !onlyModules {
		if mod := readModuleFile(filepath.Join(dir, "__init__.py")); mod != nil {
			entries = append(entries, moduleAttributes(mod)...)
		}
	}
	return entries
}

func moduleAttributes(mod *parser.Module) []complete.NameEntry {
	return scopeNames(mod.Root)
}

// resolveModule locates a dotted module path on disk and wraps it as a
// value. It returns nil when no file matches.
func (e *Engine) resolveModule(names []string) *moduleValue {
	if len(names) == 0 {
		return nil
	}
	for _, root := range e.importRoots(0) {
		if path := moduleFilePath(root, names); path != "" {
			return &moduleValue{eng: e, name: names[len(names)-1], path: path}
		}
	}
	return nil
}

func moduleFilePath(root string, names []string) string {
	dir := root
	for i, name := range names {
		last := i == len(names)-1
		sub := filepath.Join(dir, name)
		if info, err := os.Stat(sub); err == nil && info.IsDir() {
			if last {
				init := filepath.Join(sub, "__init__.py")
				if _, err := os.Stat(init); err == nil {
					return init
				}
				return ""
			}
			dir = sub
			continue
		}
		file := sub + ".py"
		if _, err := os.Stat(file); err == nil && last {
			return file
		}
		return ""
	}
	return ""
}
