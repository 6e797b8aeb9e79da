package engine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/parser"
)

// PathCompleter completes file-system paths inside string literals.
// Relative paths resolve against BaseDir, the directory of the document.
type PathCompleter struct {
	BaseDir string
}

// CompletePath lists directory entries matching the path typed so far.
// Partial is the string content before the name being typed; likeName is the
// trailing word fragment the completer already stripped.
func (p *PathCompleter) CompletePath(partial, likeName string, pos parser.Position, fuzzyMatch bool) []*complete.Candidate {
	typed := partial + likeName
	dirPart, base := filepath.Split(typed)

	dir := dirPart
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.BaseDir, dirPart)
	}
	if dir == "" {
		dir = "."
	}
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var cands []*complete.Candidate
	for _, ent := range dirents {
		name := ent.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if fuzzyMatch {
			if !fuzzy.Match(base, name) {
				continue
			}
		} else if !strings.HasPrefix(name, base) {
			continue
		}
		display := name
		if ent.IsDir() {
			display += string(os.PathSeparator)
		}
		remainder := ""
		if !fuzzyMatch {
			remainder = display[len(base):]
		}
		cands = append(cands, &complete.Candidate{
			Name:     display,
			Complete: remainder,
			Kind:     complete.NamePath,
		})
	}
	return cands
}
