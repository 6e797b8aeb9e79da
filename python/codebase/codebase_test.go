package codebase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/kai/python/complete"
)

func TestCompletionsAtPoint(t *testing.T) {
	dir := t.TempDir()
	helpers := filepath.Join(dir, "helpers.py")
	if err := os.WriteFile(helpers, []byte("def shout(text):\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(dir)
	path := filepath.Join(dir, "main.py")
	c.UpdateFile(path, []byte("import helpers\nhelpers."))

	if c.GetFile(path) == nil {
		t.Fatal("GetFile returned nil")
	}

	items := c.CompletionsAtPoint(path, 2, 8)
	found := false
	for _, item := range items {
		if item.Label == "shout" {
			found = true
			if item.Kind != complete.NameFunction {
				t.Errorf("shout kind = %v, want function", item.Kind)
			}
		}
	}
	if !found {
		t.Errorf("shout missing from completions: %v", items)
	}
}

func TestKeywordInsertText(t *testing.T) {
	c := New(t.TempDir())
	path := "/virtual/buffer.py"
	c.UpdateFile(path, []byte(""))

	items := c.CompletionsAtPoint(path, 1, 0)
	if len(items) == 0 {
		t.Fatal("no completions on empty buffer")
	}
	for _, item := range items {
		if item.Label == "import" && item.InsertText != "import " {
			t.Errorf("import insert text = %q, want trailing space", item.InsertText)
		}
		if item.Label == "pass" && item.InsertText != "pass" {
			t.Errorf("pass insert text = %q, want bare keyword", item.InsertText)
		}
	}
}

func TestRemoveFile(t *testing.T) {
	c := New(t.TempDir())
	path := "/virtual/gone.py"
	c.UpdateFile(path, []byte("x = 1\n"))
	c.RemoveFile(path)
	if c.GetFile(path) != nil {
		t.Error("file still present after removal")
	}
	if items := c.CompletionsAtPoint(path, 1, 0); items != nil {
		t.Errorf("completions for removed file = %v", items)
	}
}
