package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func completeAt(t *testing.T, dir string, lines []string, pos parser.Position) []*complete.Candidate {
	t.Helper()
	eng := New(lines, Options{Path: filepath.Join(dir, "main.py")})
	completer := eng.Completer(complete.DefaultSettings())
	return completer.Complete(lines, pos, false)
}

func candidateNames(cands []*complete.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Name
	}
	return out
}

func hasName(cands []*complete.Candidate, name string) bool {
	for _, c := range cands {
		if c.Name == name {
			return true
		}
	}
	return false
}

func TestCompleteModuleAttribute(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "helpers.py", "def shout(text):\n    pass\nLIMIT = 10\n")

	lines := []string{"import helpers", "helpers."}
	cands := completeAt(t, dir, lines, parser.Position{Line: 2, Column: 8})

	if !hasName(cands, "shout") {
		t.Errorf("shout missing from %v", candidateNames(cands))
	}
	if !hasName(cands, "LIMIT") {
		t.Errorf("LIMIT missing from %v", candidateNames(cands))
	}
	for _, c := range cands {
		if c.Name == "shout" && c.Kind != complete.NameFunction {
			t.Errorf("shout kind = %v, want function", c.Kind)
		}
	}
}

func TestCompleteImportModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "helpers.py", "")
	writeFile(t, dir, "pkg/__init__.py", "VERSION = 1\n")
	writeFile(t, dir, "pkg/util.py", "")

	lines := []string{"import "}
	cands := completeAt(t, dir, lines, parser.Position{Line: 1, Column: 7})

	if !hasName(cands, "helpers") {
		t.Errorf("helpers missing from %v", candidateNames(cands))
	}
	if !hasName(cands, "pkg") {
		t.Errorf("pkg missing from %v", candidateNames(cands))
	}
}

func TestCompleteFromImportAttributes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/__init__.py", "VERSION = 1\n")
	writeFile(t, dir, "pkg/util.py", "")

	lines := []string{"from pkg import "}
	cands := completeAt(t, dir, lines, parser.Position{Line: 1, Column: 16})

	if !hasName(cands, "util") {
		t.Errorf("submodule util missing from %v", candidateNames(cands))
	}
	if !hasName(cands, "VERSION") {
		t.Errorf("package attribute VERSION missing from %v", candidateNames(cands))
	}
}

func TestCompleteFromModulePathKeyword(t *testing.T) {
	dir := t.TempDir()
	lines := []string{"from pkg "}
	cands := completeAt(t, dir, lines, parser.Position{Line: 1, Column: 9})

	if !hasName(cands, "import") {
		t.Fatalf("import keyword missing from %v", candidateNames(cands))
	}
	if len(cands) != 1 {
		t.Errorf("candidates = %v, want only the import keyword", candidateNames(cands))
	}
}

func TestCompleteInstanceMembers(t *testing.T) {
	dir := t.TempDir()
	lines := []string{
		"class Greeter:",
		"    def __init__(self):",
		"        self.name = 'world'",
		"    def greet(self):",
		"        pass",
		"",
		"g = Greeter()",
		"g.",
	}
	cands := completeAt(t, dir, lines, parser.Position{Line: 8, Column: 2})

	if !hasName(cands, "greet") {
		t.Errorf("method greet missing from %v", candidateNames(cands))
	}
	if !hasName(cands, "name") {
		t.Errorf("instance attribute name missing from %v", candidateNames(cands))
	}
}

func TestCompleteInheritedMembers(t *testing.T) {
	dir := t.TempDir()
	lines := []string{
		"class Base:",
		"    def close(self):",
		"        pass",
		"",
		"class Child(Base):",
		"    pass",
		"",
		"c = Child()",
		"c.",
	}
	cands := completeAt(t, dir, lines, parser.Position{Line: 9, Column: 2})

	if !hasName(cands, "close") {
		t.Errorf("inherited method close missing from %v", candidateNames(cands))
	}
}

func TestCompleteGetattrDelegation(t *testing.T) {
	dir := t.TempDir()
	lines := []string{
		"class Backend:",
		"    def serve(self):",
		"        pass",
		"",
		"class Proxy:",
		"    def __init__(self):",
		"        self._backend = Backend()",
		"    def __getattr__(self, name):",
		"        return getattr(self._backend, name)",
		"",
		"p = Proxy()",
		"p.",
	}
	cands := completeAt(t, dir, lines, parser.Position{Line: 12, Column: 2})

	if !hasName(cands, "serve") {
		t.Errorf("delegated member serve missing from %v", candidateNames(cands))
	}
}

func TestCompleteKeywordArguments(t *testing.T) {
	dir := t.TempDir()
	lines := []string{
		"def connect(host, port=80):",
		"    pass",
		"",
		"connect(",
	}
	cands := completeAt(t, dir, lines, parser.Position{Line: 4, Column: 8})

	if !hasName(cands, "host") {
		t.Errorf("parameter host missing from %v", candidateNames(cands))
	}
	if !hasName(cands, "port") {
		t.Errorf("parameter port missing from %v", candidateNames(cands))
	}
}

func TestCompleteScopeChain(t *testing.T) {
	dir := t.TempDir()
	lines := []string{
		"total = 0",
		"def accumulate(amount):",
		"    local = amount",
		"    ",
	}
	cands := completeAt(t, dir, lines, parser.Position{Line: 4, Column: 4})

	for _, want := range []string{"local", "amount", "accumulate", "total", "len"} {
		if !hasName(cands, want) {
			t.Errorf("%s missing from scope chain completion", want)
		}
	}
}

func TestCompleteStringPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "")
	writeFile(t, dir, "data.json", "")

	lines := []string{`open("da`}
	cands := completeAt(t, dir, lines, parser.Position{Line: 1, Column: 8})

	if !hasName(cands, "data.csv") {
		t.Errorf("data.csv missing from %v", candidateNames(cands))
	}
	if !hasName(cands, "data.json") {
		t.Errorf("data.json missing from %v", candidateNames(cands))
	}
	for _, c := range cands {
		if c.Kind != complete.NamePath {
			t.Errorf("%s kind = %v, want path", c.Name, c.Kind)
		}
	}
}

func TestCompleteRanking(t *testing.T) {
	dir := t.TempDir()
	lines := []string{
		"_private = 1",
		"visible = 2",
		"__special__ = 3",
		"",
	}
	cands := completeAt(t, dir, lines, parser.Position{Line: 4, Column: 0})

	pos := map[string]int{}
	for i, c := range cands {
		pos[c.Name] = i
	}
	if !(pos["visible"] < pos["_private"]) {
		t.Errorf("visible ranked after _private: %v", candidateNames(cands))
	}
	if !(pos["_private"] < pos["__special__"]) {
		t.Errorf("_private ranked after __special__: %v", candidateNames(cands))
	}
}

func TestResolveImportRelativeLevel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/sibling.py", "")
	writeFile(t, dir, "pkg/sub/mod.py", "")

	eng := New([]string{"from .. import "}, Options{Path: filepath.Join(dir, "pkg", "sub", "mod.py")})
	entries := eng.ResolveImport(nil, 2, false)

	found := false
	for _, e := range entries {
		if e.Name == "sibling" {
			found = true
		}
	}
	if !found {
		t.Errorf("sibling missing from relative import, got %v", entries)
	}
}

func TestSignaturesAt(t *testing.T) {
	lines := []string{
		"def send(payload, retries=3):",
		"    pass",
		"",
		"send(",
	}
	eng := New(lines, Options{})
	sigs := eng.SignaturesAt(parser.Position{Line: 4, Column: 5})

	if len(sigs) != 1 {
		t.Fatalf("signatures = %d, want 1", len(sigs))
	}
	if len(sigs[0].Params) != 2 {
		t.Fatalf("params = %v, want payload and retries", sigs[0].Params)
	}
	if sigs[0].Params[0].Name != "payload" || sigs[0].Params[1].Name != "retries" {
		t.Errorf("params = %v", sigs[0].Params)
	}
}

func TestSignaturesSkipSelfAndVarargs(t *testing.T) {
	lines := []string{
		"class Client:",
		"    def call(self, method, *args, timeout=5, **kwargs):",
		"        pass",
		"",
		"c = Client()",
		"c.call(",
	}
	eng := New(lines, Options{})
	sigs := eng.SignaturesAt(parser.Position{Line: 6, Column: 7})

	if len(sigs) != 1 {
		t.Fatalf("signatures = %d, want 1", len(sigs))
	}
	var got []string
	for _, p := range sigs[0].Params {
		got = append(got, p.Name)
	}
	want := []string{"method", "timeout"}
	if len(got) != len(want) {
		t.Fatalf("params = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("param %d = %q, want %q", i, got[i], want[i])
		}
	}
}
