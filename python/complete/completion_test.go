package complete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/kai/python/parser"
)

// fakeScope serves a fixed name list for every position.
type fakeScope struct {
	names []NameEntry
}

func (f *fakeScope) Filters(ctx Context, pos parser.Position, flowScope *parser.Node) []Filter {
	return []Filter{FilterFunc(func() []NameEntry { return f.names })}
}

// fakeValue exposes a fixed member list.
type fakeValue struct {
	members  []NameEntry
	instance bool
}

func (v *fakeValue) IsStub() bool     { return false }
func (v *fakeValue) IsInstance() bool { return v.instance }
func (v *fakeValue) Filters(origin *parser.Node) []Filter {
	return []Filter{FilterFunc(func() []NameEntry { return v.members })}
}
func (v *fakeValue) InstanceFilters() []Filter        { return v.Filters(nil) }
func (v *fakeValue) FunctionSlot(string) []Value      { return nil }
func (v *fakeValue) AsContext() Context               { return nil }
func (v *fakeValue) ReturnStatements() []*parser.Node { return nil }

// fakeInference resolves every leaf to the same values.
type fakeInference struct {
	values []Value
}

func (f *fakeInference) ContextAt(pos parser.Position) Context          { return nil }
func (f *fakeInference) InferLeaf(ctx Context, leaf *parser.Node) []Value { return f.values }
func (f *fakeInference) ClassValue(node *parser.Node) Value             { return nil }

func completerFor(lines []string, providers Providers) *Completer {
	providers.Grammar = parser.Parse(lines)
	return New(providers, DefaultSettings())
}

func names(cands []*Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Name
	}
	return out
}

func TestCompleteKeywordsOnEmptyLine(t *testing.T) {
	c := completerFor([]string{""}, Providers{})
	cands := c.Complete([]string{""}, parser.Position{Line: 1, Column: 0}, false)

	got := names(cands)
	assert.Contains(t, got, "if")
	assert.Contains(t, got, "import")
	assert.Contains(t, got, "def")
	for _, cand := range cands {
		assert.Equal(t, NameKeyword, cand.Kind, "candidate %s", cand.Name)
	}
}

func TestCompleteScopeNamesWithPrefix(t *testing.T) {
	lines := []string{"f"}
	c := completerFor(lines, Providers{
		Scope:     &fakeScope{names: []NameEntry{{Name: "frobnicate", Kind: NameFunction}, {Name: "other", Kind: NameStatement}}},
		Inference: &fakeInference{},
	})
	cands := c.Complete(lines, parser.Position{Line: 1, Column: 1}, false)

	got := names(cands)
	assert.Contains(t, got, "frobnicate")
	assert.Contains(t, got, "for")
	assert.NotContains(t, got, "other")

	for _, cand := range cands {
		if cand.Name == "frobnicate" {
			assert.Equal(t, "robnicate", cand.Complete)
		}
	}
}

func TestCompleteTrailerMembers(t *testing.T) {
	lines := []string{"obj."}
	c := completerFor(lines, Providers{
		Inference: &fakeInference{values: []Value{
			&fakeValue{members: []NameEntry{
				{Name: "close", Kind: NameFunction},
				{Name: "name", Kind: NameStatement},
			}},
		}},
	})
	cands := c.Complete(lines, parser.Position{Line: 1, Column: 4}, false)

	require.Len(t, cands, 2)
	assert.Equal(t, "close", cands[0].Name)
	assert.Equal(t, "name", cands[1].Name)
}

func TestCompleteDanglingDotSuppressesEverything(t *testing.T) {
	lines := []string{"x = 1 +."}
	c := completerFor(lines, Providers{
		Scope:     &fakeScope{names: []NameEntry{{Name: "x", Kind: NameStatement}}},
		Inference: &fakeInference{},
	})
	cands := c.Complete(lines, parser.Position{Line: 1, Column: 8}, false)
	assert.Empty(t, cands)
}

func TestCompleteFlowContinuation(t *testing.T) {
	lines := []string{
		"for item in items:",
		"    pass",
		"el",
	}
	c := completerFor(lines, Providers{})
	cands := c.Complete(lines, parser.Position{Line: 3, Column: 2}, false)

	got := names(cands)
	assert.Equal(t, []string{"else"}, got)
}

func TestCompleteFlowContinuationNested(t *testing.T) {
	lines := []string{
		"for item in items:",
		"    if item:",
		"        pass",
		"    el",
	}
	c := completerFor(lines, Providers{})
	cands := c.Complete(lines, parser.Position{Line: 4, Column: 6}, false)

	got := names(cands)
	assert.Contains(t, got, "elif")
	assert.Contains(t, got, "else")
}

func TestCompleteMisalignedFlowGetsNothing(t *testing.T) {
	lines := []string{
		"for item in items:",
		"    el",
	}
	c := completerFor(lines, Providers{})
	cands := c.Complete(lines, parser.Position{Line: 2, Column: 6}, false)
	assert.Empty(t, names(cands))
}

func TestCompleteNewNameAfterAs(t *testing.T) {
	lines := []string{"import os as "}
	c := completerFor(lines, Providers{
		Scope:     &fakeScope{names: []NameEntry{{Name: "existing", Kind: NameStatement}}},
		Inference: &fakeInference{},
	})
	cands := c.Complete(lines, parser.Position{Line: 1, Column: 13}, false)
	assert.Empty(t, cands)
}

func TestCompleteNoKeywordsMidWord(t *testing.T) {
	// After "..." no keyword harvesting happens even though the line ends
	// in a dot.
	lines := []string{"..."}
	c := completerFor(lines, Providers{})
	cands := c.Complete(lines, parser.Position{Line: 1, Column: 3}, false)
	for _, cand := range cands {
		assert.NotEqual(t, NameKeyword, cand.Kind)
	}
}

func TestCompleteIdempotent(t *testing.T) {
	lines := []string{
		"for item in items:",
		"    pass",
		"el",
	}
	c := completerFor(lines, Providers{})
	pos := parser.Position{Line: 3, Column: 2}
	first := names(c.Complete(lines, pos, false))
	second := names(c.Complete(lines, pos, false))
	assert.Equal(t, first, second)
}

func TestFilterNamesPrefix(t *testing.T) {
	entries := []NameEntry{
		{Name: "foo"}, {Name: "foobar"}, {Name: "bar"},
	}
	cands := filterNames(DefaultSettings(), entries, "foo", false)

	require.Len(t, cands, 2)
	assert.Equal(t, "", cands[0].Complete)
	assert.Equal(t, "bar", cands[1].Complete)
}

func TestFilterNamesCaseInsensitive(t *testing.T) {
	entries := []NameEntry{{Name: "Frobnicate"}}

	cands := filterNames(Settings{CaseInsensitive: true}, entries, "fro", false)
	require.Len(t, cands, 1)
	assert.Equal(t, "Frobnicate", cands[0].Name)

	cands = filterNames(Settings{CaseInsensitive: false}, entries, "fro", false)
	assert.Empty(t, cands)
}

func TestFilterNamesFuzzy(t *testing.T) {
	entries := []NameEntry{{Name: "foobar"}, {Name: "refined"}}
	cands := filterNames(DefaultSettings(), entries, "fbr", true)

	require.Len(t, cands, 1)
	assert.Equal(t, "foobar", cands[0].Name)
	assert.Equal(t, "", cands[0].Complete, "fuzzy matches carry no completion text")
}

func TestFilterNamesDuplicates(t *testing.T) {
	entries := []NameEntry{
		{Name: "twice", Kind: NameFunction},
		{Name: "twice", Kind: NameStatement},
	}

	cands := filterNames(DefaultSettings(), entries, "", false)
	require.Len(t, cands, 1)
	assert.Len(t, cands[0].SameName, 1)

	cands = filterNames(Settings{NoDuplicates: false}, entries, "", false)
	assert.Len(t, cands, 2)
}

func TestSortCandidates(t *testing.T) {
	cands := []*Candidate{
		{Name: "__dunder__"},
		{Name: "_private"},
		{Name: "visible"},
		{Name: "Alpha"},
	}
	sortCandidates(cands)

	got := names(cands)
	assert.Equal(t, []string{"Alpha", "visible", "_private", "__dunder__"}, got)
}

func TestLikeNameAt(t *testing.T) {
	tests := []struct {
		line string
		col  int
		want string
	}{
		{"foo", 3, "foo"},
		{"foo.ba", 6, "ba"},
		{"foo.", 4, ""},
		{"", 0, ""},
		{"x = yes", 7, "yes"},
	}
	for _, tt := range tests {
		got := likeNameAt([]string{tt.line}, parser.Position{Line: 1, Column: tt.col})
		assert.Equal(t, tt.want, got, "line %q col %d", tt.line, tt.col)
	}
}

func TestHarvestKeywords(t *testing.T) {
	tests := []struct {
		line string
		col  int
		want bool
	}{
		{"", 0, true},
		{"if x", 2, false},
		{"x ", 2, true},
		{"x.", 2, true},
		{"...", 3, false},
		{"x;", 2, true},
	}
	for _, tt := range tests {
		got := harvestKeywords([]string{tt.line}, parser.Position{Line: 1, Column: tt.col})
		assert.Equal(t, tt.want, got, "line %q col %d", tt.line, tt.col)
	}
}
