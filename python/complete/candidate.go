package complete

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Candidate is one entry of the final completion list. Complete holds the
// text still to be inserted once the user accepts, i.e. the name minus the
// part already typed; it is empty in fuzzy mode, where no common prefix is
// guaranteed. SameName collects other equally-valid origins of an
// identically-displayed completion when duplicate suppression is on.
type Candidate struct {
	Name     string
	Complete string
	Kind     NameKind
	Detail   string
	SameName []*Candidate
}

// Settings are the global matching switches.
type Settings struct {
	// CaseInsensitive folds case on both candidate and like-name before
	// comparison.
	CaseInsensitive bool
	// NoDuplicates merges candidates sharing (name, completion) into one,
	// recording the extras on SameName.
	NoDuplicates bool
}

// DefaultSettings matches case-insensitively and suppresses duplicates.
func DefaultSettings() Settings {
	return Settings{CaseInsensitive: true, NoDuplicates: true}
}

// StartMatch reports whether name begins with likeName.
func StartMatch(name, likeName string) bool {
	return strings.HasPrefix(name, likeName)
}

// FuzzyMatch reports whether every character of likeName appears in name in
// order, not necessarily contiguously.
func FuzzyMatch(name, likeName string) bool {
	return fuzzy.Match(likeName, name)
}

type candidateKey struct {
	name     string
	complete string
}

// filterNames matches raw name entries against the like-name, builds
// candidates and applies duplicate suppression. Input order is preserved for
// the surviving candidates.
func filterNames(settings Settings, entries []NameEntry, likeName string, isFuzzy bool) []*Candidate {
	like := likeName
	if settings.CaseInsensitive {
		like = strings.ToLower(like)
	}

	seen := make(map[candidateKey]*Candidate)
	var out []*Candidate
	for _, entry := range entries {
		name := entry.Name
		if settings.CaseInsensitive {
			name = strings.ToLower(name)
		}
		var match bool
		if isFuzzy {
			match = FuzzyMatch(name, like)
		} else {
			match = StartMatch(name, like)
		}
		if !match {
			continue
		}
		cand := &Candidate{
			Name:   entry.Name,
			Kind:   entry.Kind,
			Detail: entry.Detail,
		}
		if !isFuzzy {
			cand.Complete = entry.Name[len(likeName):]
		}
		key := candidateKey{name: cand.Name, complete: cand.Complete}
		if prev, ok := seen[key]; ok && settings.NoDuplicates {
			prev.SameName = append(prev.SameName, cand)
			continue
		}
		if _, ok := seen[key]; !ok {
			seen[key] = cand
		}
		out = append(out, cand)
	}
	return out
}

// sortCandidates orders candidates the way they are presented: ordinary
// names alphabetically, then single-underscore names, then dunder names.
func sortCandidates(cands []*Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		ad, bd := strings.HasPrefix(a.Name, "__"), strings.HasPrefix(b.Name, "__")
		if ad != bd {
			return !ad
		}
		au, bu := strings.HasPrefix(a.Name, "_"), strings.HasPrefix(b.Name, "_")
		if au != bu {
			return !au
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}
