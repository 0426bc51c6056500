package conventional

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ariel-frischer/relnotes/internal/release"
)

// Type is a changelog-relevant commit type.
type Type string

const (
	// Feature commits are listed as enhancements.
	Feature Type = "feat"
	// Fix commits are listed as bug fixes.
	Fix Type = "fix"
)

// RecognizedTypes returns the types that appear in a changelog, in render order.
func RecognizedTypes() []Type {
	return []Type{Feature, Fix}
}

// IsRecognized reports whether t appears in a changelog.
func IsRecognized(t string) bool {
	return slices.Contains(RecognizedTypes(), Type(t))
}

// Filter selects commits by scope.
type Filter struct {
	// Scope is the target scope. Empty matches only unscoped commits.
	Scope string
	// DependentScopes are aggregated into the target scope unless the
	// commit is marked internal.
	DependentScopes []string
}

// Match reports whether c belongs in the changelog for f.Scope.
func (f Filter) Match(c Commit) bool {
	if c.Scope == f.Scope {
		return true
	}
	return !c.Internal && slices.Contains(f.DependentScopes, c.Scope)
}

// Entry is one changelog line and the commit it came from.
type Entry struct {
	Text   string
	Commit Commit
}

// Groups maps commit types to entries, remembering the order types were
// first seen.
type Groups struct {
	order   []Type
	entries map[Type][]Entry
}

// NewGroups returns an empty Groups.
func NewGroups() *Groups {
	return &Groups{entries: make(map[Type][]Entry)}
}

// Add appends e under t.
func (g *Groups) Add(t Type, e Entry) {
	if _, ok := g.entries[t]; !ok {
		g.order = append(g.order, t)
	}
	g.entries[t] = append(g.entries[t], e)
}

// Types returns the types in insertion order.
func (g *Groups) Types() []Type {
	return slices.Clone(g.order)
}

// Entries returns the entries recorded for t.
func (g *Groups) Entries(t Type) []Entry {
	return g.entries[t]
}

// Len returns the total number of entries.
func (g *Groups) Len() int {
	n := 0
	for _, e := range g.entries {
		n += len(e)
	}
	return n
}

// Classify parses commits, drops those that are not changelog material or
// fall outside the filter's scopes, and groups the rest by type.
func Classify(commits []release.Commit, f Filter) *Groups {
	groups := NewGroups()
	for _, rc := range commits {
		c, ok := Parse(rc.Message)
		if !ok || !IsRecognized(c.Type) || c.Subject == "" {
			continue
		}
		if !f.Match(c) {
			continue
		}
		c.SHA = rc.SHA
		groups.Add(Type(c.Type), Entry{Text: CapitalizeFirst(c.Subject), Commit: c})
	}
	logDebug("[conventional] kept %d of %d commit(s)", groups.Len(), len(commits))
	return groups
}

// CapitalizeFirst upper-cases the first character of s and leaves the
// rest untouched.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ParseScopes splits a comma-separated scope list, dropping blanks.
func ParseScopes(list string) []string {
	var out []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for classification.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}
