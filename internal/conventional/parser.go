package conventional

import (
	"sort"
	"strings"

	cc "github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"
)

// internalToken marks commits in a dependent scope that must not surface in
// the target scope's changelog.
const internalToken = "internal-commit"

// Commit is a parsed conventional commit.
type Commit struct {
	SHA      string
	Type     string
	Scope    string
	Subject  string
	Body     string
	Footer   string
	Breaking bool
	// Internal is set when the message carries an Internal-commit marker.
	Internal bool
}

// machineOptions accept every conventional type so non-changelog commits
// still parse; best effort keeps the header when the body is malformed.
var machineOptions = []cc.MachineOption{
	parser.WithTypes(cc.TypesConventional),
	parser.WithBestEffort(),
}

// Parse parses message. It returns false when the header does not follow
// the grammar at all.
func Parse(message string) (Commit, bool) {
	msg := normalize(message)
	if msg == "" {
		return Commit{}, false
	}

	res, _ := parser.NewMachine(machineOptions...).Parse([]byte(msg))
	parsed, ok := res.(*cc.ConventionalCommit)
	if !ok || parsed == nil || parsed.Type == "" {
		return Commit{}, false
	}

	c := Commit{
		Type:     strings.ToLower(parsed.Type),
		Subject:  strings.TrimSpace(parsed.Description),
		Breaking: parsed.Exclamation,
		Internal: hasInternalMarker(msg),
	}
	if parsed.Scope != nil {
		c.Scope = strings.TrimSpace(*parsed.Scope)
	}
	if parsed.Body != nil {
		c.Body = strings.TrimSpace(*parsed.Body)
	}
	c.Footer = formatFooters(parsed.Footers)
	for key := range parsed.Footers {
		if isBreakingKey(key) {
			c.Breaking = true
		}
	}
	return c, true
}

// normalize converts CRLF line endings and trims surrounding whitespace.
func normalize(message string) string {
	return strings.TrimSpace(strings.ReplaceAll(message, "\r\n", "\n"))
}

// hasInternalMarker reports whether any line after the header starts with
// the Internal-commit token, in any case.
func hasInternalMarker(msg string) bool {
	_, rest, found := strings.Cut(msg, "\n")
	if !found {
		return false
	}
	for _, line := range strings.Split(rest, "\n") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), internalToken) {
			return true
		}
	}
	return false
}

func isBreakingKey(key string) bool {
	return strings.EqualFold(key, "breaking-change") || strings.EqualFold(key, "breaking change")
}

// formatFooters renders footers as "key: value" lines in key order.
func formatFooters(footers map[string][]string) string {
	if len(footers) == 0 {
		return ""
	}
	keys := make([]string, 0, len(footers))
	for k := range footers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, v := range footers[k] {
			lines = append(lines, k+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}
