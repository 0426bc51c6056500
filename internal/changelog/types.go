package changelog

import (
	"time"

	"github.com/ariel-frischer/relnotes/internal/conventional"
)

// DateLayout is the format of the date in the notes header.
const DateLayout = "2006-01-02"

// Notes is everything needed to render one release's changelog.
type Notes struct {
	// App names the application the release belongs to. Optional.
	App string
	// Version is the release version, usually the tag name.
	Version string
	// Date is rendered as YYYY-MM-DD.
	Date time.Time
	// CompareURL links to the diff between the previous and this release.
	CompareURL string
	// DeployURL, when set, is where this release is running.
	DeployURL string
	// Groups holds the classified entries.
	Groups *conventional.Groups
}

// Section is one rendered paragraph: a title and its bullet lines.
type Section struct {
	Type    conventional.Type
	Title   string
	Entries []string
}

// sectionTitles maps commit types to their paragraph titles.
var sectionTitles = map[conventional.Type]string{
	conventional.Feature: "Enhancements",
	conventional.Fix:     "Bug fixes",
}

// Sections returns the non-empty paragraphs of n in render order.
// The order is fixed by conventional.RecognizedTypes, not by the order
// commits were seen.
func (n *Notes) Sections() []Section {
	if n.Groups == nil {
		return nil
	}

	var sections []Section
	for _, t := range conventional.RecognizedTypes() {
		entries := n.Groups.Entries(t)
		if len(entries) == 0 {
			continue
		}
		lines := make([]string, len(entries))
		for i, e := range entries {
			lines[i] = e.Text
		}
		sections = append(sections, Section{Type: t, Title: sectionTitles[t], Entries: lines})
	}
	return sections
}

// IsEmpty reports whether n has no entries to render.
func (n *Notes) IsEmpty() bool {
	return len(n.Sections()) == 0
}

// Title returns the header text: app, version and date.
func (n *Notes) Title() string {
	title := n.Version
	if n.App != "" {
		title = n.App + " " + n.Version
	}
	return title + " (" + n.Date.Format(DateLayout) + ")"
}
