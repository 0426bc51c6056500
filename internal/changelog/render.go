package changelog

import (
	"fmt"
	"io"
	"strings"
)

// RenderMarkdown writes the release body for n:
//
//	## <app> <version> (<date>)
//	[Compare changes](<compare url>)
//	Deployed to <deploy url>
//
//	### Enhancements
//	- <entry>
//
//	### Bug fixes
//	- <entry>
//
// The compare and deploy lines are skipped when their URL is empty, and a
// paragraph is skipped when it has no entries.
// The function is idempotent - given the same input, it produces identical output.
func RenderMarkdown(n *Notes, w io.Writer) error {
	if err := renderHeader(n, w); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}

	for _, s := range n.Sections() {
		if err := renderSection(s, w); err != nil {
			return fmt.Errorf("rendering %s: %w", s.Title, err)
		}
	}

	return nil
}

// RenderMarkdownString is a convenience function that renders to a string.
func RenderMarkdownString(n *Notes) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(n, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderHeader writes the title, compare and deploy lines.
func renderHeader(n *Notes, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "## %s\n", n.Title()); err != nil {
		return err
	}
	if n.CompareURL != "" {
		if _, err := fmt.Fprintf(w, "[Compare changes](%s)\n", n.CompareURL); err != nil {
			return err
		}
	}
	if n.DeployURL != "" {
		if _, err := fmt.Fprintf(w, "Deployed to %s\n", n.DeployURL); err != nil {
			return err
		}
	}
	return nil
}

// renderSection writes a single paragraph with its entries.
func renderSection(s Section, w io.Writer) error {
	if _, err := w.Write([]byte("\n### " + s.Title + "\n")); err != nil {
		return err
	}

	for _, entry := range s.Entries {
		if _, err := w.Write([]byte("- " + entry + "\n")); err != nil {
			return err
		}
	}

	return nil
}
