package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/ariel-frischer/relnotes/internal/conventional"
)

// SectionStyle defines the color and icon for a changelog paragraph.
type SectionStyle struct {
	Color *color.Color
	Icon  string
}

// sectionStyles maps commit types to their terminal styling.
var sectionStyles = map[conventional.Type]SectionStyle{
	conventional.Feature: {Color: color.New(color.FgGreen), Icon: "✓"},
	conventional.Fix:     {Color: color.New(color.FgYellow), Icon: "⚡"},
}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatTerminal writes a preview of n for humans reading a terminal.
// With Plain set the output is the Markdown body unchanged.
func FormatTerminal(n *Notes, w io.Writer, opts FormatOptions) error {
	if opts.Plain {
		return RenderMarkdown(n, w)
	}

	width := resolveWidth(opts.MaxWidth)

	bold := color.New(color.Bold).SprintFunc()
	if _, err := fmt.Fprintf(w, "%s\n", bold(n.Title())); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	dim := color.New(color.Faint).SprintFunc()
	if n.CompareURL != "" {
		fmt.Fprintf(w, "%s\n", dim(n.CompareURL))
	}
	if n.DeployURL != "" {
		fmt.Fprintf(w, "%s\n", dim("deployed to "+n.DeployURL))
	}

	sections := n.Sections()
	if len(sections) == 0 {
		_, err := fmt.Fprintf(w, "\n%s\n", dim("No changelog entries in range."))
		return err
	}

	for _, s := range sections {
		if err := writeSection(s, w, width); err != nil {
			return fmt.Errorf("formatting %s: %w", s.Title, err)
		}
	}
	return nil
}

// writeSection writes a paragraph header and its wrapped entries.
func writeSection(s Section, w io.Writer, width int) error {
	style := sectionStyles[s.Type]
	colored := style.Color.SprintFunc()

	if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(s.Title)); err != nil {
		return err
	}

	prefix := "  - "
	for _, entry := range s.Entries {
		wrapped := wrapText(entry, width-len(prefix), "    ")
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, wrapped); err != nil {
			return err
		}
	}
	return nil
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText breaks text at spaces so no line exceeds maxWidth runes, joining
// lines with indent. A word longer than maxWidth gets a line of its own.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || utf8.RuneCountInString(text) <= maxWidth {
		return text
	}

	var (
		b       strings.Builder
		lineLen int
	)
	for i, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)
		switch {
		case i == 0:
		case lineLen+1+n > maxWidth:
			b.WriteString("\n" + indent)
			lineLen = 0
		default:
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(word)
		lineLen += n
	}
	return b.String()
}
