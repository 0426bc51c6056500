package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// palette holds the styling used by FormatError. fatih/color already
// returns plain text when output is not a terminal or NO_COLOR is set.
type palette struct {
	label, message, category, fix, bullet, usage func(a ...any) string
}

var (
	colored = palette{
		label:    color.New(color.FgRed, color.Bold).SprintFunc(),
		message:  color.New(color.FgRed).SprintFunc(),
		category: color.New(color.FgYellow).SprintFunc(),
		fix:      color.New(color.FgGreen, color.Bold).SprintFunc(),
		bullet:   color.New(color.FgGreen).SprintFunc(),
		usage:    color.New(color.FgCyan).SprintFunc(),
	}
	plain = palette{
		label: fmt.Sprint, message: fmt.Sprint, category: fmt.Sprint,
		fix: fmt.Sprint, bullet: fmt.Sprint, usage: fmt.Sprint,
	}
)

// FormatError renders err as a colored block:
//
//	Error [Prerequisite Error]: need at least two tags
//
//	To fix this:
//	  • Push the previous release tag
func FormatError(err *CLIError) string {
	return format(err, colored)
}

// FormatErrorPlain renders err like FormatError without any styling.
func FormatErrorPlain(err *CLIError) string {
	return format(err, plain)
}

func format(err *CLIError, p palette) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]: %s\n", p.label("Error"), p.category(err.Category), p.message(err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s %s\n", p.usage("Usage:"), p.usage(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", p.fix("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", p.bullet("•"), step)
		}
	}
	return sb.String()
}

// FprintError writes the colored form of err to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}
