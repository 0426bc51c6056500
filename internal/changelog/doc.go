// Package changelog renders release notes for a commit range.
//
// This package implements:
//   - The fixed Markdown body published to a release
//   - A terminal preview of the same notes with colors and wrapping
//
// The Markdown shape is fixed: a header naming the application,
// version and date, a compare link, then one paragraph per recognized commit
// type (enhancements before bug fixes). Empty paragraphs are omitted.
package changelog
