// Package conventional classifies commit messages written in the
// Conventional Commits format. Parsing is delegated to the
// go-conventionalcommits grammar; this package only decides which commits
// belong in a changelog and groups them by type.
package conventional
