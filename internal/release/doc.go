// Package release resolves the commit range a changelog covers.
//
// A range is found either by comparing the two newest tags that share a
// prefix, or by locating the release being published together with its
// predecessor. Tag, release and commit data come from a source (the GitHub
// API or a local repository) through the small lister interfaces declared
// here, so the resolver never depends on a concrete client.
package release
