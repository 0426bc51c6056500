package release

import "errors"

var (
	// ErrNotEnoughTags is returned when fewer than two tags match the prefix.
	ErrNotEnoughTags = errors.New("not enough matching tags")
	// ErrReleaseNotFound is returned when the release being published is missing.
	ErrReleaseNotFound = errors.New("release not found")
	// ErrNoPreviousRelease is returned when the published release has no predecessor.
	ErrNoPreviousRelease = errors.New("no previous release")
)
