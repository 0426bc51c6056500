package release

import (
	"context"
	"time"
)

// Tag is a named reference to a commit.
// Date is zero when the source cannot tell when the tag was created.
type Tag struct {
	Name string
	SHA  string
	Date time.Time
}

// Commit is a single commit in a range.
type Commit struct {
	SHA     string
	Message string
}

// Release is a published (or draft) release on the hosting service.
type Release struct {
	ID         int64
	TagName    string
	Name       string
	Body       string
	Draft      bool
	Prerelease bool
	CreatedAt  time.Time
	HTMLURL    string
}

// Range identifies the commits between two references.
// From is exclusive and To is inclusive, matching `git log From..To`.
type Range struct {
	From    string
	To      string
	FromTag string
	ToTag   string
}

// TagLister lists tags, newest first where the source knows the order.
type TagLister interface {
	ListTags(ctx context.Context) ([]Tag, error)
}

// ReleaseLister lists releases, newest first.
type ReleaseLister interface {
	ListReleases(ctx context.Context) ([]Release, error)
}

// CommitLister lists the commits reachable from to but not from from.
type CommitLister interface {
	ListCommits(ctx context.Context, from, to string) ([]Commit, error)
}
