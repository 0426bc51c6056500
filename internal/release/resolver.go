package release

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
)

// RefResolver turns a tag name into the SHA of the commit it points at.
// Sources that return tags without SHAs implement it so ranges can be
// expressed as commit identifiers.
type RefResolver interface {
	ResolveRef(ctx context.Context, name string) (string, error)
}

// ResolveFromTags returns the range between the two newest tags whose
// names start with prefix. An empty prefix matches every tag.
func ResolveFromTags(ctx context.Context, src TagLister, prefix string) (Range, error) {
	tags, err := src.ListTags(ctx)
	if err != nil {
		return Range{}, fmt.Errorf("listing tags: %w", err)
	}

	matching := FilterTags(tags, prefix)
	if len(matching) < 2 {
		return Range{}, fmt.Errorf("%w: found %d tag(s) with prefix %q, need 2", ErrNotEnoughTags, len(matching), prefix)
	}
	SortTags(matching, prefix)

	latest, previous := matching[0], matching[1]
	logDebug("[release] tag range %s..%s", previous.Name, latest.Name)

	r := Range{
		From:    previous.SHA,
		To:      latest.SHA,
		FromTag: previous.Name,
		ToTag:   latest.Name,
	}
	return completeRange(ctx, src, r)
}

// ResolveFromRelease returns the range between the release tagged tag and
// the newest older, non-draft release whose tag carries the same prefix.
func ResolveFromRelease(ctx context.Context, src ReleaseLister, tag, prefix string) (Range, error) {
	releases, err := src.ListReleases(ctx)
	if err != nil {
		return Range{}, fmt.Errorf("listing releases: %w", err)
	}

	idx := slices.IndexFunc(releases, func(r Release) bool { return r.TagName == tag })
	if idx < 0 {
		return Range{}, fmt.Errorf("%w: no release for tag %q", ErrReleaseNotFound, tag)
	}

	for _, prev := range releases[idx+1:] {
		if prev.Draft || !strings.HasPrefix(prev.TagName, prefix) {
			continue
		}
		logDebug("[release] release range %s..%s", prev.TagName, tag)
		return completeRange(ctx, src, Range{FromTag: prev.TagName, ToTag: tag})
	}

	return Range{}, fmt.Errorf("%w: release %q is the oldest with prefix %q", ErrNoPreviousRelease, tag, prefix)
}

// FilterTags keeps the tags whose names start with prefix, preserving order.
func FilterTags(tags []Tag, prefix string) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if strings.HasPrefix(t.Name, prefix) {
			out = append(out, t)
		}
	}
	return out
}

// SortTags orders tags newest first. When every name is a semantic version
// after stripping prefix the versions decide, so a hotfix on an older line
// pushed later never counts as newest; otherwise tag dates decide when every
// tag has one; otherwise the source order is kept.
func SortTags(tags []Tag, prefix string) {
	switch {
	case allSemver(tags, prefix):
		slices.SortStableFunc(tags, func(a, b Tag) int {
			return semver.Compare(tagVersion(b.Name, prefix), tagVersion(a.Name, prefix))
		})
	case allDated(tags):
		slices.SortStableFunc(tags, func(a, b Tag) int {
			return b.Date.Compare(a.Date)
		})
	}
}

// tagVersion strips prefix and normalizes the remainder to the "vX.Y.Z"
// form the semver package expects.
func tagVersion(name, prefix string) string {
	v := strings.TrimPrefix(name, prefix)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func allSemver(tags []Tag, prefix string) bool {
	for _, t := range tags {
		if !semver.IsValid(tagVersion(t.Name, prefix)) {
			return false
		}
	}
	return true
}

func allDated(tags []Tag) bool {
	for _, t := range tags {
		if t.Date.IsZero() {
			return false
		}
	}
	return true
}

// completeRange fills in missing commit SHAs when the source can resolve
// refs. Both lookups run concurrently; the first failure aborts.
func completeRange(ctx context.Context, src any, r Range) (Range, error) {
	resolver, ok := src.(RefResolver)
	if !ok || (r.From != "" && r.To != "") {
		if r.From == "" {
			r.From = r.FromTag
		}
		if r.To == "" {
			r.To = r.ToTag
		}
		return r, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.From == "" {
		g.Go(func() error {
			sha, err := resolver.ResolveRef(gctx, r.FromTag)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", r.FromTag, err)
			}
			r.From = sha
			return nil
		})
	}
	if r.To == "" {
		g.Go(func() error {
			sha, err := resolver.ResolveRef(gctx, r.ToTag)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", r.ToTag, err)
			}
			r.To = sha
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Range{}, err
	}
	return r, nil
}
