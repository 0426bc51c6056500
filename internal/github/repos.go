package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v66/github"

	"github.com/ariel-frischer/relnotes/internal/release"
)

// ListTags returns every tag in the repository in API order.
func (c *Client) ListTags(ctx context.Context) ([]release.Tag, error) {
	tags, err := paginate(ctx, c.pageSize, func(ctx context.Context, opts *gh.ListOptions) ([]*gh.RepositoryTag, error) {
		page, _, err := c.api.Repositories.ListTags(ctx, c.owner, c.repo, opts)
		return page, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing tags of %s: %w", c.Repository(), err)
	}

	out := make([]release.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, release.Tag{
			Name: t.GetName(),
			SHA:  t.GetCommit().GetSHA(),
		})
	}
	return out, nil
}

// ListReleases returns every release, newest first.
func (c *Client) ListReleases(ctx context.Context) ([]release.Release, error) {
	releases, err := paginate(ctx, c.pageSize, func(ctx context.Context, opts *gh.ListOptions) ([]*gh.RepositoryRelease, error) {
		page, _, err := c.api.Repositories.ListReleases(ctx, c.owner, c.repo, opts)
		return page, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing releases of %s: %w", c.Repository(), err)
	}

	out := make([]release.Release, 0, len(releases))
	for _, r := range releases {
		out = append(out, toRelease(r))
	}
	return out, nil
}

// ListCommits returns the commits reachable from to but not from from,
// oldest first, using the compare endpoint.
func (c *Client) ListCommits(ctx context.Context, from, to string) ([]release.Commit, error) {
	commits, err := paginate(ctx, c.pageSize, func(ctx context.Context, opts *gh.ListOptions) ([]*gh.RepositoryCommit, error) {
		cmp, _, err := c.api.Repositories.CompareCommits(ctx, c.owner, c.repo, from, to, opts)
		if err != nil {
			return nil, err
		}
		return cmp.Commits, nil
	})
	if err != nil {
		return nil, fmt.Errorf("comparing %s...%s: %w", from, to, err)
	}

	out := make([]release.Commit, 0, len(commits))
	for _, rc := range commits {
		out = append(out, release.Commit{
			SHA:     rc.GetSHA(),
			Message: rc.GetCommit().GetMessage(),
		})
	}
	return out, nil
}

// ResolveRef returns the commit SHA a tag points at, peeling annotated tags.
func (c *Client) ResolveRef(ctx context.Context, name string) (string, error) {
	ref, _, err := c.api.Git.GetRef(ctx, c.owner, c.repo, "tags/"+name)
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("tag %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("getting ref tags/%s: %w", name, err)
	}

	obj := ref.GetObject()
	if obj.GetType() != "tag" {
		return obj.GetSHA(), nil
	}

	tag, _, err := c.api.Git.GetTag(ctx, c.owner, c.repo, obj.GetSHA())
	if err != nil {
		return "", fmt.Errorf("getting annotated tag %s: %w", name, err)
	}
	return tag.GetObject().GetSHA(), nil
}

// GetReleaseByTag returns the release for tag, or ErrNotFound.
func (c *Client) GetReleaseByTag(ctx context.Context, tag string) (release.Release, error) {
	r, _, err := c.api.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, tag)
	if err != nil {
		if isNotFound(err) {
			return release.Release{}, fmt.Errorf("release for tag %q: %w", tag, ErrNotFound)
		}
		return release.Release{}, fmt.Errorf("getting release %s: %w", tag, err)
	}
	return toRelease(r), nil
}

// UpdateReleaseBody replaces the body of release id.
func (c *Client) UpdateReleaseBody(ctx context.Context, id int64, body string) error {
	_, _, err := c.api.Repositories.EditRelease(ctx, c.owner, c.repo, id, &gh.RepositoryRelease{
		Body: gh.String(body),
	})
	if err != nil {
		return fmt.Errorf("updating release %d: %w", id, err)
	}
	logDebug("[github] updated release %d", id)
	return nil
}

// CreateRelease publishes a new release for tag with the given body.
func (c *Client) CreateRelease(ctx context.Context, tag, name, body string) (release.Release, error) {
	r, _, err := c.api.Repositories.CreateRelease(ctx, c.owner, c.repo, &gh.RepositoryRelease{
		TagName: gh.String(tag),
		Name:    gh.String(name),
		Body:    gh.String(body),
	})
	if err != nil {
		return release.Release{}, fmt.Errorf("creating release %s: %w", tag, err)
	}
	logDebug("[github] created release %d for %s", r.GetID(), tag)
	return toRelease(r), nil
}

func toRelease(r *gh.RepositoryRelease) release.Release {
	return release.Release{
		ID:         r.GetID(),
		TagName:    r.GetTagName(),
		Name:       r.GetName(),
		Body:       r.GetBody(),
		Draft:      r.GetDraft(),
		Prerelease: r.GetPrerelease(),
		CreatedAt:  r.GetCreatedAt().Time,
		HTMLURL:    r.GetHTMLURL(),
	}
}
