package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v66/github"
)

// PullRequest is the part of a pull request issue sync reads.
type PullRequest struct {
	Number int
	Title  string
	Body   string
	Merged bool
}

// PullRequestsForCommit returns the pull requests that contain sha.
func (c *Client) PullRequestsForCommit(ctx context.Context, sha string) ([]PullRequest, error) {
	prs, err := paginate(ctx, c.pageSize, func(ctx context.Context, opts *gh.ListOptions) ([]*gh.PullRequest, error) {
		page, _, err := c.api.PullRequests.ListPullRequestsWithCommit(ctx, c.owner, c.repo, sha, opts)
		return page, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing pull requests for %s: %w", shortSHA(sha), err)
	}

	out := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		out = append(out, PullRequest{
			Number: pr.GetNumber(),
			Title:  pr.GetTitle(),
			Body:   pr.GetBody(),
			Merged: !pr.GetMergedAt().IsZero(),
		})
	}
	return out, nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
