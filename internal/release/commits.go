package release

import (
	"context"
	"fmt"
)

// FetchCommits returns the commits in r from src.
func FetchCommits(ctx context.Context, src CommitLister, r Range) ([]Commit, error) {
	if r.From == "" || r.To == "" {
		return nil, fmt.Errorf("incomplete range %q..%q", r.From, r.To)
	}
	commits, err := src.ListCommits(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("listing commits %s..%s: %w", r.FromTag, r.ToTag, err)
	}
	logDebug("[release] %d commit(s) in %s..%s", len(commits), r.FromTag, r.ToTag)
	return commits, nil
}
