package github

import (
	"context"

	gh "github.com/google/go-github/v66/github"
)

// DefaultPageSize is the page size used when none is configured.
// 100 is the maximum most GitHub list endpoints accept.
const DefaultPageSize = 100

// pageFetcher fetches a single page of results.
type pageFetcher[T any] func(ctx context.Context, opts *gh.ListOptions) ([]T, error)

// paginate collects every page from fetch, starting at page 1. It stops as
// soon as a page returns fewer than perPage items.
func paginate[T any](ctx context.Context, perPage int, fetch pageFetcher[T]) ([]T, error) {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	var all []T
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := fetch(ctx, &gh.ListOptions{Page: page, PerPage: perPage})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < perPage {
			logDebug("[github] paginated %d item(s) over %d page(s)", len(all), page)
			return all, nil
		}
	}
}
