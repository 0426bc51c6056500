// Package git reads tags and history from a local repository for changelog
// generation. It uses the go-git library so no git CLI is needed, which keeps
// the tool working in minimal CI containers.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/ariel-frischer/relnotes/internal/release"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// ErrNotRepository is returned by Open when path is not inside a repository.
var ErrNotRepository = git.ErrRepositoryNotExists

// DefaultFetchTimeout bounds FetchTags when the caller's context has no deadline.
const DefaultFetchTimeout = 60 * time.Second

// Repository is a local checkout used as a tag and commit source.
type Repository struct {
	repo *git.Repository
	root string
}

// Open opens the repository containing path, walking up to find .git.
// An empty path means the current working directory.
func Open(path string) (*Repository, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Repository{repo: repo, root: root}, nil
}

// openRepo opens a git repository at the specified path or current working directory.
// DetectDotGit lets callers point at any directory inside the checkout.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// Root returns the worktree root of the repository.
func (r *Repository) Root() string {
	return r.root
}

// ListTags returns every tag with the commit it points at, newest first.
// Annotated tags are dated by their tagger, lightweight tags by the commit.
func (r *Repository) ListTags(ctx context.Context) ([]release.Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var tags []release.Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sha, when, err := r.peel(ref.Hash())
		if err != nil {
			return fmt.Errorf("reading tag %s: %w", ref.Name().Short(), err)
		}
		tags = append(tags, release.Tag{
			Name: ref.Name().Short(),
			SHA:  sha.String(),
			Date: when,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(tags, func(a, b release.Tag) int {
		return b.Date.Compare(a.Date)
	})
	logDebug("[git] ListTags: found %d tags", len(tags))
	return tags, nil
}

// ResolveRef returns the commit a tag, branch or SHA points at.
func (r *Repository) ResolveRef(_ context.Context, name string) (string, error) {
	h, err := r.resolve(name)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// ListCommits returns the commits reachable from to but not from from,
// oldest first, matching `git log from..to`.
func (r *Repository) ListCommits(ctx context.Context, from, to string) ([]release.Commit, error) {
	fromHash, err := r.resolve(from)
	if err != nil {
		return nil, err
	}
	toHash, err := r.resolve(to)
	if err != nil {
		return nil, err
	}

	hidden := make(map[plumbing.Hash]struct{})
	if err := r.walk(ctx, fromHash, func(c *object.Commit) {
		hidden[c.Hash] = struct{}{}
	}); err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", from, err)
	}

	var commits []release.Commit
	if err := r.walk(ctx, toHash, func(c *object.Commit) {
		if _, ok := hidden[c.Hash]; ok {
			return
		}
		commits = append(commits, release.Commit{SHA: c.Hash.String(), Message: c.Message})
	}); err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", to, err)
	}

	slices.Reverse(commits)
	logDebug("[git] ListCommits: %d commits in %s..%s", len(commits), from, to)
	return commits, nil
}

// walk visits every commit reachable from start.
func (r *Repository) walk(ctx context.Context, start plumbing.Hash, visit func(*object.Commit)) error {
	iter, err := r.repo.Log(&git.LogOptions{From: start, Order: git.LogOrderCommitterTime})
	if err != nil {
		return err
	}
	defer iter.Close()

	return iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		visit(c)
		return nil
	})
}

// resolve turns a revision into a commit hash, peeling annotated tags.
func (r *Repository) resolve(rev string) (plumbing.Hash, error) {
	if plumbing.IsHash(rev) {
		return plumbing.NewHash(rev), nil
	}
	if ref, err := r.repo.Tag(rev); err == nil {
		h, _, err := r.peel(ref.Hash())
		return h, err
	}
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving %q: %w", rev, err)
	}
	return *h, nil
}

// peel returns the commit behind h and the date to order it by.
func (r *Repository) peel(h plumbing.Hash) (plumbing.Hash, time.Time, error) {
	tag, err := r.repo.TagObject(h)
	switch {
	case err == nil:
		commit, err := tag.Commit()
		if err != nil {
			return plumbing.ZeroHash, time.Time{}, err
		}
		return commit.Hash, tag.Tagger.When, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		commit, err := r.repo.CommitObject(h)
		if err != nil {
			return plumbing.ZeroHash, time.Time{}, err
		}
		return commit.Hash, commit.Committer.When, nil
	default:
		return plumbing.ZeroHash, time.Time{}, err
	}
}

// FetchTags fetches all tags from remote. Shallow CI checkouts often lack
// them. token authenticates HTTPS remotes. "Already up-to-date" is not an error.
func (r *Repository) FetchTags(ctx context.Context, remoteName, token string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFetchTimeout)
		defer cancel()
	}

	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("remote %q: %w", remoteName, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return fmt.Errorf("remote %q has no url", remoteName)
	}

	logDebug("[git] fetching tags from remote '%s' (%s)", remoteName, urls[0])
	err = r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		Auth:       getAuthForURL(urls[0], token),
		Tags:       git.AllTags,
		RefSpecs:   []config.RefSpec{"+refs/tags/*:refs/tags/*"},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetching tags from %s: %w", remoteName, err)
	}
	return nil
}

// getAuthForURL returns the appropriate authentication method for a remote URL.
// SSH URLs use SSH agent auth, HTTPS URLs use token when set.
func getAuthForURL(url, token string) transport.AuthMethod {
	if isSSHURL(url) {
		if strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) == "" {
			return nil
		}
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	// GitHub accepts a token as the password with any non-empty username.
	if token != "" {
		return &http.BasicAuth{Username: "x-access-token", Password: token}
	}
	return nil
}

// isSSHURL checks if a URL is an SSH URL.
// Detects git@ (SCP-style), ssh://, and git+ssh:// schemes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}
