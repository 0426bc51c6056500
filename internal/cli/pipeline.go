package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"pkt.systems/pslog"

	"github.com/ariel-frischer/relnotes/internal/build"
	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/config"
	"github.com/ariel-frischer/relnotes/internal/conventional"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/github"
	"github.com/ariel-frischer/relnotes/internal/linear"
	"github.com/ariel-frischer/relnotes/internal/progress"
	"github.com/ariel-frischer/relnotes/internal/publish"
	"github.com/ariel-frischer/relnotes/internal/release"
)

// pipeline runs range resolution, commit fetching, classification,
// rendering, publishing and issue sync for one configuration.
type pipeline struct {
	cfg     *config.Configuration
	out     io.Writer
	display *progress.Display
	now     func() time.Time

	gh    *github.Client
	local *git.Repository

	// fetchTags fetches tags from origin before a local range is resolved.
	fetchTags bool
}

// outcome is what a pipeline run produced.
type outcome struct {
	Range   release.Range
	Commits []release.Commit
	Notes   *changelog.Notes
	Body    string
	Publish publish.Result
	Issues  publish.SyncReport
}

// newPipeline opens the sources cfg needs.
func newPipeline(cfg *config.Configuration, out io.Writer, display *progress.Display) (*pipeline, error) {
	p := &pipeline{cfg: cfg, out: out, display: display, now: time.Now}

	if cfg.Repository != "" {
		gh, err := github.New(github.Options{
			Token:      cfg.Token,
			Repository: cfg.Repository,
			BaseURL:    cfg.APIURL,
			PageSize:   cfg.PageSize,
			UserAgent:  build.UserAgent(),
		})
		if err != nil {
			return nil, &config.ValidationError{FilePath: "config", Field: "repository", Message: err.Error()}
		}
		p.gh = gh
	}

	if cfg.Source == config.SourceGit {
		repo, err := git.Open(cfg.RepoPath)
		if err != nil {
			return nil, err
		}
		p.local = repo
	}

	return p, nil
}

// tagSource returns where tags are listed from.
func (p *pipeline) tagSource() release.TagLister {
	if p.local != nil {
		return p.local
	}
	return p.gh
}

// commitSource returns where commits are listed from.
func (p *pipeline) commitSource() release.CommitLister {
	if p.local != nil {
		return p.local
	}
	return p.gh
}

// resolveRange selects the commit range for the configured range mode.
func (p *pipeline) resolveRange(ctx context.Context) (release.Range, error) {
	if p.cfg.RangeMode == config.RangeRelease {
		if p.gh == nil {
			return release.Range{}, publish.ErrNoDestination
		}
		return release.ResolveFromRelease(ctx, p.gh, p.cfg.ReleaseTag, p.cfg.TagPrefix)
	}
	if p.local != nil && p.fetchTags {
		if err := p.local.FetchTags(ctx, "origin", p.cfg.Token); err != nil {
			return release.Range{}, err
		}
	}
	return release.ResolveFromTags(ctx, p.tagSource(), p.cfg.TagPrefix)
}

// publishTag is the tag whose release receives the notes.
func (p *pipeline) publishTag(r release.Range) string {
	if p.cfg.RangeMode == config.RangeRelease {
		return p.cfg.ReleaseTag
	}
	return r.ToTag
}

// compareURL links the range on GitHub, or is empty without a repository.
func (p *pipeline) compareURL(r release.Range) string {
	if p.gh == nil {
		return ""
	}
	return p.gh.CompareURL(refName(r.FromTag, r.From), refName(r.ToTag, r.To))
}

func refName(tag, sha string) string {
	if tag != "" {
		return tag
	}
	return sha
}

// step runs fn as a named progress step.
func (p *pipeline) step(name string, fn func() error) error {
	p.display.Start(name)
	if err := fn(); err != nil {
		p.display.Fail()
		return err
	}
	p.display.Done()
	return nil
}

// resolve resolves the range and builds the notes without publishing.
func (p *pipeline) resolve(ctx context.Context) (outcome, error) {
	log := pslog.Ctx(ctx)
	if p.local != nil {
		log = log.With("repository", p.local.Root())
	}
	var o outcome

	err := p.step("Resolving release range", func() error {
		r, err := p.resolveRange(ctx)
		o.Range = r
		return err
	})
	if err != nil {
		return o, err
	}
	log.Info("range resolved", "from", refName(o.Range.FromTag, o.Range.From), "to", refName(o.Range.ToTag, o.Range.To))

	err = p.step("Fetching commits", func() error {
		commits, err := release.FetchCommits(ctx, p.commitSource(), o.Range)
		o.Commits = commits
		return err
	})
	if err != nil {
		return o, err
	}

	groups := conventional.Classify(o.Commits, conventional.Filter{
		Scope:           p.cfg.Scope,
		DependentScopes: p.cfg.DependentScopes,
	})
	log.Info("commits classified", "commits", len(o.Commits), "entries", groups.Len(), "scope", p.cfg.Scope)

	o.Notes = &changelog.Notes{
		App:        p.cfg.AppName,
		Version:    p.publishTag(o.Range),
		Date:       p.now(),
		CompareURL: p.compareURL(o.Range),
		DeployURL:  p.cfg.DeployURL,
		Groups:     groups,
	}
	body, err := changelog.RenderMarkdownString(o.Notes)
	if err != nil {
		return o, err
	}
	o.Body = body
	return o, nil
}

// publish delivers the rendered body in mode.
func (p *pipeline) publish(ctx context.Context, o *outcome, mode publish.Mode) error {
	var releases publish.ReleaseWriter
	if p.gh != nil {
		releases = p.gh
	}
	tag := p.publishTag(o.Range)

	return p.step("Publishing release notes", func() error {
		res, err := publish.New(releases, p.out).Publish(ctx, mode, tag, o.Body)
		if errors.Is(err, github.ErrNotFound) {
			return clierrors.ReleaseNotFound(tag, fmt.Errorf("%w: %w", release.ErrReleaseNotFound, err))
		}
		o.Publish = res
		return err
	})
}

// syncIssues moves the issues of merged pull requests in range to the done state.
func (p *pipeline) syncIssues(ctx context.Context, o *outcome) error {
	if !p.cfg.IssueSyncEnabled() {
		return nil
	}
	if p.gh == nil {
		return publish.ErrNoDestination
	}
	pattern, err := regexp.Compile(p.cfg.IssuePattern)
	if err != nil {
		return &config.ValidationError{FilePath: "config", Field: "issue_pattern", Message: err.Error()}
	}

	client := linear.New(linear.Options{
		APIKey:    p.cfg.LinearAPIKey,
		URL:       p.cfg.LinearURL,
		UserAgent: build.UserAgent(),
	})
	tracker := linear.NewTracker(client, p.cfg.DoneState)
	issues := publish.NewIssueSync(p.gh, tracker, pattern, p.cfg.Concurrency)

	return p.step("Updating Linear issues", func() error {
		report, err := issues.Sync(ctx, o.Commits)
		o.Issues = report
		if err != nil {
			return err
		}
		pslog.Ctx(ctx).Info("issue sync finished",
			"transitioned", len(report.Transitioned),
			"already_done", len(report.AlreadyDone),
			"not_found", len(report.NotFound))
		return nil
	})
}
