package publish

import (
	"context"
	"fmt"
	"regexp"
	"slices"

	"golang.org/x/sync/errgroup"
	"pkt.systems/pslog"

	"github.com/ariel-frischer/relnotes/internal/github"
	"github.com/ariel-frischer/relnotes/internal/linear"
	"github.com/ariel-frischer/relnotes/internal/release"
)

// DefaultIssuePattern matches Linear-style identifiers such as ENG-123.
const DefaultIssuePattern = `\b([A-Z][A-Z0-9]+-[0-9]+)\b`

// DefaultConcurrency bounds parallel API calls during issue sync.
const DefaultConcurrency = 4

// PullRequestLister finds the pull requests that carried a commit.
type PullRequestLister interface {
	PullRequestsForCommit(ctx context.Context, sha string) ([]github.PullRequest, error)
}

// IssueMarker moves an issue to done.
type IssueMarker interface {
	MarkDone(ctx context.Context, identifier string) (linear.Outcome, error)
}

// SyncReport lists issue identifiers by what happened to them.
type SyncReport struct {
	Transitioned []string
	AlreadyDone  []string
	NotFound     []string
}

// Total returns the number of issues the sync looked at.
func (r SyncReport) Total() int {
	return len(r.Transitioned) + len(r.AlreadyDone) + len(r.NotFound)
}

// IssueSync marks the issues referenced by merged pull requests as done.
type IssueSync struct {
	prs         PullRequestLister
	tracker     IssueMarker
	pattern     *regexp.Regexp
	concurrency int
}

// NewIssueSync returns an IssueSync. A nil pattern uses
// DefaultIssuePattern; concurrency < 1 uses DefaultConcurrency.
func NewIssueSync(prs PullRequestLister, tracker IssueMarker, pattern *regexp.Regexp, concurrency int) *IssueSync {
	if pattern == nil {
		pattern = regexp.MustCompile(DefaultIssuePattern)
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &IssueSync{prs: prs, tracker: tracker, pattern: pattern, concurrency: concurrency}
}

// CollectIssues returns the de-duplicated issue identifiers referenced by
// merged pull requests containing commits, in commit order.
func (s *IssueSync) CollectIssues(ctx context.Context, commits []release.Commit) ([]string, error) {
	perCommit := make([][]github.PullRequest, len(commits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, c := range commits {
		g.Go(func() error {
			prs, err := s.prs.PullRequestsForCommit(gctx, c.SHA)
			if err != nil {
				return err
			}
			perCommit[i] = prs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seenPR := make(map[int]struct{})
	seenIssue := make(map[string]struct{})
	var ids []string
	for _, prs := range perCommit {
		for _, pr := range prs {
			if !pr.Merged {
				continue
			}
			if _, ok := seenPR[pr.Number]; ok {
				continue
			}
			seenPR[pr.Number] = struct{}{}
			for _, id := range ExtractIssueIDs(s.pattern, pr.Body) {
				if _, ok := seenIssue[id]; ok {
					continue
				}
				seenIssue[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	pslog.Ctx(ctx).Debug("issues referenced by merged pull requests", "pull_requests", len(seenPR), "issues", len(ids))
	return ids, nil
}

// Sync collects the referenced issues and marks each one done.
func (s *IssueSync) Sync(ctx context.Context, commits []release.Commit) (SyncReport, error) {
	ids, err := s.CollectIssues(ctx, commits)
	if err != nil {
		return SyncReport{}, fmt.Errorf("collecting issues: %w", err)
	}

	outcomes := make([]linear.Outcome, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			o, err := s.tracker.MarkDone(gctx, id)
			if err != nil {
				return fmt.Errorf("marking %s done: %w", id, err)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SyncReport{}, err
	}

	log := pslog.Ctx(ctx)
	var report SyncReport
	for i, id := range ids {
		switch outcomes[i] {
		case linear.Transitioned:
			report.Transitioned = append(report.Transitioned, id)
			log.Info("issue marked done", "issue", id)
		case linear.AlreadyDone:
			report.AlreadyDone = append(report.AlreadyDone, id)
			log.Debug("issue already done", "issue", id)
		case linear.NotFound:
			report.NotFound = append(report.NotFound, id)
			log.Warn("issue not found", "issue", id)
		}
	}
	return report, nil
}

// ExtractIssueIDs returns the unique matches of pattern in text in order of
// appearance. When pattern has a capture group, the first group is used.
func ExtractIssueIDs(pattern *regexp.Regexp, text string) []string {
	var ids []string
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		id := m[0]
		if len(m) > 1 && m[1] != "" {
			id = m[1]
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}
