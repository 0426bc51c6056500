package publish

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relnotes/internal/github"
	"github.com/ariel-frischer/relnotes/internal/linear"
	"github.com/ariel-frischer/relnotes/internal/release"
)

type fakePRs struct {
	bySHA map[string][]github.PullRequest
	err   error
}

func (f *fakePRs) PullRequestsForCommit(_ context.Context, sha string) ([]github.PullRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bySHA[sha], nil
}

type fakeTracker struct {
	mu       sync.Mutex
	outcomes map[string]linear.Outcome
	calls    []string
	err      error
}

func (f *fakeTracker) MarkDone(_ context.Context, id string) (linear.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.err != nil {
		return 0, f.err
	}
	return f.outcomes[id], nil
}

func rangeCommits(shas ...string) []release.Commit {
	out := make([]release.Commit, len(shas))
	for i, s := range shas {
		out[i] = release.Commit{SHA: s, Message: "feat: " + s}
	}
	return out
}

func TestExtractIssueIDs(t *testing.T) {
	t.Parallel()

	def := regexp.MustCompile(DefaultIssuePattern)
	tests := map[string]struct {
		pattern *regexp.Regexp
		text    string
		want    []string
	}{
		"single": {
			pattern: def,
			text:    "Fixes ENG-12",
			want:    []string{"ENG-12"},
		},
		"several with duplicates": {
			pattern: def,
			text:    "Closes ENG-1, OPS-22 and ENG-1 again",
			want:    []string{"ENG-1", "OPS-22"},
		},
		"lowercase ignored": {
			pattern: def,
			text:    "see eng-4",
		},
		"url form": {
			pattern: def,
			text:    "https://linear.app/acme/issue/ENG-9/some-title",
			want:    []string{"ENG-9"},
		},
		"pattern without groups": {
			pattern: regexp.MustCompile(`#[0-9]+`),
			text:    "refs #3 and #4",
			want:    []string{"#3", "#4"},
		},
		"custom capture group": {
			pattern: regexp.MustCompile(`Linear: ([A-Z]+-\d+)`),
			text:    "Linear: WEB-77",
			want:    []string{"WEB-77"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractIssueIDs(tt.pattern, tt.text))
		})
	}
}

func TestIssueSync_CollectIssues(t *testing.T) {
	t.Parallel()

	prs := &fakePRs{bySHA: map[string][]github.PullRequest{
		"a1": {{Number: 1, Body: "Fixes ENG-1", Merged: true}},
		"b2": {{Number: 1, Body: "Fixes ENG-1", Merged: true}},
		"c3": {{Number: 2, Body: "Closes ENG-2 and ENG-1", Merged: true}},
		"d4": {{Number: 3, Body: "WIP ENG-3", Merged: false}},
		"e5": nil,
	}}

	s := NewIssueSync(prs, &fakeTracker{}, nil, 2)
	ids, err := s.CollectIssues(context.Background(), rangeCommits("a1", "b2", "c3", "d4", "e5"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ENG-1", "ENG-2"}, ids)
}

func TestIssueSync_Sync(t *testing.T) {
	t.Parallel()

	prs := &fakePRs{bySHA: map[string][]github.PullRequest{
		"a1": {{Number: 1, Body: "ENG-1 ENG-2 ENG-3", Merged: true}},
	}}
	tracker := &fakeTracker{outcomes: map[string]linear.Outcome{
		"ENG-1": linear.Transitioned,
		"ENG-2": linear.AlreadyDone,
		"ENG-3": linear.NotFound,
	}}

	report, err := NewIssueSync(prs, tracker, nil, 0).Sync(context.Background(), rangeCommits("a1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ENG-1"}, report.Transitioned)
	assert.Equal(t, []string{"ENG-2"}, report.AlreadyDone)
	assert.Equal(t, []string{"ENG-3"}, report.NotFound)
	assert.Equal(t, 3, report.Total())
	assert.ElementsMatch(t, []string{"ENG-1", "ENG-2", "ENG-3"}, tracker.calls)
}

func TestIssueSync_Errors(t *testing.T) {
	t.Parallel()

	t.Run("pull request lookup fails", func(t *testing.T) {
		t.Parallel()

		prs := &fakePRs{err: errors.New("boom")}
		_, err := NewIssueSync(prs, &fakeTracker{}, nil, 1).Sync(context.Background(), rangeCommits("a1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "collecting issues: boom")
	})

	t.Run("tracker fails", func(t *testing.T) {
		t.Parallel()

		prs := &fakePRs{bySHA: map[string][]github.PullRequest{
			"a1": {{Number: 1, Body: "ENG-1", Merged: true}},
		}}
		tracker := &fakeTracker{err: errors.New("unauthorized")}
		_, err := NewIssueSync(prs, tracker, nil, 1).Sync(context.Background(), rangeCommits("a1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "marking ENG-1 done: unauthorized")
	})
}

func TestIssueSync_NoCommits(t *testing.T) {
	t.Parallel()

	report, err := NewIssueSync(&fakePRs{}, &fakeTracker{}, nil, 4).Sync(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Total())
}
