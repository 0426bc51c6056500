package release

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	tags     []Tag
	releases []Release
	commits  []Commit
	refs     map[string]string
	err      error
	resolves atomic.Int32
}

func (f *fakeSource) ListTags(context.Context) ([]Tag, error) {
	return f.tags, f.err
}

func (f *fakeSource) ListReleases(context.Context) ([]Release, error) {
	return f.releases, f.err
}

func (f *fakeSource) ListCommits(_ context.Context, _, _ string) ([]Commit, error) {
	return f.commits, f.err
}

// resolvingSource adds ref resolution to fakeSource.
type resolvingSource struct {
	*fakeSource
}

func (r resolvingSource) ResolveRef(_ context.Context, name string) (string, error) {
	r.resolves.Add(1)
	sha, ok := r.refs[name]
	if !ok {
		return "", errors.New("unknown ref " + name)
	}
	return sha, nil
}

func TestResolveFromTags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tags     []Tag
		prefix   string
		wantFrom string
		wantTo   string
		wantErr  error
	}{
		"semver order beats source order": {
			tags: []Tag{
				{Name: "v1.2.0", SHA: "c"},
				{Name: "v1.10.0", SHA: "d"},
				{Name: "v1.9.1", SHA: "b"},
			},
			wantFrom: "v1.9.1",
			wantTo:   "v1.10.0",
		},
		"prefix filters other apps": {
			tags: []Tag{
				{Name: "api-v2.0.0", SHA: "a2"},
				{Name: "web-v1.1.0", SHA: "w2"},
				{Name: "api-v1.0.0", SHA: "a1"},
				{Name: "web-v1.0.0", SHA: "w1"},
			},
			prefix:   "web-",
			wantFrom: "web-v1.0.0",
			wantTo:   "web-v1.1.0",
		},
		"versions without v are normalized": {
			tags: []Tag{
				{Name: "app@1.0.0", SHA: "x"},
				{Name: "app@1.0.1", SHA: "y"},
			},
			prefix:   "app@",
			wantFrom: "app@1.0.0",
			wantTo:   "app@1.0.1",
		},
		"non semver keeps source order": {
			tags: []Tag{
				{Name: "release-b", SHA: "2"},
				{Name: "release-a", SHA: "1"},
			},
			prefix:   "release-",
			wantFrom: "release-a",
			wantTo:   "release-b",
		},
		"single matching tag": {
			tags:    []Tag{{Name: "v1.0.0", SHA: "a"}, {Name: "other", SHA: "b"}},
			prefix:  "v",
			wantErr: ErrNotEnoughTags,
		},
		"no tags": {
			wantErr: ErrNotEnoughTags,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, err := ResolveFromTags(context.Background(), &fakeSource{tags: tt.tags}, tt.prefix)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, r.FromTag)
			assert.Equal(t, tt.wantTo, r.ToTag)
			assert.NotEmpty(t, r.From)
			assert.NotEmpty(t, r.To)
		})
	}
}

func TestResolveFromTags_ListError(t *testing.T) {
	t.Parallel()

	_, err := ResolveFromTags(context.Background(), &fakeSource{err: errors.New("boom")}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing tags")
}

func TestSortTags_ByDate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tags := []Tag{
		{Name: "nightly-b", Date: now.Add(-time.Hour)},
		{Name: "nightly-c", Date: now},
		{Name: "nightly-a", Date: now.Add(-2 * time.Hour)},
	}
	SortTags(tags, "nightly-")

	assert.Equal(t, "nightly-c", tags[0].Name)
	assert.Equal(t, "nightly-b", tags[1].Name)
	assert.Equal(t, "nightly-a", tags[2].Name)
}

func TestSortTags_VersionBeatsDate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tags := []Tag{
		{Name: "v1.9.1", Date: now},
		{Name: "v2.0.0", Date: now.Add(-time.Hour)},
		{Name: "v1.9.0", Date: now.Add(-2 * time.Hour)},
	}
	SortTags(tags, "v")

	assert.Equal(t, []string{"v2.0.0", "v1.9.1", "v1.9.0"}, []string{tags[0].Name, tags[1].Name, tags[2].Name})
}

func TestResolveFromRelease(t *testing.T) {
	t.Parallel()

	releases := []Release{
		{TagName: "web-v1.3.0"},
		{TagName: "web-v1.2.0", Draft: true},
		{TagName: "api-v4.0.0"},
		{TagName: "web-v1.1.0"},
		{TagName: "web-v1.0.0"},
	}

	tests := map[string]struct {
		tag      string
		prefix   string
		wantFrom string
		wantErr  error
	}{
		"skips drafts and other prefixes": {
			tag:      "web-v1.3.0",
			prefix:   "web-",
			wantFrom: "web-v1.1.0",
		},
		"empty prefix takes next release": {
			tag:      "web-v1.3.0",
			wantFrom: "api-v4.0.0",
		},
		"oldest release": {
			tag:     "web-v1.0.0",
			prefix:  "web-",
			wantErr: ErrNoPreviousRelease,
		},
		"unknown release": {
			tag:     "web-v9.9.9",
			wantErr: ErrReleaseNotFound,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r, err := ResolveFromRelease(context.Background(), &fakeSource{releases: releases}, tt.tag, tt.prefix)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, r.FromTag)
			assert.Equal(t, tt.tag, r.ToTag)
			// Without a ref resolver the tag names stand in for SHAs.
			assert.Equal(t, tt.wantFrom, r.From)
			assert.Equal(t, tt.tag, r.To)
		})
	}
}

func TestResolveFromRelease_ResolvesRefs(t *testing.T) {
	t.Parallel()

	src := resolvingSource{&fakeSource{
		releases: []Release{{TagName: "v2.0.0"}, {TagName: "v1.0.0"}},
		refs:     map[string]string{"v2.0.0": "sha2", "v1.0.0": "sha1"},
	}}

	r, err := ResolveFromRelease(context.Background(), src, "v2.0.0", "v")
	require.NoError(t, err)
	assert.Equal(t, "sha1", r.From)
	assert.Equal(t, "sha2", r.To)
	assert.Equal(t, int32(2), src.resolves.Load())
}

func TestResolveFromRelease_RefFailure(t *testing.T) {
	t.Parallel()

	src := resolvingSource{&fakeSource{
		releases: []Release{{TagName: "v2.0.0"}, {TagName: "v1.0.0"}},
		refs:     map[string]string{"v2.0.0": "sha2"},
	}}

	_, err := ResolveFromRelease(context.Background(), src, "v2.0.0", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving v1.0.0")
}

func TestFetchCommits(t *testing.T) {
	t.Parallel()

	src := &fakeSource{commits: []Commit{{SHA: "a", Message: "feat: one"}, {SHA: "b", Message: "fix: two"}}}

	commits, err := FetchCommits(context.Background(), src, Range{From: "x", To: "y"})
	require.NoError(t, err)
	assert.Equal(t, []Commit{{SHA: "a", Message: "feat: one"}, {SHA: "b", Message: "fix: two"}}, commits)

	_, err = FetchCommits(context.Background(), src, Range{To: "y"})
	require.Error(t, err)

	_, err = FetchCommits(context.Background(), &fakeSource{err: errors.New("exit status 128")}, Range{From: "x", To: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 128")
}
