package changelog

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relnotes/internal/conventional"
)

var releaseDate = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func groupsOf(entries map[conventional.Type][]string, order ...conventional.Type) *conventional.Groups {
	g := conventional.NewGroups()
	for _, t := range order {
		for _, text := range entries[t] {
			g.Add(t, conventional.Entry{Text: text})
		}
	}
	return g
}

func TestRenderMarkdownString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		notes *Notes
		want  string
	}{
		"full notes": {
			notes: &Notes{
				App:        "shop",
				Version:    "v1.4.0",
				Date:       releaseDate,
				CompareURL: "https://github.com/acme/shop/compare/v1.3.0...v1.4.0",
				DeployURL:  "https://shop.example.com",
				Groups: groupsOf(map[conventional.Type][]string{
					conventional.Feature: {"Add wishlist", "Add coupons"},
					conventional.Fix:     {"Crash on empty cart"},
				}, conventional.Feature, conventional.Fix),
			},
			want: "## shop v1.4.0 (2026-10-17)\n" +
				"[Compare changes](https://github.com/acme/shop/compare/v1.3.0...v1.4.0)\n" +
				"Deployed to https://shop.example.com\n" +
				"\n### Enhancements\n" +
				"- Add wishlist\n" +
				"- Add coupons\n" +
				"\n### Bug fixes\n" +
				"- Crash on empty cart\n",
		},
		"fixes seen first still render after enhancements": {
			notes: &Notes{
				Version: "v2.0.0",
				Date:    releaseDate,
				Groups: groupsOf(map[conventional.Type][]string{
					conventional.Fix:     {"Fix one"},
					conventional.Feature: {"Feature one"},
				}, conventional.Fix, conventional.Feature),
			},
			want: "## v2.0.0 (2026-10-17)\n" +
				"\n### Enhancements\n" +
				"- Feature one\n" +
				"\n### Bug fixes\n" +
				"- Fix one\n",
		},
		"empty paragraph omitted": {
			notes: &Notes{
				App:     "shop",
				Version: "v1.4.1",
				Date:    releaseDate,
				Groups: groupsOf(map[conventional.Type][]string{
					conventional.Fix: {"Patch"},
				}, conventional.Fix),
			},
			want: "## shop v1.4.1 (2026-10-17)\n" +
				"\n### Bug fixes\n" +
				"- Patch\n",
		},
		"no entries": {
			notes: &Notes{App: "shop", Version: "v1.4.2", Date: releaseDate, Groups: conventional.NewGroups()},
			want:  "## shop v1.4.2 (2026-10-17)\n",
		},
		"nil groups": {
			notes: &Notes{Version: "v0.1.0", Date: releaseDate},
			want:  "## v0.1.0 (2026-10-17)\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := RenderMarkdownString(tt.notes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderMarkdown_Idempotent(t *testing.T) {
	t.Parallel()

	notes := &Notes{
		App:     "shop",
		Version: "v1.0.0",
		Date:    releaseDate,
		Groups:  groupsOf(map[conventional.Type][]string{conventional.Feature: {"A"}}, conventional.Feature),
	}

	first, err := RenderMarkdownString(notes)
	require.NoError(t, err)
	second, err := RenderMarkdownString(notes)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderMarkdown_WriteError(t *testing.T) {
	t.Parallel()

	err := RenderMarkdown(&Notes{Version: "v1", Date: releaseDate}, failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendering header")
}

func TestNotes_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Notes{}).IsEmpty())
	assert.True(t, (&Notes{Groups: conventional.NewGroups()}).IsEmpty())
	assert.False(t, (&Notes{Groups: groupsOf(map[conventional.Type][]string{conventional.Fix: {"x"}}, conventional.Fix)}).IsEmpty())
}

func TestFormatTerminal_PlainMatchesMarkdown(t *testing.T) {
	t.Parallel()

	notes := &Notes{
		App:     "shop",
		Version: "v1.0.0",
		Date:    releaseDate,
		Groups:  groupsOf(map[conventional.Type][]string{conventional.Feature: {"A"}}, conventional.Feature),
	}

	var buf bytes.Buffer
	require.NoError(t, FormatTerminal(notes, &buf, FormatOptions{Plain: true}))
	want, err := RenderMarkdownString(notes)
	require.NoError(t, err)
	assert.Equal(t, want, buf.String())
}

func TestFormatTerminal_Styled(t *testing.T) {
	t.Parallel()

	notes := &Notes{
		App:        "shop",
		Version:    "v1.0.0",
		Date:       releaseDate,
		CompareURL: "https://github.com/acme/shop/compare/a...b",
		Groups: groupsOf(map[conventional.Type][]string{
			conventional.Feature: {"A long entry that needs to wrap across more than one terminal line"},
		}, conventional.Feature),
	}

	var buf bytes.Buffer
	require.NoError(t, FormatTerminal(notes, &buf, FormatOptions{MaxWidth: 30}))
	out := buf.String()
	assert.Contains(t, out, "shop v1.0.0 (2026-10-17)")
	assert.Contains(t, out, "Enhancements")
	assert.Contains(t, out, "\n    ")
}

func TestFormatTerminal_NoEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, FormatTerminal(&Notes{Version: "v1", Date: releaseDate}, &buf, FormatOptions{MaxWidth: 80}))
	assert.Contains(t, buf.String(), "No changelog entries in range.")
}

func TestWrapText(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		text     string
		maxWidth int
		want     string
	}{
		"short text unchanged": {text: "short", maxWidth: 20, want: "short"},
		"wraps at space":       {text: "alpha beta gamma", maxWidth: 10, want: "alpha beta\n  gamma"},
		"no width":             {text: "alpha beta gamma", maxWidth: 0, want: "alpha beta gamma"},
		"long word own line":   {text: "see https://example.com/a/very/long/path now", maxWidth: 12, want: "see\n  https://example.com/a/very/long/path\n  now"},
		"counts runes":         {text: "café über naïve", maxWidth: 10, want: "café über\n  naïve"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, wrapText(tt.text, tt.maxWidth, "  "))
		})
	}
}
