// Package publish delivers a rendered changelog: it edits or creates the
// release for a tag, or prints the body, and can move the issues the
// released pull requests reference to done.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pkt.systems/pslog"

	"github.com/ariel-frischer/relnotes/internal/release"
)

// Mode selects where the changelog goes.
type Mode string

const (
	// ModeUpdate replaces the body of the existing release for the tag.
	ModeUpdate Mode = "update"
	// ModeCreate creates a new release named after the tag.
	ModeCreate Mode = "create"
	// ModePrint only writes the body to the output.
	ModePrint Mode = "print"
)

// Modes returns the valid modes.
func Modes() []Mode {
	return []Mode{ModeUpdate, ModeCreate, ModePrint}
}

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Modes() {
		if m == valid {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown publish mode %q (want update, create or print)", s)
}

// ErrNoDestination is returned when a remote mode runs without a release writer.
var ErrNoDestination = errors.New("no release destination configured")

// ReleaseWriter edits releases on the hosting service.
type ReleaseWriter interface {
	GetReleaseByTag(ctx context.Context, tag string) (release.Release, error)
	UpdateReleaseBody(ctx context.Context, id int64, body string) error
	CreateRelease(ctx context.Context, tag, name, body string) (release.Release, error)
}

// Result reports what Publish did.
type Result struct {
	Mode Mode
	// Release is the release written to. Zero in print mode.
	Release release.Release
}

// Publisher writes changelog bodies.
type Publisher struct {
	releases ReleaseWriter
	out      io.Writer
}

// New returns a Publisher. releases may be nil when only ModePrint is used.
func New(releases ReleaseWriter, out io.Writer) *Publisher {
	return &Publisher{releases: releases, out: out}
}

// Publish delivers body for tag according to mode.
func (p *Publisher) Publish(ctx context.Context, mode Mode, tag, body string) (Result, error) {
	log := pslog.Ctx(ctx).With("mode", string(mode), "tag", tag)

	switch mode {
	case ModePrint:
		if _, err := io.WriteString(p.out, body); err != nil {
			return Result{}, fmt.Errorf("writing changelog: %w", err)
		}
		return Result{Mode: mode}, nil

	case ModeUpdate:
		if p.releases == nil {
			return Result{}, ErrNoDestination
		}
		rel, err := p.releases.GetReleaseByTag(ctx, tag)
		if err != nil {
			return Result{}, fmt.Errorf("finding release for %s: %w", tag, err)
		}
		if err := p.releases.UpdateReleaseBody(ctx, rel.ID, body); err != nil {
			return Result{}, fmt.Errorf("updating release %s: %w", tag, err)
		}
		rel.Body = body
		log.Info("release updated", "release_id", rel.ID)
		return Result{Mode: mode, Release: rel}, nil

	case ModeCreate:
		if p.releases == nil {
			return Result{}, ErrNoDestination
		}
		rel, err := p.releases.CreateRelease(ctx, tag, tag, body)
		if err != nil {
			return Result{}, fmt.Errorf("creating release %s: %w", tag, err)
		}
		log.Info("release created", "release_id", rel.ID)
		return Result{Mode: mode, Release: rel}, nil

	default:
		return Result{}, fmt.Errorf("unknown publish mode %q", mode)
	}
}
