package cli

import (
	"errors"

	"github.com/ariel-frischer/relnotes/internal/config"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/github"
	"github.com/ariel-frischer/relnotes/internal/linear"
	"github.com/ariel-frischer/relnotes/internal/publish"
	"github.com/ariel-frischer/relnotes/internal/release"
)

// classify turns any error from a command into a CLIError with remediation.
func classify(err error, cfg *config.Configuration) *clierrors.CLIError {
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var (
		prefix, tag, repoPath string
	)
	if cfg != nil {
		prefix, tag, repoPath = cfg.TagPrefix, cfg.ReleaseTag, cfg.RepoPath
	}

	var (
		validationErr *config.ValidationError
		linearErr     *linear.ResponseError
	)
	switch {
	case errors.Is(err, release.ErrNotEnoughTags):
		return clierrors.NotEnoughTags(prefix, err)
	case errors.Is(err, release.ErrReleaseNotFound):
		return clierrors.ReleaseNotFound(tag, err)
	case errors.Is(err, release.ErrNoPreviousRelease):
		return clierrors.NoPreviousRelease(tag, err)
	case errors.As(err, &validationErr), errors.Is(err, publish.ErrNoDestination):
		return clierrors.InvalidConfig(err)
	case errors.Is(err, git.ErrNotRepository):
		return clierrors.NotAGitRepository(repoPath, err)
	case errors.As(err, &linearErr), errors.Is(err, linear.ErrStateNotFound):
		return clierrors.LinearAPIError(err)
	case github.IsAPIError(err):
		return clierrors.GitHubAPIError(err)
	default:
		return clierrors.Wrap(err, clierrors.Runtime, "")
	}
}
