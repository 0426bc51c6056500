package errors

import "fmt"

// NotEnoughTags creates an error when fewer than two tags match the prefix.
func NotEnoughTags(prefix string, err error) *CLIError {
	subject := "tags"
	if prefix != "" {
		subject = fmt.Sprintf("tags starting with %q", prefix)
	}
	return Wrap(err, Prerequisite,
		fmt.Sprintf("need at least two %s to build a changelog", subject),
		"Push the previous release tag (git push --tags)",
		"Check tag_prefix matches your tag naming",
		"In a shallow CI checkout, fetch tags (actions/checkout with fetch-depth: 0)",
	)
}

// ReleaseNotFound creates an error when the release being published does not exist.
func ReleaseNotFound(tag string, err error) *CLIError {
	return Wrap(err, Prerequisite,
		fmt.Sprintf("no release for tag %s", tag),
		"Create the release first, or use --publish create",
		"Check release_tag (defaults to the pushed tag in GitHub Actions)",
	)
}

// NoPreviousRelease creates an error when the release has no predecessor.
func NoPreviousRelease(tag string, err error) *CLIError {
	return Wrap(err, Prerequisite,
		fmt.Sprintf("release %s has no previous release to compare with", tag),
		"Publish the first release notes by hand",
		"Or use --range tags to compare the two latest tags",
	)
}

// InvalidConfig creates an error for configuration that failed validation.
func InvalidConfig(err error) *CLIError {
	return Wrap(err, Configuration,
		"invalid configuration",
		"Inspect the effective configuration with: relnotes config show",
		"Fix the value in .relnotes/config.yml, RELNOTES_* env vars or flags",
	)
}

// NotAGitRepository creates an error when the local source is not a repository.
func NotAGitRepository(path string, err error) *CLIError {
	return Wrap(err, Prerequisite,
		fmt.Sprintf("%s is not a git repository", path),
		"Run relnotes inside a checkout or set --repo-path",
		"Or use --source github to read tags and commits from the API",
	)
}

// GitHubAPIError creates an error for a failed GitHub API call.
func GitHubAPIError(err error) *CLIError {
	return Wrap(err, Remote,
		"GitHub API request failed",
		"Check the token has contents:write (and pull-requests:read for issue sync)",
		"Check repository is owner/name and exists",
		"Re-run with --debug to see each API call",
	)
}

// LinearAPIError creates an error for a failed Linear API call.
func LinearAPIError(err error) *CLIError {
	return Wrap(err, Remote,
		"Linear API request failed",
		"Check LINEAR_API_KEY is a valid personal API key",
		"Check done_state names an existing workflow state",
	)
}

// InvalidPublishMode creates an error for an unknown --publish value.
func InvalidPublishMode(provided string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid publish mode: %s", provided),
		"relnotes generate --publish <update|create|print>",
		"update edits the body of the existing release",
		"create creates a new release named after the tag",
		"print writes the changelog to stdout",
	)
}
