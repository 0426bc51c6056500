package cli

import (
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
)

// Exit codes for the relnotes CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitRuntimeFailure indicates the run failed for a local reason
	ExitRuntimeFailure = 1

	// ExitInvalidArguments indicates invalid command arguments or configuration
	ExitInvalidArguments = 3

	// ExitMissingPrerequisite indicates missing tags or releases to compare
	ExitMissingPrerequisite = 4

	// ExitRemoteFailure indicates GitHub or Linear rejected a request
	ExitRemoteFailure = 6
)

// exitCodeFor maps an error category to its exit code.
func exitCodeFor(category clierrors.ErrorCategory) int {
	switch category {
	case clierrors.Argument, clierrors.Configuration:
		return ExitInvalidArguments
	case clierrors.Prerequisite:
		return ExitMissingPrerequisite
	case clierrors.Remote:
		return ExitRemoteFailure
	default:
		return ExitRuntimeFailure
	}
}
