package credentials

import "errors"

// Resolution failures are all terminal for the single-shot invocation.
// Callers match them with errors.Is; none are retried internally.
var (
	// ErrParse reports a malformed profile file or section.
	ErrParse = errors.New("malformed profile file")

	// ErrProfileNotFound reports a named profile absent from the file.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrCyclicRoleChain reports a source_profile chain that revisits a
	// profile instead of bottoming out in static credentials.
	ErrCyclicRoleChain = errors.New("cyclic role chain")

	// ErrNoCredentials reports that no source yielded credentials.
	ErrNoCredentials = errors.New("no AWS credentials found")

	// ErrMissingRegion reports that no region could be resolved from the
	// CLI, profile, or environment.
	ErrMissingRegion = errors.New("no AWS region configured")

	// ErrAssumeRole reports a rejected or unreachable role-assumption
	// exchange.
	ErrAssumeRole = errors.New("assume role failed")
)
