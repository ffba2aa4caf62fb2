package cli

// Exit codes for the gxctl CLI.
// An aborted init and an already complete project are not failures.
const (
	// ExitSuccess indicates the command finished, including user aborts.
	ExitSuccess = 0

	// ExitFailure indicates a handled error was reported.
	ExitFailure = 1

	// ExitInvalidArguments indicates unknown flags or arguments.
	ExitInvalidArguments = 2
)
