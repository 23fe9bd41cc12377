package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0 // Clean exit
	ExitUserError     = 2 // Invalid arguments or configuration
	ExitInputError    = 3 // Input document rejected (malformed JSON or missing fields)
	ExitInternalError = 4 // Unexpected internal error (rendering, storage)
)
