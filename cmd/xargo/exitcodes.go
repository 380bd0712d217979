package main

import "os"

// Exit codes. Engine failures exit 1; otherwise the child build driver's
// exit status is reported verbatim.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0

	// ExitGeneral indicates an engine error
	ExitGeneral = 1
)

// exitWithCode exits with the specified exit code
func exitWithCode(code int) {
	os.Exit(code)
}
