package engine

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xargo-dev/xargo/internal/config"
	"github.com/xargo-dev/xargo/internal/sysroot"
)

// Report writes an engine error to w in the layered format
//
//	error: <msg>
//	caused by: <msg>
//	...
//
// and returns the exit code: a failed child build's own code, 1 otherwise.
// With RUST_BACKTRACE=1 the wrapped stack trace is appended.
func Report(w io.Writer, err error) int {
	msgs := chain(err)
	fmt.Fprintf(w, "error: %s\n", msgs[0])
	for _, msg := range msgs[1:] {
		fmt.Fprintf(w, "caused by: %s\n", msg)
	}

	if config.ShowBacktrace() {
		fmt.Fprintf(w, "%+v\n", err)
	} else {
		fmt.Fprintln(w, "note: run with `RUST_BACKTRACE=1` for a backtrace")
	}

	var buildErr *sysroot.BuildError
	if errors.As(err, &buildErr) {
		return buildErr.Code
	}
	return 1
}

// chain splits a wrapped error into per-layer messages, outermost first.
func chain(err error) []string {
	var msgs []string
	for err != nil {
		msg := err.Error()
		next := errors.Unwrap(err)
		if next != nil {
			// Stack-only wrappers repeat their cause's message; skip them.
			if msg == next.Error() {
				err = next
				continue
			}
			msg = strings.TrimSuffix(msg, ": "+next.Error())
		}
		msgs = append(msgs, msg)
		err = next
	}
	if len(msgs) == 0 {
		msgs = []string{"unknown error"}
	}
	return msgs
}
