// Package classify maps isolator termination metadata and an
// expected-output comparison to a job verdict. It is a pure function
// with no I/O, kept in its own package so it can be exhaustively
// table-tested independently of the sandbox executor that calls it.
package classify

import (
	"strings"

	"github.com/BV-BRC/cwe-judge/internal/job"
)

// IsolatorStatus is the isolator's own one-letter-or-absent verdict,
// as reported in the metadata file's "status" key.
type IsolatorStatus string

const (
	StatusNone     IsolatorStatus = ""
	StatusTimeout  IsolatorStatus = "TO"
	StatusSignal   IsolatorStatus = "SG"
	StatusNonzero  IsolatorStatus = "RE"
	StatusInternal IsolatorStatus = "XX"
)

// Classify combines the isolator's reported status and exit code with
// the expected-output comparison to produce the final verdict. The
// comparison trims whole buffers on both sides, never per line; an
// empty expectation disables it.
func Classify(isolatorStatus IsolatorStatus, exitCode int, stdout, expected string) job.Status {
	switch isolatorStatus {
	case StatusTimeout:
		return job.StatusTimeLimitExceeded
	case StatusSignal:
		return job.NewRuntimeError(job.RuntimeKindFromExitCode(exitCode))
	case StatusNonzero:
		return job.NewRuntimeError(job.RuntimeKindNZEC)
	case StatusInternal:
		return job.StatusInternalError
	default:
		if strings.TrimSpace(expected) == "" || strings.TrimSpace(stdout) == strings.TrimSpace(expected) {
			return job.StatusAccepted
		}
		return job.StatusWrongAnswer
	}
}
