package job

import "fmt"

// RuntimeKind narrows a RuntimeError verdict to the signal or exit
// condition that produced it.
type RuntimeKind int

const (
	RuntimeKindUnset RuntimeKind = iota
	RuntimeKindSIGSEGV
	RuntimeKindSIGXFSZ
	RuntimeKindSIGFPE
	RuntimeKindSIGABRT
	RuntimeKindNZEC
	RuntimeKindOther
)

func (k RuntimeKind) String() string {
	switch k {
	case RuntimeKindSIGSEGV:
		return "SIGSEGV"
	case RuntimeKindSIGXFSZ:
		return "SIGXFSZ"
	case RuntimeKindSIGFPE:
		return "SIGFPE"
	case RuntimeKindSIGABRT:
		return "SIGABRT"
	case RuntimeKindNZEC:
		return "NZEC"
	case RuntimeKindOther:
		return "Other"
	default:
		return "Unset"
	}
}

// Kind is the tag of a Status. RuntimeError carries a RuntimeKind;
// every other kind is a simple terminal or transient verdict.
type Kind int

const (
	Queued Kind = iota
	Processing
	Accepted
	WrongAnswer
	TimeLimitExceeded
	CompilationError
	RuntimeError
	InternalError
	ExecFormatError
)

// Status is the tagged verdict of a job. It is never flattened to a
// free-form string on the wire; RuntimeKind is carried as its own
// field so clients can switch on it without string matching.
type Status struct {
	Kind    Kind
	Runtime RuntimeKind
}

// ID returns the stable 1..14 integer the client view exposes.
func (s Status) ID() int {
	switch s.Kind {
	case Queued:
		return 1
	case Processing:
		return 2
	case Accepted:
		return 3
	case WrongAnswer:
		return 4
	case TimeLimitExceeded:
		return 5
	case CompilationError:
		return 6
	case RuntimeError:
		switch s.Runtime {
		case RuntimeKindSIGSEGV:
			return 7
		case RuntimeKindSIGXFSZ:
			return 8
		case RuntimeKindSIGFPE:
			return 9
		case RuntimeKindSIGABRT:
			return 10
		case RuntimeKindNZEC:
			return 11
		default:
			return 12
		}
	case InternalError:
		return 13
	case ExecFormatError:
		return 14
	default:
		return 0
	}
}

// Description is the human-readable text paired with ID in the client view.
func (s Status) Description() string {
	switch s.Kind {
	case Queued:
		return "In Queue"
	case Processing:
		return "Processing"
	case Accepted:
		return "Accepted"
	case WrongAnswer:
		return "Wrong Answer"
	case TimeLimitExceeded:
		return "Time Limit Exceeded"
	case CompilationError:
		return "Compilation Error"
	case RuntimeError:
		return fmt.Sprintf("Runtime Error (%s)", s.Runtime)
	case InternalError:
		return "Internal Error"
	case ExecFormatError:
		return "Exec Format Error"
	default:
		return "Unknown"
	}
}

func (s Status) String() string {
	return s.Description()
}

// Terminal reports whether the status is a final verdict that a
// worker must never overwrite with Processing again.
func (s Status) Terminal() bool {
	return s.Kind != Queued && s.Kind != Processing
}

// NewRuntimeError builds a RuntimeError status of the given kind.
func NewRuntimeError(kind RuntimeKind) Status {
	return Status{Kind: RuntimeError, Runtime: kind}
}

// Simple status constructors for the non-parametrised kinds.
var (
	StatusQueued            = Status{Kind: Queued}
	StatusProcessing        = Status{Kind: Processing}
	StatusAccepted          = Status{Kind: Accepted}
	StatusWrongAnswer       = Status{Kind: WrongAnswer}
	StatusTimeLimitExceeded = Status{Kind: TimeLimitExceeded}
	StatusCompilationError  = Status{Kind: CompilationError}
	StatusInternalError     = Status{Kind: InternalError}
	StatusExecFormatError   = Status{Kind: ExecFormatError}
)

// runtimeKindFromExitCode maps a signal-carrying exit code to its
// RuntimeKind.
func runtimeKindFromExitCode(exitCode int) RuntimeKind {
	switch exitCode {
	case 11:
		return RuntimeKindSIGSEGV
	case 25:
		return RuntimeKindSIGXFSZ
	case 8:
		return RuntimeKindSIGFPE
	case 6:
		return RuntimeKindSIGABRT
	default:
		return RuntimeKindOther
	}
}

// RuntimeKindFromExitCode exposes the signal/exit-code mapping used by
// the classifier so callers outside this package (tests, the
// classifier itself) can reuse it without duplicating the table.
func RuntimeKindFromExitCode(exitCode int) RuntimeKind {
	return runtimeKindFromExitCode(exitCode)
}
