// Package job defines the Job record: the immutable submission fields,
// the mutable result fields the sandbox executor owns, and the status
// taxonomy used to classify a run.
//
// A Job is mutated by exactly one executor instance across its
// lifetime (ownership transfers at the queue's blocking pop), so it
// is modelled as a plain value moved into the worker goroutine, not a
// shared pointer guarded by a mutex.
package job

import (
	"time"

	"github.com/google/uuid"
)

// Settings holds the resource limits enforced by the sandbox for a
// single run.
type Settings struct {
	CPUTimeLimit  float64 `json:"cpu_time_limit"`
	WallTimeLimit float64 `json:"wall_time_limit"`
	MemoryLimit   int64   `json:"memory_limit"`
	StackLimit    int64   `json:"stack_limit"`
	MaxProcesses  int     `json:"max_processes"`
	MaxFileSize   int64   `json:"max_file_size"`
	EnableNetwork bool    `json:"enable_network"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		CPUTimeLimit:  2.0,
		WallTimeLimit: 5.0,
		MemoryLimit:   128000,
		StackLimit:    64000,
		MaxProcesses:  60,
		MaxFileSize:   4096,
		EnableNetwork: false,
	}
}

// Output holds everything the sandbox observed about a run.
type Output struct {
	Stdout        string `json:"stdout,omitempty"`
	Stderr        string `json:"stderr,omitempty"`
	CompileOutput string `json:"compile_output,omitempty"`
	Time          float64 `json:"time"`
	Memory        int64   `json:"memory"`
	ExitCode      *int    `json:"exit_code,omitempty"`
	Message       string  `json:"message,omitempty"`
}

// Job is the full submission + result record, as stored in the queue
// client's artifact store and mutated in place by the sandbox
// executor.
type Job struct {
	ID             uint64   `json:"id"`
	SourceCode     string   `json:"source_code"`
	Language       Language `json:"language"`
	Stdin          string   `json:"stdin"`
	ExpectedOutput string   `json:"expected_output"`
	Settings       Settings `json:"settings"`
	Status         Status   `json:"status"`

	CreatedAt  int64  `json:"created_at"`
	StartedAt  *int64 `json:"started_at,omitempty"`
	FinishedAt *int64 `json:"finished_at,omitempty"`

	Output Output `json:"output"`
}

// New creates a job with a freshly generated id, the given source and
// language, default settings and Queued status. The id is the low 64
// bits of a random UUIDv4: unique with overwhelming probability,
// stable as a decimal string once assigned.
func New(sourceCode string, language Language) *Job {
	return &Job{
		ID:         newID(),
		SourceCode: sourceCode,
		Language:   language,
		Settings:   DefaultSettings(),
		Status:     StatusQueued,
		CreatedAt:  time.Now().Unix(),
	}
}

func newID() uint64 {
	id := uuid.New()
	var v uint64
	for _, b := range id[8:16] {
		v = v<<8 | uint64(b)
	}
	return v
}

// WithStdin sets the job's stdin and returns the job for chaining.
func (j *Job) WithStdin(stdin string) *Job {
	j.Stdin = stdin
	return j
}

// WithExpectedOutput sets the comparison target and returns the job
// for chaining. An empty expected output disables comparison.
func (j *Job) WithExpectedOutput(expected string) *Job {
	j.ExpectedOutput = expected
	return j
}

// WithLimits overrides the CPU/wall/memory/stack/process limits and
// returns the job for chaining.
func (j *Job) WithLimits(cpuTimeLimit, wallTimeLimit float64, memoryLimit, stackLimit int64, maxProcesses int) *Job {
	j.Settings.CPUTimeLimit = cpuTimeLimit
	j.Settings.WallTimeLimit = wallTimeLimit
	j.Settings.MemoryLimit = memoryLimit
	j.Settings.StackLimit = stackLimit
	j.Settings.MaxProcesses = maxProcesses
	return j
}

// BoxID derives the sandbox box id from the job id. Collisions are
// possible but rare; recovery is the box cleanup the worker performs
// around every run.
func (j *Job) BoxID() int {
	const isolateBoxModulus = 2147483647 // 2^31 - 1
	return int(j.ID % isolateBoxModulus)
}

// MarkProcessing transitions the job to Processing and stamps
// StartedAt. It does not look at the current status: a terminal
// status is overwritten with Processing too, so callers that must not
// downgrade one check Status.Terminal() first.
func (j *Job) MarkProcessing() {
	j.Status = StatusProcessing
	now := time.Now().Unix()
	j.StartedAt = &now
}

// Finish sets the terminal status and stamps FinishedAt.
func (j *Job) Finish(status Status) {
	j.Status = status
	now := time.Now().Unix()
	j.FinishedAt = &now
}
