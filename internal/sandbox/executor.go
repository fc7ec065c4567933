// Package sandbox drives the external isolate binary through the
// per-job phase sequence: box init, file setup, optional compile,
// run, output collection, metadata parsing, classification, and
// persistence.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BV-BRC/cwe-judge/internal/classify"
	"github.com/BV-BRC/cwe-judge/internal/job"
)

// ErrInternal reports a transient sandbox failure: box init failed,
// input files could not be written, an isolate invocation could not
// start, or the metadata file is missing. The InternalError verdict
// has already been written to the job and persisted by the time it is
// returned; the worker pool uses the non-nil error to drive its
// bounded retries, each of which re-inits the box.
var ErrInternal = errors.New("sandbox: internal error")

// Persister is the subset of the queue client the executor needs to
// write a job record back. Depending on an interface here (rather than
// *queue.Client directly) keeps this package free of any knowledge of
// how or where jobs are keyed.
type Persister interface {
	Store(ctx context.Context, key string, j *job.Job, ttl time.Duration) error
}

// Executor drives one job at a time through the isolator. It is safe
// to share across goroutines (it holds no per-job state between
// Execute calls), but each job is only ever touched by the single
// worker goroutine that popped it off the queue.
type Executor struct {
	cfg   Config
	store Persister
	key   func(id uint64) string
}

// NewExecutor creates an Executor. keyFn derives the store key from a
// job id; pass the same function the submit façade uses so Check
// reads back what Execute wrote.
func NewExecutor(cfg Config, store Persister, keyFn func(id uint64) string) *Executor {
	return &Executor{cfg: cfg, store: store, key: keyFn}
}

// Execute runs the full phase sequence against j, mutating it in
// place and persisting the result. Every branch first writes a status
// into j and attempts one persist. A nil return is a terminal verdict
// the worker must not retry (CompilationError and the classified
// program outcomes); transient failures persist InternalError and
// return an error wrapping ErrInternal so the worker retries.
func (e *Executor) Execute(ctx context.Context, j *job.Job) error {
	boxID := j.BoxID()

	// Phase 1: mark Processing.
	j.MarkProcessing()

	// Phase 2: init, preceded by a best-effort cleanup that reclaims a
	// box left behind under the same id; its error is ignored.
	_ = e.CleanupBox(ctx, boxID)
	boxDir, err := e.initBox(ctx, boxID)
	if err != nil {
		return e.finishInternalError(ctx, j, fmt.Sprintf("isolate init failed: %v", err))
	}

	// Phase 3: file setup.
	if err := e.writeInputFiles(boxDir, j); err != nil {
		return e.finishInternalError(ctx, j, fmt.Sprintf("file setup failed: %v", err))
	}

	metadataPath := filepath.Join(boxDir, "metadata")

	// Phase 4: compile, if required.
	if j.Language.HasCompileStep() {
		compileOutput, ok, err := e.compile(ctx, boxID, metadataPath, j)
		if err != nil {
			return e.finishInternalError(ctx, j, fmt.Sprintf("compile invocation failed: %v", err))
		}
		if !ok {
			j.Output.CompileOutput = compileOutput
			j.Finish(job.StatusCompilationError)
			return e.persist(ctx, j)
		}
	}

	// Phase 5: run.
	if err := e.run(ctx, boxID, metadataPath, j); err != nil {
		return e.finishInternalError(ctx, j, fmt.Sprintf("run invocation failed: %v", err))
	}

	// Phase 6: collect stdout/stderr.
	j.Output.Stdout = readFileOrEmpty(filepath.Join(boxDir, "stdout"))
	j.Output.Stderr = readFileOrEmpty(filepath.Join(boxDir, "stderr"))

	// Phase 6 (cont'd): parse metadata.
	metaContents, err := os.ReadFile(metadataPath)
	if err != nil {
		return e.finishInternalError(ctx, j, fmt.Sprintf("missing metadata file: %v", err))
	}
	meta := ParseMetadata(string(metaContents))

	// Phase 7: classify and populate output.
	j.Output.Time = meta.Time
	j.Output.Memory = meta.Memory
	exitCode := meta.ExitCode
	j.Output.ExitCode = &exitCode
	j.Output.Message = meta.Message

	verdict := classify.Classify(meta.Status, meta.ExitCode, j.Output.Stdout, j.ExpectedOutput)
	j.Finish(verdict)

	// Phase 8: persist.
	return e.persist(ctx, j)
}

func (e *Executor) finishInternalError(ctx context.Context, j *job.Job, message string) error {
	j.Output.Message = message
	j.Finish(job.StatusInternalError)
	if err := e.persist(ctx, j); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", ErrInternal, message)
}

func (e *Executor) persist(ctx context.Context, j *job.Job) error {
	return e.store.Store(ctx, e.key(j.ID), j, 0)
}

// initBox runs `isolate --cg --init -b <id>` and returns the box root
// path reported on stdout.
func (e *Executor) initBox(ctx context.Context, boxID int) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, e.cfg.IsolateBinary, "--cg", "--init", "-b", strconv.Itoa(boxID))
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("isolate --init: %w", err)
	}

	path := strings.TrimSpace(stdout.String())
	if path == "" {
		return "", fmt.Errorf("isolate --init produced no box path")
	}
	return filepath.Join(path, "box"), nil
}

func (e *Executor) writeInputFiles(boxDir string, j *job.Job) error {
	if err := os.WriteFile(filepath.Join(boxDir, j.Language.SourceFileName), []byte(j.SourceCode), 0o644); err != nil {
		return fmt.Errorf("write source: %w", err)
	}
	if err := os.WriteFile(filepath.Join(boxDir, "stdin"), []byte(j.Stdin), 0o644); err != nil {
		return fmt.Errorf("write stdin: %w", err)
	}
	return nil
}

// compile invokes the isolator for the compile phase. ok is false iff
// the compile command exited non-zero, in which case compileOutput
// holds the captured compile_output file contents.
func (e *Executor) compile(ctx context.Context, boxID int, metadataPath string, j *job.Job) (compileOutput string, ok bool, err error) {
	shellCmd := fmt.Sprintf("%s 2> /box/compile_output", j.Language.CompileCmd)

	args := e.commonArgs(boxID, metadataPath, j.Settings.MemoryLimit)
	args = append(args,
		"--process=60",
		"-t", "5",
		"-x", "0",
		"-w", strconv.Itoa(int(e.cfg.CompileWallTime.Seconds())),
		"-k", "12800",
		"-f", "1024",
	)
	args = append(args, e.envArgs()...)
	args = append(args, "-d", "/etc:noexec", "--run", "--", "/usr/bin/sh", "-c", shellCmd)

	cmd := exec.CommandContext(ctx, e.cfg.IsolateBinary, args...)
	if err := cmd.Run(); err != nil {
		if _, isExit := err.(*exec.ExitError); !isExit {
			return "", false, err
		}
		// Non-zero compile exit is a classification outcome, not an
		// invocation failure.
	}

	boxDir := filepath.Dir(metadataPath)
	if !cmd.ProcessState.Success() {
		return readFileOrEmpty(filepath.Join(boxDir, "compile_output")), false, nil
	}
	return "", true, nil
}

func (e *Executor) run(ctx context.Context, boxID int, metadataPath string, j *job.Job) error {
	boxDir := filepath.Dir(metadataPath)
	stdinPath := filepath.Join(boxDir, "stdin")
	stdinFile, err := os.Open(stdinPath)
	if err != nil {
		return fmt.Errorf("open stdin: %w", err)
	}
	defer stdinFile.Close()

	shellCmd := fmt.Sprintf("%s > /box/stdout 2> /box/stderr", j.Language.RunCmd)

	args := e.commonArgs(boxID, metadataPath, j.Settings.MemoryLimit)
	args = append(args,
		"--process=60",
		"-t", formatFloat(j.Settings.CPUTimeLimit),
		"-x", "0",
		"-w", "10",
		"-k", "128000",
	)
	args = append(args, e.envArgs()...)
	args = append(args, "-d", "/etc:noexec", "--run", "--", "/usr/bin/sh", "-c", shellCmd)

	cmd := exec.CommandContext(ctx, e.cfg.IsolateBinary, args...)
	cmd.Stdin = stdinFile

	// The isolator itself enforces CPU/wall/memory limits via cgroups;
	// a non-zero exit here just means the run phase produced an
	// interesting verdict (TLE, signal, NZEC) for classify to read out
	// of the metadata file, not an invocation failure.
	if err := cmd.Run(); err != nil {
		if _, isExit := err.(*exec.ExitError); !isExit {
			return err
		}
	}
	return nil
}

// commonArgs builds the --cg -b <id> -M <metadata> --cg-mem=<mem> argv
// prefix shared by compile and run.
func (e *Executor) commonArgs(boxID int, metadataPath string, memoryLimitKB int64) []string {
	return []string{
		"--cg",
		"-b", strconv.Itoa(boxID),
		"-M", metadataPath,
		fmt.Sprintf("--cg-mem=%d", memoryLimitKB),
	}
}

func (e *Executor) envArgs() []string {
	return []string{
		"-E", "PATH=" + e.cfg.PathEnv,
		"-E", "HOME=" + e.cfg.HomeEnv,
	}
}

// CleanupBox reclaims a box's filesystem state. Errors are never
// propagated past the caller (the worker pool logs them; Execute's
// pre-init cleanup ignores them): cleanup must be best-effort so a
// crashed run doesn't leak boxes.
func (e *Executor) CleanupBox(ctx context.Context, boxID int) error {
	cmd := exec.CommandContext(ctx, e.cfg.IsolateBinary, "--cg", "-b", strconv.Itoa(boxID), "--cleanup")
	return cmd.Run()
}

func readFileOrEmpty(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
