package sandbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BV-BRC/cwe-judge/internal/job"
)

type fakePersister struct {
	stored []*job.Job
}

func (p *fakePersister) Store(ctx context.Context, key string, j *job.Job, ttl time.Duration) error {
	copied := *j
	p.stored = append(p.stored, &copied)
	return nil
}

func testJob() *job.Job {
	return job.New("print(1)", job.Language{Name: "python", SourceFileName: "s.py", RunCmd: "python3 s.py"})
}

func testKey(id uint64) string { return "k" }

func TestExecuteInitInvocationFailureIsRetryable(t *testing.T) {
	store := &fakePersister{}
	cfg := DefaultConfig()
	cfg.IsolateBinary = "/nonexistent/isolate"
	e := NewExecutor(cfg, store, testKey)

	j := testJob()
	err := e.Execute(context.Background(), j)

	if !errors.Is(err, ErrInternal) {
		t.Fatalf("Execute = %v, want an error wrapping ErrInternal", err)
	}
	if j.Status != job.StatusInternalError {
		t.Errorf("Status = %v, want InternalError", j.Status)
	}
	if len(store.stored) != 1 {
		t.Fatalf("expected the InternalError record to be persisted once, got %d writes", len(store.stored))
	}
	if store.stored[0].Status != job.StatusInternalError {
		t.Errorf("persisted status = %v, want InternalError", store.stored[0].Status)
	}
}

func TestExecuteEmptyInitOutputIsRetryable(t *testing.T) {
	store := &fakePersister{}
	cfg := DefaultConfig()
	cfg.IsolateBinary = "/bin/true"
	e := NewExecutor(cfg, store, testKey)

	j := testJob()
	err := e.Execute(context.Background(), j)

	if !errors.Is(err, ErrInternal) {
		t.Fatalf("Execute = %v, want an error wrapping ErrInternal", err)
	}
	if j.Status != job.StatusInternalError {
		t.Errorf("Status = %v, want InternalError", j.Status)
	}
}

func TestFormatFloatTrimsTrailingZeros(t *testing.T) {
	cases := map[float64]string{
		2.0: "2",
		1.5: "1.5",
		0.1: "0.1",
	}
	for in, want := range cases {
		if got := formatFloat(in); got != want {
			t.Errorf("formatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestCommonArgsShape(t *testing.T) {
	e := &Executor{cfg: DefaultConfig()}
	args := e.commonArgs(42, "/box/42/box/metadata", 128000)

	want := []string{"--cg", "-b", "42", "-M", "/box/42/box/metadata", "--cg-mem=128000"}
	if len(args) != len(want) {
		t.Fatalf("commonArgs = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("commonArgs[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestEnvArgsCarriesConfiguredPathAndHome(t *testing.T) {
	cfg := DefaultConfig()
	e := &Executor{cfg: cfg}
	args := e.envArgs()

	want := []string{"-E", "PATH=" + cfg.PathEnv, "-E", "HOME=" + cfg.HomeEnv}
	if len(args) != len(want) {
		t.Fatalf("envArgs = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("envArgs[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestReadFileOrEmptyMissingFile(t *testing.T) {
	if got := readFileOrEmpty("/nonexistent/path/that/should/not/exist"); got != "" {
		t.Errorf("readFileOrEmpty(missing) = %q, want empty string", got)
	}
}
