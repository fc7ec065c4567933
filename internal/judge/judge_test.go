package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/BV-BRC/cwe-judge/internal/job"
)

type fakeQueue struct {
	store map[string]*job.Job
	err   error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{store: make(map[string]*job.Job)}
}

func (q *fakeQueue) Create(ctx context.Context, key, queueName string, j *job.Job) error {
	if q.err != nil {
		return q.err
	}
	q.store[key] = j
	return nil
}

func (q *fakeQueue) Get(ctx context.Context, key string) (*job.Job, bool, error) {
	if q.err != nil {
		return nil, false, q.err
	}
	j, ok := q.store[key]
	return j, ok, nil
}

func testLanguage() job.Language {
	return job.Language{Name: "python", SourceFileName: "s.py", RunCmd: "python3 s.py"}
}

func TestSubmitThenCheckRoundTrips(t *testing.T) {
	q := newFakeQueue()
	svc := New(q, "jobs")

	j := job.New("print(1)", testLanguage())
	id, err := svc.Submit(context.Background(), j)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got, found, err := svc.Check(context.Background(), id)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !found {
		t.Fatal("expected job to be found after submit")
	}
	if got.ID != j.ID || got.SourceCode != j.SourceCode {
		t.Errorf("Check returned %+v, want %+v", got, j)
	}
}

func TestCheckUnknownIDNotFound(t *testing.T) {
	svc := New(newFakeQueue(), "jobs")
	_, found, err := svc.Check(context.Background(), 999)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if found {
		t.Error("expected not found for unknown id")
	}
}

func TestSubmitPropagatesQueueError(t *testing.T) {
	q := newFakeQueue()
	q.err = errors.New("connection refused")
	svc := New(q, "jobs")

	if _, err := svc.Submit(context.Background(), job.New("code", testLanguage())); err == nil {
		t.Error("expected Submit to propagate queue error")
	}
}

func TestToCheckResponseProjection(t *testing.T) {
	j := job.New("code", testLanguage())
	j.MarkProcessing()
	j.Output.Stdout = "hello\n"
	j.Finish(job.StatusAccepted)

	resp := ToCheckResponse(j)

	if resp.Token != Key(j.ID) {
		t.Errorf("Token = %q, want %q", resp.Token, Key(j.ID))
	}
	if resp.Status.ID != job.StatusAccepted.ID() {
		t.Errorf("Status.ID = %d, want %d", resp.Status.ID, job.StatusAccepted.ID())
	}
	if resp.Stdout != "hello\n" {
		t.Errorf("Stdout = %q, want %q", resp.Stdout, "hello\n")
	}
}
