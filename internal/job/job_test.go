package job

import (
	"encoding/json"
	"testing"
)

func testLanguage() Language {
	return Language{
		Name:           "python",
		SourceFileName: "script.py",
		RunCmd:         "/usr/bin/python3 script.py",
	}
}

func TestNewJobDefaults(t *testing.T) {
	j := New("print('hi')", testLanguage())

	if j.ID == 0 {
		t.Error("expected a non-zero generated id")
	}
	if j.Status != StatusQueued {
		t.Errorf("Status = %v, want Queued", j.Status)
	}
	if j.Settings != DefaultSettings() {
		t.Errorf("Settings = %+v, want defaults", j.Settings)
	}
	if j.CreatedAt == 0 {
		t.Error("expected CreatedAt to be stamped")
	}
}

func TestBuilderChaining(t *testing.T) {
	j := New("code", testLanguage()).
		WithStdin("hello\n").
		WithExpectedOutput("hello").
		WithLimits(1.0, 3.0, 64000, 32000, 30)

	if j.Stdin != "hello\n" {
		t.Errorf("Stdin = %q, want %q", j.Stdin, "hello\n")
	}
	if j.ExpectedOutput != "hello" {
		t.Errorf("ExpectedOutput = %q, want %q", j.ExpectedOutput, "hello")
	}
	if j.Settings.CPUTimeLimit != 1.0 || j.Settings.MemoryLimit != 64000 {
		t.Errorf("Settings = %+v, want overridden limits", j.Settings)
	}
}

func TestBoxIDIsModuloPrime(t *testing.T) {
	j := New("code", testLanguage())
	j.ID = 2147483647 + 5

	if got, want := j.BoxID(), 5; got != want {
		t.Errorf("BoxID() = %d, want %d", got, want)
	}
}

func TestRoundTripSerialization(t *testing.T) {
	original := New("code", testLanguage()).WithStdin("in").WithExpectedOutput("out")
	original.MarkProcessing()
	original.Finish(StatusAccepted)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Job
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.ID != original.ID || decoded.SourceCode != original.SourceCode ||
		decoded.Stdin != original.Stdin || decoded.ExpectedOutput != original.ExpectedOutput ||
		decoded.Status != original.Status {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarkProcessingThenFinishOrdering(t *testing.T) {
	j := New("code", testLanguage())
	j.MarkProcessing()
	if j.StartedAt == nil {
		t.Fatal("expected StartedAt to be set")
	}
	j.Finish(StatusAccepted)
	if j.FinishedAt == nil {
		t.Fatal("expected FinishedAt to be set")
	}
	if *j.StartedAt > *j.FinishedAt {
		t.Errorf("StartedAt (%d) > FinishedAt (%d)", *j.StartedAt, *j.FinishedAt)
	}
	if !j.Status.Terminal() {
		t.Errorf("expected terminal status after Finish, got %v", j.Status)
	}
}
