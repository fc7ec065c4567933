package classify

import (
	"testing"

	"github.com/BV-BRC/cwe-judge/internal/job"
)

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		name     string
		status   IsolatorStatus
		exitCode int
		stdout   string
		expected string
		wantID   int
	}{
		{"timeout", StatusTimeout, 0, "", "", 5},
		{"segv", StatusSignal, 11, "", "", 7},
		{"xfsz", StatusSignal, 25, "", "", 8},
		{"fpe", StatusSignal, 8, "", "", 9},
		{"abrt", StatusSignal, 6, "", "", 10},
		{"signal other", StatusSignal, 99, "", "", 12},
		{"nzec", StatusNonzero, 1, "", "", 11},
		{"internal", StatusInternal, 0, "", "", 13},
		{"accepted no expectation", StatusNone, 0, "hello\n", "", 3},
		{"accepted matches trimmed", StatusNone, 0, "hello\n", "hello", 3},
		{"wrong answer", StatusNone, 0, "goodbye", "hello", 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.status, tc.exitCode, tc.stdout, tc.expected)
			if got.ID() != tc.wantID {
				t.Errorf("Classify(%q, %d, %q, %q) = %d, want %d", tc.status, tc.exitCode, tc.stdout, tc.expected, got.ID(), tc.wantID)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	a := Classify(StatusSignal, 11, "", "")
	b := Classify(StatusSignal, 11, "", "")
	if a != b {
		t.Errorf("Classify is not deterministic: %v != %v", a, b)
	}
}

func TestClassifyTrimIsSymmetric(t *testing.T) {
	got := Classify(StatusNone, 0, "  hello  \n", "\nhello\n")
	if got.Kind != job.Accepted {
		t.Errorf("expected Accepted when both sides trim equal, got %v", got)
	}
}
