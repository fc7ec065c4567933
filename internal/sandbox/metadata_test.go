package sandbox

import (
	"strings"
	"testing"

	"github.com/BV-BRC/cwe-judge/internal/classify"
)

func TestParseMetadataRecognisedKeys(t *testing.T) {
	contents := "time:0.042\nmax-rss:1024\nexitcode:0\nstatus:\nmessage:\n"
	m := ParseMetadata(contents)

	if m.Time != 0.042 {
		t.Errorf("Time = %v, want 0.042", m.Time)
	}
	if m.Memory != 1024 {
		t.Errorf("Memory = %v, want 1024", m.Memory)
	}
	if m.ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0", m.ExitCode)
	}
}

func TestParseMetadataCgMemOverridesMaxRss(t *testing.T) {
	withCgMemFirst := ParseMetadata("cg-mem:2048\nmax-rss:1024\n")
	if withCgMemFirst.Memory != 2048 {
		t.Errorf("cg-mem before max-rss: Memory = %v, want 2048", withCgMemFirst.Memory)
	}

	withMaxRssFirst := ParseMetadata("max-rss:1024\ncg-mem:2048\n")
	if withMaxRssFirst.Memory != 2048 {
		t.Errorf("max-rss before cg-mem: Memory = %v, want 2048", withMaxRssFirst.Memory)
	}
}

func TestParseMetadataPermutationInvariant(t *testing.T) {
	a := ParseMetadata("time:1.5\nexitcode:11\nstatus:SG\n")
	b := ParseMetadata("status:SG\nexitcode:11\ntime:1.5\n")

	if a.Time != b.Time || a.ExitCode != b.ExitCode || a.Status != b.Status {
		t.Errorf("parser is not permutation-invariant: %+v != %+v", a, b)
	}
}

func TestParseMetadataUnknownKeysIgnored(t *testing.T) {
	m := ParseMetadata("time:1.0\nsome-future-key:whatever\n")
	if m.Time != 1.0 {
		t.Errorf("Time = %v, want 1.0 (unknown key should not disturb parsing)", m.Time)
	}
}

func TestParseMetadataUnparseableNumericDefaultsToZero(t *testing.T) {
	m := ParseMetadata("time:not-a-number\nexitcode:also-not-a-number\n")
	if m.Time != 0 {
		t.Errorf("Time = %v, want 0 on unparseable value", m.Time)
	}
	if m.ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0 on unparseable value", m.ExitCode)
	}
}

func TestParseMetadataStatus(t *testing.T) {
	m := ParseMetadata("status:TO\n")
	if m.Status != classify.StatusTimeout {
		t.Errorf("Status = %q, want %q", m.Status, classify.StatusTimeout)
	}
}

func TestParseMetadataWhitespaceTolerant(t *testing.T) {
	m := ParseMetadata(strings.Join([]string{" time : 0.5 ", "exitcode: 2"}, "\n"))
	if m.Time != 0.5 {
		t.Errorf("Time = %v, want 0.5", m.Time)
	}
	if m.ExitCode != 2 {
		t.Errorf("ExitCode = %v, want 2", m.ExitCode)
	}
}
