package sandbox

import (
	"bufio"
	"log"
	"strconv"
	"strings"

	"github.com/BV-BRC/cwe-judge/internal/classify"
)

// Metadata is the parsed form of the isolator's metadata file: one
// key:value per line. Unknown keys are ignored; unparseable numeric
// values default to zero with a logged warning. Parsing is
// permutation-invariant over the recognised keys.
type Metadata struct {
	Time     float64
	Memory   int64 // KB; cg-mem wins over max-rss when both are present
	ExitCode int
	Message  string
	Status   classify.IsolatorStatus

	hasCgMem bool
}

// ParseMetadata parses the isolator's metadata file contents.
func ParseMetadata(contents string) Metadata {
	var m Metadata

	scanner := bufio.NewScanner(strings.NewReader(contents))
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "time":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				log.Printf("sandbox: metadata key %q: unparseable value %q, defaulting to 0: %v", key, value, err)
				f = 0
			}
			m.Time = f
		case "max-rss":
			if !m.hasCgMem {
				n, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					log.Printf("sandbox: metadata key %q: unparseable value %q, defaulting to 0: %v", key, value, err)
					n = 0
				}
				m.Memory = n
			}
		case "cg-mem":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				log.Printf("sandbox: metadata key %q: unparseable value %q, defaulting to 0: %v", key, value, err)
				n = 0
			}
			m.Memory = n
			m.hasCgMem = true
		case "exitcode":
			n, err := strconv.Atoi(value)
			if err != nil {
				log.Printf("sandbox: metadata key %q: unparseable value %q, defaulting to 0: %v", key, value, err)
				n = 0
			}
			m.ExitCode = n
		case "message":
			m.Message = value
		case "status":
			m.Status = classify.IsolatorStatus(value)
		}
	}

	return m
}
