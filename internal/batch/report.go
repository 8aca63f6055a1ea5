package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ReportFile is the name of the batch report written to the report dir.
const ReportFile = "batch-report.txt"

// ErrNotRun is reported for scenarios cut off by shutdown.
var ErrNotRun = errors.New("scenario not run")

// Report records the outcome of every scenario of one batch, in submission
// order. It is safe for concurrent use.
type Report struct {
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	label string
	done  bool
	err   error
}

func newReport(scenarios []Scenario) *Report {
	r := &Report{entries: make([]entry, len(scenarios))}
	for i, s := range scenarios {
		r.entries[i].label = s.Label
	}
	return r
}

func (r *Report) record(i int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[i].done = true
	r.entries[i].err = err
}

// Passed returns the number of scenarios that completed.
func (r *Report) Passed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.done && e.err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of scenarios that failed or never ran.
func (r *Report) Failed() int {
	return r.Tasks() - r.Passed()
}

// Tasks returns the number of scenarios in the batch.
func (r *Report) Tasks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Errors returns the failure of each failed scenario by label.
func (r *Report) Errors() map[string]error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]error)
	for _, e := range r.entries {
		switch {
		case !e.done:
			out[e.label] = ErrNotRun
		case e.err != nil:
			out[e.label] = e.err
		}
	}
	return out
}

// WriteTo writes the report in the P:/F: line format.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	const rule = "-----------------------------\n"

	var b strings.Builder
	b.WriteString(" Batch Report File\n")
	b.WriteString(rule)
	r.mu.Lock()
	for _, e := range r.entries {
		if e.done && e.err == nil {
			fmt.Fprintf(&b, "P: %s\n", e.label)
		} else {
			fmt.Fprintf(&b, "F: %s\n", e.label)
		}
	}
	r.mu.Unlock()
	b.WriteString(rule)
	fmt.Fprintf(&b, "Total passed: %d\n", r.Passed())
	fmt.Fprintf(&b, "Total failed: %d\n", r.Failed())
	fmt.Fprintf(&b, "Total tasks: %d\n", r.Tasks())
	b.WriteString(rule)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// WriteFile writes the report to dir and returns its path.
func (r *Report) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating report dir: %w", err)
	}
	path := filepath.Join(dir, ReportFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating batch report: %w", err)
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("error writing batch report: %w", err)
	}
	return path, f.Close()
}
