// Package report defines the snapshot produced by one analysis session:
// per-artifact facts and metrics, every inspector invocation outcome, and
// the ecosystem audit findings.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"miglens/internal/audit"
	"miglens/internal/pipeline"
)

// ArtifactRecord is the reportable state of one artifact after the run.
type ArtifactRecord struct {
	ID      string         `json:"id"`
	Kind    string         `json:"kind"`
	Facts   []string       `json:"facts,omitempty"`
	Metrics map[string]any `json:"metrics,omitempty"`
}

// Meta describes one analysis run.
type Meta struct {
	RepoPath    string   `json:"repo_path"`
	GeneratedAt string   `json:"generated_at"`
	Duration    string   `json:"duration"`
	Inspectors  []string `json:"inspectors"`
	FileCount   int      `json:"file_count"`
	UnitCount   int      `json:"unit_count"`
	FactCount   int      `json:"fact_count"`
	Invocations int      `json:"invocations"`
}

// Rendered is one generated output document.
type Rendered struct {
	Name    string `json:"name"`
	Content []byte `json:"-"`
	Type    string `json:"type"` // MIME type hint
}

// Report holds the complete result of an analysis session. It is a
// snapshot: rebuilt fresh per run, never persisted across sessions.
type Report struct {
	Meta      Meta              `json:"meta"`
	Artifacts []ArtifactRecord  `json:"artifacts"`
	Results   []pipeline.Result `json:"results"`
	Audit     *audit.Result     `json:"audit,omitempty"`
	Rendered  []Rendered        `json:"-"`
}

// WriteFindingsJSONL writes one JSON line per artifact record.
func (r *Report) WriteFindingsJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, a := range r.Artifacts {
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("encoding artifact %q: %w", a.ID, err)
		}
	}
	return nil
}

// WriteFindingsFile writes the artifact records as JSONL to path.
func (r *Report) WriteFindingsFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := r.WriteFindingsJSONL(bw); err != nil {
		return err
	}
	return bw.Flush()
}
