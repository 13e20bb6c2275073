// Package inspectors provides the built-in inspector roster: small, generic
// collectors and inspectors that exercise the pipeline end to end. They carry
// no migration-specific detection heuristics; domain inspectors plug in
// through the same Inspector contract.
package inspectors

import (
	"context"
	"path/filepath"
	"strings"

	"miglens/internal/artifact"
	"miglens/internal/inspect"
)

// Facts produced by the built-in roster.
const (
	FactSourceDetected   = "SOURCE_DETECTED"
	FactLineCounted      = "LINE_COUNT_MEASURED"
	FactLargeFile        = "LARGE_FILE"
	FactSourceDigested   = "SOURCE_DIGESTED"
	FactArchiveDetected  = "ARCHIVE_DETECTED"
	FactArchiveScanned   = "ARCHIVE_SCANNED"
	FactUnitDigested     = "UNIT_DIGESTED"
	FactSessionSummed    = "SESSION_SUMMARIZED"
)

// Facts returns every fact name the built-in roster declares, for seeding
// the canonical registry.
func Facts() []string {
	return []string{
		FactSourceDetected, FactLineCounted, FactLargeFile, FactSourceDigested,
		FactArchiveDetected, FactArchiveScanned, FactUnitDigested, FactSessionSummed,
	}
}

var sourceExtensions = map[string]string{
	".java": "java", ".jsp": "jsp", ".kt": "kotlin", ".scala": "scala",
	".go": "go", ".py": "python", ".rb": "ruby", ".js": "javascript",
	".ts": "typescript", ".sql": "sql", ".xml": "xml", ".properties": "properties",
	".yaml": "yaml", ".yml": "yaml",
}

// SourceKind is the file-level collector that tags source files and records
// their language. It has no requirements, so it runs in the very first sweep.
type SourceKind struct{}

// NewSourceKind creates the source-kind collector.
func NewSourceKind() *SourceKind {
	return &SourceKind{}
}

func (s *SourceKind) Name() string { return "source-kind" }

func (s *SourceKind) Describe() inspect.Descriptor {
	return inspect.Descriptor{
		Produces: []string{FactSourceDetected},
		Scope:    inspect.ScopeFile,
	}
}

func (s *SourceKind) Inspect(ctx context.Context, a artifact.Artifact) inspect.Outcome {
	lang, ok := sourceExtensions[strings.ToLower(filepath.Ext(a.ID()))]
	if !ok {
		return inspect.NotApplicable()
	}
	return inspect.Success(map[string]any{"language": lang})
}
