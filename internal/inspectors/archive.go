package inspectors

import (
	"archive/zip"
	"context"
	"fmt"

	"miglens/internal/artifact"
	"miglens/internal/inspect"
)

// zipFormats are the compiled-unit container formats readable as zip.
var zipFormats = map[string]bool{
	"jar": true, "war": true, "ear": true, "zip": true,
}

// ArchiveKind is the unit-level collector that tags compiled units with
// their detected container format.
type ArchiveKind struct{}

// NewArchiveKind creates the archive-kind collector.
func NewArchiveKind() *ArchiveKind {
	return &ArchiveKind{}
}

func (k *ArchiveKind) Name() string { return "archive-kind" }

func (k *ArchiveKind) Describe() inspect.Descriptor {
	return inspect.Descriptor{
		Produces: []string{FactArchiveDetected},
		Scope:    inspect.ScopeUnit,
	}
}

func (k *ArchiveKind) Inspect(ctx context.Context, a artifact.Artifact) inspect.Outcome {
	u, ok := a.(*artifact.Unit)
	if !ok {
		return inspect.NotApplicable()
	}
	return inspect.Success(map[string]any{"format": u.Format()})
}

// ArchiveEntries lists the entries of zip-like compiled units. It runs in a
// later sweep of the same pass, once archive-kind has tagged the unit.
type ArchiveEntries struct{}

// NewArchiveEntries creates the archive-entries inspector.
func NewArchiveEntries() *ArchiveEntries {
	return &ArchiveEntries{}
}

func (e *ArchiveEntries) Name() string { return "archive-entries" }

func (e *ArchiveEntries) Describe() inspect.Descriptor {
	return inspect.Descriptor{
		Requires: []string{FactArchiveDetected},
		Produces: []string{FactArchiveScanned},
		Scope:    inspect.ScopeUnit,
	}
}

func (e *ArchiveEntries) Inspect(ctx context.Context, a artifact.Artifact) inspect.Outcome {
	u, ok := a.(*artifact.Unit)
	if !ok {
		return inspect.NotApplicable()
	}
	if !zipFormats[u.Format()] {
		return inspect.Skipped(fmt.Sprintf("format %q is not zip-readable", u.Format()))
	}

	r, err := zip.OpenReader(u.Path())
	if err != nil {
		return inspect.Failure(fmt.Sprintf("opening %s: %v", u.ID(), err))
	}
	defer r.Close()

	classes := 0
	for _, f := range r.File {
		if len(f.Name) > 6 && f.Name[len(f.Name)-6:] == ".class" {
			classes++
		}
	}

	out := inspect.Success(map[string]any{
		"entry_count": len(r.File),
		"class_count": classes,
	})
	if len(r.File) == 0 {
		out = out.WithWarning()
	}
	return out
}
