package inspectors

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"miglens/internal/artifact"
	"miglens/internal/inspect"
)

// SourceDigest records a content hash for every tagged source file. It is a
// file-level global inspector: hashing after the main pass keeps the digest
// aligned with whatever facts the fixpoint sweeps settled on.
type SourceDigest struct{}

// NewSourceDigest creates the source-digest inspector.
func NewSourceDigest() *SourceDigest {
	return &SourceDigest{}
}

func (d *SourceDigest) Name() string { return "source-digest" }

func (d *SourceDigest) Describe() inspect.Descriptor {
	return inspect.Descriptor{
		Produces: []string{FactSourceDigested},
		Global:   true,
		Base:     sourceBase,
	}
}

func (d *SourceDigest) Inspect(ctx context.Context, a artifact.Artifact) inspect.Outcome {
	f, ok := a.(*artifact.File)
	if !ok {
		return inspect.NotApplicable()
	}

	data, err := os.ReadFile(f.Path())
	if err != nil {
		return inspect.Failure(fmt.Sprintf("reading %s: %v", f.ID(), err))
	}

	h := sha256.Sum256(data)
	return inspect.Success(map[string]any{"sha256": hex.EncodeToString(h[:])})
}

// ArchiveDigest is the unit-final counterpart of SourceDigest: a global
// unit-level inspector that hashes every detected compiled unit once the
// unit main pass has settled.
type ArchiveDigest struct{}

// NewArchiveDigest creates the archive-digest inspector.
func NewArchiveDigest() *ArchiveDigest {
	return &ArchiveDigest{}
}

func (d *ArchiveDigest) Name() string { return "archive-digest" }

func (d *ArchiveDigest) Describe() inspect.Descriptor {
	return inspect.Descriptor{
		Requires: []string{FactArchiveDetected},
		Produces: []string{FactUnitDigested},
		Scope:    inspect.ScopeUnit,
		Global:   true,
	}
}

func (d *ArchiveDigest) Inspect(ctx context.Context, a artifact.Artifact) inspect.Outcome {
	u, ok := a.(*artifact.Unit)
	if !ok {
		return inspect.NotApplicable()
	}

	data, err := os.ReadFile(u.Path())
	if err != nil {
		return inspect.Failure(fmt.Sprintf("reading %s: %v", u.ID(), err))
	}

	h := sha256.Sum256(data)
	return inspect.Success(map[string]any{"sha256": hex.EncodeToString(h[:])})
}
