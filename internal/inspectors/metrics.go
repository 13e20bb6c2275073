package inspectors

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"miglens/internal/artifact"
	"miglens/internal/inspect"
)

// sourceBase is the shared descriptor for inspectors that only make sense on
// tagged source files. Derived descriptors compose it through Base.
var sourceBase = &inspect.Descriptor{
	DependsOn: []string{"source-kind"},
	Scope:     inspect.ScopeFile,
}

// LineMetrics counts the lines of tagged source files. It is gated on the
// source-kind collector's output through the descriptor chain.
type LineMetrics struct{}

// NewLineMetrics creates the line-metrics inspector.
func NewLineMetrics() *LineMetrics {
	return &LineMetrics{}
}

func (m *LineMetrics) Name() string { return "line-metrics" }

func (m *LineMetrics) Describe() inspect.Descriptor {
	return inspect.Descriptor{
		Produces: []string{FactLineCounted},
		Base:     sourceBase,
	}
}

func (m *LineMetrics) Inspect(ctx context.Context, a artifact.Artifact) inspect.Outcome {
	f, ok := a.(*artifact.File)
	if !ok {
		return inspect.NotApplicable()
	}

	data, err := os.ReadFile(f.Path())
	if err != nil {
		return inspect.Failure(fmt.Sprintf("reading %s: %v", f.ID(), err))
	}

	lines := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		lines++
	}
	return inspect.Success(map[string]any{"line_count": lines})
}

// LargeFile flags source files whose measured line count exceeds a
// threshold. Its descriptor extends the line-metrics contract.
type LargeFile struct {
	threshold int
}

// NewLargeFile creates the large-file inspector. A non-positive threshold
// falls back to 800 lines.
func NewLargeFile(threshold int) *LargeFile {
	if threshold <= 0 {
		threshold = 800
	}
	return &LargeFile{threshold: threshold}
}

func (l *LargeFile) Name() string { return "large-file" }

func (l *LargeFile) Describe() inspect.Descriptor {
	return inspect.Descriptor{
		Requires: []string{FactLineCounted},
		Produces: []string{FactLargeFile},
		Base:     sourceBase,
	}
}

func (l *LargeFile) Inspect(ctx context.Context, a artifact.Artifact) inspect.Outcome {
	v, ok := a.Property("line_count")
	if !ok {
		return inspect.Skipped("no line count recorded")
	}
	lines, ok := v.(int)
	if !ok {
		return inspect.Failure(fmt.Sprintf("line_count has unexpected type %T", v))
	}
	if lines <= l.threshold {
		return inspect.NotApplicable()
	}
	return inspect.Success(map[string]any{"threshold": l.threshold})
}
