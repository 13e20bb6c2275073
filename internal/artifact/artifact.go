package artifact

import "miglens/internal/tags"

// Kind identifies the granularity of an artifact.
type Kind string

// Artifact kind constants.
const (
	KindFile    Kind = "file"    // one source or resource file
	KindUnit    Kind = "unit"    // one compiled unit (archive, class file, binary)
	KindSession Kind = "session" // the whole analysis session, for aggregate inspectors
)

// Artifact is one analyzable unit of the codebase. Inspectors query its
// current fact set through HasFact; they never mutate it directly.
type Artifact interface {
	// ID returns the artifact identifier (repo-relative path for files and
	// units, a session label for the session artifact).
	ID() string
	// Kind returns the artifact granularity.
	Kind() Kind
	// HasFact reports whether the fact is currently attached.
	HasFact(fact string) bool
	// Facts returns the attached facts in attachment order.
	Facts() []string
	// Property returns a named metric or property attached to the artifact.
	Property(name string) (any, bool)
}

// Taggable is an artifact that accepts facts and properties. Mutation goes
// through the Tagger decorator after a successful inspector outcome, never
// through inspectors or the resolver. Fact sets only ever grow.
type Taggable interface {
	Artifact
	AddFact(fact string) bool
	SetProperty(name string, value any)
}

// base carries the fact set and property map shared by all artifact kinds.
type base struct {
	facts *tags.Set
	props map[string]any
}

func newBase() base {
	return base{facts: tags.New(), props: make(map[string]any)}
}

func (b *base) HasFact(fact string) bool { return b.facts.Contains(fact) }

func (b *base) Facts() []string { return b.facts.Slice() }

// AddFact attaches a fact and reports whether it was newly added.
func (b *base) AddFact(fact string) bool {
	if b.facts.Contains(fact) {
		return false
	}
	before := b.facts.Len()
	b.facts.Add(fact)
	return b.facts.Len() > before
}

func (b *base) Property(name string) (any, bool) {
	v, ok := b.props[name]
	return v, ok
}

func (b *base) SetProperty(name string, value any) {
	b.props[name] = value
}

// Properties returns a copy of the artifact's property map.
func (b *base) Properties() map[string]any {
	out := make(map[string]any, len(b.props))
	for k, v := range b.props {
		out[k] = v
	}
	return out
}

// File is a single source or resource file artifact.
type File struct {
	base
	relPath string
	absPath string
	size    int64
}

// NewFile creates a file artifact. relPath is the repo-relative identifier,
// absPath the on-disk location inspectors read from.
func NewFile(relPath, absPath string, size int64) *File {
	return &File{base: newBase(), relPath: relPath, absPath: absPath, size: size}
}

func (f *File) ID() string { return f.relPath }

func (f *File) Kind() Kind { return KindFile }

// Path returns the absolute on-disk path. Content reading is delegated
// entirely to inspector implementations.
func (f *File) Path() string { return f.absPath }

// Size returns the file size in bytes as recorded at discovery time.
func (f *File) Size() int64 { return f.size }

// Unit is a compiled-unit artifact: an archive, class file, or binary.
type Unit struct {
	base
	relPath string
	absPath string
	format  string
}

// NewUnit creates a compiled-unit artifact. format is the detected container
// format, e.g. "jar", "war", "zip", "class".
func NewUnit(relPath, absPath, format string) *Unit {
	return &Unit{base: newBase(), relPath: relPath, absPath: absPath, format: format}
}

func (u *Unit) ID() string { return u.relPath }

func (u *Unit) Kind() Kind { return KindUnit }

// Path returns the absolute on-disk path.
func (u *Unit) Path() string { return u.absPath }

// Format returns the detected container format.
func (u *Unit) Format() string { return u.format }

// Session is the aggregate artifact representing the whole analysis run.
// Aggregate inspectors receive it after every file and unit has been
// processed; it exposes the full artifact roster read-only.
type Session struct {
	base
	label string
	files []*File
	units []*Unit
}

// NewSession creates the session artifact over the given rosters.
func NewSession(label string, files []*File, units []*Unit) *Session {
	return &Session{base: newBase(), label: label, files: files, units: units}
}

func (s *Session) ID() string { return s.label }

func (s *Session) Kind() Kind { return KindSession }

// Files returns the session's file artifacts.
func (s *Session) Files() []*File { return s.files }

// Units returns the session's compiled-unit artifacts.
func (s *Session) Units() []*Unit { return s.units }

// Tagger applies a successful inspector outcome to an artifact: the
// inspector's declared produced facts plus any metrics the outcome carried.
// It is the only component that mutates artifacts.
type Tagger struct{}

// Apply attaches facts and metrics to the artifact and returns the number of
// newly attached facts. Already-present facts are left untouched; facts are
// never removed.
func (Tagger) Apply(a Taggable, facts []string, metrics map[string]any) int {
	added := 0
	for _, f := range facts {
		if a.AddFact(f) {
			added++
		}
	}
	for k, v := range metrics {
		a.SetProperty(k, v)
	}
	return added
}
