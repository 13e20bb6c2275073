package artifact

import (
	"reflect"
	"testing"
)

func TestFile_Identity(t *testing.T) {
	f := NewFile("src/Main.java", "/repo/src/Main.java", 42)

	if f.ID() != "src/Main.java" {
		t.Errorf("ID = %q", f.ID())
	}
	if f.Kind() != KindFile {
		t.Errorf("Kind = %q", f.Kind())
	}
	if f.Path() != "/repo/src/Main.java" || f.Size() != 42 {
		t.Errorf("Path/Size = %q/%d", f.Path(), f.Size())
	}
}

func TestUnit_Identity(t *testing.T) {
	u := NewUnit("lib/app.jar", "/repo/lib/app.jar", "jar")

	if u.ID() != "lib/app.jar" || u.Kind() != KindUnit || u.Format() != "jar" {
		t.Errorf("unexpected unit identity: %q %q %q", u.ID(), u.Kind(), u.Format())
	}
}

func TestSession_Rosters(t *testing.T) {
	f := NewFile("a.java", "/repo/a.java", 1)
	u := NewUnit("a.jar", "/repo/a.jar", "jar")
	s := NewSession("repo", []*File{f}, []*Unit{u})

	if s.ID() != "repo" || s.Kind() != KindSession {
		t.Errorf("unexpected session identity: %q %q", s.ID(), s.Kind())
	}
	if len(s.Files()) != 1 || len(s.Units()) != 1 {
		t.Error("session should expose the full roster")
	}
}

func TestFacts_GrowOnly(t *testing.T) {
	f := NewFile("a.java", "/repo/a.java", 1)

	if f.HasFact("KIND") {
		t.Error("fresh artifact should carry no facts")
	}
	if !f.AddFact("KIND") {
		t.Error("first AddFact should report a new fact")
	}
	if f.AddFact("KIND") {
		t.Error("repeated AddFact should report no change")
	}
	f.AddFact("SIZE")

	if got := f.Facts(); !reflect.DeepEqual(got, []string{"KIND", "SIZE"}) {
		t.Errorf("Facts = %v, want attachment order preserved", got)
	}
}

func TestProperties(t *testing.T) {
	f := NewFile("a.java", "/repo/a.java", 1)

	if _, ok := f.Property("line_count"); ok {
		t.Error("unset property reported as present")
	}

	f.SetProperty("line_count", 120)
	v, ok := f.Property("line_count")
	if !ok || v != 120 {
		t.Errorf("Property = %v, %v", v, ok)
	}

	props := f.Properties()
	props["line_count"] = 0
	if v, _ := f.Property("line_count"); v != 120 {
		t.Error("Properties must return a copy")
	}
}

func TestTagger_Apply(t *testing.T) {
	f := NewFile("a.java", "/repo/a.java", 1)
	f.AddFact("EXISTING")

	var tagger Tagger
	added := tagger.Apply(f,
		[]string{"EXISTING", "KIND", "SIZE"},
		map[string]any{"line_count": 12},
	)

	if added != 2 {
		t.Errorf("Apply reported %d new facts, want 2", added)
	}
	if !f.HasFact("KIND") || !f.HasFact("SIZE") {
		t.Errorf("facts not applied: %v", f.Facts())
	}
	if v, _ := f.Property("line_count"); v != 12 {
		t.Errorf("metric not applied: %v", v)
	}

	if tagger.Apply(f, nil, nil) != 0 {
		t.Error("empty application should add nothing")
	}
}
