package inspect

import (
	"errors"
	"fmt"
	"testing"
)

func names(inspectors []Inspector) []string {
	out := make([]string, len(inspectors))
	for i, ins := range inspectors {
		out[i] = ins.Name()
	}
	return out
}

func TestCatalog_Partitions(t *testing.T) {
	c := NewCatalog(
		&stubInspector{name: "file-local", desc: Descriptor{Scope: ScopeFile}},
		&stubInspector{name: "file-global", desc: Descriptor{Scope: ScopeFile, Global: true}},
		&stubInspector{name: "any-local", desc: Descriptor{Scope: ScopeAny}},
		&stubInspector{name: "unit-local", desc: Descriptor{Scope: ScopeUnit}},
		&stubInspector{name: "unit-global", desc: Descriptor{Scope: ScopeUnit, Global: true}},
		&stubInspector{name: "agg", desc: Descriptor{Scope: ScopeAggregate}},
		&stubInspector{name: "agg-global", desc: Descriptor{Scope: ScopeAggregate, Global: true}},
	)

	tests := []struct {
		partition string
		got       []string
		want      []string
	}{
		{"FileMain", names(c.FileMain()), []string{"file-local", "any-local"}},
		{"FileFinal", names(c.FileFinal()), []string{"file-global"}},
		{"UnitMain", names(c.UnitMain()), []string{"unit-local"}},
		{"UnitFinal", names(c.UnitFinal()), []string{"unit-global"}},
		{"AggregatePass", names(c.AggregatePass()), []string{"agg", "agg-global"}},
	}
	for _, tt := range tests {
		if fmt.Sprint(tt.got) != fmt.Sprint(tt.want) {
			t.Errorf("%s = %v, want %v", tt.partition, tt.got, tt.want)
		}
	}

	if c.Len() != 7 {
		t.Errorf("Len = %d, want 7", c.Len())
	}
}

func TestCatalog_ByName(t *testing.T) {
	c := NewCatalog(&stubInspector{name: "present", desc: Descriptor{}})

	if _, ok := c.ByName("present"); !ok {
		t.Error("ByName(present) should find the inspector")
	}
	if _, ok := c.ByName("absent"); ok {
		t.Error("ByName(absent) should report absence, not panic or error")
	}
}

func TestCatalog_Register(t *testing.T) {
	c := NewCatalog()

	err := c.Register(func() (Inspector, error) {
		return &stubInspector{name: "late", desc: Descriptor{Scope: ScopeUnit}}, nil
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := c.ByName("late"); !ok {
		t.Error("registered inspector not found")
	}
	if len(c.UnitMain()) != 1 {
		t.Error("partitions not re-derived after Register")
	}
}

func TestCatalog_RegisterFailures(t *testing.T) {
	c := NewCatalog()

	boom := errors.New("boom")
	err := c.Register(func() (Inspector, error) { return nil, boom })
	var rerr *RegistrationError
	if !errors.As(err, &rerr) {
		t.Fatalf("factory error not wrapped: %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("RegistrationError should unwrap to the factory error")
	}

	err = c.Register(func() (Inspector, error) { return nil, nil })
	if !errors.As(err, &rerr) {
		t.Errorf("nil inspector should yield a RegistrationError, got %v", err)
	}

	if c.Len() != 0 {
		t.Errorf("failed registrations changed the roster: Len = %d", c.Len())
	}
}

func TestCatalog_DuplicateNameReplaces(t *testing.T) {
	first := &stubInspector{name: "dup", desc: Descriptor{Scope: ScopeFile}}
	second := &stubInspector{name: "dup", desc: Descriptor{Scope: ScopeUnit}}

	c := NewCatalog(first)
	if err := c.Register(func() (Inspector, error) { return second, nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after duplicate registration", c.Len())
	}
	got, _ := c.ByName("dup")
	if got != Inspector(second) {
		t.Error("duplicate registration should replace the catalog entry")
	}
	if len(c.UnitMain()) != 1 || len(c.FileMain()) != 0 {
		t.Error("partitions should reflect the replacing inspector's scope")
	}
}

func TestCatalog_InheritedScopePartitions(t *testing.T) {
	unitBase := &Descriptor{Scope: ScopeUnit}
	c := NewCatalog(
		&stubInspector{name: "derived-unit", desc: Descriptor{Base: unitBase}},
		&stubInspector{name: "derived-unit-global", desc: Descriptor{Global: true, Base: unitBase}},
		&stubInspector{name: "derived-global", desc: Descriptor{Scope: ScopeFile, Base: &Descriptor{Global: true}}},
		&stubInspector{name: "bare", desc: Descriptor{}},
	)

	if got := names(c.UnitMain()); fmt.Sprint(got) != "[derived-unit]" {
		t.Errorf("UnitMain = %v, want the Base-scoped inspector", got)
	}
	if got := names(c.UnitFinal()); fmt.Sprint(got) != "[derived-unit-global]" {
		t.Errorf("UnitFinal = %v", got)
	}
	if got := names(c.FileFinal()); fmt.Sprint(got) != "[derived-global]" {
		t.Errorf("FileFinal = %v, want the Base-global inspector", got)
	}
	// A chain with no scope declaration anywhere schedules like ScopeAny.
	if got := names(c.FileMain()); fmt.Sprint(got) != "[bare]" {
		t.Errorf("FileMain = %v", got)
	}

	if got := names(c.ByScope(ScopeUnit)); fmt.Sprint(got) != "[derived-unit derived-unit-global]" {
		t.Errorf("ByScope(unit) = %v", got)
	}
	if got := names(c.ByScope(ScopeAny)); fmt.Sprint(got) != "[bare]" {
		t.Errorf("ByScope(any) = %v", got)
	}
	if got := names(c.Globals()); fmt.Sprint(got) != "[derived-unit-global derived-global]" {
		t.Errorf("Globals = %v", got)
	}
}

func TestDescriptor_EffectiveScopeAndGlobal(t *testing.T) {
	tests := []struct {
		name       string
		desc       Descriptor
		wantScope  Scope
		wantGlobal bool
	}{
		{"own declaration wins", Descriptor{Scope: ScopeFile, Base: &Descriptor{Scope: ScopeUnit}}, ScopeFile, false},
		{"inherited from base", Descriptor{Base: &Descriptor{Scope: ScopeUnit, Global: true}}, ScopeUnit, true},
		{"inherited two levels", Descriptor{Base: &Descriptor{Base: &Descriptor{Scope: ScopeAggregate}}}, ScopeAggregate, false},
		{"undeclared chain", Descriptor{}, ScopeAny, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.desc.EffectiveScope(); got != tt.wantScope {
				t.Errorf("EffectiveScope = %q, want %q", got, tt.wantScope)
			}
			if got := tt.desc.EffectiveGlobal(); got != tt.wantGlobal {
				t.Errorf("EffectiveGlobal = %v, want %v", got, tt.wantGlobal)
			}
		})
	}
}

func TestCatalog_ByScopeAndGlobals(t *testing.T) {
	c := NewCatalog(
		&stubInspector{name: "f1", desc: Descriptor{Scope: ScopeFile}},
		&stubInspector{name: "f2", desc: Descriptor{Scope: ScopeFile, Global: true}},
		&stubInspector{name: "u1", desc: Descriptor{Scope: ScopeUnit}},
	)

	if got := names(c.ByScope(ScopeFile)); fmt.Sprint(got) != "[f1 f2]" {
		t.Errorf("ByScope(file) = %v", got)
	}
	if got := names(c.Globals()); fmt.Sprint(got) != "[f2]" {
		t.Errorf("Globals = %v", got)
	}
}
