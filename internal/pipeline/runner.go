package pipeline

import (
	"context"
	"fmt"
	"log"

	"miglens/internal/artifact"
	"miglens/internal/inspect"
)

// Result records one inspector invocation against one artifact.
type Result struct {
	Inspector string          `json:"inspector"`
	Artifact  string          `json:"artifact"`
	Outcome   inspect.Outcome `json:"outcome"`
}

// Runner executes the five-phase schedule over a session's artifacts:
//
//  1. file main pass: fixpoint sweeps of the file-level non-global partition
//  2. file final pass: file-level globals, one sweep
//  3. unit main pass: fixpoint sweeps of the compiled-unit partition
//  4. unit final pass: compiled-unit globals, one sweep
//  5. aggregate pass: aggregate inspectors against the session artifact
//
// Phases are strictly sequential: a fact written during one sweep is visible
// to every inspector gated on it from the next eligibility check onward.
// Fixpoint sweeping tolerates inspectors declared out of topological order
// without precomputing a global ordering; the mandatory sweep bound guards
// against cyclic or buggy descriptors.
type Runner struct {
	catalog   *inspect.Catalog
	resolver  *inspect.Resolver
	tagger    artifact.Tagger
	maxSweeps int
}

// NewRunner creates a runner. maxSweeps bounds each fixpoint phase and is
// mandatory; a non-positive bound is rejected.
func NewRunner(catalog *inspect.Catalog, resolver *inspect.Resolver, maxSweeps int) (*Runner, error) {
	if catalog == nil || resolver == nil {
		return nil, fmt.Errorf("%w: runner needs a catalog and a resolver", inspect.ErrInvalidArgument)
	}
	if maxSweeps <= 0 {
		return nil, fmt.Errorf("%w: max sweep count must be positive, got %d", inspect.ErrInvalidArgument, maxSweeps)
	}
	return &Runner{catalog: catalog, resolver: resolver, maxSweeps: maxSweeps}, nil
}

// Run executes all five phases and returns every invocation result in
// execution order. Individual inspector failures are recorded as Error
// outcomes and never abort the run; only ecosystem-level failures (an
// unresolvable inspector, a cancelled context) do.
func (r *Runner) Run(ctx context.Context, files []*artifact.File, units []*artifact.Unit, session *artifact.Session) ([]Result, error) {
	var results []Result

	fileArts := make([]artifact.Taggable, len(files))
	for i, f := range files {
		fileArts[i] = f
	}
	unitArts := make([]artifact.Taggable, len(units))
	for i, u := range units {
		unitArts[i] = u
	}

	phase, err := r.fixpoint(ctx, "file main", r.catalog.FileMain(), fileArts)
	results = append(results, phase...)
	if err != nil {
		return results, err
	}

	phase, err = r.singleSweep(ctx, "file final", r.catalog.FileFinal(), fileArts)
	results = append(results, phase...)
	if err != nil {
		return results, err
	}

	phase, err = r.fixpoint(ctx, "unit main", r.catalog.UnitMain(), unitArts)
	results = append(results, phase...)
	if err != nil {
		return results, err
	}

	phase, err = r.singleSweep(ctx, "unit final", r.catalog.UnitFinal(), unitArts)
	results = append(results, phase...)
	if err != nil {
		return results, err
	}

	if session != nil {
		phase, err = r.singleSweep(ctx, "aggregate", r.catalog.AggregatePass(), []artifact.Taggable{session})
		results = append(results, phase...)
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

type invocation struct {
	inspector string
	artifact  string
}

// fixpoint repeatedly sweeps the partition over the artifacts, running every
// inspector currently gated open that has not run against that artifact yet,
// until a sweep performs zero invocations or the sweep bound is hit.
func (r *Runner) fixpoint(ctx context.Context, phase string, partition []inspect.Inspector, artifacts []artifact.Taggable) ([]Result, error) {
	if len(partition) == 0 || len(artifacts) == 0 {
		return nil, nil
	}

	var results []Result
	done := make(map[invocation]bool)

	sweeps, ran := 0, 0
	for ; sweeps < r.maxSweeps; sweeps++ {
		ran = 0
		for _, a := range artifacts {
			for _, ins := range partition {
				key := invocation{ins.Name(), a.ID()}
				if done[key] {
					continue
				}
				if err := ctx.Err(); err != nil {
					return results, err
				}

				open, err := r.resolver.ShouldRun(ins.Name(), a)
				if err != nil {
					return results, fmt.Errorf("%s pass: %w", phase, err)
				}
				if !open {
					continue
				}

				done[key] = true
				ran++
				results = append(results, r.invoke(ctx, ins, a))
			}
		}
		if ran == 0 {
			break
		}
	}
	// Exiting at the bound is only a truncation when the last sweep was
	// still productive and work remains; a final sweep that ran everything
	// left is an ordinary fixpoint.
	if ran > 0 && len(done) < len(partition)*len(artifacts) {
		log.Printf("[pipeline] %s pass stopped at sweep bound %d with inspectors still gated", phase, r.maxSweeps)
	} else {
		log.Printf("[pipeline] %s pass reached fixpoint after %d sweeps (%d invocations)", phase, sweeps, len(results))
	}

	return results, nil
}

// singleSweep runs every inspector of the partition exactly once per
// artifact, still honoring the gating predicate. Inspectors gated closed are
// passed over silently; under-execution is only reportable via the strict
// validation pass.
func (r *Runner) singleSweep(ctx context.Context, phase string, partition []inspect.Inspector, artifacts []artifact.Taggable) ([]Result, error) {
	if len(partition) == 0 || len(artifacts) == 0 {
		return nil, nil
	}

	var results []Result
	for _, a := range artifacts {
		for _, ins := range partition {
			if err := ctx.Err(); err != nil {
				return results, err
			}

			open, err := r.resolver.ShouldRun(ins.Name(), a)
			if err != nil {
				return results, fmt.Errorf("%s pass: %w", phase, err)
			}
			if !open {
				continue
			}

			results = append(results, r.invoke(ctx, ins, a))
		}
	}
	log.Printf("[pipeline] %s pass ran %d invocations", phase, len(results))

	return results, nil
}

// invoke runs one inspector against one artifact and, on success, applies
// the inspector's declared produced facts plus any outcome metrics through
// the tagger. The resolver never touches artifacts.
func (r *Runner) invoke(ctx context.Context, ins inspect.Inspector, a artifact.Taggable) Result {
	out := ins.Inspect(ctx, a)

	if out.IsSuccess() {
		produced, err := r.resolver.Produced(ins.Name())
		if err == nil {
			r.tagger.Apply(a, produced.Slice(), out.Metrics())
		}
	}

	return Result{Inspector: ins.Name(), Artifact: a.ID(), Outcome: out}
}
