package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"miglens/internal/artifact"
	"miglens/internal/audit"
	"miglens/internal/config"
	"miglens/internal/inspect"
	"miglens/internal/pipeline"
	"miglens/internal/render"
	"miglens/internal/report"
	"miglens/internal/tags"
)

// unitExtensions maps compiled-unit file extensions to container formats.
var unitExtensions = map[string]string{
	".jar": "jar", ".war": "war", ".ear": "ear", ".zip": "zip",
	".class": "class", ".so": "so", ".dll": "dll",
}

// Engine orchestrates one analysis session: it owns the session-scoped
// inspector catalog, the resolver with its descriptor cache, the renderer
// registry, and the last generated report. Construct a fresh Engine per
// session; nothing inside it survives across sessions.
type Engine struct {
	cfg       *config.Config
	catalog   *inspect.Catalog
	resolver  *inspect.Resolver
	renderers *render.Registry
	report    *report.Report
}

// New creates an Engine with the given config. Inspectors and renderers
// must be registered after creation.
func New(cfg *config.Config) (*Engine, error) {
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	catalog := inspect.NewCatalog()
	return &Engine{
		cfg:       cfg,
		catalog:   catalog,
		resolver:  inspect.NewResolver(catalog, registry),
		renderers: render.NewRegistry(),
	}, nil
}

// buildRegistry assembles the canonical fact-name registry from the inline
// config list and the optional registry file. With neither configured the
// registry is nil and validation always passes.
func buildRegistry(cfg *config.Config) (*tags.Registry, error) {
	if len(cfg.Facts.Registry) == 0 && cfg.Facts.RegistryFile == "" {
		return nil, nil
	}

	registry := tags.NewRegistry(cfg.Facts.Registry...)
	if cfg.Facts.RegistryFile != "" {
		fromFile, err := tags.LoadRegistry(cfg.Facts.RegistryFile)
		if err != nil {
			return nil, err
		}
		registry.Register(fromFile.Names()...)
	}
	return registry, nil
}

// RegisterInspector adds an inspector to the session catalog. Inspectors
// disabled in the config are dropped silently. The resolver cache is
// flushed so resolutions see the updated roster.
func (e *Engine) RegisterInspector(ins inspect.Inspector) {
	if !e.cfg.IsInspectorEnabled(ins.Name()) {
		log.Printf("[engine] inspector %s disabled by config", ins.Name())
		return
	}
	if err := e.catalog.Register(func() (inspect.Inspector, error) { return ins, nil }); err != nil {
		log.Printf("[engine] registering inspector %s: %v", ins.Name(), err)
		return
	}
	e.resolver.ClearCache()
}

// RegisterInspectorFactory instantiates an inspector through the factory
// and adds it to the catalog. Factory failures come back as a single
// RegistrationError.
func (e *Engine) RegisterInspectorFactory(factory func() (inspect.Inspector, error)) error {
	if err := e.catalog.Register(factory); err != nil {
		return err
	}
	e.resolver.ClearCache()
	return nil
}

// RegisterRenderer adds a renderer to the engine.
func (e *Engine) RegisterRenderer(rnd render.Renderer) {
	e.renderers.Register(rnd)
}

// Catalog returns the session's inspector catalog.
func (e *Engine) Catalog() *inspect.Catalog {
	return e.catalog
}

// Resolver returns the session's dependency resolver.
func (e *Engine) Resolver() *inspect.Resolver {
	return e.resolver
}

// Report returns the last generated report, or nil.
func (e *Engine) Report() *report.Report {
	return e.report
}

// Config returns the engine config.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Analyze runs the full session: walk -> classify -> schedule -> audit ->
// render. Per-inspector failures are recorded in the report; only
// ecosystem-level failures return an error.
func (e *Engine) Analyze(ctx context.Context, repoPath string) (*report.Report, error) {
	start := time.Now()

	if repoPath == "" {
		repoPath = e.cfg.Repo
	}
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolving repo path: %w", err)
	}

	files, units, err := e.collectArtifacts(absRepo)
	if err != nil {
		return nil, fmt.Errorf("walking repo: %w", err)
	}
	log.Printf("[engine] found %d files and %d compiled units in %s", len(files), len(units), absRepo)

	if e.cfg.Facts.Strict {
		if err := e.validateRoster(); err != nil {
			return nil, err
		}
	}

	runner, err := pipeline.NewRunner(e.catalog, e.resolver, e.cfg.Pipeline.MaxSweeps)
	if err != nil {
		return nil, err
	}

	session := artifact.NewSession(filepath.Base(absRepo), files, units)
	results, err := runner.Run(ctx, files, units, session)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	log.Printf("[engine] pipeline finished with %d invocations", len(results))

	auditResult, err := e.Audit()
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	rep := e.assembleReport(absRepo, files, units, session, results, auditResult, time.Since(start))

	rendered, err := e.runRenderers(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("rendering: %w", err)
	}
	rep.Rendered = rendered

	e.report = rep
	log.Printf("[engine] report generated in %s", rep.Meta.Duration)
	return rep, nil
}

// Audit builds the ecosystem audit over the current catalog. It inspects
// declared contracts only and can run without any artifacts.
func (e *Engine) Audit() (*audit.Result, error) {
	builder := audit.NewBuilder(e.catalog, e.resolver, audit.Options{
		MinChainLength: e.cfg.Audit.MinChainLength,
	})
	return builder.Build()
}

// validateRoster runs the strict validation pass over every catalog entry.
func (e *Engine) validateRoster() error {
	for _, ins := range e.catalog.All() {
		if err := e.resolver.Validate(ins.Name()); err != nil {
			var verr *inspect.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("strict validation: %w", verr)
			}
			return err
		}
	}
	return nil
}

// collectArtifacts walks the repository, applies the ignore patterns, and
// classifies every file into a file artifact or a compiled-unit artifact.
func (e *Engine) collectArtifacts(repoPath string) ([]*artifact.File, []*artifact.Unit, error) {
	var files []*artifact.File
	var units []*artifact.Unit

	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}

		if e.isIgnored(relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		relPath = filepath.ToSlash(relPath)
		if format, ok := unitExtensions[strings.ToLower(filepath.Ext(relPath))]; ok {
			units = append(units, artifact.NewUnit(relPath, path, format))
			return nil
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		files = append(files, artifact.NewFile(relPath, path, size))
		return nil
	})
	return files, units, err
}

// isIgnored checks whether a path matches any ignore pattern.
func (e *Engine) isIgnored(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range e.cfg.Ignore {
		if strings.HasSuffix(pattern, "/**") {
			dirPrefix := strings.TrimSuffix(pattern, "/**")
			if relPath == dirPrefix || strings.HasPrefix(relPath, dirPrefix+"/") {
				return true
			}
		}

		matched, err := filepath.Match(pattern, relPath)
		if err == nil && matched {
			return true
		}

		if strings.HasPrefix(pattern, "**/") {
			subPattern := strings.TrimPrefix(pattern, "**/")
			matched, err = filepath.Match(subPattern, filepath.Base(relPath))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(subPattern, relPath)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// assembleReport builds the report snapshot from the run's artifacts and
// results.
func (e *Engine) assembleReport(absRepo string, files []*artifact.File, units []*artifact.Unit, session *artifact.Session, results []pipeline.Result, auditResult *audit.Result, duration time.Duration) *report.Report {
	var records []report.ArtifactRecord
	factCount := 0

	for _, f := range files {
		records = append(records, report.ArtifactRecord{
			ID: f.ID(), Kind: string(f.Kind()), Facts: f.Facts(), Metrics: f.Properties(),
		})
		factCount += len(f.Facts())
	}
	for _, u := range units {
		records = append(records, report.ArtifactRecord{
			ID: u.ID(), Kind: string(u.Kind()), Facts: u.Facts(), Metrics: u.Properties(),
		})
		factCount += len(u.Facts())
	}
	records = append(records, report.ArtifactRecord{
		ID: session.ID(), Kind: string(session.Kind()), Facts: session.Facts(), Metrics: session.Properties(),
	})
	factCount += len(session.Facts())

	var names []string
	for _, ins := range e.catalog.All() {
		names = append(names, ins.Name())
	}

	return &report.Report{
		Meta: report.Meta{
			RepoPath:    absRepo,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Duration:    duration.String(),
			Inspectors:  names,
			FileCount:   len(files),
			UnitCount:   len(units),
			FactCount:   factCount,
			Invocations: len(results),
		},
		Artifacts: records,
		Results:   results,
		Audit:     auditResult,
	}
}

// runRenderers runs all enabled renderers over the report.
func (e *Engine) runRenderers(ctx context.Context, rep *report.Report) ([]report.Rendered, error) {
	var rendered []report.Rendered
	for _, rnd := range e.renderers.All() {
		if !e.cfg.IsRendererEnabled(rnd.Name()) {
			continue
		}
		docs, err := rnd.Render(ctx, rep)
		if err != nil {
			log.Printf("[engine] renderer %s error: %v", rnd.Name(), err)
			continue
		}
		rendered = append(rendered, docs...)
	}
	return rendered, nil
}

// WriteArtifacts writes the report's output files to the configured output
// directory: findings.jsonl, audit.json, report.meta.json, and every
// rendered document.
func (e *Engine) WriteArtifacts(repoPath string) error {
	if e.report == nil {
		return fmt.Errorf("no report generated")
	}

	outDir := filepath.Join(repoPath, e.cfg.Output.Dir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for _, doc := range e.report.Rendered {
		path := filepath.Join(outDir, doc.Name)
		if err := os.WriteFile(path, doc.Content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", doc.Name, err)
		}
		log.Printf("[engine] wrote %s (%d bytes)", path, len(doc.Content))
	}

	findingsPath := filepath.Join(outDir, "findings.jsonl")
	if err := e.report.WriteFindingsFile(findingsPath); err != nil {
		return err
	}
	log.Printf("[engine] wrote %s", findingsPath)

	for name, payload := range map[string]any{
		"audit.json":       e.report.Audit,
		"report.meta.json": e.report.Meta,
	} {
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", name, err)
		}
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.Printf("[engine] wrote %s (%d bytes)", path, len(data))
	}

	return nil
}

// GetArtifact returns the content of a named output document.
func (e *Engine) GetArtifact(name string) ([]byte, error) {
	if e.report == nil {
		return nil, fmt.Errorf("no report generated")
	}

	switch name {
	case "findings.jsonl":
		var buf bytes.Buffer
		if err := e.report.WriteFindingsJSONL(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "audit.json":
		return json.MarshalIndent(e.report.Audit, "", "  ")
	case "report.meta.json":
		return json.MarshalIndent(e.report.Meta, "", "  ")
	default:
		for _, doc := range e.report.Rendered {
			if doc.Name == name {
				return doc.Content, nil
			}
		}
		return nil, fmt.Errorf("artifact %q not found", name)
	}
}
