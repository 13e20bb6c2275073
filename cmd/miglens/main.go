package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"miglens/internal/config"
	"miglens/internal/engine"
	"miglens/internal/inspectors"
	"miglens/internal/render/summary"
	"miglens/internal/server"
)

func main() {
	// Ensure log output goes to stderr, never stdout (MCP uses stdout for JSON-RPC)
	log.SetOutput(os.Stderr)

	ctx := context.Background()

	// Flag parsing with a config-path positional
	analyzeMode := false
	auditMode := false
	cfgPath := "miglens.yaml"
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--analyze":
			analyzeMode = true
		case "--audit":
			auditMode = true
		default:
			cfgPath = arg
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		// If config file doesn't exist, use defaults
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
	}

	eng, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}

	// Register built-in inspectors
	eng.RegisterInspector(inspectors.NewSourceKind())
	eng.RegisterInspector(inspectors.NewLineMetrics())
	eng.RegisterInspector(inspectors.NewLargeFile(0))
	eng.RegisterInspector(inspectors.NewSourceDigest())
	eng.RegisterInspector(inspectors.NewArchiveKind())
	eng.RegisterInspector(inspectors.NewArchiveEntries())
	eng.RegisterInspector(inspectors.NewArchiveDigest())
	eng.RegisterInspector(inspectors.NewCensus())

	// Register renderers
	eng.RegisterRenderer(summary.New())

	// One-shot ecosystem audit mode: no repository needed
	if auditMode {
		result, err := eng.Audit()
		if err != nil {
			log.Fatalf("audit failed: %v", err)
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("failed to marshal audit: %v", err)
		}
		fmt.Println(string(data))
		os.Exit(0)
	}

	// One-shot analysis mode
	if analyzeMode {
		repoPath, err := filepath.Abs(cfg.Repo)
		if err != nil {
			log.Fatalf("failed to resolve repo path: %v", err)
		}

		rep, err := eng.Analyze(ctx, repoPath)
		if err != nil {
			log.Fatalf("analysis failed: %v", err)
		}

		if err := eng.WriteArtifacts(repoPath); err != nil {
			log.Fatalf("failed to write artifacts: %v", err)
		}

		fmt.Fprintf(os.Stderr, "\nAnalysis complete:\n")
		fmt.Fprintf(os.Stderr, "  Repository:   %s\n", rep.Meta.RepoPath)
		fmt.Fprintf(os.Stderr, "  Files:        %d\n", rep.Meta.FileCount)
		fmt.Fprintf(os.Stderr, "  Units:        %d\n", rep.Meta.UnitCount)
		fmt.Fprintf(os.Stderr, "  Facts:        %d\n", rep.Meta.FactCount)
		fmt.Fprintf(os.Stderr, "  Invocations:  %d\n", rep.Meta.Invocations)
		fmt.Fprintf(os.Stderr, "  Duration:     %s\n", rep.Meta.Duration)
		fmt.Fprintf(os.Stderr, "  Output:       %s\n", filepath.Join(repoPath, cfg.Output.Dir))
		os.Exit(0)
	}

	// MCP server mode (default)
	srv, err := server.New(eng, cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
