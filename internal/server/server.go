package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"miglens/internal/config"
	"miglens/internal/engine"
	"miglens/internal/pipeline"
)

// Server wraps the MCP server and connects it to the analysis engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	cfg *config.Config
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, cfg *config.Config) (*Server, error) {
	s := &Server{
		eng: eng,
		cfg: cfg,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "miglens",
		Version: "0.1.0",
	}, nil)

	s.mcp = mcpServer
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	log.Println("[server] starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// reportResources maps resource URIs to output artifact names.
var reportResources = []struct {
	uri, name, desc, artifact, mime string
}{
	{
		uri:      "mig://report/summary",
		name:     "Migration Summary",
		desc:     "Markdown summary of the last analysis run",
		artifact: "summary.md",
		mime:     "text/markdown",
	},
	{
		uri:      "mig://report/findings",
		name:     "Analysis Findings",
		desc:     "Per-artifact facts and metrics in JSONL format",
		artifact: "findings.jsonl",
		mime:     "application/jsonl",
	},
	{
		uri:      "mig://report/audit",
		name:     "Ecosystem Audit",
		desc:     "Inspector dependency graph, duplicate fact candidates, and dependency chains",
		artifact: "audit.json",
		mime:     "application/json",
	},
	{
		uri:      "mig://report/meta",
		name:     "Report Metadata",
		desc:     "Metadata about the last analysis run",
		artifact: "report.meta.json",
		mime:     "application/json",
	},
}

// registerResources adds MCP resources for the report artifacts.
func (s *Server) registerResources() {
	for _, r := range reportResources {
		artifactName, mimeType := r.artifact, r.mime
		s.mcp.AddResource(&mcp.Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: r.desc,
			MIMEType:    mimeType,
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			content, err := s.eng.GetArtifact(artifactName)
			if err != nil {
				return nil, fmt.Errorf("no report available: %w (run run_analysis first)", err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, Text: string(content), MIMEType: mimeType},
				},
			}, nil
		})
	}
}

// runAnalysisArgs are the arguments for the run_analysis tool.
type runAnalysisArgs struct {
	RepoPath string `json:"repo_path" jsonschema:"Path to the repository to analyze. Defaults to the configured repo path."`
}

// queryArtifactsArgs are the arguments for the query_artifacts tool.
type queryArtifactsArgs struct {
	Kind string `json:"kind,omitempty" jsonschema:"Filter by artifact kind: file, unit, or session"`
	Fact string `json:"fact,omitempty" jsonschema:"Filter to artifacts carrying this fact"`
	Path string `json:"path,omitempty" jsonschema:"Filter by artifact ID using substring match"`
}

// queryResultsArgs are the arguments for the query_results tool.
type queryResultsArgs struct {
	Inspector string `json:"inspector,omitempty" jsonschema:"Filter by inspector name"`
	Status    string `json:"status,omitempty" jsonschema:"Filter by outcome status: success, error, not_applicable, or skipped"`
}

// registerTools adds MCP tools for analysis, querying, and the audit.
func (s *Server) registerTools() {
	// Tool: run_analysis
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "run_analysis",
		Description: "Run the full analysis pipeline over a repository. Walks the tree, schedules every registered inspector to fixpoint, audits the inspector ecosystem, and produces the report artifacts.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args runAnalysisArgs) (*mcp.CallToolResult, any, error) {
		repoPath := args.RepoPath
		if repoPath == "" {
			repoPath = s.cfg.Repo
		}

		absRepo, err := filepath.Abs(repoPath)
		if err != nil {
			return errorResult(fmt.Sprintf("invalid repo path: %v", err)), nil, nil
		}

		rep, err := s.eng.Analyze(ctx, absRepo)
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil, nil
		}

		if err := s.eng.WriteArtifacts(absRepo); err != nil {
			log.Printf("[server] warning: failed to write artifacts: %v", err)
		}

		summary := fmt.Sprintf(
			"Analysis completed.\n\n"+
				"- Repository: %s\n"+
				"- Files: %d\n"+
				"- Compiled units: %d\n"+
				"- Facts attached: %d\n"+
				"- Inspector invocations: %d\n"+
				"- Duration: %s\n"+
				"- Inspectors: %v\n\n"+
				"Use the mig://report/summary resource to read the summary.",
			rep.Meta.RepoPath,
			rep.Meta.FileCount,
			rep.Meta.UnitCount,
			rep.Meta.FactCount,
			rep.Meta.Invocations,
			rep.Meta.Duration,
			rep.Meta.Inspectors,
		)

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: summary},
			},
		}, nil, nil
	})

	// Tool: query_artifacts
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_artifacts",
		Description: "Query analyzed artifacts by kind, attached fact, or path substring. Returns matching artifact records as JSON.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args queryArtifactsArgs) (*mcp.CallToolResult, any, error) {
		rep := s.eng.Report()
		if rep == nil {
			return errorResult("No report available. Run run_analysis first."), nil, nil
		}

		var matched []any
		total := 0
		for _, a := range rep.Artifacts {
			if args.Kind != "" && a.Kind != args.Kind {
				continue
			}
			if args.Fact != "" && !containsFact(a.Facts, args.Fact) {
				continue
			}
			if args.Path != "" && !strings.Contains(a.ID, args.Path) {
				continue
			}
			total++
			if len(matched) < 100 {
				matched = append(matched, a)
			}
		}

		data, err := json.MarshalIndent(matched, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
		}

		text := string(data)
		if total > len(matched) {
			text += fmt.Sprintf("\n\n... (showing %d of %d results, refine your query)", len(matched), total)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: text},
			},
		}, nil, nil
	})

	// Tool: query_results
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_results",
		Description: "Query inspector invocation outcomes by inspector name or outcome status. Returns matching results as JSON.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args queryResultsArgs) (*mcp.CallToolResult, any, error) {
		rep := s.eng.Report()
		if rep == nil {
			return errorResult("No report available. Run run_analysis first."), nil, nil
		}

		var matched []pipeline.Result
		total := 0
		for _, r := range rep.Results {
			if args.Inspector != "" && r.Inspector != args.Inspector {
				continue
			}
			if args.Status != "" && string(r.Outcome.Status()) != args.Status {
				continue
			}
			total++
			if len(matched) < 100 {
				matched = append(matched, r)
			}
		}

		data, err := json.MarshalIndent(matched, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
		}

		text := string(data)
		if total > len(matched) {
			text += fmt.Sprintf("\n\n... (showing %d of %d results, refine your query)", len(matched), total)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: text},
			},
		}, nil, nil
	})

	// Tool: list_inspectors
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_inspectors",
		Description: "List every registered inspector with its scope and resolved fact contract (required and produced facts).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
		inspectors := s.eng.Catalog().All()
		sort.Slice(inspectors, func(i, j int) bool {
			return inspectors[i].Name() < inspectors[j].Name()
		})

		type entry struct {
			Name     string   `json:"name"`
			Scope    string   `json:"scope"`
			Global   bool     `json:"global"`
			Requires []string `json:"requires,omitempty"`
			Produces []string `json:"produces,omitempty"`
		}

		var entries []entry
		for _, ins := range inspectors {
			desc := ins.Describe()
			e := entry{
				Name:   ins.Name(),
				Scope:  string(desc.EffectiveScope()),
				Global: desc.EffectiveGlobal(),
			}
			if req, err := s.eng.Resolver().Resolve(ins.Name()); err == nil {
				e.Requires = req.Slice()
			}
			if prod, err := s.eng.Resolver().Produced(ins.Name()); err == nil {
				e.Produces = prod.Slice()
			}
			entries = append(entries, e)
		}

		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to marshal inspectors: %v", err)), nil, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(data)},
			},
		}, nil, nil
	})

	// Tool: audit_ecosystem
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "audit_ecosystem",
		Description: "Audit the inspector ecosystem's declared contracts: builds the fact dependency graph and reports unused facts, near-duplicate fact names, and long dependency chains. Runs without analyzing any repository.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
		result, err := s.eng.Audit()
		if err != nil {
			return errorResult(fmt.Sprintf("audit failed: %v", err)), nil, nil
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to marshal audit: %v", err)), nil, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(data)},
			},
		}, nil, nil
	})
}

func containsFact(facts []string, fact string) bool {
	for _, f := range facts {
		if f == fact {
			return true
		}
	}
	return false
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
