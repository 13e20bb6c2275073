package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"miglens/internal/report"
)

// Renderer produces summary.md, a human-readable review of the analysis run
// and the ecosystem audit findings.
type Renderer struct{}

// New creates the summary renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Name() string {
	return "summary"
}

// Render produces the summary.md document.
func (r *Renderer) Render(ctx context.Context, rep *report.Report) ([]report.Rendered, error) {
	var sb strings.Builder

	sb.WriteString("# Analysis Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Repository: %s\n", rep.Meta.RepoPath))
	sb.WriteString(fmt.Sprintf("- Files: %d, compiled units: %d\n", rep.Meta.FileCount, rep.Meta.UnitCount))
	sb.WriteString(fmt.Sprintf("- Facts attached: %d\n", rep.Meta.FactCount))
	sb.WriteString(fmt.Sprintf("- Inspector invocations: %d\n", rep.Meta.Invocations))
	sb.WriteString(fmt.Sprintf("- Duration: %s\n\n", rep.Meta.Duration))

	r.renderOutcomes(&sb, rep)
	r.renderFacts(&sb, rep)
	r.renderAudit(&sb, rep)

	return []report.Rendered{{
		Name:    "summary.md",
		Content: []byte(sb.String()),
		Type:    "text/markdown",
	}}, nil
}

func (r *Renderer) renderOutcomes(sb *strings.Builder, rep *report.Report) {
	byStatus := make(map[string]int)
	for _, res := range rep.Results {
		byStatus[string(res.Outcome.Status())]++
	}
	if len(byStatus) == 0 {
		return
	}

	statuses := make([]string, 0, len(byStatus))
	for s := range byStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	sb.WriteString("## Outcomes\n\n")
	for _, s := range statuses {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", s, byStatus[s]))
	}
	sb.WriteString("\n")
}

func (r *Renderer) renderFacts(sb *strings.Builder, rep *report.Report) {
	counts := make(map[string]int)
	for _, a := range rep.Artifacts {
		for _, f := range a.Facts {
			counts[f]++
		}
	}
	if len(counts) == 0 {
		return
	}

	facts := make([]string, 0, len(counts))
	for f := range counts {
		facts = append(facts, f)
	}
	sort.Strings(facts)

	sb.WriteString("## Facts\n\n")
	for _, f := range facts {
		sb.WriteString(fmt.Sprintf("- `%s` on %d artifacts\n", f, counts[f]))
	}
	sb.WriteString("\n")
}

func (r *Renderer) renderAudit(sb *strings.Builder, rep *report.Report) {
	a := rep.Audit
	if a == nil {
		return
	}

	sb.WriteString("## Ecosystem Audit\n\n")
	sb.WriteString(fmt.Sprintf("%d inspectors, %d dependency edges.\n\n",
		len(a.Graph.Nodes), len(a.Graph.Edges)))

	if len(a.Unused) > 0 {
		sb.WriteString("### Unused facts\n\n")
		for _, f := range a.Unused {
			sb.WriteString(fmt.Sprintf("- `%s` is produced but never consumed\n", f))
		}
		sb.WriteString("\n")
	}

	if len(a.Duplicates) > 0 {
		sb.WriteString("### Suspected duplicate facts\n\n")
		for _, g := range a.Duplicates {
			line := fmt.Sprintf("- %s (%s)", strings.Join(g.Facts, ", "), strings.Join(g.Reasons, "; "))
			if g.Severity != "" {
				line += fmt.Sprintf(" [%s]", g.Severity)
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}

	if len(a.Chains) > 0 {
		sb.WriteString("### Long dependency chains\n\n")
		for _, c := range a.Chains {
			sb.WriteString(fmt.Sprintf("- %s (%d inspectors)\n", strings.Join(c.Path, " -> "), c.Length))
		}
		sb.WriteString("\n")
	}

	if len(a.Unused) == 0 && len(a.Duplicates) == 0 && len(a.Chains) == 0 {
		sb.WriteString("No findings.\n\n")
	}
}
