// Package classify applies the bug-pattern catalog to a dependency
// graph and synthesizes structural findings from its topology.
package classify

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/phobologic/depscope/internal/catalog"
	"github.com/phobologic/depscope/internal/model"
)

// Run classifies every node and returns the findings in the ordering
// contract: severity descending, BFS discovery order, line ascending.
// Classification is pure; running it twice over the same graph and
// catalog yields identical results.
func Run(g *model.DependencyGraph, cat *catalog.Catalog, workers int) []model.Finding {
	perNode := classifyNodes(g, cat, workers)

	var findings []model.Finding
	for _, nf := range perNode {
		findings = append(findings, nf...)
	}
	findings = append(findings, structural(g)...)

	model.SortFindings(findings)
	return findings
}

// classifyNodes runs the catalog over every node on a bounded worker
// pool. Results are partitioned per node and merged afterwards, so no
// shared state is written during the parallel phase.
func classifyNodes(g *model.DependencyGraph, cat *catalog.Catalog, workers int) [][]model.Finding {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(g.NodeOrder) {
		workers = len(g.NodeOrder)
	}

	results := make([][]model.Finding, len(g.NodeOrder))
	work := make(chan int, len(g.NodeOrder))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = classifyNode(g.Nodes[g.NodeOrder[idx]], cat)
			}
		}()
	}

	for i := range g.NodeOrder {
		work <- i
	}
	close(work)
	wg.Wait()

	return results
}

// classifyNode runs every applicable rule against one node's content.
// Unknown-language and unexpandable nodes receive no rule findings.
func classifyNode(node *model.FileNode, cat *catalog.Catalog) []model.Finding {
	if node.Status != model.StatusOK || node.Language == model.LangUnknown {
		return nil
	}

	var findings []model.Finding
	rules := cat.Rules()
	for i := range rules {
		rule := &rules[i]
		if !rule.Applies(node.Language) {
			continue
		}
		for _, m := range rule.Match(node.Content) {
			findings = append(findings, model.Finding{
				RuleID:    rule.ID,
				Category:  rule.Category,
				Severity:  rule.Severity,
				Path:      node.Rel,
				Line:      m.Line,
				Message:   rule.Message,
				NodeOrder: node.Order,
			})
		}
	}
	return findings
}

// structural synthesizes findings from the graph topology itself:
// unresolved imports, cycles, and nodes whose content could not be
// scanned.
func structural(g *model.DependencyGraph) []model.Finding {
	var findings []model.Finding

	for i := range g.Edges {
		e := &g.Edges[i]
		from := g.Nodes[e.From]

		switch e.Reason {
		case model.ReasonNotFound:
			findings = append(findings, model.Finding{
				RuleID:    "unresolved-import",
				Category:  model.CategoryImportDependency,
				Severity:  model.SeverityCritical,
				Path:      from.Rel,
				Line:      e.Line,
				Message:   fmt.Sprintf("import %q does not resolve to any file in the repository", e.Specifier),
				NodeOrder: from.Order,
			})
		case model.ReasonDynamic:
			findings = append(findings, model.Finding{
				RuleID:    "dynamic-import",
				Category:  model.CategoryImportDependency,
				Severity:  model.SeverityLow,
				Path:      from.Rel,
				Line:      e.Line,
				Message:   fmt.Sprintf("computed import %q cannot be traced statically", e.Specifier),
				NodeOrder: from.Order,
			})
		}

		if e.Cyclic {
			to := g.Nodes[e.To]
			findings = append(findings, model.Finding{
				RuleID:    "cyclic-import",
				Category:  model.CategoryImportDependency,
				Severity:  model.SeverityMedium,
				Path:      from.Rel,
				Line:      e.Line,
				Message:   fmt.Sprintf("import of %s closes a dependency cycle", to.Rel),
				NodeOrder: from.Order,
			})
		}
	}

	for _, path := range g.NodeOrder {
		node := g.Nodes[path]
		switch node.Status {
		case model.StatusUnreadable:
			findings = append(findings, model.Finding{
				RuleID:    "unreadable-file",
				Category:  model.CategoryImportDependency,
				Severity:  model.SeverityLow,
				Path:      node.Rel,
				Line:      0,
				Message:   "file could not be read; its dependencies were not traced",
				NodeOrder: node.Order,
			})
		case model.StatusParseError:
			findings = append(findings, model.Finding{
				RuleID:    "parse-failure",
				Category:  model.CategoryImportDependency,
				Severity:  model.SeverityLow,
				Path:      node.Rel,
				Line:      0,
				Message:   "content could not be scanned; coverage is reduced",
				NodeOrder: node.Order,
			})
		}
	}

	return findings
}
